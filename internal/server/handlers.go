package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/store"
)

const maxLimit = 100

type scoreRequest struct {
	Player          string `json:"player" binding:"required"`
	GameType        string `json:"gameType" binding:"required"`
	Score           int    `json:"score" binding:"min=0"`
	Accuracy        int    `json:"accuracy" binding:"min=0,max=100"`
	Wave            int    `json:"wave" binding:"min=0"`
	Kills           int    `json:"kills" binding:"min=0"`
	DurationSeconds int    `json:"durationSeconds" binding:"min=0,max=86400"`
}

type scoreResponse struct {
	User      model.User              `json:"user"`
	Entry     *model.LeaderboardEntry `json:"entry,omitempty"`
	Unlocked  []model.Achievement     `json:"unlocked"`
	Coins     int                     `json:"coins"`
	TaskCoins int                     `json:"taskCoins"`
	Failures  int                     `json:"failures"`
}

type friendRequestBody struct {
	FromID string `json:"fromId" binding:"required"`
	ToName string `json:"toName" binding:"required"`
}

type respondBody struct {
	UserID string `json:"userId" binding:"required"`
	Accept bool   `json:"accept"`
}

func (s *Server) healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.start).Round(time.Second).String(),
		"clients": s.hub.Clients(),
	})
}

func (s *Server) leaderboardHandler(c *gin.Context) {
	board, err := backend.ParseBoard(c.Query("board"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gameType, ok := parseGameType(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	entries, err := s.svc.Leaderboard(c.Request.Context(), backend.LeaderboardRequest{
		Board:    board,
		GameType: gameType,
		Limit:    limit,
		UserID:   c.Query("userId"),
	})
	if err != nil {
		if board == backend.BoardFriends && c.Query("userId") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required for the friends board"})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board, "gameType": gameType, "entries": nonNil(entries)})
}

func (s *Server) bestHandler(c *gin.Context) {
	gameType, ok := parseGameType(c)
	if !ok {
		return
	}
	entry, err := s.svc.UserBest(c.Request.Context(), c.Param("id"), gameType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) historyHandler(c *gin.Context) {
	gameType, ok := parseGameType(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	entries, err := s.svc.History(c.Request.Context(), c.Param("id"), gameType, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": nonNil(entries)})
}

func (s *Server) progressHandler(c *gin.Context) {
	p, err := s.svc.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) currencyHandler(c *gin.Context) {
	cur, err := s.svc.Currency(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

func (s *Server) tasksHandler(c *gin.Context) {
	daily, err := s.svc.DailyTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

func (s *Server) friendsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	friends, err := s.svc.Friends(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	pending, err := s.svc.PendingRequests(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": nonNil(friends), "pending": nonNil(pending)})
}

func (s *Server) submitScoreHandler(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := model.ParseMode(req.GameType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	user, err := s.svc.EnsureUser(ctx, strings.TrimSpace(req.Player))
	if err != nil {
		s.fail(c, err)
		return
	}
	sum := s.svc.Finish(ctx, user, model.Result{
		Mode:     mode,
		Score:    req.Score,
		Accuracy: req.Accuracy,
		Wave:     req.Wave,
		Kills:    req.Kills,
		Duration: time.Duration(req.DurationSeconds) * time.Second,
		EndedAt:  time.Now(),
	})
	status := http.StatusCreated
	if sum.Entry == nil {
		status = http.StatusInternalServerError
	}
	c.JSON(status, scoreResponse{
		User:      user,
		Entry:     sum.Entry,
		Unlocked:  nonNil(sum.Unlocked),
		Coins:     sum.Coins,
		TaskCoins: sum.TaskCoins,
		Failures:  sum.Failures,
	})
}

func (s *Server) friendRequestHandler(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := s.svc.SendFriendRequest(c.Request.Context(), body.FromID, body.ToName)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) respondRequestHandler(c *gin.Context) {
	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := s.svc.RespondFriendRequest(c.Request.Context(), body.UserID, c.Param("id"), body.Accept)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// fail maps store sentinels onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyFriends),
		errors.Is(err, store.ErrRequestExists),
		errors.Is(err, store.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, store.ErrSelfFriend),
		errors.Is(err, store.ErrInsufficientCoins):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "id", RequestID(c.Request.Context()), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseGameType(c *gin.Context) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(c.DefaultQuery("gameType", "all")))
	if v == "all" {
		return v, true
	}
	if _, err := model.ParseMode(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return v, true
}

func parseLimit(c *gin.Context) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return 0, false
	}
	return n, true
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
