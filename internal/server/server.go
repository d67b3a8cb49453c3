// Package server exposes the backend over HTTP, streams new scores over a
// websocket and hosts the drills over SSH.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/model"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultRateRPS    = 5
	defaultRateBurst  = 10
	defaultLimiterTTL = time.Hour
	shutdownTimeout   = 10 * time.Second
)

// Config holds the listen addresses and limits of the server.
type Config struct {
	HTTPAddr string
	// SSHAddr enables the SSH game host when set.
	SSHAddr     string
	HostKeyPath string
	RateRPS     int
	RateBurst   int
	LimiterTTL  time.Duration
	// Games builds the drill served to an SSH session.
	Games GameFactory
}

// Server wires the backend into gin, the score hub and the SSH host.
type Server struct {
	svc   *backend.Service
	cfg   Config
	log   *log.Logger
	hub   *Hub
	start time.Time

	limiterMu sync.Mutex
	limiters  map[string]*limiterEntry
}

// New builds a Server and subscribes its hub to submitted scores.
func New(svc *backend.Service, cfg Config, logger *log.Logger) *Server {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.RateRPS <= 0 {
		cfg.RateRPS = defaultRateRPS
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.LimiterTTL <= 0 {
		cfg.LimiterTTL = defaultLimiterTTL
	}
	s := &Server{
		svc:      svc,
		cfg:      cfg,
		log:      logger,
		hub:      NewHub(logger),
		start:    time.Now(),
		limiters: make(map[string]*limiterEntry),
	}
	svc.OnScore(func(e model.LeaderboardEntry) {
		s.hub.Broadcast(e)
	})
	return s
}

// Hub returns the live score hub.
func (s *Server) Hub() *Hub { return s.hub }

// Router builds the gin engine with every route and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(s.accessLogMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression, ginGzip.WithExcludedPaths([]string{"/ws"})))

	router.GET("/healthz", s.healthzHandler)
	router.GET("/ws/scores", s.hub.ServeWS)

	api := router.Group("/api")
	api.Use(cacheMiddleware(false))
	api.GET("/leaderboard", cacheMiddleware(true), s.leaderboardHandler)
	api.GET("/users/:id/best", s.bestHandler)
	api.GET("/users/:id/history", s.historyHandler)
	api.GET("/users/:id/progress", s.progressHandler)
	api.GET("/users/:id/currency", s.currencyHandler)
	api.GET("/users/:id/tasks", s.tasksHandler)
	api.GET("/users/:id/friends", s.friendsHandler)
	api.POST("/scores", s.rateLimitMiddleware(), s.submitScoreHandler)
	api.POST("/friends/requests", s.rateLimitMiddleware(), s.friendRequestHandler)
	api.POST("/friends/requests/:id", s.rateLimitMiddleware(), s.respondRequestHandler)
	return router
}

// Run serves HTTP (and SSH when configured) until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 2)
	go func() {
		s.log.Info("http server starting", "addr", s.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to serve http: %w", err)
		}
	}()

	var sshSrv sshServer
	if s.cfg.SSHAddr != "" {
		var err error
		sshSrv, err = s.newSSHServer()
		if err != nil {
			shutdown(srv)
			return err
		}
		go func() {
			s.log.Info("ssh server starting", "addr", s.cfg.SSHAddr)
			if err := sshSrv.ListenAndServe(); err != nil && !isSSHClosed(err) {
				errCh <- fmt.Errorf("failed to serve ssh: %w", err)
			}
		}()
	}
	go s.cleanupLimiters(ctx)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	s.log.Info("shutting down")
	s.hub.Close()
	if sshSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := sshSrv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("ssh shutdown failed", "err", err)
		}
		cancel()
	}
	shutdown(srv)
	return runErr
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
