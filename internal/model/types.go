// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the game being played.
type Mode int

const (
	ModeAim Mode = iota
	ModeTyping
)

// String returns the stable identifier used in storage and the API.
func (m Mode) String() string {
	switch m {
	case ModeAim:
		return "aim"
	case ModeTyping:
		return "typing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "aim" or "typing".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aim":
		return ModeAim, nil
	case "typing":
		return ModeTyping, nil
	default:
		return 0, fmt.Errorf("unknown game type %q", s)
	}
}

// Phase is the top-level state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseActive
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Vec3 is a position in the aim corridor.
type Vec3 struct {
	X, Y, Z float64
}

// Result is the summary emitted when a session ends.
type Result struct {
	Mode     Mode
	Score    int
	Accuracy int
	Wave     int
	Kills    int
	Hits     int
	Attempts int
	Duration time.Duration
	EndedAt  time.Time
}

// User identifies a local or remote player.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LeaderboardEntry is one submitted score.
type LeaderboardEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	Accuracy    int       `json:"accuracy"`
	GameType    string    `json:"gameType"`
	Wave        *int      `json:"wave,omitempty"`
	Kills       *int      `json:"kills,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`
}

// LeaderboardQuery filters leaderboard reads. Empty GameType or "all" means every mode.
type LeaderboardQuery struct {
	GameType string
	Since    *time.Time
	Limit    int
}

// AchievementDef describes an unlockable achievement.
type AchievementDef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Target      int    `json:"target"`
	CoinReward  int    `json:"coinReward"`
}

// Achievement is a user's progress on one AchievementDef.
type Achievement struct {
	AchievementDef
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// PlayerStats aggregates every finished session of a user.
type PlayerStats struct {
	TotalGamesPlayed    int `json:"totalGamesPlayed"`
	TotalPlayTime       int `json:"totalPlayTime"`
	HighestWave         int `json:"highestWave"`
	TotalKills          int `json:"totalKills"`
	BestAccuracy        int `json:"bestAccuracy"`
	PerfectGames        int `json:"perfectGames"`
	GamesOver95Accuracy int `json:"gamesOver95Accuracy"`
	TotalFriends        int `json:"totalFriends"`
}

// Progress is the achievement document of a user.
type Progress struct {
	UserID       string        `json:"userId"`
	Stats        PlayerStats   `json:"stats"`
	Achievements []Achievement `json:"achievements"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// GameStats is the per-session input to achievement evaluation.
type GameStats struct {
	Wave            int
	Kills           int
	Accuracy        int
	DurationSeconds int
}

// Currency is a user's coin balance.
type Currency struct {
	Coins          int       `json:"coins"`
	LifetimeEarned int       `json:"lifetimeEarned"`
	LifetimeSpent  int       `json:"lifetimeSpent"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// CoinTransaction is one ledger line of a currency change.
type CoinTransaction struct {
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyTask is one daily objective.
type DailyTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	Target      int    `json:"target"`
	Category    string `json:"category"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
}

// DailyTasks is the daily objective set of a user.
type DailyTasks struct {
	Tasks     []DailyTask `json:"tasks"`
	LastReset time.Time   `json:"lastReset"`
	Streak    int         `json:"streak"`
}

// Friend is an accepted friendship.
type Friend struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	AddedAt     time.Time `json:"addedAt"`
}

// FriendRequest statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest is a pending or answered friend request.
type FriendRequest struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	FromName   string    `json:"fromName"`
	ToUserID   string    `json:"toUserId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
