package constants

import "time"

const (
	// FACEIT rejects leaderboard pages larger than 50 entries.
	MaxLeaderboardLimit = 50

	// Most recent matches considered per player.
	MatchHistoryLimit = 30

	// Leetify match IDs are UUIDs; anything shorter is garbage.
	MinMatchIDLength = 36

	ScoreboardSize = 10
	TeamSize       = 5
)

const (
	FaceitAPITimeout  = 10 * time.Second
	LeetifyAPITimeout = 20 * time.Second

	NavigationTimeout = 45 * time.Second

	DatabaseTimeout = 5 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
