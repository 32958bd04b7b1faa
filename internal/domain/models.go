package domain

import (
	"time"
)

// Player is a FACEIT profile resolved from the leaderboard. SteamID64 is the
// join key into Leetify match discovery.
type Player struct {
	PlayerID  string
	Nickname  string
	Country   string
	AvatarURL string
	FaceitURL string
	SteamID64 string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchReference ties a discovered match page to the player whose history
// surfaced it. Held in memory only.
type MatchReference struct {
	MatchURL  string
	SteamID64 string
}

// PlayerMatchStat is one scoreboard row. Metric pointers are nil when the
// scraped cell was missing or non-numeric; a nil must never be collapsed to
// zero or it skews every downstream average.
type PlayerMatchStat struct {
	SteamID             string
	MatchURL            string
	LeetifyRating       *float64
	PersonalPerformance *float64
	HLTVRating          *float64
	KD                  *float64
	ADR                 *float64
	Aim                 *float64
	Utility             *float64
	Won                 bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Team struct {
	Players []PlayerMatchStat
	Won     bool
}

// Match holds both sides of a scoreboard. Teams[0] is always the winning
// side; the source table lists winners in rows 0-4.
type Match struct {
	Teams    [2]Team
	MatchURL string
}

// MatchAggregate is the per-side average of the six tracked metrics for one
// match. Averages are nil when no team member contributed a value.
type MatchAggregate struct {
	MatchURL string

	WinAvgLeetifyRating       *float64
	WinAvgPersonalPerformance *float64
	WinAvgHLTVRating          *float64
	WinAvgKD                  *float64
	WinAvgAim                 *float64
	WinAvgUtility             *float64

	LossAvgLeetifyRating       *float64
	LossAvgPersonalPerformance *float64
	LossAvgHLTVRating          *float64
	LossAvgKD                  *float64
	LossAvgAim                 *float64
	LossAvgUtility             *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamObservation is one side of one persisted match, flattened for the
// correlation pass. Won is 1 for the winning side, 0 for the losing side.
type TeamObservation struct {
	LeetifyRating *float64
	HLTVRating    *float64
	KD            *float64
	Aim           *float64
	Utility       *float64
	Won           int
}

// CorrelationReport holds the Pearson coefficient of each metric against the
// win indicator across all team observations.
type CorrelationReport struct {
	LeetifyRating float64 `json:"leetify_rating"`
	HLTVRating    float64 `json:"hltv_rating"`
	KD            float64 `json:"kd"`
	Aim           float64 `json:"aim"`
	Utility       float64 `json:"utility"`
}

// PlayerScatterPoint is a per-player mean over every persisted row for that
// player. Metrics the player never reported come back as 0.
type PlayerScatterPoint struct {
	SteamID    string  `json:"steam_id"`
	AvgLeetify float64 `json:"avg_leetify_rating"`
	AvgHLTV    float64 `json:"avg_hltv_rating"`
	AvgKD      float64 `json:"avg_kd"`
	AvgAim     float64 `json:"avg_aim"`
	AvgUtility float64 `json:"avg_utility"`
	AvgWon     float64 `json:"avg_won"`
}
