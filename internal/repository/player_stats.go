package repository

import (
	"context"
	"fmt"

	"cs2-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type PlayerStatsRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPlayerStatsRepository(db *sqlx.DB, logger zerolog.Logger) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db, logger: logger}
}

// Save inserts one scoreboard row for a subject player. The (steam_id,
// match_url) pair is the natural key; replays of the same match are no-ops.
func (r *PlayerStatsRepository) Save(ctx context.Context, stat *domain.PlayerMatchStat) error {
	const query = `
		INSERT OR IGNORE INTO player_stats
			(steam_id, match_url, leetify_rating, personal_performance, hltv_rating, kd, adr, aim, utility, won)
		VALUES
			(:steam_id, :match_url, :leetify_rating, :personal_performance, :hltv_rating, :kd, :adr, :aim, :utility, :won)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]any{
		"steam_id":             stat.SteamID,
		"match_url":            stat.MatchURL,
		"leetify_rating":       stat.LeetifyRating,
		"personal_performance": stat.PersonalPerformance,
		"hltv_rating":          stat.HLTVRating,
		"kd":                   stat.KD,
		"adr":                  stat.ADR,
		"aim":                  stat.Aim,
		"utility":              stat.Utility,
		"won":                  stat.Won,
	})
	if err != nil {
		r.logger.Error().Err(err).
			Str("steam_id", stat.SteamID).
			Str("match_url", stat.MatchURL).
			Msg("failed to save player stats")
		return fmt.Errorf("failed to save player stats %s: %w", stat.SteamID, err)
	}

	return nil
}

type scatterRow struct {
	SteamID    string  `db:"steam_id"`
	AvgLeetify float64 `db:"avg_leetify"`
	AvgHLTV    float64 `db:"avg_hltv"`
	AvgKD      float64 `db:"avg_kd"`
	AvgAim     float64 `db:"avg_aim"`
	AvgUtility float64 `db:"avg_utility"`
	AvgWon     float64 `db:"avg_won"`
}

// GroupedAverages returns per-player means across every persisted row.
// SQL AVG skips NULL cells; players with no values at all for a metric come
// back as 0 via COALESCE, which mirrors how the read endpoint has always
// reported them.
func (r *PlayerStatsRepository) GroupedAverages(ctx context.Context) ([]domain.PlayerScatterPoint, error) {
	const query = `
		SELECT
			steam_id,
			COALESCE(AVG(leetify_rating), 0) AS avg_leetify,
			COALESCE(AVG(hltv_rating), 0)    AS avg_hltv,
			COALESCE(AVG(kd), 0)             AS avg_kd,
			COALESCE(AVG(aim), 0)            AS avg_aim,
			COALESCE(AVG(utility), 0)        AS avg_utility,
			COALESCE(AVG(won), 0)            AS avg_won
		FROM player_stats
		GROUP BY steam_id`

	var rows []scatterRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load grouped player stats: %w", err)
	}

	points := make([]domain.PlayerScatterPoint, len(rows))
	for i, row := range rows {
		points[i] = domain.PlayerScatterPoint{
			SteamID:    row.SteamID,
			AvgLeetify: row.AvgLeetify,
			AvgHLTV:    row.AvgHLTV,
			AvgKD:      row.AvgKD,
			AvgAim:     row.AvgAim,
			AvgUtility: row.AvgUtility,
			AvgWon:     row.AvgWon,
		}
	}
	return points, nil
}
