package repository

import (
	"context"
	"fmt"

	"cs2-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sqlx.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

// SaveAggregate inserts one aggregate row keyed by match URL. A second
// aggregate for the same match is ignored.
func (r *MatchRepository) SaveAggregate(ctx context.Context, agg *domain.MatchAggregate) error {
	const query = `
		INSERT OR IGNORE INTO matches (
			match_url,
			w_avg_leetify_rating, w_avg_personal_performance, w_avg_hltv_rating, w_avg_kd, w_avg_aim, w_avg_utility,
			l_avg_leetify_rating, l_avg_personal_performance, l_avg_hltv_rating, l_avg_kd, l_avg_aim, l_avg_utility
		) VALUES (
			:match_url,
			:w_avg_leetify_rating, :w_avg_personal_performance, :w_avg_hltv_rating, :w_avg_kd, :w_avg_aim, :w_avg_utility,
			:l_avg_leetify_rating, :l_avg_personal_performance, :l_avg_hltv_rating, :l_avg_kd, :l_avg_aim, :l_avg_utility
		)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]any{
		"match_url":                  agg.MatchURL,
		"w_avg_leetify_rating":       agg.WinAvgLeetifyRating,
		"w_avg_personal_performance": agg.WinAvgPersonalPerformance,
		"w_avg_hltv_rating":          agg.WinAvgHLTVRating,
		"w_avg_kd":                   agg.WinAvgKD,
		"w_avg_aim":                  agg.WinAvgAim,
		"w_avg_utility":              agg.WinAvgUtility,
		"l_avg_leetify_rating":       agg.LossAvgLeetifyRating,
		"l_avg_personal_performance": agg.LossAvgPersonalPerformance,
		"l_avg_hltv_rating":          agg.LossAvgHLTVRating,
		"l_avg_kd":                   agg.LossAvgKD,
		"l_avg_aim":                  agg.LossAvgAim,
		"l_avg_utility":              agg.LossAvgUtility,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("match_url", agg.MatchURL).Msg("failed to save match aggregate")
		return fmt.Errorf("failed to save match aggregate %s: %w", agg.MatchURL, err)
	}

	return nil
}

// HasAggregate reports whether the match was already processed in an earlier
// run, letting the pipeline skip the scrape entirely.
func (r *MatchRepository) HasAggregate(ctx context.Context, matchURL string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM matches WHERE match_url = ?`, matchURL); err != nil {
		return false, fmt.Errorf("failed to check match aggregate %s: %w", matchURL, err)
	}
	return count > 0, nil
}

type teamObservationRow struct {
	LeetifyRating *float64 `db:"leetify_rating"`
	HLTVRating    *float64 `db:"hltv_rating"`
	KD            *float64 `db:"kd"`
	Aim           *float64 `db:"aim"`
	Utility       *float64 `db:"utility"`
	Won           int      `db:"won"`
}

// TeamObservations flattens every aggregate row into two observations, one
// per side, for the correlation pass.
func (r *MatchRepository) TeamObservations(ctx context.Context) ([]domain.TeamObservation, error) {
	const query = `
		SELECT w_avg_leetify_rating AS leetify_rating,
		       w_avg_hltv_rating    AS hltv_rating,
		       w_avg_kd             AS kd,
		       w_avg_aim            AS aim,
		       w_avg_utility        AS utility,
		       1                    AS won
		FROM matches
		UNION ALL
		SELECT l_avg_leetify_rating,
		       l_avg_hltv_rating,
		       l_avg_kd,
		       l_avg_aim,
		       l_avg_utility,
		       0
		FROM matches`

	var rows []teamObservationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load team observations: %w", err)
	}

	observations := make([]domain.TeamObservation, len(rows))
	for i, row := range rows {
		observations[i] = domain.TeamObservation{
			LeetifyRating: row.LeetifyRating,
			HLTVRating:    row.HLTVRating,
			KD:            row.KD,
			Aim:           row.Aim,
			Utility:       row.Utility,
			Won:           row.Won,
		}
	}
	return observations, nil
}

func (r *MatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM matches`); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}
