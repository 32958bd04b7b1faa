package scoreboard

import (
	"context"
	"strconv"
	"strings"

	"cs2-tracker/internal/constants"
	"cs2-tracker/internal/domain"
)

// Column offsets within a scraped scoreboard row. Column 0 is the player
// identity; the rest are metric cells in table order.
const (
	colIdentity            = 0
	colLeetifyRating       = 1
	colPersonalPerformance = 2
	colHLTVRating          = 3
	colKD                  = 4
	colADR                 = 5
	colAim                 = 6
	colUtility             = 7
)

// StatSaver persists one scoreboard row for the subject player.
type StatSaver interface {
	Save(ctx context.Context, stat *domain.PlayerMatchStat) error
}

// ValidRows drops structurally empty rows. Win/loss assignment is positional
// over valid rows, so every size check upstream must count the same filtered
// view this package partitions.
func ValidRows(rows [][]string) [][]string {
	valid := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			valid = append(valid, row)
		}
	}
	return valid
}

// ParseMatch turns raw scoreboard rows into a Match. Empty rows are filtered
// first; of the valid rows, rows 0-4 are the winning team and rows 5-9 the
// losing team; that ordering is how the source table ranks sides, there is no
// explicit win/loss markup to read. The row matching the subject player is
// persisted through saver as a side effect. A save failure is returned but
// does not interrupt parsing.
func ParseMatch(ctx context.Context, rows [][]string, ref domain.MatchReference, saver StatSaver) (domain.Match, error) {
	rows = ValidRows(rows)
	stats := make([]domain.PlayerMatchStat, 0, len(rows))
	var saveErr error

	for i, row := range rows {
		stat := domain.PlayerMatchStat{
			SteamID:             identity(row),
			MatchURL:            ref.MatchURL,
			LeetifyRating:       parseMetric(row, colLeetifyRating),
			PersonalPerformance: parseMetric(row, colPersonalPerformance),
			HLTVRating:          parseMetric(row, colHLTVRating),
			KD:                  parseMetric(row, colKD),
			ADR:                 parseMetric(row, colADR),
			Aim:                 parseMetric(row, colAim),
			Utility:             parseMetric(row, colUtility),
			Won:                 i < constants.TeamSize,
		}

		if stat.SteamID == ref.SteamID64 {
			if err := saver.Save(ctx, &stat); err != nil && saveErr == nil {
				saveErr = err
			}
		}

		stats = append(stats, stat)
	}

	winEnd := min(len(stats), constants.TeamSize)
	lossEnd := min(len(stats), constants.ScoreboardSize)

	return domain.Match{
		Teams: [2]domain.Team{
			{Players: stats[:winEnd], Won: true},
			{Players: stats[winEnd:lossEnd], Won: false},
		},
		MatchURL: ref.MatchURL,
	}, saveErr
}

func identity(row []string) string {
	if row[colIdentity] != "" {
		return row[colIdentity]
	}
	return "Unknown"
}

// parseMetric reads a metric cell as a locale-free float. An absent, empty or
// non-numeric cell yields nil, never zero; zero would be indistinguishable
// from a real value when averaging. A trailing percent sign is tolerated
// because aim and utility render as percentages.
func parseMetric(row []string, col int) *float64 {
	if col >= len(row) {
		return nil
	}

	cell := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row[col]), "%"))
	if cell == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &value
}
