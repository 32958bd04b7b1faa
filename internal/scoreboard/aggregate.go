package scoreboard

import (
	"cs2-tracker/internal/domain"
)

// Aggregate reduces a match to one per-side average per tracked metric. Each
// average divides by the count of players that actually reported the metric,
// not the team size, so a side with two blank cells still gets a correct mean
// over the remaining three. A side with no contributors at all yields nil.
func Aggregate(match domain.Match) domain.MatchAggregate {
	win := match.Teams[0].Players
	loss := match.Teams[1].Players

	return domain.MatchAggregate{
		MatchURL: match.MatchURL,

		WinAvgLeetifyRating:       teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.LeetifyRating }),
		WinAvgPersonalPerformance: teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.PersonalPerformance }),
		WinAvgHLTVRating:          teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.HLTVRating }),
		WinAvgKD:                  teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.KD }),
		WinAvgAim:                 teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.Aim }),
		WinAvgUtility:             teamAverage(win, func(s domain.PlayerMatchStat) *float64 { return s.Utility }),

		LossAvgLeetifyRating:       teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.LeetifyRating }),
		LossAvgPersonalPerformance: teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.PersonalPerformance }),
		LossAvgHLTVRating:          teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.HLTVRating }),
		LossAvgKD:                  teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.KD }),
		LossAvgAim:                 teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.Aim }),
		LossAvgUtility:             teamAverage(loss, func(s domain.PlayerMatchStat) *float64 { return s.Utility }),
	}
}

func teamAverage(players []domain.PlayerMatchStat, metric func(domain.PlayerMatchStat) *float64) *float64 {
	var sum float64
	var count int

	for _, player := range players {
		if v := metric(player); v != nil {
			sum += *v
			count++
		}
	}

	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	return &avg
}
