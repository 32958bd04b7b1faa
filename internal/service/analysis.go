package service

import (
	"context"
	"math"

	"cs2-tracker/internal/constants"
	"cs2-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ObservationStore interface {
	TeamObservations(ctx context.Context) ([]domain.TeamObservation, error)
}

type ScatterStore interface {
	GroupedAverages(ctx context.Context) ([]domain.PlayerScatterPoint, error)
}

// Analysis reads only persisted state: team aggregates for the win/loss
// correlations and per-player rows for the scatter means.
type Analysis struct {
	observations ObservationStore
	scatter      ScatterStore
	logger       zerolog.Logger
}

func NewAnalysis(observations ObservationStore, scatter ScatterStore, logger zerolog.Logger) *Analysis {
	return &Analysis{observations: observations, scatter: scatter, logger: logger}
}

type StatsReport struct {
	Pearson domain.CorrelationReport    `json:"pearson"`
	Scatter []domain.PlayerScatterPoint `json:"scatter"`
}

// Report computes both analysis outputs. The two reads are independent, so
// they run concurrently.
func (a *Analysis) Report(ctx context.Context) (*StatsReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	var observations []domain.TeamObservation
	var points []domain.PlayerScatterPoint

	g.Go(func() error {
		var err error
		observations, err = a.observations.TeamObservations(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		points, err = a.scatter.GroupedAverages(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.Error().Err(err).Msg("failed to load analysis inputs")
		return nil, err
	}

	report := &StatsReport{
		Pearson: Correlations(observations),
		Scatter: points,
	}

	a.logger.Info().
		Int("observations", len(observations)).
		Int("players", len(points)).
		Msg("analysis report computed")
	return report, nil
}

// Correlations computes the Pearson coefficient of each tracked metric
// against the binary win indicator across all team observations.
func Correlations(observations []domain.TeamObservation) domain.CorrelationReport {
	return domain.CorrelationReport{
		LeetifyRating: pearson(observations, func(o domain.TeamObservation) *float64 { return o.LeetifyRating }),
		HLTVRating:    pearson(observations, func(o domain.TeamObservation) *float64 { return o.HLTVRating }),
		KD:            pearson(observations, func(o domain.TeamObservation) *float64 { return o.KD }),
		Aim:           pearson(observations, func(o domain.TeamObservation) *float64 { return o.Aim }),
		Utility:       pearson(observations, func(o domain.TeamObservation) *float64 { return o.Utility }),
	}
}

// pearson is the standard product-moment coefficient over the pairs
// (metric, won). Observations with a nil metric are skipped in both passes.
// A metric or outcome with no variance yields 0 instead of dividing by zero,
// keeping the report always computable.
func pearson(observations []domain.TeamObservation, metric func(domain.TeamObservation) *float64) float64 {
	var metricSum, wonSum float64
	var count int

	for _, o := range observations {
		if v := metric(o); v != nil {
			metricSum += *v
			wonSum += float64(o.Won)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	metricMean := metricSum / float64(count)
	wonMean := wonSum / float64(count)

	var numerator, denomX, denomY float64
	for _, o := range observations {
		v := metric(o)
		if v == nil {
			continue
		}
		dx := *v - metricMean
		dy := float64(o.Won) - wonMean
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	if denomX <= 0 || denomY <= 0 {
		return 0
	}
	return numerator / math.Sqrt(denomX*denomY)
}
