package service

import (
	"context"
	"testing"

	"cs2-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestPearsonConstantMetricIsZero(t *testing.T) {
	observations := []domain.TeamObservation{
		{KD: ptr(1.5), Won: 1},
		{KD: ptr(1.5), Won: 0},
		{KD: ptr(1.5), Won: 1},
		{KD: ptr(1.5), Won: 0},
	}

	report := Correlations(observations)
	assert.Zero(t, report.KD, "zero variance must yield 0, not NaN")
}

func TestPearsonConstantOutcomeIsZero(t *testing.T) {
	observations := []domain.TeamObservation{
		{KD: ptr(1.0), Won: 1},
		{KD: ptr(2.0), Won: 1},
	}

	report := Correlations(observations)
	assert.Zero(t, report.KD)
}

func TestPearsonNoObservationsIsZero(t *testing.T) {
	report := Correlations(nil)
	assert.Zero(t, report.LeetifyRating)
	assert.Zero(t, report.HLTVRating)
	assert.Zero(t, report.KD)
	assert.Zero(t, report.Aim)
	assert.Zero(t, report.Utility)
}

func TestPearsonPerfectSeparation(t *testing.T) {
	// Winners always score 2, losers always 1: correlation is exactly +1.
	observations := []domain.TeamObservation{
		{KD: ptr(2), Won: 1},
		{KD: ptr(1), Won: 0},
		{KD: ptr(2), Won: 1},
		{KD: ptr(1), Won: 0},
	}

	report := Correlations(observations)
	assert.InDelta(t, 1, report.KD, 1e-9)
}

func TestPearsonInverseSeparation(t *testing.T) {
	observations := []domain.TeamObservation{
		{Utility: ptr(1), Won: 1},
		{Utility: ptr(2), Won: 0},
		{Utility: ptr(1), Won: 1},
		{Utility: ptr(2), Won: 0},
	}

	report := Correlations(observations)
	assert.InDelta(t, -1, report.Utility, 1e-9)
}

func TestPearsonSkipsNilObservations(t *testing.T) {
	// The nil rows would flip the sign if their absence were treated as 0.
	observations := []domain.TeamObservation{
		{Aim: ptr(2), Won: 1},
		{Aim: ptr(1), Won: 0},
		{Aim: nil, Won: 1},
		{Aim: nil, Won: 0},
	}

	report := Correlations(observations)
	assert.InDelta(t, 1, report.Aim, 1e-9)
}

type fakeObservationStore struct {
	observations []domain.TeamObservation
	err          error
}

func (f *fakeObservationStore) TeamObservations(context.Context) ([]domain.TeamObservation, error) {
	return f.observations, f.err
}

type fakeScatterStore struct {
	points []domain.PlayerScatterPoint
	err    error
}

func (f *fakeScatterStore) GroupedAverages(context.Context) ([]domain.PlayerScatterPoint, error) {
	return f.points, f.err
}

func TestReportCombinesBothOutputs(t *testing.T) {
	analysis := NewAnalysis(
		&fakeObservationStore{observations: []domain.TeamObservation{
			{KD: ptr(2), Won: 1},
			{KD: ptr(1), Won: 0},
		}},
		&fakeScatterStore{points: []domain.PlayerScatterPoint{
			{SteamID: "765", AvgKD: 1.5, AvgWon: 0.5},
		}},
		zerolog.Nop(),
	)

	report, err := analysis.Report(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1, report.Pearson.KD, 1e-9)
	require.Len(t, report.Scatter, 1)
	assert.Equal(t, "765", report.Scatter[0].SteamID)
}

func TestReportPropagatesReadErrors(t *testing.T) {
	analysis := NewAnalysis(
		&fakeObservationStore{err: assert.AnError},
		&fakeScatterStore{},
		zerolog.Nop(),
	)

	_, err := analysis.Report(context.Background())
	assert.Error(t, err)
}
