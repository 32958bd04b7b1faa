package metrics

import (
	"sync/atomic"

	"go.uber.org/fx"
)

// Metrics counts pipeline progress for the /metrics endpoint. All counters
// are monotonic for the process lifetime.
type Metrics struct {
	runsStarted      atomic.Int64
	runsCompleted    atomic.Int64
	pagesFetched     atomic.Int64
	playersResolved  atomic.Int64
	matchesScraped   atomic.Int64
	matchesSaved     atomic.Int64
	scrapeFailures   atomic.Int64
	discardedMatches atomic.Int64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RunStarted()     { m.runsStarted.Add(1) }
func (m *Metrics) RunCompleted()   { m.runsCompleted.Add(1) }
func (m *Metrics) PageFetched()    { m.pagesFetched.Add(1) }
func (m *Metrics) PlayerResolved() { m.playersResolved.Add(1) }
func (m *Metrics) MatchScraped()   { m.matchesScraped.Add(1) }
func (m *Metrics) MatchSaved()     { m.matchesSaved.Add(1) }
func (m *Metrics) ScrapeFailure()  { m.scrapeFailures.Add(1) }
func (m *Metrics) MatchDiscarded() { m.discardedMatches.Add(1) }

type Snapshot struct {
	RunsStarted      int64 `json:"runs_started"`
	RunsCompleted    int64 `json:"runs_completed"`
	PagesFetched     int64 `json:"pages_fetched"`
	PlayersResolved  int64 `json:"players_resolved"`
	MatchesScraped   int64 `json:"matches_scraped"`
	MatchesSaved     int64 `json:"matches_saved"`
	ScrapeFailures   int64 `json:"scrape_failures"`
	DiscardedMatches int64 `json:"discarded_matches"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RunsStarted:      m.runsStarted.Load(),
		RunsCompleted:    m.runsCompleted.Load(),
		PagesFetched:     m.pagesFetched.Load(),
		PlayersResolved:  m.playersResolved.Load(),
		MatchesScraped:   m.matchesScraped.Load(),
		MatchesSaved:     m.matchesSaved.Load(),
		ScrapeFailures:   m.scrapeFailures.Load(),
		DiscardedMatches: m.discardedMatches.Load(),
	}
}

var Module = fx.Provide(New)
