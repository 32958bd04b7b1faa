package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cs2-tracker/internal/api"
	"cs2-tracker/internal/config"
	"cs2-tracker/internal/domain"
	"cs2-tracker/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validGameID = strings.Repeat("a", 36)

type fakeFaceit struct {
	pages       map[int]*api.LeaderboardResponse
	pageErr     map[int]error
	profiles    map[string]*api.ProfileResponse
	profileErrs map[string]error
	pageCalls   []int
}

func (f *fakeFaceit) GetLeaderboard(_ context.Context, _ string, offset, _ int) (*api.LeaderboardResponse, error) {
	f.pageCalls = append(f.pageCalls, offset)
	if err := f.pageErr[offset]; err != nil {
		return nil, err
	}
	if page, ok := f.pages[offset]; ok {
		return page, nil
	}
	return &api.LeaderboardResponse{}, nil
}

func (f *fakeFaceit) GetProfile(_ context.Context, playerID string) (*api.ProfileResponse, error) {
	if err := f.profileErrs[playerID]; err != nil {
		return nil, err
	}
	if profile, ok := f.profiles[playerID]; ok {
		return profile, nil
	}
	return nil, errors.New("unknown player")
}

type fakeLeetify struct {
	profiles map[string]*api.LeetifyProfileResponse
	errs     map[string]error
}

func (f *fakeLeetify) GetProfile(_ context.Context, steamID string) (*api.LeetifyProfileResponse, error) {
	if err := f.errs[steamID]; err != nil {
		return nil, err
	}
	if profile, ok := f.profiles[steamID]; ok {
		return profile, nil
	}
	return &api.LeetifyProfileResponse{}, nil
}

func (f *fakeLeetify) MatchURL(gameID string) string {
	return "https://leetify.test/match/" + gameID
}

type fakeSession struct {
	rows    map[string][][]string
	errs    map[string]error
	scrapes []string
	closed  bool
}

func (f *fakeSession) ScrapeMatch(_ context.Context, matchURL string) ([][]string, error) {
	f.scrapes = append(f.scrapes, matchURL)
	if err := f.errs[matchURL]; err != nil {
		return nil, err
	}
	return f.rows[matchURL], nil
}

func (f *fakeSession) Close() { f.closed = true }

type fakePlayerStore struct {
	saved []domain.Player
	err   error
}

func (f *fakePlayerStore) Save(_ context.Context, player *domain.Player) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *player)
	return nil
}

type fakeStatStore struct {
	saved []domain.PlayerMatchStat
}

func (f *fakeStatStore) Save(_ context.Context, stat *domain.PlayerMatchStat) error {
	f.saved = append(f.saved, *stat)
	return nil
}

type fakeMatchStore struct {
	aggregates []domain.MatchAggregate
	existing   map[string]bool
}

func (f *fakeMatchStore) SaveAggregate(_ context.Context, agg *domain.MatchAggregate) error {
	f.aggregates = append(f.aggregates, *agg)
	return nil
}

func (f *fakeMatchStore) HasAggregate(_ context.Context, matchURL string) (bool, error) {
	return f.existing[matchURL], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Region:             "EU",
		LeaderboardMaxRank: 100,
		LeaderboardPage:    50,
	}
}

func fullTable(subject string) [][]string {
	rows := make([][]string, 0, 10)
	for i := 0; i < 10; i++ {
		id := "player-" + strings.Repeat("x", i+1)
		if i == 2 {
			id = subject
		}
		rows = append(rows, []string{id, "1.0", "1.0", "1.0", "1.5", "80", "70", "60"})
	}
	return rows
}

type pipelineFixture struct {
	faceit  *fakeFaceit
	leetify *fakeLeetify
	session *fakeSession
	players *fakePlayerStore
	stats   *fakeStatStore
	matches *fakeMatchStore
}

func newPipelineFixture() *pipelineFixture {
	return &pipelineFixture{
		faceit:  &fakeFaceit{pages: map[int]*api.LeaderboardResponse{}, pageErr: map[int]error{}, profiles: map[string]*api.ProfileResponse{}, profileErrs: map[string]error{}},
		leetify: &fakeLeetify{profiles: map[string]*api.LeetifyProfileResponse{}, errs: map[string]error{}},
		session: &fakeSession{rows: map[string][][]string{}, errs: map[string]error{}},
		players: &fakePlayerStore{},
		stats:   &fakeStatStore{},
		matches: &fakeMatchStore{existing: map[string]bool{}},
	}
}

func (fx *pipelineFixture) pipeline(cfg *config.Config, sessionErr error) *Pipeline {
	newSession := func(context.Context) (ScrapeSession, error) {
		if sessionErr != nil {
			return nil, sessionErr
		}
		return fx.session, nil
	}
	return NewPipeline(cfg, fx.faceit, fx.leetify, newSession, fx.players, fx.stats, fx.matches, metrics.New(), zerolog.Nop())
}

func (fx *pipelineFixture) addRankedPlayer(playerID, steamID string, gameIDs ...string) {
	fx.faceit.pages[0] = &api.LeaderboardResponse{Items: []api.LeaderboardItem{{PlayerID: playerID}}}
	fx.faceit.profiles[playerID] = &api.ProfileResponse{
		PlayerID:  playerID,
		Nickname:  "nick-" + playerID,
		Country:   "se",
		SteamID64: steamID,
		FaceitURL: "https://www.faceit.com/{lang}/players/" + playerID,
	}
	games := make([]api.LeetifyGame, len(gameIDs))
	for i, id := range gameIDs {
		games[i] = api.LeetifyGame{GameID: id}
	}
	fx.leetify.profiles[steamID] = &api.LeetifyProfileResponse{IsSensitiveDataVisible: true, Games: games}
}

func TestPipelineHappyPath(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID)

	matchURL := fx.leetify.MatchURL(validGameID)
	fx.session.rows[matchURL] = fullTable("765-subject")

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, fx.players.saved, 1)
	assert.Equal(t, "765-subject", fx.players.saved[0].SteamID64)
	assert.Equal(t, "https://www.faceit.com/en/players/p1", fx.players.saved[0].FaceitURL,
		"lang placeholder must be substituted before persistence")

	require.Len(t, fx.stats.saved, 1)
	assert.Equal(t, "765-subject", fx.stats.saved[0].SteamID)
	assert.True(t, fx.stats.saved[0].Won, "subject sat in row 2, the winning side")

	require.Len(t, fx.matches.aggregates, 1)
	assert.Equal(t, matchURL, fx.matches.aggregates[0].MatchURL)

	assert.True(t, fx.session.closed, "browser session must be closed after the run")
}

func TestPipelineBadLeaderboardPageDoesNotStopScan(t *testing.T) {
	fx := newPipelineFixture()
	fx.faceit.pageErr[0] = errors.New("upstream 500")
	fx.faceit.pages[50] = &api.LeaderboardResponse{Items: []api.LeaderboardItem{{PlayerID: "p2"}}}
	fx.faceit.profiles["p2"] = &api.ProfileResponse{PlayerID: "p2", SteamID64: "765-two"}
	fx.leetify.profiles["765-two"] = &api.LeetifyProfileResponse{IsSensitiveDataVisible: true}

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []int{0, 50}, fx.faceit.pageCalls, "scan must advance past the failing page")
	assert.Len(t, fx.players.saved, 1)
}

func TestFetchProfilesAbortsBatchOnFirstFailure(t *testing.T) {
	// Pins the inherited policy: one failed lookup zeroes the whole batch
	// instead of skipping the failing player.
	fx := newPipelineFixture()
	fx.faceit.pages[0] = &api.LeaderboardResponse{Items: []api.LeaderboardItem{
		{PlayerID: "good"}, {PlayerID: "bad"}, {PlayerID: "also-good"},
	}}
	fx.faceit.profiles["good"] = &api.ProfileResponse{PlayerID: "good", SteamID64: "765-good"}
	fx.faceit.profileErrs["bad"] = errors.New("404")
	fx.faceit.profiles["also-good"] = &api.ProfileResponse{PlayerID: "also-good", SteamID64: "765-also"}

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, fx.players.saved, "a single profile failure drops the entire batch")
}

func TestPipelineScrapeFailureIsolatedPerMatch(t *testing.T) {
	otherGameID := strings.Repeat("b", 36)
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID, otherGameID)

	badURL := fx.leetify.MatchURL(validGameID)
	goodURL := fx.leetify.MatchURL(otherGameID)
	fx.session.errs[badURL] = errors.New("selector timeout")
	fx.session.rows[goodURL] = fullTable("765-subject")

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{badURL, goodURL}, fx.session.scrapes)
	require.Len(t, fx.matches.aggregates, 1)
	assert.Equal(t, goodURL, fx.matches.aggregates[0].MatchURL)
}

func TestPipelineDiscardsShortScoreboards(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID)

	matchURL := fx.leetify.MatchURL(validGameID)
	fx.session.rows[matchURL] = fullTable("765-subject")[:7]

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, fx.matches.aggregates, "a partial table is not a valid match")
	assert.Empty(t, fx.stats.saved, "nothing from a discarded match is persisted")
}

func TestPipelineDiscardsTablesWithEmptyRows(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID)

	table := fullTable("765-subject")
	table[6] = []string{}
	fx.session.rows[fx.leetify.MatchURL(validGameID)] = table

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, fx.matches.aggregates, "ten raw rows with an empty row are only nine players")
	assert.Empty(t, fx.stats.saved, "nothing from a discarded match is persisted")
}

func TestPipelineSkipsAlreadyAggregatedMatches(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID)
	fx.matches.existing[fx.leetify.MatchURL(validGameID)] = true

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, fx.session.scrapes, "a known match is not re-scraped")
}

func TestPipelineRespectsVisibilityFlag(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-private", validGameID)
	fx.leetify.profiles["765-private"] = &api.LeetifyProfileResponse{
		IsSensitiveDataVisible: false,
		Games:                  []api.LeetifyGame{{GameID: validGameID}},
	}

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, fx.session.scrapes)
	assert.Len(t, fx.players.saved, 1, "the profile itself is still recorded")
}

func TestPipelineSkipsMalformedMatchIDs(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", "too-short", validGameID)
	fx.session.rows[fx.leetify.MatchURL(validGameID)] = fullTable("765-subject")

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{fx.leetify.MatchURL(validGameID)}, fx.session.scrapes)
}

func TestPipelineCapsMatchHistory(t *testing.T) {
	gameIDs := make([]string, 40)
	for i := range gameIDs {
		gameIDs[i] = strings.Repeat(string(rune('a'+i%26)), 36)
	}
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", gameIDs...)

	p := fx.pipeline(testConfig(), nil)
	require.NoError(t, p.Run(context.Background()))

	assert.LessOrEqual(t, len(fx.session.scrapes), 30)
}

func TestPipelineBrowserLaunchFailureIsFatal(t *testing.T) {
	fx := newPipelineFixture()
	p := fx.pipeline(testConfig(), errors.New("no chrome binary"))

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser session")
}

func TestPipelineStopsOnContextCancel(t *testing.T) {
	fx := newPipelineFixture()
	fx.addRankedPlayer("p1", "765-subject", validGameID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fx.pipeline(testConfig(), nil)
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, fx.session.closed)
}
