package service

import (
	"context"
	"fmt"

	"cs2-tracker/internal/api"
	"cs2-tracker/internal/config"
	"cs2-tracker/internal/constants"
	"cs2-tracker/internal/domain"
	"cs2-tracker/internal/metrics"
	"cs2-tracker/internal/scoreboard"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// FaceitAPI is the slice of the FACEIT client the pipeline needs.
type FaceitAPI interface {
	GetLeaderboard(ctx context.Context, region string, offset, limit int) (*api.LeaderboardResponse, error)
	GetProfile(ctx context.Context, playerID string) (*api.ProfileResponse, error)
}

// LeetifyAPI discovers recent matches for a steam ID.
type LeetifyAPI interface {
	GetProfile(ctx context.Context, steamID64 string) (*api.LeetifyProfileResponse, error)
	MatchURL(gameID string) string
}

// ScrapeSession is one live browser session. The pipeline owns its lifetime;
// scrape calls borrow it and must not retain it.
type ScrapeSession interface {
	ScrapeMatch(ctx context.Context, matchURL string) ([][]string, error)
	Close()
}

// SessionFactory opens the browser session for one pipeline run.
type SessionFactory func(ctx context.Context) (ScrapeSession, error)

type PlayerStore interface {
	Save(ctx context.Context, player *domain.Player) error
}

type MatchStore interface {
	SaveAggregate(ctx context.Context, agg *domain.MatchAggregate) error
	HasAggregate(ctx context.Context, matchURL string) (bool, error)
}

// Pipeline walks the regional leaderboard, resolves each ranked player,
// scrapes their recent matches and persists per-player rows and per-match
// team aggregates. Everything runs on a single logical thread; the upstream
// APIs and the browser are shared, rate-sensitive resources.
type Pipeline struct {
	cfg        *config.Config
	faceit     FaceitAPI
	leetify    LeetifyAPI
	newSession SessionFactory
	players    PlayerStore
	stats      scoreboard.StatSaver
	matches    MatchStore
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewPipeline(
	cfg *config.Config,
	faceit FaceitAPI,
	leetify LeetifyAPI,
	newSession SessionFactory,
	players PlayerStore,
	stats scoreboard.StatSaver,
	matches MatchStore,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		faceit:     faceit,
		leetify:    leetify,
		newSession: newSession,
		players:    players,
		stats:      stats,
		matches:    matches,
		metrics:    m,
		logger:     logger,
	}
}

// Run executes one full leaderboard scan. Per-player and per-match failures
// are logged and skipped; the only errors that escape are a browser that
// cannot be opened at all and context cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	logger := p.logger.With().Str("run_id", runID).Logger()

	p.metrics.RunStarted()
	logger.Info().Str("region", p.cfg.Region).Int("max_rank", p.cfg.LeaderboardMaxRank).Msg("pipeline run starting")

	session, err := p.newSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	for offset := 0; offset < p.cfg.LeaderboardMaxRank; offset += p.cfg.LeaderboardPage {
		if err := ctx.Err(); err != nil {
			return err
		}

		playerIDs := p.fetchLeaderboardPage(ctx, logger, offset)
		p.metrics.PageFetched()
		if len(playerIDs) == 0 {
			logger.Warn().Int("offset", offset).Msg("leaderboard page yielded no players, moving on")
			continue
		}

		for _, player := range p.fetchProfiles(ctx, logger, playerIDs) {
			p.processPlayer(ctx, logger, session, player)
		}
	}

	p.metrics.RunCompleted()
	logger.Info().Msg("pipeline run completed")
	return nil
}

// fetchLeaderboardPage returns one page of ranked player IDs. A bad page is
// an empty page, never a run-stopping error; the scan has more pages to try.
func (p *Pipeline) fetchLeaderboardPage(ctx context.Context, logger zerolog.Logger, offset int) []string {
	apiCtx, cancel := context.WithTimeout(ctx, constants.FaceitAPITimeout)
	defer cancel()

	resp, err := p.faceit.GetLeaderboard(apiCtx, p.cfg.Region, offset, p.cfg.LeaderboardPage)
	if err != nil {
		logger.Error().Err(err).Int("offset", offset).Msg("failed to fetch leaderboard page")
		return nil
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		ids = append(ids, item.PlayerID)
	}

	logger.Debug().Int("offset", offset).Int("count", len(ids)).Msg("leaderboard page fetched")
	return ids
}

// fetchProfiles resolves player IDs to profiles one at a time. The first
// failed lookup zeroes the whole batch instead of skipping the one player;
// every other stage skips per unit. TestFetchProfilesAbortsBatchOnFirstFailure
// pins this so a change here is a conscious one.
func (p *Pipeline) fetchProfiles(ctx context.Context, logger zerolog.Logger, playerIDs []string) []domain.Player {
	players := make([]domain.Player, 0, len(playerIDs))

	for _, id := range playerIDs {
		apiCtx, cancel := context.WithTimeout(ctx, constants.FaceitAPITimeout)
		profile, err := p.faceit.GetProfile(apiCtx, id)
		cancel()
		if err != nil {
			logger.Error().Err(err).Str("player_id", id).Msg("failed to fetch profile, dropping batch")
			return nil
		}

		players = append(players, domain.Player{
			PlayerID:  profile.PlayerID,
			Nickname:  profile.Nickname,
			Country:   profile.Country,
			AvatarURL: profile.Avatar,
			FaceitURL: profile.ResolvedFaceitURL(),
			SteamID64: profile.SteamID64,
		})
		p.metrics.PlayerResolved()
	}

	return players
}

func (p *Pipeline) processPlayer(ctx context.Context, logger zerolog.Logger, session ScrapeSession, player domain.Player) {
	logger = logger.With().Str("steam_id", player.SteamID64).Str("nickname", player.Nickname).Logger()

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	err := p.players.Save(dbCtx, &player)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save player, continuing")
	}

	for _, gameID := range p.fetchMatchIDs(ctx, logger, player.SteamID64) {
		ref := domain.MatchReference{
			MatchURL:  p.leetify.MatchURL(gameID),
			SteamID64: player.SteamID64,
		}
		p.processMatch(ctx, logger, session, ref)
	}
}

// fetchMatchIDs returns the player's recent match IDs, bounded to the most
// recent 30. Players who keep their data private yield nothing; that is their
// setting, not an error.
func (p *Pipeline) fetchMatchIDs(ctx context.Context, logger zerolog.Logger, steamID64 string) []string {
	apiCtx, cancel := context.WithTimeout(ctx, constants.LeetifyAPITimeout)
	defer cancel()

	profile, err := p.leetify.GetProfile(apiCtx, steamID64)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch match history")
		return nil
	}

	if !profile.IsSensitiveDataVisible {
		logger.Debug().Msg("match history not visible, skipping player")
		return nil
	}

	games := profile.Games
	if len(games) > constants.MatchHistoryLimit {
		games = games[:constants.MatchHistoryLimit]
	}

	ids := make([]string, 0, len(games))
	for _, game := range games {
		if len(game.GameID) < constants.MinMatchIDLength {
			logger.Warn().Str("game_id", game.GameID).Msg("match id too short, skipping")
			continue
		}
		ids = append(ids, game.GameID)
	}

	return ids
}

func (p *Pipeline) processMatch(ctx context.Context, logger zerolog.Logger, session ScrapeSession, ref domain.MatchReference) {
	logger = logger.With().Str("match_url", ref.MatchURL).Logger()

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	seen, err := p.matches.HasAggregate(dbCtx, ref.MatchURL)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to check for existing aggregate")
	} else if seen {
		logger.Debug().Msg("match already aggregated, skipping scrape")
		return
	}

	rows, err := session.ScrapeMatch(ctx, ref.MatchURL)
	if err != nil {
		p.metrics.ScrapeFailure()
		logger.Error().Err(err).Msg("failed to scrape match")
		return
	}
	p.metrics.MatchScraped()

	// The ten-row gate counts valid rows; an empty row among ten raw rows is
	// a nine-player table and must not reach the positional team split.
	rows = scoreboard.ValidRows(rows)
	if len(rows) < constants.ScoreboardSize {
		p.metrics.MatchDiscarded()
		logger.Warn().Int("rows", len(rows)).Msg("scoreboard incomplete, discarding match")
		return
	}

	match, err := scoreboard.ParseMatch(ctx, rows, ref, p.stats)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to persist subject player stats")
	}

	agg := scoreboard.Aggregate(match)

	dbCtx, cancel = context.WithTimeout(ctx, constants.DatabaseTimeout)
	err = p.matches.SaveAggregate(dbCtx, &agg)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("failed to save match aggregate")
		return
	}

	p.metrics.MatchSaved()
	logger.Info().Msg("match aggregated and saved")
}
