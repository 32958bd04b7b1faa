package repository

import (
	"context"
	"fmt"

	"cs2-tracker/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sqlx.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

// Save inserts a player keyed by steam ID. A player already on file is left
// untouched.
func (r *PlayerRepository) Save(ctx context.Context, player *domain.Player) error {
	const query = `
		INSERT OR IGNORE INTO players (steam_id, player_id, name, country, faceit_url, avatar)
		VALUES (:steam_id, :player_id, :name, :country, :faceit_url, :avatar)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]any{
		"steam_id":   player.SteamID64,
		"player_id":  player.PlayerID,
		"name":       player.Nickname,
		"country":    player.Country,
		"faceit_url": player.FaceitURL,
		"avatar":     player.AvatarURL,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("steam_id", player.SteamID64).Msg("failed to save player")
		return fmt.Errorf("failed to save player %s: %w", player.SteamID64, err)
	}

	return nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM players`); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
