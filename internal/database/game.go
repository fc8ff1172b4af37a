// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/m-giraud/ascent/internal/game"
)

// ErrGameNotFound is returned by LoadGameState when no saved game exists for
// the given id.
var ErrGameNotFound = errors.New("game not found")

// SaveGameState upserts the session snapshot into games.game_state as one
// JSON document. Saving an id that already exists overwrites the prior save.
func SaveGameState(ctx context.Context, ownerID uuid.UUID, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal game snapshot: %w", err)
	}

	q := `
		INSERT INTO games (id, owner_id, status, game_state, saved_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id)
		DO UPDATE SET game_state = EXCLUDED.game_state, status = EXCLUDED.status, saved_at = NOW()
	`
	status := "in_progress"
	if snap.GameOver {
		status = "completed"
	}
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, snap.GameID, ownerID, status, data)
		return e
	})
	if err != nil {
		return fmt.Errorf("tx upsert game state: %w", err)
	}
	return nil
}

// LoadGameState reads the snapshot saved under the given game id.
func LoadGameState(ctx context.Context, gameID uuid.UUID) (*game.Snapshot, error) {
	var data []byte
	q := `SELECT game_state FROM games WHERE id = $1`
	err := DB.QueryRow(ctx, q, gameID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game state: %w", err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game snapshot: %w", err)
	}
	return &snap, nil
}

// RecordGameOutcome marks a finished session's row with its outcome. The row
// may not exist when the session was never saved; the upsert covers that.
func RecordGameOutcome(ctx context.Context, gameID, ownerID uuid.UUID, outcome string) error {
	q := `
		INSERT INTO games (id, owner_id, status, outcome, saved_at)
		VALUES ($1, $2, 'completed', $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET status = 'completed', outcome = $3
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID, ownerID, outcome)
		return e
	})
	if err != nil {
		return fmt.Errorf("tx record game outcome: %w", err)
	}
	return nil
}
