/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage persists game results and room state snapshots to
// PostgreSQL. The engine treats every call as best-effort, so this package
// never needs to guarantee durability beyond what a single query gives.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Seednode/puzzlebox/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	room_code text NOT NULL,
	level_id text NOT NULL,
	outcome text NOT NULL,
	reason text NOT NULL DEFAULT '',
	elapsed_seconds integer NOT NULL,
	glitch_final double precision NOT NULL,
	puzzles_completed integer NOT NULL,
	player_names text[] NOT NULL,
	played_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS room_snapshots (
	room_code text PRIMARY KEY,
	state jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
`

// ErrNoSnapshot is returned when a room has no persisted state.
var ErrNoSnapshot = errors.New("no snapshot for room")

// Postgres implements game.GameStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect opens a pool against the given connection string and bootstraps the
// schema.
func Connect(ctx context.Context, databaseURL string, log zerolog.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	log.Info().Msg("connected to database")
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) SaveResult(ctx context.Context, result game.GameResult) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO game_results
			(room_code, level_id, outcome, reason, elapsed_seconds, glitch_final, puzzles_completed, player_names, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		result.RoomCode,
		result.LevelID,
		string(result.Outcome),
		string(result.Reason),
		result.ElapsedSeconds,
		result.GlitchFinal,
		result.PuzzlesCompleted,
		result.PlayerNames,
		result.PlayedAt,
	)
	return err
}

func (p *Postgres) SaveSnapshot(ctx context.Context, roomCode string, state []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO room_snapshots (room_code, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (room_code) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		roomCode, state,
	)
	return err
}

func (p *Postgres) LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error) {
	var state []byte
	err := p.pool.QueryRow(ctx,
		`SELECT state FROM room_snapshots WHERE room_code = $1`,
		roomCode,
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (p *Postgres) DeleteSnapshot(ctx context.Context, roomCode string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM room_snapshots WHERE room_code = $1`,
		roomCode,
	)
	return err
}

// PruneSnapshots removes snapshots older than the given age. Called
// periodically so rows for reaped rooms do not accumulate.
func (p *Postgres) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM room_snapshots WHERE updated_at < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
