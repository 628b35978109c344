package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"ggst-replays/internal/constants"
	"ggst-replays/internal/domain"
	"ggst-replays/internal/protocol"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ReplayRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewReplayRepository(sqlDB *sql.DB, logger zerolog.Logger) *ReplayRepository {
	return &ReplayRepository{
		db:     sqlDB,
		logger: logger.With().Str("component", "replay_repository").Logger(),
	}
}

const upsertPlayerSQL = `
INSERT INTO players (id, name, updated_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`

const insertMatchSQL = `
INSERT INTO matches (played_at, p1_id, p2_id, floor, p1_character, p2_character, winner, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (played_at, p1_id, p2_id) DO NOTHING`

// UpsertBatch stores matches keyed by their identity. Existing matches are left
// alone; player names are updated to the latest seen.
func (r *ReplayRepository) UpsertBatch(ctx context.Context, matches []domain.Match) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	playerStmt, err := tx.PrepareContext(ctx, upsertPlayerSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer playerStmt.Close()

	matchStmt, err := tx.PrepareContext(ctx, insertMatchSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for i := 0; i < len(matches); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(matches))

		for _, m := range matches[i:end] {
			for _, p := range m.Players {
				if _, err := playerStmt.ExecContext(ctx, formatID(p.ID), p.Name, now); err != nil {
					return 0, fmt.Errorf("failed to upsert player %d: %w", p.ID, err)
				}
			}

			res, err := matchStmt.ExecContext(ctx,
				m.Timestamp.Unix(),
				formatID(m.Players[0].ID),
				formatID(m.Players[1].ID),
				int(m.Floor),
				int(m.Players[0].Character),
				int(m.Players[1].Character),
				int(m.WinnerSide),
				now,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert match %v: %w", m.Key(), err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit matches: %w", err)
	}

	r.logger.Debug().Int("matches", len(matches)).Int("inserted", inserted).Msg("matches upserted")
	return inserted, nil
}

// SaveFailures records the raw bytes of records that failed to decode during one run.
func (r *ReplayRepository) SaveFailures(ctx context.Context, runID string, failures []*protocol.ParseError) error {
	if len(failures) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, f := range failures {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate failure id: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO parse_failures (id, run_id, reason, raw_hex, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, runID, string(f.Reason), f.RawHex(), now,
		)
		if err != nil {
			return fmt.Errorf("failed to save parse failure: %w", err)
		}
	}

	return tx.Commit()
}

type StoredFailure struct {
	ID     string
	RunID  string
	Reason protocol.Reason
	RawHex string
}

func (r *ReplayRepository) FailuresForRun(ctx context.Context, runID string) ([]StoredFailure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, reason, raw_hex FROM parse_failures WHERE run_id = ? ORDER BY created_at, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredFailure
	for rows.Next() {
		var f StoredFailure
		var reason string
		if err := rows.Scan(&f.ID, &f.RunID, &reason, &f.RawHex); err != nil {
			return nil, err
		}
		f.Reason = protocol.Reason(reason)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Recent returns stored matches newest first, with current player names.
func (r *ReplayRepository) Recent(ctx context.Context, limit int) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT m.played_at, m.floor, m.winner,
       m.p1_id, p1.name, m.p1_character,
       m.p2_id, p2.name, m.p2_character
FROM matches m
JOIN players p1 ON p1.id = m.p1_id
JOIN players p2 ON p2.id = m.p2_id
ORDER BY m.played_at DESC, m.p1_id, m.p2_id
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var (
			playedAt      int64
			floor, winner int
			p1ID, p2ID    string
			p1, p2        domain.Player
			c1, c2        int
		)
		if err := rows.Scan(&playedAt, &floor, &winner, &p1ID, &p1.Name, &c1, &p2ID, &p2.Name, &c2); err != nil {
			return nil, err
		}
		if p1.ID, err = parseID(p1ID); err != nil {
			return nil, err
		}
		if p2.ID, err = parseID(p2ID); err != nil {
			return nil, err
		}
		p1.Character = domain.Character(c1)
		p2.Character = domain.Character(c2)

		out = append(out, domain.Match{
			Floor:      domain.Floor(floor),
			Timestamp:  time.Unix(playedAt, 0).UTC(),
			Players:    [2]domain.Player{p1, p2},
			WinnerSide: domain.Side(winner),
		})
	}
	return out, rows.Err()
}

func (r *ReplayRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ids are unsigned 64-bit and stored as text to stay clear of sqlite's signed integers
func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt player id %q: %w", s, err)
	}
	return id, nil
}
