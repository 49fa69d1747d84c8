package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"envgate/internal/envdef"
)

// SaveDefinition inserts a definition record into the store.
// Returns whether a new row was inserted.
//
// Definitions are content-addressed, so duplicate saves are an
// idempotent no-op: if a row with the same long_id already exists,
// nothing is written and inserted=false is returned with a nil error.
// A conflict where the short id is taken by different content is a
// SHORT_ID_COLLISION error; the existing row is kept.
//
// Uses ON CONFLICT DO NOTHING plus a follow-up classification select
// inside one transaction, so concurrent saves of the same content never
// produce duplicate rows and never fail each other.
func (s *Store) SaveDefinition(ctx context.Context, def envdef.Definition) (inserted bool, err error) {
	payloadJSON, err := marshalPayload(def.Payload)
	if err != nil {
		return false, fmt.Errorf("save definition: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("save definition: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO env_defs
		(short_id, long_id, payload)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		def.ShortID,
		def.LongID,
		payloadJSON,
	)
	if err != nil {
		return false, fmt.Errorf("save definition: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save definition: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("save definition: commit: %w", err)
		}
		return true, nil
	}

	// Conflict: either the same content is already stored (duplicate,
	// fine) or the short id is claimed by different content (collision).
	var existingLongID string
	err = tx.QueryRowContext(ctx, `
		SELECT long_id FROM env_defs WHERE short_id = ?
	`, def.ShortID).Scan(&existingLongID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// The conflict was on long_id under a different short alias,
		// which only happens when the caller's ids disagree with the
		// content. Treat it the same as a collision.
		return false, &GatewayError{
			Code:    ErrCodeShortIDCollision,
			Message: "definition content already stored under a different short id",
			ShortID: def.ShortID,
		}
	case err != nil:
		return false, fmt.Errorf("save definition: classify conflict: %w", err)
	}

	if existingLongID != def.LongID {
		return false, &GatewayError{
			Code:    ErrCodeShortIDCollision,
			Message: fmt.Sprintf("short id already taken by content %s", existingLongID),
			ShortID: def.ShortID,
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("save definition: commit (duplicate): %w", err)
	}
	return false, nil
}

// Bind appends a binding record pointing an (app, env) pair at a
// definition. Returns the assigned sequence number.
//
// This is the only write path for app_envs; existing rows are never
// updated. The referenced definition must already exist - the foreign
// key constraint surfaces a missing one as a REFERENTIAL_VIOLATION.
func (s *Store) Bind(ctx context.Context, app, env, shortID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO app_envs
		(app_name, env_name, env_def_id)
		VALUES (?, ?, ?)
	`,
		app,
		env,
		shortID,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return 0, &GatewayError{
				Code:    ErrCodeReferentialViolation,
				Message: "binding references unknown definition",
				ShortID: shortID,
				App:     app,
				Env:     env,
			}
		}
		return 0, fmt.Errorf("bind %s/%s: %w", app, env, err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bind %s/%s: last insert id: %w", app, env, err)
	}
	return seq, nil
}
