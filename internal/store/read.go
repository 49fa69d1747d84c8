package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"envgate/internal/envdef"
)

// GetDefinition retrieves a definition by its short id.
// Returns nil (with a nil error) if no such definition exists.
//
// Every read re-derives the ids from the decoded payload and checks
// them against the row's stored ids. A mismatch aborts the read with a
// CONSISTENCY_VIOLATION instead of returning corrupted data.
func (s *Store) GetDefinition(ctx context.Context, shortID string) (*envdef.Definition, error) {
	var storedShort, storedLong, payloadJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT short_id, long_id, payload
		FROM env_defs
		WHERE short_id = ?
	`, shortID).Scan(&storedShort, &storedLong, &payloadJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get definition %s: %w", shortID, err)
	}

	return rebuildDefinition(storedShort, storedLong, payloadJSON)
}

// rebuildDefinition decodes a stored row back into the business model,
// enforcing the id/content consistency invariant.
func rebuildDefinition(shortID, longID, payloadJSON string) (*envdef.Definition, error) {
	payload, err := unmarshalPayload(payloadJSON)
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", shortID, err)
	}

	def := envdef.Definition{ShortID: shortID, LongID: longID, Payload: payload}
	if err := def.Verify(); err != nil {
		return nil, &GatewayError{
			Code:    ErrCodeConsistencyViolation,
			Message: err.Error(),
			ShortID: shortID,
		}
	}
	return &def, nil
}

// CurrentBinding returns the effective binding for an (app, env) pair:
// the row with the maximum seq among all rows for that pair, with its
// definition fully resolved. Returns nil (with a nil error) if the pair
// has never been bound.
//
// Consistency errors from resolving the definition propagate; a binding
// is never returned partially populated.
func (s *Store) CurrentBinding(ctx context.Context, app, env string) (*envdef.Binding, error) {
	var seq int64
	var defID string
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, env_def_id
		FROM app_envs
		WHERE app_name = ? AND env_name = ?
		  AND seq = (
			SELECT MAX(seq) FROM app_envs
			WHERE app_name = ? AND env_name = ?
		  )
	`, app, env, app, env).Scan(&seq, &defID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current binding %s/%s: %w", app, env, err)
	}

	def, err := s.GetDefinition(ctx, defID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		// The foreign key makes this unreachable short of external
		// tampering; surface it as corruption, not not-found.
		return nil, &GatewayError{
			Code:    ErrCodeConsistencyViolation,
			Message: "bound definition missing from env_defs",
			ShortID: defID,
			App:     app,
			Env:     env,
		}
	}

	return &envdef.Binding{Seq: seq, App: app, Env: env, Definition: *def}, nil
}

// ListCurrentBindings returns the currently bound definition id for
// every (app, env) pair that has ever been bound.
//
// Latest-per-pair is computed in a single groupwise-max query: group
// rows by pair, take MAX(seq) per group, join back for the winning
// row's reference. It is derived from the append-only log at query
// time, never maintained as separate state.
func (s *Store) ListCurrentBindings(ctx context.Context) (map[envdef.BindingKey]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.app_name, a.env_name, a.env_def_id
		FROM app_envs a
		JOIN (
			SELECT app_name, env_name, MAX(seq) AS max_seq
			FROM app_envs
			GROUP BY app_name, env_name
		) latest ON a.seq = latest.max_seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list current bindings: %w", err)
	}
	defer rows.Close()

	current := make(map[envdef.BindingKey]string)
	for rows.Next() {
		var app, env, defID string
		if err := rows.Scan(&app, &env, &defID); err != nil {
			return nil, fmt.Errorf("list current bindings: scan: %w", err)
		}
		current[envdef.BindingKey{App: app, Env: env}] = defID
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list current bindings: iterate: %w", err)
	}

	return current, nil
}
