// Package store is the SQLite persistence gateway for environment
// definitions and application-environment bindings.
//
// Two tables:
//   - env_defs: write-once, content-addressed definition payloads.
//     short_id is the primary key, long_id carries a UNIQUE constraint
//     that makes duplicate saves a no-op instead of a second row.
//   - app_envs: append-only binding history. seq (AUTOINCREMENT) is the
//     sole ordering authority; the current binding for an (app, env)
//     pair is the max-seq row for that pair, computed at query time.
//
// Invariants:
//   - No update or delete paths exist for either table.
//   - Not-found is a nil result, never an error.
//   - A decoded definition whose recomputed ids disagree with the row's
//     stored ids aborts the read with a consistency violation.
//   - Referential integrity between app_envs and env_defs is enforced
//     by the storage engine (foreign_keys=ON).
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Definition ids are computed in internal/envdef via canonical JSON and
// SHA-256 with domain separation.
package store
