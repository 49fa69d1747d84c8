// Package envdef defines the business model for content-addressed
// environment definitions and application-environment bindings.
//
// An environment definition is an immutable payload (arbitrary nested
// key/value data, never interpreted here) identified by its content:
//   - long id: SHA-256 over the payload's canonical JSON, with domain
//     separation
//   - short id: the first 8 hex characters of the long id, used as the
//     human-facing alias and storage primary key
//
// Canonical JSON (sorted keys, no HTML escaping, NFC-normalized
// strings, number lexemes preserved) is the ONLY serialization used for
// identity computation. The same payload always produces the same
// bytes, and therefore the same ids.
package envdef
