package store

import (
	"fmt"

	"envgate/internal/envdef"
)

// marshalPayload converts a payload to canonical JSON TEXT for storage.
// Storing the canonical form means a load/recompute cycle reproduces
// the exact bytes the ids were derived from.
func marshalPayload(p envdef.Payload) (string, error) {
	data, err := p.Canonical()
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses stored JSON TEXT back into a payload.
// Uses envdef.ParsePayload so number lexemes survive intact.
func unmarshalPayload(data string) (envdef.Payload, error) {
	p, err := envdef.ParsePayload([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}
