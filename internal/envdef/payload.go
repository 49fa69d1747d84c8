package envdef

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is the opaque structured document describing an environment.
// It is stored and returned verbatim; envgate never interprets it.
type Payload map[string]any

// ParsePayload decodes a JSON document into a Payload.
// Numbers are kept as json.Number so their lexemes survive a
// store/load round-trip unchanged, which keeps derived ids stable.
func ParsePayload(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse payload: trailing data after JSON object")
	}
	return p, nil
}

// Canonical returns the canonical JSON encoding of the payload.
func (p Payload) Canonical() ([]byte, error) {
	return marshalCanonicalObject(map[string]any(p))
}

// Equal reports whether two payloads have identical canonical encodings.
func (p Payload) Equal(other Payload) bool {
	a, err := p.Canonical()
	if err != nil {
		return false
	}
	b, err := other.Canonical()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
