package envdef

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDefinition is the domain prefix for definition identity.
// Version suffix enables future algorithm migration.
const DomainDefinition = "envgate/envdef/v1"

// ShortIDLength is the fixed length of the short id alias.
const ShortIDLength = 8

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentIDs computes the short and long id for a payload.
// The ids are stable: the same payload always yields the same values.
func ContentIDs(p Payload) (shortID, longID string, err error) {
	canonical, err := p.Canonical()
	if err != nil {
		return "", "", fmt.Errorf("ContentIDs: failed to marshal: %w", err)
	}
	longID = hashWithDomain(DomainDefinition, canonical)
	return longID[:ShortIDLength], longID, nil
}

// MustContentIDs is like ContentIDs but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustContentIDs(p Payload) (shortID, longID string) {
	shortID, longID, err := ContentIDs(p)
	if err != nil {
		panic(err)
	}
	return shortID, longID
}
