package space

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for configuration identity.
// Version suffix enables future algorithm migration.
const DomainConfiguration = "evalledger/config/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConfigID computes the content-addressed identity of a configuration.
// Two configurations with equal values have equal IDs regardless of the
// order their keys were inserted or the Unicode normalization of strings.
func ConfigID(values Object) (string, error) {
	canonical, err := MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("ConfigID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfiguration, canonical), nil
}

// MustConfigID is like ConfigID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustConfigID(values Object) string {
	id, err := ConfigID(values)
	if err != nil {
		panic(err)
	}
	return id
}
