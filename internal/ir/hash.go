package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainQuery = "boutinf/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryFingerprint computes a stable identity for a predicate document.
// Logically identical documents (same canonical form) share a fingerprint,
// which lets logs from independent traversals of one query be grouped.
func QueryFingerprint(doc IRValue) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("QueryFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
