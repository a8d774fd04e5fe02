package lineage

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintPrefix tags the hashing scheme of a fingerprint.
const FingerprintPrefix = "v1:sha256:"

// Fingerprint hashes a generalized statement. Equal inputs always give
// equal fingerprints.
func Fingerprint(generalized string) string {
	sum := sha256.Sum256([]byte(generalized))
	return FingerprintPrefix + hex.EncodeToString(sum[:])
}
