// Package fingerprint produces deterministic digests of chassis and engine
// identifiers for duplicate detection. Providers format the same identifier
// differently (case, padding), so input is trimmed and uppercased before
// hashing to make equivalent identifiers collide.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	dErrors "fleetgate/pkg/domain-errors"
)

// New returns the SHA-256 hex fingerprint of the normalized identifier.
// Empty or whitespace-only input is rejected: hashing it would make every
// malformed record collide with every other one.
func New(identifier string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(identifier))
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "identifier is empty")
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}
