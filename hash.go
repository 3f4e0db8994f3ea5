package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// NewOpaqueHash generates the unguessable single-use tokens used for email
// confirmation links and password recovery tickets: 32 bytes of
// cryptographically random input, hashed and hex encoded.
func NewOpaqueHash() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate random token seed")
	}

	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:]), nil
}
