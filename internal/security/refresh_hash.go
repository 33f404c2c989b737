package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Sessions keep only the digest of their current refresh token, so a leaked
// sessions table cannot be replayed against /auth/refresh.

func HashRefreshToken(token string) string {
	sum := refreshDigest(token)
	return hex.EncodeToString(sum[:])
}

// RefreshTokenHashEqual reports whether token is the one whose digest the
// session stored. A malformed stored digest never matches.
func RefreshTokenHashEqual(token, storedHash string) bool {
	stored, err := hex.DecodeString(storedHash)
	if err != nil || len(stored) != sha256.Size {
		return false
	}
	sum := refreshDigest(token)
	return subtle.ConstantTimeCompare(sum[:], stored) == 1
}

func refreshDigest(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}
