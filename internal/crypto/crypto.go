package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
)

// globalSalt is mixed into every password digest in addition to the
// per-login salt. Deployments share one value; rotating it invalidates
// every stored password hash.
const globalSalt = "3jkh#KJds"

const defaultTokenBytes = 32

// CreatePasswordHash produces the deterministic password digest used for
// store lookups: SHA-512 of globalSalt ++ login ++ password ++ login ++
// globalSalt, hex encoded. Deterministic on purpose - users are matched by
// an equality query on (login, hash), so a randomly salted scheme such as
// bcrypt cannot be used here.
func CreatePasswordHash(login, password string) string {
	payload := globalSalt + login + password + login + globalSalt
	sum := sha512.Sum512([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns a cryptographically random opaque token:
// 32 random bytes, hex encoded (64 characters). Tokens carry no claims;
// they are pure store lookup keys.
func GenerateToken() (string, error) {
	bytes := make([]byte, defaultTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("crypto.GenerateToken rand.Read: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
