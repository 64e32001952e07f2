package password

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// SaltSize is the number of random bytes generated per user at creation.
const SaltSize = 256

// NewSalt returns a fresh per-user salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Hash digests pepper || password || salt with SHA3-512 and returns the
// 128-character hex string the schema expects.
func Hash(pepper, plaintext string, salt []byte) string {
	h := sha3.New512()
	h.Write([]byte(pepper))
	h.Write([]byte(plaintext))
	h.Write(salt)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest for the supplied password and compares it
// against the stored hash.
func Verify(pepper, plaintext string, salt []byte, hashed string) bool {
	return Hash(pepper, plaintext, salt) == hashed
}
