package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/etmoore/blog-udacity/internal/models"
)

const (
	saltLength   = 5
	saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// MakeSalt returns a random salt of ASCII letters.
func MakeSalt() string {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	out := make([]byte, saltLength)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out)
}

// HashPassword derives the stored credential string "{salt},{hexdigest}"
// where the digest is SHA-256 over username+password+salt. Deterministic
// for a given salt; pass an empty salt to generate a fresh one.
func HashPassword(username, password, salt string) string {
	if salt == "" {
		salt = MakeSalt()
	}
	sum := sha256.Sum256([]byte(username + password + salt))
	return salt + "," + hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password matches the user's stored hash.
// A nil user verifies false rather than erroring, so callers can feed the
// result of a lookup straight in.
func VerifyPassword(user *models.User, password string) bool {
	if user == nil {
		return false
	}
	salt, _, ok := strings.Cut(user.PasswordHash, ",")
	if !ok {
		return false
	}
	return HashPassword(user.Username, password, salt) == user.PasswordHash
}
