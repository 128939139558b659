// Package secure holds the password hashing, token and storage encoding
// helpers used by the admin account and session stores.
//
// Obfuscate and Deobfuscate are a serialization format for stored blobs.
// They do not protect the data; anyone with storage access can read it.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/argon2"
)

// ErrDecode is returned when a stored blob is not valid base64 or does not
// decode into the expected shape.
var ErrDecode = errors.New("invalid stored data")

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()"

// DefaultSaltLength is the salt length used for new admin accounts.
const DefaultSaltLength = 16

// argon2id parameters (OWASP minimum profile).
const (
	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
	argonKeyLen  = 32
)

// SessionTokenBytes is the amount of randomness in a session token.
const SessionTokenBytes = 32

// GenerateSalt returns length characters drawn uniformly from the salt
// alphabet using crypto/rand.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("salt length must be positive, got %d", length)
	}
	max := big.NewInt(int64(len(saltAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		out[i] = saltAlphabet[n.Int64()]
	}
	return string(out), nil
}

// HashPassword derives an argon2id key from password and salt and returns it
// base64 encoded. The same inputs always produce the same output.
func HashPassword(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(password, salt, hash string) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}

// Obfuscate serializes v as JSON and base64-encodes it.
func Obfuscate(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("obfuscate: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Deobfuscate reverses Obfuscate, decoding blob into v.
func Deobfuscate(blob string, v interface{}) error {
	b, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// GenerateSessionToken returns 32 random bytes as a 64-char hex string.
func GenerateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IsTokenExpired reports whether now is past createdAt + window.
func IsTokenExpired(createdAt time.Time, window time.Duration, now time.Time) bool {
	return now.After(createdAt.Add(window))
}
