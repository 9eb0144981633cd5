// Package auth provides password hashing, token issuance and request identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	DefaultArgon2Time    = 3
	DefaultArgon2Memory  = 64 * 1024 // 64 MB
	DefaultArgon2Threads = 4

	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// Upper bounds on argon2 cost. Verify rejects stored hashes above them,
// so generated hashes must stay within them as well.
const (
	MaxArgon2Time    = 16
	MaxArgon2Memory  = 1024 * 1024 // 1 GiB
	MaxArgon2Threads = 64

	maxArgon2KeyLen = 128
)

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrInvalidParams indicates argon2 cost parameters outside the accepted range.
	ErrInvalidParams = errors.New("argon2 parameters out of range")
)

// Argon2Params controls the cost of newly generated hashes.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultArgon2Params returns the production cost parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    DefaultArgon2Time,
		Memory:  DefaultArgon2Memory,
		Threads: DefaultArgon2Threads,
	}
}

// Validate reports whether p produces hashes that Verify accepts.
func (p Argon2Params) Validate() error {
	switch {
	case p.Time == 0 || p.Time > MaxArgon2Time:
		return fmt.Errorf("%w: time %d not in [1, %d]", ErrInvalidParams, p.Time, MaxArgon2Time)
	case p.Threads == 0 || p.Threads > MaxArgon2Threads:
		return fmt.Errorf("%w: threads %d not in [1, %d]", ErrInvalidParams, p.Threads, MaxArgon2Threads)
	case p.Memory < 8*uint32(p.Threads) || p.Memory > MaxArgon2Memory:
		return fmt.Errorf("%w: memory %d KiB not in [%d, %d]", ErrInvalidParams, p.Memory, 8*uint32(p.Threads), MaxArgon2Memory)
	}
	return nil
}

// PasswordHasher hashes and verifies user passwords.
// Generated hashes use argon2id in PHC string format; bcrypt hashes
// imported from older accounts are still accepted by Verify.
type PasswordHasher struct {
	params Argon2Params
}

// NewPasswordHasher creates a PasswordHasher with the given cost.
// Zero fields fall back to the defaults and the rest are clamped to the
// range Verify accepts.
func NewPasswordHasher(params Argon2Params) *PasswordHasher {
	def := DefaultArgon2Params()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}

	params.Time = min(params.Time, MaxArgon2Time)
	params.Threads = min(params.Threads, MaxArgon2Threads)
	params.Memory = min(max(params.Memory, 8*uint32(params.Threads)), MaxArgon2Memory)

	return &PasswordHasher{params: params}
}

// Generate creates an Argon2id hash of the given password.
// Returns the hash in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func (h *PasswordHasher) Generate(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Threads,
		argon2KeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches the stored hash.
// A malformed or unsupported hash never matches.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	decoded, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		decoded.salt,
		decoded.params.Time,
		decoded.params.Memory,
		decoded.params.Threads,
		uint32(len(decoded.key)),
	)

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare(computed, decoded.key) == 1
}

type argon2Hash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

// decodeArgon2Hash parses a PHC string and rejects parameters outside sane bounds.
func decodeArgon2Hash(encodedHash string) (*argon2Hash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, ErrInvalidHash
	}
	if p.Validate() != nil {
		return nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLen {
		return nil, ErrInvalidHash
	}

	return &argon2Hash{params: p, salt: salt, key: key}, nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
