// Package auth holds the authentication core: password hashing, the local
// (nickname/email + password) strategy, JWT issuing and verification, and
// the gate that turns a bearer header into a Principal.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ebet/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// ErrCostTooHigh is returned when hashing with parameters above the limits
// Verify accepts.
var ErrCostTooHigh = errors.New("argon2id parameters exceed limits")

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	// Hash returns a salted, encoded hash. Two calls with the same input
	// return different strings.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext produced hash. Malformed hashes
	// never verify.
	Verify(plaintext, hash string) bool

	// NeedsUpgrade reports whether hash was produced by an older scheme and
	// should be replaced after the next successful verification.
	NeedsUpgrade(hash string) bool
}

// Argon2Params are the argon2id cost parameters written into every hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultArgon2Params follow the OWASP argon2id recommendation.
var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// Upper bounds on the cost read back from a stored hash. A hash above them
// is treated as malformed instead of being recomputed.
const (
	maxArgon2Memory = 4 * 64 * 1024 // KiB
	maxArgon2Time   = 4 * 4
)

// Argon2idHasher implements PasswordHasher with argon2id and PHC-encoded
// hashes: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>. It also verifies
// bcrypt hashes written by the previous system.
type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2idHasher(p Argon2Params) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

func (h *Argon2idHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if h.params.Memory > maxArgon2Memory || h.params.Time > maxArgon2Time {
		return "", ErrCostTooHigh
	}

	salt, err := common.GenerateRandByteArray(h.params.SaltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(plaintext, hash string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	}

	p, salt, want, err := decodeArgon2id(hash)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

var errInvalidHash = errors.New("invalid argon2id hash")

func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errInvalidHash
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &threads); err != nil {
		return p, nil, nil, errInvalidHash
	}
	if threads == 0 || threads > 255 || p.Time == 0 || p.Memory == 0 ||
		p.Time > maxArgon2Time || p.Memory > maxArgon2Memory {
		return p, nil, nil, errInvalidHash
	}
	p.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errInvalidHash
	}

	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return p, nil, nil, errInvalidHash
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
