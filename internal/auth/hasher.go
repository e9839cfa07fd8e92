// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters for newly produced hashes.
const (
	DefaultIterations = 100_000
	pbkdf2SaltLen     = 16
	pbkdf2KeyLen      = 32

	// minIterations rejects stored hashes whose parameters were tampered down.
	minIterations = 1
)

const hashDelimiter = "."

// ErrEmptyPassword is returned when attempting to hash or verify an empty password.
var ErrEmptyPassword = oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")

// HashFormat identifies the generation of a stored password hash.
type HashFormat int

// Stored hash generations.
const (
	// FormatLegacy is base64(SHA-256(password)) with no delimiter.
	FormatLegacy HashFormat = iota + 1
	// FormatStretched is {iterations}.{base64(salt)}.{base64(key)} using PBKDF2-HMAC-SHA256.
	FormatStretched
)

func (f HashFormat) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatStretched:
		return "stretched"
	default:
		return "unknown"
	}
}

// ParsedHash is a stored password hash classified by its structure.
// It is either a LegacyHash or a StretchedHash.
type ParsedHash interface {
	Format() HashFormat
	matches(password string) bool
}

// LegacyHash is a single unsalted SHA-256 digest.
type LegacyHash struct {
	Digest []byte
}

// Format implements ParsedHash.
func (LegacyHash) Format() HashFormat { return FormatLegacy }

func (h LegacyHash) matches(password string) bool {
	sum := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(sum[:], h.Digest) == 1
}

// StretchedHash is a salted PBKDF2 key with its iteration count.
type StretchedHash struct {
	Iterations int
	Salt       []byte
	Key        []byte
}

// Format implements ParsedHash.
func (StretchedHash) Format() HashFormat { return FormatStretched }

func (h StretchedHash) matches(password string) bool {
	computed := pbkdf2.Key([]byte(password), h.Salt, h.Iterations, len(h.Key), sha256.New)
	return subtle.ConstantTimeCompare(computed, h.Key) == 1
}

// String encodes the hash in its storage form.
func (h StretchedHash) String() string {
	return strconv.Itoa(h.Iterations) + hashDelimiter +
		base64.StdEncoding.EncodeToString(h.Salt) + hashDelimiter +
		base64.StdEncoding.EncodeToString(h.Key)
}

// ParseHash classifies a stored hash by delimiter presence and part count.
// A string without the delimiter is legacy; exactly three parts is stretched;
// anything else is malformed.
func ParseHash(stored string) (ParsedHash, error) {
	if stored == "" {
		return nil, oops.Code(CodeMalformedHash).Errorf("stored hash is empty")
	}

	if !strings.Contains(stored, hashDelimiter) {
		digest, err := base64.StdEncoding.DecodeString(stored)
		if err != nil {
			return nil, oops.Code(CodeMalformedHash).With("format", FormatLegacy.String()).Wrap(err)
		}
		return LegacyHash{Digest: digest}, nil
	}

	parts := strings.Split(stored, hashDelimiter)
	if len(parts) != 3 {
		return nil, oops.Code(CodeMalformedHash).
			With("parts", len(parts)).
			Errorf("stretched hash must have 3 parts")
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, oops.Code(CodeMalformedHash).With("field", "iterations").Wrap(err)
	}
	if iterations < minIterations {
		return nil, oops.Code(CodeMalformedHash).
			With("iterations", iterations).
			Errorf("iteration count must be positive")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, oops.Code(CodeMalformedHash).With("field", "salt").Wrap(err)
	}
	key, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, oops.Code(CodeMalformedHash).With("field", "key").Wrap(err)
	}
	if len(salt) == 0 || len(key) == 0 {
		return nil, oops.Code(CodeMalformedHash).Errorf("salt and key must be non-empty")
	}

	return StretchedHash{Iterations: iterations, Salt: salt, Key: key}, nil
}

// LegacyDigest returns the legacy storage form of password.
// It exists for importing accounts from the previous system and for tests;
// new hashes must come from PasswordHasher.Hash.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a stretched hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the stored hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, and
	// (false, err) when the inputs cannot be verified.
	Verify(password, stored string) (bool, error)

	// NeedsUpgrade returns true if the stored hash is not in the current format.
	NeedsUpgrade(stored string) bool
}

// PBKDF2Hasher implements PasswordHasher with PBKDF2-HMAC-SHA256 and
// verifies legacy SHA-256 digests.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a hasher using DefaultIterations.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{iterations: DefaultIterations}
}

// NewPBKDF2HasherWithIterations creates a hasher with a custom work factor.
// Values below 1 fall back to DefaultIterations.
func NewPBKDF2HasherWithIterations(iterations int) *PBKDF2Hasher {
	if iterations < minIterations {
		iterations = DefaultIterations
	}
	return &PBKDF2Hasher{iterations: iterations}
}

// Hash produces a stretched hash of the password with a fresh random salt.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.iterations, pbkdf2KeyLen, sha256.New)
	return StretchedHash{Iterations: h.iterations, Salt: salt, Key: key}.String(), nil
}

// Verify checks the password against a legacy or stretched hash.
// It fails closed: any parse problem yields false.
func (h *PBKDF2Hasher) Verify(password, stored string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}
	parsed, err := ParseHash(stored)
	if err != nil {
		return false, err
	}
	return parsed.matches(password), nil
}

// NeedsUpgrade returns true for anything that is not a well-formed stretched hash
// at the current iteration count.
func (h *PBKDF2Hasher) NeedsUpgrade(stored string) bool {
	parsed, err := ParseHash(stored)
	if err != nil {
		return true
	}
	stretched, ok := parsed.(StretchedHash)
	if !ok {
		return true
	}
	return stretched.Iterations < h.iterations
}
