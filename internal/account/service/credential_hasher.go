package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeArgon2id = "argon2id"
	SchemeBcrypt   = "bcrypt"
	// SchemeSHA256 is the unsalted legacy digest. It is kept so accounts
	// created under it can still log in; new deployments should not select it.
	SchemeSHA256 = "sha256"
)

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

var (
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrUnknownHashFormat = errors.New("unrecognised password hash format")
)

type PasswordHasher interface {
	// Hash produces the stored digest for password under the configured scheme.
	Hash(password string) (string, error)
	// Verify reports whether password matches digest. The scheme is read from
	// the digest itself, so accounts hashed under an older scheme keep working.
	Verify(password, digest string) (bool, error)
}

// Digest is the deterministic, unsalted SHA-256 of secret as lowercase hex.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

type HasherOption func(*passwordHasher)

func WithBcryptCost(cost int) HasherOption {
	return func(h *passwordHasher) {
		h.bcryptCost = cost
	}
}

// WithArgon2Memory overrides the argon2id memory cost in KiB.
func WithArgon2Memory(kib uint32) HasherOption {
	return func(h *passwordHasher) {
		h.argon2Memory = kib
	}
}

type passwordHasher struct {
	scheme       string
	bcryptCost   int
	argon2Memory uint32
}

func NewPasswordHasher(scheme string, opts ...HasherOption) (PasswordHasher, error) {
	switch scheme {
	case SchemeArgon2id, SchemeBcrypt, SchemeSHA256:
	default:
		return nil, fmt.Errorf("unsupported password hash scheme %q", scheme)
	}

	h := &passwordHasher{
		scheme:       scheme,
		bcryptCost:   bcrypt.DefaultCost,
		argon2Memory: argon2Memory,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	switch h.scheme {
	case SchemeSHA256:
		return Digest(password), nil
	case SchemeBcrypt:
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &autherror.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
		}
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	default:
		return h.hashArgon2id(password)
	}
}

func (h *passwordHasher) hashArgon2id(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, h.argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *passwordHasher) Verify(password, digest string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(password, digest)
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	case isHexDigest(digest):
		return subtle.ConstantTimeCompare([]byte(Digest(password)), []byte(digest)) == 1, nil
	default:
		return false, ErrUnknownHashFormat
	}
}

func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("%w: argon2id field count", ErrUnknownHashFormat)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnknownHashFormat, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: argon2 version %d", ErrUnknownHashFormat, version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnknownHashFormat, err)
	}
	if threads == 0 || threads > 255 {
		return false, fmt.Errorf("%w: threads %d", ErrUnknownHashFormat, threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnknownHashFormat, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnknownHashFormat, err)
	}
	if len(expected) == 0 || len(expected) > 1024 {
		return false, fmt.Errorf("%w: key length %d", ErrUnknownHashFormat, len(expected))
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
