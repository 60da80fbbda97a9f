package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"golang.org/x/crypto/argon2"
)

const argonPrefix = "argon2id"

// ErrInvalidHash signals a stored password hash that is not a PHC argon2id string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// ArgonParams are the cost settings encoded alongside every hash so that
// older hashes keep verifying after the configured costs change.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// ParamsFromConfig bounds the configured costs to values argon2 accepts.
func ParamsFromConfig(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      bounded(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        bounded(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(bounded(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     bounded(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      bounded(cfg.ArgonKeyLen, 16, 64),
	}
}

func (p ArgonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
}

// HashPassword derives an argon2id key with a fresh salt and returns it in
// $argon2id$v=19$m=..,t=..,p=..$salt$key form.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	params := ParamsFromConfig(cfg)

	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	enc := base64.RawStdEncoding
	return strings.Join([]string{
		"",
		argonPrefix,
		fmt.Sprintf("v=%d", argon2.Version),
		fmt.Sprintf("m=%d,t=%d,p=%d", params.Memory, params.Time, params.Parallelism),
		enc.EncodeToString(salt),
		enc.EncodeToString(params.derive(password, salt)),
	}, "$"), nil
}

// VerifyPassword reports whether password matches encoded. A malformed hash
// is an error; a mismatch is not.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, params.derive(password, salt)) == 1, nil
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != argonPrefix {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var p ArgonParams
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	if p.Time == 0 || p.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := enc.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

func bounded(v, lo, hi int) uint32 {
	return uint32(min(max(v, lo), hi))
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ErrWeakPassword is returned when a password does not meet the registration rules.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters and contain a letter and a digit", MinPasswordLength)

// ValidatePassword enforces the minimum strength rules for new passwords.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hasLetter := strings.IndexFunc(password, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(password, unicode.IsDigit) >= 0
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
