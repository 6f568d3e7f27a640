// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

// argonParams are the argon2id cost parameters baked into each PHC hash
// string. Stored hashes that decode to different costs verify fine but
// get rehashed at the current costs on the next successful login.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		p.time,
		p.memory,
		p.threads,
		p.keyLen,
	)
}

func (p argonParams) encode(salt, hash []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// HashPassword produces a PHC-format argon2id hash with a fresh random
// salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, currentParams.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := currentParams.derive(password, salt)
	return currentParams.encode(salt, hash), nil
}

// VerifyPassword checks a password against a PHC hash string using the
// costs recorded in the hash, comparing in constant time.
func VerifyPassword(password, encodedHash string) (bool, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := params.derive(password, salt)
	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

// verifyWithRehash additionally returns a replacement hash when the
// stored one uses stale cost parameters. A failed rehash is swallowed;
// the verification result stands on its own.
func verifyWithRehash(password, encodedHash string) (bool, string, error) {
	valid, err := VerifyPassword(password, encodedHash)
	if err != nil || !valid {
		return valid, "", err
	}

	if params, _, hash, decErr := decodeHash(encodedHash); decErr != nil ||
		params.memory != currentParams.memory ||
		params.time != currentParams.time ||
		params.threads != currentParams.threads ||
		uint32(len(hash)) != currentParams.keyLen {
		if newHash, hashErr := HashPassword(password); hashErr == nil {
			return true, newHash, nil
		}
	}

	return true, "", nil
}

// dummyHash keeps the verify path doing real argon2 work for accounts
// that have no password, so timing cannot reveal whether an email exists.
var dummyHash string

func init() {
	hash, err := HashPassword("dummy_password_for_timing_attack_prevention")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// VerifyPasswordTimingSafe verifies against the stored hash, or against
// the process dummy hash when none exists. The nil/empty case always
// reports false regardless of the dummy comparison's outcome.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	hashToVerify := dummyHash
	if encodedHash != nil && *encodedHash != "" {
		hashToVerify = *encodedHash
	}

	valid, newHash, err := verifyWithRehash(password, hashToVerify)

	if encodedHash == nil || *encodedHash == "" {
		return false, "", nil
	}

	return valid, newHash, err
}

// Argon2Hasher adapts the package-level argon2id helpers to the
// hasher interface the auth service consumes.
type Argon2Hasher struct{}

func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{}
}

func (Argon2Hasher) Hash(plaintext string) (string, error) {
	return HashPassword(plaintext)
}

func (Argon2Hasher) Verify(
	plaintext string,
	encodedHash *string,
) (bool, string, error) {
	return VerifyPasswordTimingSafe(plaintext, encodedHash)
}

func decodeHash(encodedHash string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return params, nil, nil, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf(
			"unsupported algorithm: %s", parts[1],
		)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	_, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	)
	if err != nil {
		return params, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: hash length is always small (32 bytes for argon2id)
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}

const refreshTokenEntropy = 32

// GenerateRefreshToken returns an opaque, URL-safe refresh token:
// 32 random bytes followed by the issue timestamp, base64url encoded
// without padding. The token carries no claims; the server treats it
// purely as a lookup key.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenEntropy+8)
	if _, err := rand.Read(buf[:refreshTokenEntropy]); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	//nolint:gosec // G115: unix seconds fit comfortably in uint64
	binary.BigEndian.PutUint64(buf[refreshTokenEntropy:], uint64(time.Now().Unix()))
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the at-rest form of a refresh token; raw tokens are never
// persisted.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}
