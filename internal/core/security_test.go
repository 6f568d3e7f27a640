// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("hash %q is not PHC argon2id", hash)
	}

	ok, err := VerifyPassword("Str0ng!Pass", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = VerifyPassword("Wrong!Pass1", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordTimingSafe_MissingHash(t *testing.T) {
	ok, _, err := VerifyPasswordTimingSafe("anything", nil)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if ok {
		t.Fatal("nil hash must never verify")
	}

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if ok {
		t.Fatal("empty hash must never verify")
	}
}

func TestArgon2Hasher(t *testing.T) {
	hasher := NewArgon2Hasher()

	hash, err := hasher.Hash("Str0ng!Pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, rehash, err := hasher.Verify("Str0ng!Pass", &hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}
	if rehash != "" {
		t.Fatal("fresh hash must not request a rehash")
	}

	ok, _, err = hasher.Verify("nope", &hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestVerifyWithRehash_StaleParameters(t *testing.T) {
	stale := argonParams{
		memory:  currentParams.memory / 2,
		time:    currentParams.time,
		threads: currentParams.threads,
		keyLen:  currentParams.keyLen,
		saltLen: currentParams.saltLen,
	}

	salt := []byte("0123456789abcdef")
	encoded := stale.encode(salt, stale.derive("Str0ng!Pass", salt))

	valid, newHash, err := verifyWithRehash("Str0ng!Pass", encoded)
	if err != nil {
		t.Fatalf("verifyWithRehash: %v", err)
	}
	if !valid {
		t.Fatal("password must verify against the stale hash")
	}
	if newHash == "" {
		t.Fatal("stale cost parameters must produce a replacement hash")
	}

	ok, err := VerifyPassword("Str0ng!Pass", newHash)
	if err != nil || !ok {
		t.Fatalf("replacement hash must verify, ok=%v err=%v", ok, err)
	}
}

func TestGenerateRefreshToken_Shape(t *testing.T) {
	token, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if strings.ContainsAny(token, "=+/") {
		t.Errorf("token %q must be unpadded base64url", token)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if len(raw) != 40 {
		t.Fatalf("decoded length = %d, want 32 entropy + 8 timestamp", len(raw))
	}

	var ts int64
	for _, b := range raw[32:] {
		ts = ts<<8 | int64(b)
	}
	now := time.Now().Unix()
	if ts < now-5 || ts > now+5 {
		t.Errorf("embedded timestamp %d not near now %d", ts, now)
	}
}

func TestHashToken(t *testing.T) {
	hash := HashToken("some-opaque-token")

	if hash != HashToken("some-opaque-token") {
		t.Fatal("token hashing must be deterministic")
	}
	if len(hash) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(hash))
	}

	if !CompareTokenHash("some-opaque-token", hash) {
		t.Fatal("CompareTokenHash must match its own hash")
	}
	if CompareTokenHash("other-token", hash) {
		t.Fatal("CompareTokenHash must reject a different token")
	}
}
