package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Expected hash to differ from plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("Expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("Expected non-matching password to fail")
	}
	if CheckPassword("not-a-hash", "anything") {
		t.Error("Expected malformed hash to fail verification")
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	userID := uuid.New()
	tokenString, err := m.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := m.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Errorf("Expected subject %s, got %s", userID, got)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenManager("secret-a", time.Hour)
	verifier, _ := NewTokenManager("secret-b", time.Hour)

	tokenString, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(tokenString); err == nil {
		t.Error("Expected verification to fail with wrong secret")
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	m := &TokenManager{secret: []byte("test-secret"), expiry: -time.Minute}

	tokenString, err := m.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(tokenString); err == nil {
		t.Error("Expected verification to fail for expired token")
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	t.Parallel()

	m, _ := NewTokenManager("test-secret", time.Hour)
	if _, err := m.Verify("not.a.token"); err == nil {
		t.Error("Expected verification to fail for malformed token")
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("Expected error for empty secret")
	}
}
