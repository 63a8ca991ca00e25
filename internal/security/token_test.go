package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("ParseToken returned %q, want user-1", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("Hash must not equal the plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword accepted a wrong password")
	}
}
