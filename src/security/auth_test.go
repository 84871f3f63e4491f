package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthService_TokenRoundTrip(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)

	token, err := s.GenerateToken("42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	sub, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if sub != "42" {
		t.Errorf("subject = %q, want 42", sub)
	}
}

func TestAuthService_RejectsExpired(t *testing.T) {
	s := NewAuthService(testSecret, time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.GenerateToken("42")
	if err != nil {
		t.Fatal(err)
	}

	s.now = time.Now
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestAuthService_RejectsForeignSecretAndTampering(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)
	other := NewAuthService(strings.Repeat("x", 32), time.Hour)

	token, _ := other.GenerateToken("42")
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
	if _, err := s.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestAuthService_RejectsNoneAlgorithm(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ValidateToken(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestAuthService_Passwords(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)
	hash, err := s.HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("matching password rejected: %v", err)
	}
	if err := s.CheckPassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
