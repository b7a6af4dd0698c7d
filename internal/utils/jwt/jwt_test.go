package jwt

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestCreateToken_Verifies(t *testing.T) {
	token, err := CreateToken("user-123", testSecret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	userID, err := ExtractUserIDFromToken(token, testSecret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("Expected subject user-123, got %s", userID)
	}
}

func TestExtractUserIDFromToken_WrongSecret(t *testing.T) {
	token, err := CreateToken("user-123", testSecret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := ExtractUserIDFromToken(token, "a-different-secret"); err == nil {
		t.Fatal("Expected verification to fail with the wrong secret")
	}
}

func TestExtractUserIDFromToken_Tampered(t *testing.T) {
	token, err := CreateToken("user-123", testSecret)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected a three-part token, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := ExtractUserIDFromToken(tampered, testSecret); err == nil {
		t.Fatal("Expected verification to fail for a tampered signature")
	}
}

func TestExtractUserIDFromToken_Expired(t *testing.T) {
	claims := jwtlib.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwtlib.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := ExtractUserIDFromToken(expired, testSecret); err == nil {
		t.Fatal("Expected verification to fail for an expired token")
	}
}

func TestExtractUserIDFromToken_NoSubject(t *testing.T) {
	claims := jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := ExtractUserIDFromToken(token, testSecret); err == nil {
		t.Fatal("Expected verification to fail for a token without a subject")
	}
}
