package password

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("LongEnough1234!")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !CheckPasswordHash("LongEnough1234!", hash) {
		t.Fatal("Expected hashed password to verify against the original plaintext")
	}

	if CheckPasswordHash("wrong-password", hash) {
		t.Fatal("Expected a different plaintext to fail verification")
	}
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	first, err := HashPassword("LongEnough1234!")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, err := HashPassword("LongEnough1234!")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first == second {
		t.Fatal("Expected two hashes of the same password to differ")
	}

	if !CheckPasswordHash("LongEnough1234!", first) || !CheckPasswordHash("LongEnough1234!", second) {
		t.Fatal("Expected both hashes to verify")
	}
}

func TestCheckPasswordHash_MalformedDigest(t *testing.T) {
	if CheckPasswordHash("anything", "not-a-bcrypt-digest") {
		t.Fatal("Expected malformed digest to fail verification")
	}

	if CheckPasswordHash("anything", "") {
		t.Fatal("Expected empty digest to fail verification")
	}
}
