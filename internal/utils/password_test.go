package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "secret123") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "secret124") {
		t.Fatal("wrong password accepted")
	}
	if VerifyPassword(hash, "") {
		t.Fatal("empty password accepted")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	a, err := HashPassword("secret123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("secret123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same input are identical; salt missing")
	}
	// Both must still verify.
	if !VerifyPassword(a, "secret123") || !VerifyPassword(b, "secret123") {
		t.Fatal("salted hashes do not verify")
	}
}
