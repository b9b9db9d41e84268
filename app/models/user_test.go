package models

import (
	"testing"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Maria Silva", "maria@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != ROLE_USER || user.Status != STATUS_ACTIVE {
		t.Fatalf("unexpected defaults: role=%q status=%q", user.Role, user.Status)
	}
	if user.Password == "secret123" {
		t.Fatalf("password must be stored hashed")
	}
	if !CheckPasswordHash("secret123", user.Password) {
		t.Fatalf("expected password to verify against its hash")
	}
	if CheckPasswordHash("wrong", user.Password) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestCreateUser_Invalid(t *testing.T) {
	if _, err := CreateUser("Maria", "not-an-email", "secret123"); err == nil {
		t.Fatalf("expected invalid email to fail validation")
	}
	if _, err := CreateUser("ab", "maria@example.com", "secret123"); err == nil {
		t.Fatalf("expected short name to fail validation")
	}
}

func TestAPIKeyHashing(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 64 {
		t.Fatalf("expected 32 random bytes hex encoded, got len %d", len(key))
	}

	other, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key == other {
		t.Fatalf("expected unique keys")
	}

	if HashAPIKey(key) == HashAPIKey(other) {
		t.Fatalf("expected distinct hashes")
	}
	if len(HashAPIKey(key)) != 64 {
		t.Fatalf("expected hex sha256 hash")
	}
}
