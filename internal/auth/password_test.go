package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("expected password to match its hash")
	}
	if CheckPassword("wrong horse", hash) {
		t.Fatalf("wrong password should not match")
	}
	if CheckPassword("correct horse", []byte("not-a-hash")) {
		t.Fatalf("garbage hash should not match")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}
