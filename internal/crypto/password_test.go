package crypto

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if bytes.Equal(digest, []byte("secret1")) {
		t.Fatal("digest must not equal plaintext")
	}

	if !hasher.Verify("secret1", digest) {
		t.Fatal("Verify rejected the correct password")
	}
	if hasher.Verify("secret2", digest) {
		t.Fatal("Verify accepted a wrong password")
	}
}

func TestBcryptHasherDefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
	}
}
