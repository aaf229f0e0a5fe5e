package account

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCreateAndFind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	acc := &Account{
		ID:           "id-1",
		Email:        "a@b.com",
		PasswordHash: []byte("digest"),
		Fullname:     "Jane Doe",
		Street:       "Main St",
		Postal:       "12345",
		City:         "Metropolis",
	}
	if err := store.Create(ctx, acc); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	exists, err := store.ExistsByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected account to exist")
	}

	found, err := store.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if found.ID != "id-1" || found.Fullname != "Jane Doe" {
		t.Fatalf("unexpected account: %+v", found)
	}
	if found.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set on create")
	}
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &Account{ID: "id-1", Email: "a@b.com"}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	second := &Account{ID: "id-2", Email: "a@b.com"}
	if err := store.Create(ctx, second); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// 最初のレコードが上書きされていないこと
	found, err := store.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if found.ID != "id-1" {
		t.Fatalf("first account was replaced: %+v", found)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	exists, err := store.ExistsByEmail(ctx, "missing@example.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if exists {
		t.Fatal("expected account to be absent")
	}
}

// メールアドレスは入力されたままの表記で扱う（大文字小文字を区別する）
func TestMemoryStoreEmailCaseSensitive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, &Account{ID: "id-1", Email: "A@b.com"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	exists, err := store.ExistsByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ExistsByEmail returned error: %v", err)
	}
	if exists {
		t.Fatal("lookup must not normalize email case")
	}
}
