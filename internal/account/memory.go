package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore は開発・テスト用のインメモリ実装です。
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account // メールアドレスをキーとする
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
	}
}

var _ Store = (*MemoryStore)(nil)

// ExistsByEmail は同じメールアドレスのアカウントが存在するかを返します。
func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[email]
	return ok, nil
}

// Create はアカウントを保存します。メールアドレスが重複する場合は ErrDuplicateEmail を返します。
func (s *MemoryStore) Create(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.Email]; ok {
		return ErrDuplicateEmail
	}

	stored := *acc
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.accounts[acc.Email] = &stored
	return nil
}

// FindByEmail はメールアドレスでアカウントを検索します。
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[email]
	if !ok {
		return nil, ErrNotFound
	}
	found := *acc
	return &found, nil
}
