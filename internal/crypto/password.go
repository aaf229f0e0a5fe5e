// Package crypto はパスワードのハッシュ化と照合を提供します。
package crypto

import "golang.org/x/crypto/bcrypt"

// PasswordHasher は一方向ハッシュの生成と照合を抽象化します。
// 平文同士の比較は行わず、必ず Verify を経由します。
type PasswordHasher interface {
	Hash(plain string) ([]byte, error)
	Verify(plain string, digest []byte) bool
}

// BcryptHasher は bcrypt による PasswordHasher 実装です。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定コストの BcryptHasher を作成します。
// コストが 0 以下の場合は bcrypt.DefaultCost を使用します。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// Hash は平文パスワードからソルト付きダイジェストを生成します。
func (h *BcryptHasher) Hash(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), h.cost)
}

// Verify は平文パスワードとダイジェストの一致を検証します。
func (h *BcryptHasher) Verify(plain string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(plain)) == nil
}
