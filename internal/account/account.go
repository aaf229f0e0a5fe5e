// Package account は顧客アカウントのモデルと永続化インターフェースを提供します。
package account

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound は該当するアカウントが存在しない場合に返されます。
	ErrNotFound = errors.New("account: not found")
	// ErrDuplicateEmail は同じメールアドレスのアカウントが既に存在する場合に返されます。
	ErrDuplicateEmail = errors.New("account: duplicate email")
)

// Account は顧客アカウントのレコードです。
// メールアドレスは入力されたままの表記で保存され、ストアが一意性を保証します。
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Fullname     string
	Street       string
	Postal       string
	City         string
	CreatedAt    time.Time
}

// Store はアカウントの永続化操作をまとめたインターフェースです。
// 「見つからない」は ErrNotFound、メールアドレスの重複は ErrDuplicateEmail で表し、
// それ以外のエラーはストレージ・通信系の障害を意味します。
type Store interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, acc *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
