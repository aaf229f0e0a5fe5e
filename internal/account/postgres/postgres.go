// Package postgres はアカウントストアの PostgreSQL 実装を提供します。
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/shop-auth/internal/account"
)

// 一意性制約違反のSQLSTATEコード
const uniqueViolationCode = "23505"

// Store は pgx 接続プール上でアカウントを永続化します。
type Store struct {
	pool *pgxpool.Pool
}

// New は Store を作成します。
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ account.Store = (*Store)(nil)

// ExistsByEmail は同じメールアドレスのアカウントが存在するかを返します。
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create はアカウントを保存します。
// 事前の存在確認と INSERT の間に同じメールアドレスで登録された場合も、
// 一意インデックス違反を ErrDuplicateEmail に変換して返します。
func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	const query = `INSERT INTO accounts (id, email, password_hash, fullname, street, postal_code, city, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	createdAt := acc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, query,
		acc.ID, acc.Email, acc.PasswordHash, acc.Fullname, acc.Street, acc.Postal, acc.City, createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return account.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでアカウントを検索します。
func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	const query = `SELECT id, email, password_hash, fullname, street, postal_code, city, created_at
		FROM accounts WHERE email = $1`

	row := s.pool.QueryRow(ctx, query, email)
	var acc account.Account
	if err := row.Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Fullname, &acc.Street, &acc.Postal, &acc.City, &acc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}
