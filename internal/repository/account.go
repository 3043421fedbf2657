package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scanlink/scanlink-server-go/internal/database"
	"github.com/scanlink/scanlink-server-go/internal/model"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Account, error)
	UpdateToken(ctx context.Context, id, tokenHash string) (*model.Account, error)
	Count(ctx context.Context) (int, error)
}

type accountRepo struct {
	db database.DBTX
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts WHERE id = $1
	`, id)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM accounts
		WHERE api_token_hash = $1 AND disabled_at IS NULL
	`, tokenHash)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) UpdateToken(ctx context.Context, id, tokenHash string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, `
		UPDATE accounts SET
			api_token_hash = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, tokenHash, time.Now())
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`)
	return count, err
}
