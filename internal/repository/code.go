package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scanlink/scanlink-server-go/internal/database"
	"github.com/scanlink/scanlink-server-go/internal/model"
)

type CodeRepository interface {
	FindByID(ctx context.Context, id string) (*model.ShortCode, error)
	FindByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error)
	FindCompleteByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error)
	CountByOwnerID(ctx context.Context, ownerID string) (int, error)
	CountByStatus(ctx context.Context, status model.CodeStatus) (int, error)
	Insert(ctx context.Context, params model.CreateShortCodeParams) (*model.ShortCode, error)
	Update(ctx context.Context, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error)
	Publish(ctx context.Context, id string, styleConfig json.RawMessage) (*model.ShortCode, error)
	ConditionalIncrementScan(ctx context.Context, id string, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type codeRepo struct {
	db database.DBTX
}

func NewCodeRepository(db *sqlx.DB) CodeRepository {
	return &codeRepo{db: db}
}

func (r *codeRepo) FindByID(ctx context.Context, id string) (*model.ShortCode, error) {
	var code model.ShortCode
	err := r.db.GetContext(ctx, &code, `
		SELECT * FROM short_codes WHERE id = $1
	`, id)
	return HandleNotFound(&code, err)
}

func (r *codeRepo) FindByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
	var codes []model.ShortCode
	err := r.db.SelectContext(ctx, &codes, `
		SELECT * FROM short_codes
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	return codes, err
}

// FindCompleteByOwnerID backs the dashboard views that hide unpublished
// drafts. Resolution never filters on is_complete.
func (r *codeRepo) FindCompleteByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
	var codes []model.ShortCode
	err := r.db.SelectContext(ctx, &codes, `
		SELECT * FROM short_codes
		WHERE owner_id = $1 AND is_complete = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	return codes, err
}

func (r *codeRepo) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM short_codes WHERE owner_id = $1
	`, ownerID)
	return count, err
}

func (r *codeRepo) CountByStatus(ctx context.Context, status model.CodeStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM short_codes WHERE status = $1
	`, status)
	return count, err
}

func (r *codeRepo) Insert(ctx context.Context, params model.CreateShortCodeParams) (*model.ShortCode, error) {
	var code model.ShortCode
	err := r.db.GetContext(ctx, &code, `
		INSERT INTO short_codes (id, owner_id, title, description, kind, content, scan_limit, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`, params.ID, params.OwnerID, params.Title, params.Description, params.Kind,
		params.Content, params.ScanLimit, params.ExpiresAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return &code, nil
}

func (r *codeRepo) Update(ctx context.Context, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error) {
	var expiresAt interface{}
	if params.ClearExpiry {
		expiresAt = nil
	} else if params.ExpiresAt != nil {
		expiresAt = *params.ExpiresAt
	}

	var code model.ShortCode
	err := r.db.GetContext(ctx, &code, `
		UPDATE short_codes SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			content = COALESCE($4, content),
			scan_limit = COALESCE($5, scan_limit),
			expires_at = CASE WHEN $6 THEN $7::timestamptz ELSE COALESCE($7::timestamptz, expires_at) END,
			status = COALESCE($8, status),
			updated_at = $9
		WHERE id = $1
		RETURNING *
	`, id, params.Title, params.Description, params.Content, params.ScanLimit,
		params.ClearExpiry, expiresAt, params.Status, time.Now())
	return HandleNotFound(&code, err)
}

func (r *codeRepo) Publish(ctx context.Context, id string, styleConfig json.RawMessage) (*model.ShortCode, error) {
	var code model.ShortCode
	err := r.db.GetContext(ctx, &code, `
		UPDATE short_codes SET
			style_config = $2,
			is_complete = TRUE,
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, styleConfig, time.Now())
	return HandleNotFound(&code, err)
}

// ConditionalIncrementScan is the scan accountant: a single atomic statement
// that counts a visit only while the record is still eligible. The eligibility
// predicate is evaluated at the same instant as the increment, so two visits
// racing at the limit boundary can never both slip through. Zero rows affected
// means the caller lost that race (or the record changed since it was gated)
// and must re-read to classify the denial.
func (r *codeRepo) ConditionalIncrementScan(ctx context.Context, id string, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE short_codes SET
			scan_count = scan_count + 1,
			updated_at = $2
		WHERE id = $1
			AND status = 'active'
			AND (expires_at IS NULL OR expires_at > $2)
			AND (scan_limit = 0 OR scan_count < scan_limit)
	`, id, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *codeRepo) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM short_codes WHERE id = $1
	`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
