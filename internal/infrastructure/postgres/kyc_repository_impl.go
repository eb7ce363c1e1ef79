package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
)

type KYCRepository struct {
	pool *pgxpool.Pool
}

func NewKYCRepository(pool *pgxpool.Pool) *KYCRepository {
	return &KYCRepository{pool: pool}
}

const kycColumns = `id, type, status, storage_key, url, user_id, verified_by, review_notes, file_size, content_type, created_at, updated_at`

func scanKYC(row pgx.Row) (*entity.KYCDocument, error) {
	d := &entity.KYCDocument{}
	if err := row.Scan(&d.ID, &d.Type, &d.Status, &d.StorageKey, &d.URL, &d.UserID,
		&d.VerifiedBy, &d.ReviewNotes, &d.FileSize, &d.ContentType,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("document")
		}
		return nil, err
	}
	return d, nil
}

func (r *KYCRepository) Create(ctx context.Context, d *entity.KYCDocument) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO kyc_documents (type, status, storage_key, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, d.Type, d.Status, d.StorageKey, d.UserID)

	return row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *KYCRepository) GetByID(ctx context.Context, id string) (*entity.KYCDocument, error) {
	return scanKYC(r.pool.QueryRow(ctx, `
		SELECT `+kycColumns+`
		FROM kyc_documents
		WHERE id = $1
	`, id))
}

func (r *KYCRepository) Finalize(ctx context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error) {
	return scanKYC(r.pool.QueryRow(ctx, `
		UPDATE kyc_documents
		SET status = 'PENDING', url = $2, file_size = $3, content_type = $4, updated_at = now()
		WHERE id = $1 AND status = 'UPLOADING'
		RETURNING `+kycColumns+`
	`, id, url, fileSize, contentType))
}

func (r *KYCRepository) ListForUser(ctx context.Context, userID string, status entity.KYCStatus) ([]*entity.KYCDocument, error) {
	q := `SELECT ` + kycColumns + ` FROM kyc_documents WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.KYCDocument
	for rows.Next() {
		d, err := scanKYC(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanKYCWithOwner(row pgx.Row) (*repository.KYCDocumentWithOwner, error) {
	rec := &repository.KYCDocumentWithOwner{}
	d := &rec.Document
	if err := row.Scan(&d.ID, &d.Type, &d.Status, &d.StorageKey, &d.URL, &d.UserID,
		&d.VerifiedBy, &d.ReviewNotes, &d.FileSize, &d.ContentType,
		&d.CreatedAt, &d.UpdatedAt,
		&rec.OwnerName, &rec.OwnerEmail, &rec.OwnerRole); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("document")
		}
		return nil, err
	}
	return rec, nil
}

const kycOwnerSelect = `
	SELECT d.id, d.type, d.status, d.storage_key, d.url, d.user_id,
	       d.verified_by, d.review_notes, d.file_size, d.content_type,
	       d.created_at, d.updated_at,
	       u.name, u.email, u.role
	FROM kyc_documents d
	JOIN users u ON u.id = d.user_id`

func (r *KYCRepository) ListPending(ctx context.Context, limit int) ([]*repository.KYCDocumentWithOwner, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, kycOwnerSelect+`
		WHERE d.status = 'PENDING'
		ORDER BY d.created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.KYCDocumentWithOwner
	for rows.Next() {
		rec, err := scanKYCWithOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *KYCRepository) GetWithOwner(ctx context.Context, id string) (*repository.KYCDocumentWithOwner, error) {
	return scanKYCWithOwner(r.pool.QueryRow(ctx, kycOwnerSelect+`
		WHERE d.id = $1
	`, id))
}

func (r *KYCRepository) Review(ctx context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error) {
	// Same guard pattern as loan decisions: only a PENDING row can be reviewed.
	return scanKYC(r.pool.QueryRow(ctx, `
		UPDATE kyc_documents
		SET status = $2, verified_by = $3, review_notes = $4, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+kycColumns+`
	`, id, status, verifiedBy, notes))
}

var _ repository.KYCRepository = (*KYCRepository)(nil)
