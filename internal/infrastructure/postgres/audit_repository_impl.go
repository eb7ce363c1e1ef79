package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
)

type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

func (r *AuditLogRepository) Insert(ctx context.Context, e *entity.AuditLog) error {
	details := []byte("{}")
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = b
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO audit_logs (loan_id, action, actor_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.LoanID, e.Action, e.ActorID, details)

	return row.Scan(&e.ID, &e.CreatedAt)
}

func (r *AuditLogRepository) ListRecentForLoan(ctx context.Context, loanID string, limit int) ([]*entity.AuditLog, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, action, actor_id, details, created_at
		FROM audit_logs
		WHERE loan_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, loanID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.AuditLog
	for rows.Next() {
		e := &entity.AuditLog{}
		var details []byte
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Action, &e.ActorID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)
