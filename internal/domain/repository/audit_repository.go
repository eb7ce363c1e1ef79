package repository

import (
	"context"

	"github.com/lendora/loan-origination/internal/domain/entity"
)

// AuditLogRepository is append-only; entries are never updated or deleted.
type AuditLogRepository interface {
	Insert(ctx context.Context, e *entity.AuditLog) error
	ListRecentForLoan(ctx context.Context, loanID string, limit int) ([]*entity.AuditLog, error)
}
