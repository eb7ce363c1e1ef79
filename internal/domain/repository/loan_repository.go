package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lendora/loan-origination/internal/domain/entity"
)

// LoanListFilter scopes a loan listing. Exactly one of ApplicantID /
// ParticipantID is set for customer/merchant scopes; both empty means a
// banker-wide scope.
type LoanListFilter struct {
	ApplicantID   string // match applicant only
	ParticipantID string // match applicant OR recorded merchant
	Status        entity.LoanStatus
	Type          entity.LoanType
	MinAmount     *decimal.Decimal
	Limit         int
}

// AnalyticsFilter narrows merchant analytics by status and creation window.
type AnalyticsFilter struct {
	Status   entity.LoanStatus
	FromDate string // inclusive, YYYY-MM-DD
	ToDate   string // inclusive, YYYY-MM-DD
}

// MerchantStats are the raw aggregates; ratio math happens in the service.
type MerchantStats struct {
	TotalLoans      int64
	ApprovedLoans   int64
	ApprovedAmount  decimal.Decimal
	AvgApprovalDays float64
}

type LoanRepository interface {
	Create(ctx context.Context, l *entity.Loan) error
	GetByID(ctx context.Context, id string) (*entity.Loan, error)
	List(ctx context.Context, f LoanListFilter) ([]*entity.Loan, error)
	// Decide applies a banker decision with a status guard: the update only
	// lands if the row is still PENDING. Returns the updated loan, or
	// ErrNotFound if the guard (or the id) did not match.
	Decide(ctx context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error)
	MerchantStats(ctx context.Context, merchantID string, f AnalyticsFilter) (*MerchantStats, error)
}
