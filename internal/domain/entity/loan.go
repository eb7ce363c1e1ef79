package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanType string

const (
	LoanPersonal  LoanType = "PERSONAL"
	LoanBusiness  LoanType = "BUSINESS"
	LoanVehicle   LoanType = "VEHICLE"
	LoanEquipment LoanType = "EQUIPMENT"
)

func ParseLoanType(s string) (LoanType, bool) {
	switch LoanType(s) {
	case LoanPersonal, LoanBusiness, LoanVehicle, LoanEquipment:
		return LoanType(s), true
	}
	return "", false
}

type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanRejected LoanStatus = "REJECTED"
)

// Amount bounds are part of the lending policy, inclusive on both ends.
var (
	MinLoanAmount = decimal.NewFromInt(1_000)
	MaxLoanAmount = decimal.NewFromInt(5_000_000)
)

// AmountInBounds reports whether amount is a valid loan amount.
func AmountInBounds(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(MinLoanAmount) && amount.LessThanOrEqual(MaxLoanAmount)
}

// Loan is a loan application. MerchantID is set only for proxy applications
// (a MERCHANT intermediating for a third party) and records the acting
// merchant's own id. BankerID is set exactly once, at decision time.
type Loan struct {
	ID          string          `json:"id"`
	Type        LoanType        `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Status      LoanStatus      `json:"status"`
	ApplicantID string          `json:"applicantId"`
	MerchantID  *string         `json:"merchantId"`
	BankerID    *string         `json:"bankerId"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Decided reports whether the loan reached a terminal status.
// PENDING is the only state a decision may be applied to.
func (l *Loan) Decided() bool {
	return l.Status == LoanApproved || l.Status == LoanRejected
}

// ValidDecision reports whether s is an acceptable banker decision.
func ValidDecision(s LoanStatus) bool {
	return s == LoanApproved || s == LoanRejected
}

// CanView reports whether the requester may read this loan: the applicant,
// the recorded merchant, or any BANKER (global role override, independent of
// the recorded banker_id).
func (l *Loan) CanView(requesterID string, role Role) bool {
	if role == RoleBanker {
		return true
	}
	if l.ApplicantID == requesterID {
		return true
	}
	return l.MerchantID != nil && *l.MerchantID == requesterID
}
