package entity

import "time"

// Audit actions written by the ledgers.
const (
	ActionLoanCreated  = "LOAN_CREATED"
	ActionLoanApproved = "LOAN_APPROVED"
	ActionLoanRejected = "LOAN_REJECTED"
	ActionKYCSubmitted = "KYC_SUBMITTED"
	ActionKYCVerified  = "KYC_VERIFIED"
	ActionKYCRejected  = "KYC_REJECTED"
)

// AuditLog is an append-only record of a state-changing action. It is
// observational only and never consulted for authorization. LoanID is nil for
// KYC-only events; ActorID is nil for system-initiated actions.
type AuditLog struct {
	ID        string         `json:"id"`
	LoanID    *string        `json:"loanId"`
	Action    string         `json:"action"`
	ActorID   *string        `json:"actorId"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}
