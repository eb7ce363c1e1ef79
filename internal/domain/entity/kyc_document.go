package entity

import (
	"math"
	"time"
)

type KYCDocumentType string

const (
	DocIDProof       KYCDocumentType = "ID_PROOF"
	DocAddressProof  KYCDocumentType = "ADDRESS_PROOF"
	DocPANCard       KYCDocumentType = "PAN_CARD"
	DocBankStatement KYCDocumentType = "BANK_STATEMENT"
)

func ParseKYCDocumentType(s string) (KYCDocumentType, bool) {
	switch KYCDocumentType(s) {
	case DocIDProof, DocAddressProof, DocPANCard, DocBankStatement:
		return KYCDocumentType(s), true
	}
	return "", false
}

// DisplayName returns the human-readable label for a document type.
func (t KYCDocumentType) DisplayName() string {
	switch t {
	case DocIDProof:
		return "Identity Proof"
	case DocAddressProof:
		return "Address Proof"
	case DocPANCard:
		return "PAN Card"
	case DocBankStatement:
		return "Bank Statement"
	}
	return string(t)
}

type KYCStatus string

const (
	KYCUploading KYCStatus = "UPLOADING"
	KYCPending   KYCStatus = "PENDING"
	KYCVerified  KYCStatus = "VERIFIED"
	KYCRejected  KYCStatus = "REJECTED"
)

// ValidKYCDecision reports whether s is an acceptable reviewer decision.
func ValidKYCDecision(s KYCStatus) bool {
	return s == KYCVerified || s == KYCRejected
}

// KYCDocument tracks one uploaded document. A rejected document is never
// resurrected; resubmission registers a fresh row. VerifiedBy holds the
// reviewing banker only while the status is VERIFIED.
type KYCDocument struct {
	ID          string          `json:"id"`
	Type        KYCDocumentType `json:"type"`
	Status      KYCStatus       `json:"status"`
	StorageKey  string          `json:"storageKey"`
	URL         *string         `json:"url"`
	UserID      string          `json:"userId"`
	VerifiedBy  *string         `json:"verifiedBy"`
	ReviewNotes string          `json:"reviewNotes"`
	FileSize    int64           `json:"fileSize"`
	ContentType string          `json:"contentType"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DaysPending is the floor of whole days elapsed since the document was created.
func (d *KYCDocument) DaysPending(now time.Time) int {
	return int(math.Floor(now.Sub(d.CreatedAt).Hours() / 24))
}

// Overdue reports whether a pending document has been waiting on review for
// more than three days.
func (d *KYCDocument) Overdue(now time.Time) bool {
	return d.Status == KYCPending && d.DaysPending(now) > 3
}

// RequiredDocument is one entry of a role's requirement set.
type RequiredDocument struct {
	Type        KYCDocumentType `json:"type"`
	DisplayName string          `json:"displayName"`
	Required    bool            `json:"required"`
}

var roleBaseDocuments = map[Role][]KYCDocumentType{
	RoleCustomer: {DocIDProof, DocAddressProof, DocPANCard},
	RoleMerchant: {DocIDProof, DocAddressProof, DocPANCard, DocBankStatement},
	RoleBanker:   {},
}

var loanTypeExtraDocuments = map[LoanType][]KYCDocumentType{
	LoanBusiness:  {DocBankStatement},
	LoanEquipment: {DocBankStatement},
	LoanVehicle:   {DocAddressProof},
}

// RequiredDocuments returns the de-duplicated requirement set for a role,
// optionally widened by the loan type being applied for. Pass an empty
// loan type when no application is in play. Deterministic: order follows the
// static tables.
func RequiredDocuments(role Role, loanType LoanType) []RequiredDocument {
	seen := make(map[KYCDocumentType]bool)
	out := make([]RequiredDocument, 0, 4)
	add := func(t KYCDocumentType) {
		if seen[t] {
			return
		}
		seen[t] = true
		out = append(out, RequiredDocument{Type: t, DisplayName: t.DisplayName(), Required: true})
	}
	for _, t := range roleBaseDocuments[role] {
		add(t)
	}
	if loanType != "" {
		for _, t := range loanTypeExtraDocuments[loanType] {
			add(t)
		}
	}
	return out
}

type CompletionState string

const (
	CompletionNotRequired CompletionState = "NOT_REQUIRED"
	CompletionComplete    CompletionState = "COMPLETE"
	CompletionInProgress  CompletionState = "IN_PROGRESS"
	CompletionIncomplete  CompletionState = "INCOMPLETE"
)

// Completion aggregates a user's KYC progress against a requirement set.
type Completion struct {
	PercentComplete int             `json:"percentComplete"`
	Completed       int             `json:"completed"`
	Pending         int             `json:"pending"`
	Incomplete      int             `json:"incomplete"`
	Status          CompletionState `json:"status"`
	NeedsAction     bool            `json:"needsAction"`
}

// CompletionStatus computes KYC progress. A required type counts once no
// matter how many documents of that type exist; VERIFIED takes precedence
// over PENDING when both are present for the same type.
func CompletionStatus(docs []*KYCDocument, required []RequiredDocument) Completion {
	if len(required) == 0 {
		return Completion{Status: CompletionNotRequired}
	}

	verified := make(map[KYCDocumentType]bool)
	pending := make(map[KYCDocumentType]bool)
	for _, d := range docs {
		switch d.Status {
		case KYCVerified:
			verified[d.Type] = true
		case KYCPending:
			pending[d.Type] = true
		}
	}

	var completed, inReview int
	for _, req := range required {
		switch {
		case verified[req.Type]:
			completed++
		case pending[req.Type]:
			inReview++
		}
	}

	total := len(required)
	c := Completion{
		PercentComplete: int(math.Round(float64(completed) / float64(total) * 100)),
		Completed:       completed,
		Pending:         inReview,
		Incomplete:      total - completed - inReview,
	}
	switch {
	case completed == total:
		c.Status = CompletionComplete
	case inReview > 0:
		c.Status = CompletionInProgress
	default:
		c.Status = CompletionIncomplete
	}
	c.NeedsAction = c.Incomplete > 0
	return c
}
