package application

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
	"github.com/lendora/loan-origination/pkg/helpers"
	"github.com/lendora/loan-origination/pkg/mailer"
)

// LoanService is the loan application ledger.
type LoanService struct {
	Repo         repository.LoanRepository
	Users        repository.UserRepository
	AuditRepo    repository.AuditLogRepository
	Audit        *AuditTrail
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESLoansIndex string
	Pub          *helpers.RabbitPublisher
	MailEnabled  bool
}

func NewLoanService(repo repository.LoanRepository, users repository.UserRepository, auditRepo repository.AuditLogRepository, audit *AuditTrail, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, pub *helpers.RabbitPublisher, mailEnabled bool) *LoanService {
	return &LoanService{
		Repo:         repo,
		Users:        users,
		AuditRepo:    auditRepo,
		Audit:        audit,
		Logger:       logger,
		ES:           es,
		ESLoansIndex: esIndex,
		Pub:          pub,
		MailEnabled:  mailEnabled,
	}
}

type CreateLoanInput struct {
	Type        string
	Amount      decimal.Decimal
	MerchantRef string // non-empty marks a merchant proxy application
}

// Create registers a loan application in PENDING.
//
// Proxy semantics: when a MERCHANT supplies a merchant reference, merchant_id
// records the acting merchant's own id (the intermediary), not the referenced
// party's. A merchant applying without a reference is a self-application and
// merchant_id stays null, as it always does for customers.
func (s *LoanService) Create(ctx context.Context, applicantID string, role entity.Role, in CreateLoanInput) (*entity.Loan, error) {
	loanType, ok := entity.ParseLoanType(in.Type)
	if !ok {
		return nil, apperr.ValidationMsg("type", "must be one of: PERSONAL, BUSINESS, VEHICLE, EQUIPMENT")
	}
	if !entity.AmountInBounds(in.Amount) {
		return nil, apperr.ValidationMsg("amount",
			"must be between "+entity.MinLoanAmount.String()+" and "+entity.MaxLoanAmount.String())
	}

	var merchantID *string
	if role == entity.RoleMerchant && in.MerchantRef != "" {
		id := applicantID
		merchantID = &id
	}

	l := &entity.Loan{
		Type:        loanType,
		Amount:      in.Amount,
		Status:      entity.LoanPending,
		ApplicantID: applicantID,
		MerchantID:  merchantID,
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, &l.ID, entity.ActionLoanCreated, &applicantID, map[string]any{
		"type":   string(l.Type),
		"amount": l.Amount.String(),
	})
	s.indexLoan(ctx, l)
	return l, nil
}

// LoanDetail is a loan plus its recent audit history for display.
type LoanDetail struct {
	Loan    *entity.Loan
	History []*entity.AuditLog
}

// GetByID enforces read scoping: applicant, recorded merchant, or any BANKER.
func (s *LoanService) GetByID(ctx context.Context, loanID, requesterID string, role entity.Role) (*LoanDetail, error) {
	l, err := s.Repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.CanView(requesterID, role) {
		return nil, apperr.Forbidden("")
	}

	history, err := s.AuditRepo.ListRecentForLoan(ctx, l.ID, 5)
	if err != nil {
		// History is display-only; degrade rather than fail the read.
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("loan_id", l.ID).Warn("audit history read failed")
		}
		history = nil
	}
	return &LoanDetail{Loan: l, History: history}, nil
}

type ListLoansInput struct {
	Status    string
	Type      string
	MinAmount *decimal.Decimal
	Limit     int
}

// List applies the role scope first, then ANDs the caller's filters on top:
// customers see their own applications, merchants see rows where they are
// applicant or recorded merchant, bankers see the PENDING queue regardless of
// any personal relationship to the rows.
func (s *LoanService) List(ctx context.Context, userID string, role entity.Role, in ListLoansInput) ([]*entity.Loan, error) {
	f := repository.LoanListFilter{
		Status:    entity.LoanStatus(in.Status),
		Type:      entity.LoanType(in.Type),
		MinAmount: in.MinAmount,
		Limit:     in.Limit,
	}
	switch role {
	case entity.RoleCustomer:
		f.ApplicantID = userID
	case entity.RoleMerchant:
		f.ParticipantID = userID
	case entity.RoleBanker:
		if in.Status != "" && in.Status != string(entity.LoanPending) {
			// Banker scope is the PENDING queue; ANDing a different status
			// yields nothing by construction.
			return []*entity.Loan{}, nil
		}
		f.Status = entity.LoanPending
	default:
		return nil, apperr.Forbidden("")
	}
	return s.Repo.List(ctx, f)
}

// Decide applies a banker decision. A loan is decided exactly once: any
// attempt to re-decide a non-PENDING loan fails with an invalid transition.
func (s *LoanService) Decide(ctx context.Context, loanID, decision, bankerID, notes string) (*entity.Loan, error) {
	status := entity.LoanStatus(decision)
	if !entity.ValidDecision(status) {
		return nil, apperr.InvalidTransition("decision must be APPROVED or REJECTED")
	}

	l, err := s.Repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Decided() {
		return nil, apperr.InvalidTransition("loan has already been decided")
	}

	updated, err := s.Repo.Decide(ctx, loanID, status, bankerID, notes)
	if err != nil {
		if apperr.From(err).Is(apperr.ErrNotFound) {
			// Lost the race against a concurrent decision.
			return nil, apperr.InvalidTransition("loan has already been decided")
		}
		return nil, err
	}

	action := entity.ActionLoanApproved
	if status == entity.LoanRejected {
		action = entity.ActionLoanRejected
	}
	s.Audit.Record(ctx, &updated.ID, action, &bankerID, map[string]any{
		"notes": notes,
	})
	s.indexLoan(ctx, updated)
	s.notifyDecision(ctx, updated, notes)
	return updated, nil
}

type AnalyticsInput struct {
	Status   string
	FromDate string
	ToDate   string
}

// MerchantAnalytics are the merchant-facing aggregates over loans where the
// caller is the recorded merchant.
type MerchantAnalytics struct {
	TotalLoans              int64           `json:"totalLoans"`
	ApprovedLoans           int64           `json:"approvedLoans"`
	ApprovalRate            int             `json:"approvalRate"`
	TotalApprovedAmount     decimal.Decimal `json:"totalApprovedAmount"`
	AverageApprovalTimeDays float64         `json:"averageApprovalTimeDays"`
}

func (s *LoanService) MerchantAnalytics(ctx context.Context, merchantID string, in AnalyticsInput) (*MerchantAnalytics, error) {
	stats, err := s.Repo.MerchantStats(ctx, merchantID, repository.AnalyticsFilter{
		Status:   entity.LoanStatus(in.Status),
		FromDate: in.FromDate,
		ToDate:   in.ToDate,
	})
	if err != nil {
		return nil, err
	}

	rate := 0
	if stats.TotalLoans > 0 {
		rate = int(math.Round(float64(stats.ApprovedLoans) / float64(stats.TotalLoans) * 100))
	}
	return &MerchantAnalytics{
		TotalLoans:              stats.TotalLoans,
		ApprovedLoans:           stats.ApprovedLoans,
		ApprovalRate:            rate,
		TotalApprovedAmount:     stats.ApprovedAmount,
		AverageApprovalTimeDays: stats.AvgApprovalDays,
	}, nil
}

func (s *LoanService) indexLoan(ctx context.Context, l *entity.Loan) {
	if s.ES == nil || s.ESLoansIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           l.ID,
		"type":         string(l.Type),
		"status":       string(l.Status),
		"amount":       l.Amount.InexactFloat64(),
		"applicant_id": l.ApplicantID,
		"created_at":   l.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   l.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESLoansIndex, DocumentID: l.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("loan_id", l.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("loan_id", l.ID).Warn("es index response error")
	}
}

// Search performs a simple multi_match over the loan index (banker tooling).
func (s *LoanService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESLoansIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"id^2", "type", "status", "applicant_id"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESLoansIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *LoanService) notifyDecision(ctx context.Context, l *entity.Loan, notes string) {
	if s.Pub == nil || !s.MailEnabled || s.Users == nil {
		return
	}
	applicant, err := s.Users.GetByID(ctx, l.ApplicantID)
	if err != nil || applicant == nil {
		return
	}
	job := mailer.EmailJob{
		To:       applicant.Email,
		Template: mailer.TemplateLoanDecision,
		Data: map[string]any{
			"Name":     applicant.Name,
			"LoanType": string(l.Type),
			"Amount":   l.Amount.String(),
			"Decision": string(l.Status),
			"Notes":    notes,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("loan_id", l.ID).Warn("decision email enqueue failed")
	}
}
