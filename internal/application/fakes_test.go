package application

import (
	"context"
	"sync"
	"time"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
)

// Function-field fakes: each test overrides only the calls it cares about.

type fakeLoanRepo struct {
	CreateFunc        func(ctx context.Context, l *entity.Loan) error
	GetByIDFunc       func(ctx context.Context, id string) (*entity.Loan, error)
	ListFunc          func(ctx context.Context, f repository.LoanListFilter) ([]*entity.Loan, error)
	DecideFunc        func(ctx context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error)
	MerchantStatsFunc func(ctx context.Context, merchantID string, f repository.AnalyticsFilter) (*repository.MerchantStats, error)
}

func (f *fakeLoanRepo) Create(ctx context.Context, l *entity.Loan) error {
	return f.CreateFunc(ctx, l)
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeLoanRepo) List(ctx context.Context, fl repository.LoanListFilter) ([]*entity.Loan, error) {
	return f.ListFunc(ctx, fl)
}

func (f *fakeLoanRepo) Decide(ctx context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error) {
	return f.DecideFunc(ctx, id, decision, bankerID, notes)
}

func (f *fakeLoanRepo) MerchantStats(ctx context.Context, merchantID string, fl repository.AnalyticsFilter) (*repository.MerchantStats, error) {
	return f.MerchantStatsFunc(ctx, merchantID, fl)
}

type fakeUserRepo struct {
	CreateFunc        func(ctx context.Context, u *entity.User) error
	GetByIDFunc       func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*entity.User, error)
	UpdateProfileFunc func(ctx context.Context, id, name, phone string) (*entity.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	return f.CreateFunc(ctx, u)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.GetByEmailFunc(ctx, email)
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error) {
	return f.UpdateProfileFunc(ctx, id, name, phone)
}

type fakeKYCRepo struct {
	CreateFunc       func(ctx context.Context, d *entity.KYCDocument) error
	GetByIDFunc      func(ctx context.Context, id string) (*entity.KYCDocument, error)
	FinalizeFunc     func(ctx context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error)
	ListForUserFunc  func(ctx context.Context, userID string, status entity.KYCStatus) ([]*entity.KYCDocument, error)
	ListPendingFunc  func(ctx context.Context, limit int) ([]*repository.KYCDocumentWithOwner, error)
	GetWithOwnerFunc func(ctx context.Context, id string) (*repository.KYCDocumentWithOwner, error)
	ReviewFunc       func(ctx context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error)
}

func (f *fakeKYCRepo) Create(ctx context.Context, d *entity.KYCDocument) error {
	return f.CreateFunc(ctx, d)
}

func (f *fakeKYCRepo) GetByID(ctx context.Context, id string) (*entity.KYCDocument, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeKYCRepo) Finalize(ctx context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error) {
	return f.FinalizeFunc(ctx, id, url, fileSize, contentType)
}

func (f *fakeKYCRepo) ListForUser(ctx context.Context, userID string, status entity.KYCStatus) ([]*entity.KYCDocument, error) {
	return f.ListForUserFunc(ctx, userID, status)
}

func (f *fakeKYCRepo) ListPending(ctx context.Context, limit int) ([]*repository.KYCDocumentWithOwner, error) {
	return f.ListPendingFunc(ctx, limit)
}

func (f *fakeKYCRepo) GetWithOwner(ctx context.Context, id string) (*repository.KYCDocumentWithOwner, error) {
	return f.GetWithOwnerFunc(ctx, id)
}

func (f *fakeKYCRepo) Review(ctx context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error) {
	return f.ReviewFunc(ctx, id, status, verifiedBy, notes)
}

// recordingAuditRepo keeps every inserted entry for assertions.
type recordingAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditLog
	history []*entity.AuditLog
	listErr error
}

func (r *recordingAuditRepo) Insert(_ context.Context, e *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingAuditRepo) ListRecentForLoan(_ context.Context, _ string, _ int) ([]*entity.AuditLog, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.history, nil
}

func (r *recordingAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeSigner struct {
	SignFunc func(objectKey, contentType string, expires time.Time) (string, error)
}

func (f *fakeSigner) SignedUploadURL(objectKey, contentType string, expires time.Time) (string, error) {
	if f.SignFunc != nil {
		return f.SignFunc(objectKey, contentType, expires)
	}
	return "https://storage.test/" + objectKey + "?signed=1", nil
}

func (f *fakeSigner) ObjectURL(objectKey string) string {
	return "https://storage.test/" + objectKey
}
