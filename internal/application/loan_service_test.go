package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
)

func newLoanService(repo *fakeLoanRepo, users *fakeUserRepo, audit *recordingAuditRepo) *LoanService {
	logger := logrus.New()
	return &LoanService{
		Repo:      repo,
		Users:     users,
		AuditRepo: audit,
		Audit:     NewAuditTrail(audit, logger),
		Logger:    logger,
	}
}

func TestLoanCreate_Customer(t *testing.T) {
	audit := &recordingAuditRepo{}
	repo := &fakeLoanRepo{
		CreateFunc: func(_ context.Context, l *entity.Loan) error {
			l.ID = "loan-1"
			return nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, audit)

	l, err := svc.Create(context.Background(), "cust-1", entity.RoleCustomer, CreateLoanInput{
		Type:   "PERSONAL",
		Amount: decimal.NewFromInt(50_000),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LoanPending, l.Status)
	assert.Equal(t, "cust-1", l.ApplicantID)
	assert.Nil(t, l.MerchantID)
	assert.Equal(t, []string{entity.ActionLoanCreated}, audit.actions())
}

func TestLoanCreate_MerchantProxyRecordsOwnID(t *testing.T) {
	repo := &fakeLoanRepo{
		CreateFunc: func(_ context.Context, l *entity.Loan) error {
			l.ID = "loan-2"
			return nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	l, err := svc.Create(context.Background(), "merch-1", entity.RoleMerchant, CreateLoanInput{
		Type:        "BUSINESS",
		Amount:      decimal.NewFromInt(200_000),
		MerchantRef: "some-customer-id",
	})
	require.NoError(t, err)
	// The intermediary, not the referenced party, is recorded.
	require.NotNil(t, l.MerchantID)
	assert.Equal(t, "merch-1", *l.MerchantID)
}

func TestLoanCreate_MerchantSelfApplication(t *testing.T) {
	repo := &fakeLoanRepo{
		CreateFunc: func(_ context.Context, l *entity.Loan) error { return nil },
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	l, err := svc.Create(context.Background(), "merch-1", entity.RoleMerchant, CreateLoanInput{
		Type:   "EQUIPMENT",
		Amount: decimal.NewFromInt(75_000),
	})
	require.NoError(t, err)
	assert.Nil(t, l.MerchantID)
}

func TestLoanCreate_Validation(t *testing.T) {
	svc := newLoanService(&fakeLoanRepo{}, &fakeUserRepo{}, &recordingAuditRepo{})

	_, err := svc.Create(context.Background(), "cust-1", entity.RoleCustomer, CreateLoanInput{
		Type:   "PAYDAY",
		Amount: decimal.NewFromInt(50_000),
	})
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))

	_, err = svc.Create(context.Background(), "cust-1", entity.RoleCustomer, CreateLoanInput{
		Type:   "PERSONAL",
		Amount: decimal.NewFromInt(999),
	})
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))

	_, err = svc.Create(context.Background(), "cust-1", entity.RoleCustomer, CreateLoanInput{
		Type:   "PERSONAL",
		Amount: decimal.NewFromInt(5_000_001),
	})
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))
}

func TestLoanGetByID_Scoping(t *testing.T) {
	merchant := "merch-1"
	stored := &entity.Loan{
		ID:          "loan-1",
		Status:      entity.LoanPending,
		ApplicantID: "cust-1",
		MerchantID:  &merchant,
	}
	audit := &recordingAuditRepo{history: []*entity.AuditLog{{Action: entity.ActionLoanCreated}}}
	repo := &fakeLoanRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.Loan, error) { return stored, nil },
	}
	svc := newLoanService(repo, &fakeUserRepo{}, audit)

	detail, err := svc.GetByID(context.Background(), "loan-1", "cust-1", entity.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, detail.History, 1)

	_, err = svc.GetByID(context.Background(), "loan-1", "cust-2", entity.RoleCustomer)
	assert.True(t, apperr.From(err).Is(apperr.ErrForbidden))

	// Any banker reads any loan, not just the one who decided it.
	_, err = svc.GetByID(context.Background(), "loan-1", "banker-9", entity.RoleBanker)
	assert.NoError(t, err)
}

func TestLoanGetByID_HistoryDegrades(t *testing.T) {
	stored := &entity.Loan{ID: "loan-1", Status: entity.LoanPending, ApplicantID: "cust-1"}
	audit := &recordingAuditRepo{listErr: assert.AnError}
	repo := &fakeLoanRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.Loan, error) { return stored, nil },
	}
	svc := newLoanService(repo, &fakeUserRepo{}, audit)

	detail, err := svc.GetByID(context.Background(), "loan-1", "cust-1", entity.RoleCustomer)
	require.NoError(t, err)
	assert.Nil(t, detail.History)
}

func TestLoanList_RoleScopes(t *testing.T) {
	var captured repository.LoanListFilter
	repo := &fakeLoanRepo{
		ListFunc: func(_ context.Context, f repository.LoanListFilter) ([]*entity.Loan, error) {
			captured = f
			return []*entity.Loan{}, nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})
	ctx := context.Background()

	_, err := svc.List(ctx, "cust-1", entity.RoleCustomer, ListLoansInput{})
	require.NoError(t, err)
	assert.Equal(t, "cust-1", captured.ApplicantID)
	assert.Empty(t, captured.ParticipantID)

	_, err = svc.List(ctx, "merch-1", entity.RoleMerchant, ListLoansInput{})
	require.NoError(t, err)
	assert.Equal(t, "merch-1", captured.ParticipantID)
	assert.Empty(t, captured.ApplicantID)

	_, err = svc.List(ctx, "banker-1", entity.RoleBanker, ListLoansInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.LoanPending, captured.Status)
}

func TestLoanList_BankerConflictingStatusIsEmpty(t *testing.T) {
	repo := &fakeLoanRepo{
		ListFunc: func(_ context.Context, f repository.LoanListFilter) ([]*entity.Loan, error) {
			t.Fatal("repository must not be queried")
			return nil, nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	loans, err := svc.List(context.Background(), "banker-1", entity.RoleBanker, ListLoansInput{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestLoanDecide(t *testing.T) {
	audit := &recordingAuditRepo{}
	stored := &entity.Loan{ID: "loan-1", Status: entity.LoanPending, ApplicantID: "cust-1"}
	repo := &fakeLoanRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.Loan, error) { return stored, nil },
		DecideFunc: func(_ context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error) {
			updated := *stored
			updated.Status = decision
			updated.BankerID = &bankerID
			updated.Notes = notes
			return &updated, nil
		},
	}
	users := &fakeUserRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.User, error) {
			return &entity.User{ID: id, Email: "a@b.c"}, nil
		},
	}
	svc := newLoanService(repo, users, audit)

	l, err := svc.Decide(context.Background(), "loan-1", "APPROVED", "banker-1", "income verified")
	require.NoError(t, err)
	assert.Equal(t, entity.LoanApproved, l.Status)
	require.NotNil(t, l.BankerID)
	assert.Equal(t, "banker-1", *l.BankerID)
	assert.Equal(t, []string{entity.ActionLoanApproved}, audit.actions())
}

func TestLoanDecide_InvalidDecision(t *testing.T) {
	svc := newLoanService(&fakeLoanRepo{}, &fakeUserRepo{}, &recordingAuditRepo{})

	_, err := svc.Decide(context.Background(), "loan-1", "PENDING", "banker-1", "")
	assert.True(t, apperr.From(err).Is(apperr.ErrInvalidTransition))
}

func TestLoanDecide_AlreadyDecided(t *testing.T) {
	stored := &entity.Loan{ID: "loan-1", Status: entity.LoanApproved}
	repo := &fakeLoanRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.Loan, error) { return stored, nil },
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	_, err := svc.Decide(context.Background(), "loan-1", "REJECTED", "banker-1", "")
	assert.True(t, apperr.From(err).Is(apperr.ErrInvalidTransition))
}

func TestLoanDecide_LostRace(t *testing.T) {
	stored := &entity.Loan{ID: "loan-1", Status: entity.LoanPending}
	repo := &fakeLoanRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.Loan, error) { return stored, nil },
		DecideFunc: func(_ context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error) {
			// Another banker's update landed between the read and the guard.
			return nil, apperr.NotFound("loan")
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	_, err := svc.Decide(context.Background(), "loan-1", "APPROVED", "banker-1", "")
	assert.True(t, apperr.From(err).Is(apperr.ErrInvalidTransition))
}

func TestMerchantAnalytics(t *testing.T) {
	repo := &fakeLoanRepo{
		MerchantStatsFunc: func(_ context.Context, merchantID string, f repository.AnalyticsFilter) (*repository.MerchantStats, error) {
			return &repository.MerchantStats{
				TotalLoans:      3,
				ApprovedLoans:   2,
				ApprovedAmount:  decimal.NewFromInt(300_000),
				AvgApprovalDays: 1.5,
			}, nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	stats, err := svc.MerchantAnalytics(context.Background(), "merch-1", AnalyticsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalLoans)
	assert.Equal(t, 67, stats.ApprovalRate)
	assert.True(t, stats.TotalApprovedAmount.Equal(decimal.NewFromInt(300_000)))
}

func TestMerchantAnalytics_EmptyScope(t *testing.T) {
	repo := &fakeLoanRepo{
		MerchantStatsFunc: func(_ context.Context, merchantID string, f repository.AnalyticsFilter) (*repository.MerchantStats, error) {
			return &repository.MerchantStats{}, nil
		},
	}
	svc := newLoanService(repo, &fakeUserRepo{}, &recordingAuditRepo{})

	stats, err := svc.MerchantAnalytics(context.Background(), "merch-new", AnalyticsInput{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLoans)
	assert.Zero(t, stats.ApprovalRate)
	assert.True(t, stats.TotalApprovedAmount.IsZero())
}
