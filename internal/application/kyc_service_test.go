package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
)

const testMaxFileSize = 5 * 1024 * 1024

func newKYCService(repo *fakeKYCRepo, audit *recordingAuditRepo) *KYCService {
	logger := logrus.New()
	return &KYCService{
		Repo:         repo,
		Signer:       &fakeSigner{},
		Audit:        NewAuditTrail(audit, logger),
		Logger:       logger,
		MaxFileSize:  testMaxFileSize,
		AllowedTypes: []string{"image/jpeg", "image/png", "application/pdf"},
		UploadURLTTL: 15 * time.Minute,
	}
}

func TestRegisterUpload(t *testing.T) {
	var created *entity.KYCDocument
	repo := &fakeKYCRepo{
		CreateFunc: func(_ context.Context, d *entity.KYCDocument) error {
			d.ID = "doc-1"
			created = d
			return nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	reg, err := svc.RegisterUpload(context.Background(), "user-1", "ID_PROOF")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", reg.DocumentID)
	assert.Equal(t, "PUT", reg.Method)
	assert.True(t, strings.HasPrefix(reg.StorageKey, "kyc/user-1/"), "storage key %q", reg.StorageKey)
	assert.Contains(t, reg.UploadURL, reg.StorageKey)

	require.NotNil(t, created)
	assert.Equal(t, entity.KYCUploading, created.Status)
	assert.Nil(t, created.URL)
}

func TestRegisterUpload_UnknownType(t *testing.T) {
	svc := newKYCService(&fakeKYCRepo{}, &recordingAuditRepo{})

	_, err := svc.RegisterUpload(context.Background(), "user-1", "SELFIE")
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))
}

func uploadingDoc(owner string) *entity.KYCDocument {
	return &entity.KYCDocument{
		ID:         "doc-1",
		Type:       entity.DocIDProof,
		Status:     entity.KYCUploading,
		StorageKey: "kyc/" + owner + "/abc",
		UserID:     owner,
	}
}

func TestFinalizeUpload(t *testing.T) {
	audit := &recordingAuditRepo{}
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			return uploadingDoc("user-1"), nil
		},
		FinalizeFunc: func(_ context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCPending
			d.URL = &url
			d.FileSize = fileSize
			d.ContentType = contentType
			return d, nil
		},
	}
	svc := newKYCService(repo, audit)

	doc, err := svc.FinalizeUpload(context.Background(), "doc-1", "user-1", testMaxFileSize, "image/png")
	require.NoError(t, err)
	assert.Equal(t, entity.KYCPending, doc.Status)
	require.NotNil(t, doc.URL)
	assert.Equal(t, []string{entity.ActionKYCSubmitted}, audit.actions())
}

func TestFinalizeUpload_NotOwner(t *testing.T) {
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			return uploadingDoc("user-1"), nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	_, err := svc.FinalizeUpload(context.Background(), "doc-1", "user-2", 1024, "image/png")
	assert.True(t, apperr.From(err).Is(apperr.ErrForbidden))
}

func TestFinalizeUpload_SizeLimitIsInclusive(t *testing.T) {
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			return uploadingDoc("user-1"), nil
		},
		FinalizeFunc: func(_ context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCPending
			return d, nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})
	ctx := context.Background()

	_, err := svc.FinalizeUpload(ctx, "doc-1", "user-1", testMaxFileSize+1, "image/png")
	assert.True(t, apperr.From(err).Is(apperr.ErrPayloadTooLarge))

	_, err = svc.FinalizeUpload(ctx, "doc-1", "user-1", testMaxFileSize, "image/png")
	assert.NoError(t, err)
}

func TestFinalizeUpload_ContentTypeAllowList(t *testing.T) {
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			return uploadingDoc("user-1"), nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	_, err := svc.FinalizeUpload(context.Background(), "doc-1", "user-1", 1024, "application/zip")
	assert.True(t, apperr.From(err).Is(apperr.ErrUnsupportedMediaType))
}

func TestFinalizeUpload_AlreadyFinalized(t *testing.T) {
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCPending
			return d, nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	_, err := svc.FinalizeUpload(context.Background(), "doc-1", "user-1", 1024, "image/png")
	assert.True(t, apperr.From(err).Is(apperr.ErrInvalidTransition))
}

func TestListForUser_RejectsUnknownStatus(t *testing.T) {
	svc := newKYCService(&fakeKYCRepo{}, &recordingAuditRepo{})

	_, err := svc.ListForUser(context.Background(), "user-1", "ARCHIVED")
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))
}

func TestStatus_Completion(t *testing.T) {
	repo := &fakeKYCRepo{
		ListForUserFunc: func(_ context.Context, userID string, status entity.KYCStatus) ([]*entity.KYCDocument, error) {
			return []*entity.KYCDocument{
				{Type: entity.DocIDProof, Status: entity.KYCVerified},
				{Type: entity.DocAddressProof, Status: entity.KYCPending},
			}, nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	sum, err := svc.Status(context.Background(), "user-1", entity.RoleCustomer, "")
	require.NoError(t, err)
	assert.Len(t, sum.Required, 3)
	assert.Equal(t, 1, sum.Completion.Completed)
	assert.Equal(t, 1, sum.Completion.Pending)
	assert.Equal(t, entity.CompletionInProgress, sum.Completion.Status)
}

func TestVerify(t *testing.T) {
	audit := &recordingAuditRepo{}
	var gotVerifiedBy *string
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCPending
			return d, nil
		},
		ReviewFunc: func(_ context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error) {
			gotVerifiedBy = verifiedBy
			d := uploadingDoc("user-1")
			d.Status = status
			d.VerifiedBy = verifiedBy
			d.ReviewNotes = notes
			return d, nil
		},
	}
	svc := newKYCService(repo, audit)

	doc, err := svc.Verify(context.Background(), "doc-1", "VERIFIED", "banker-1", "all good")
	require.NoError(t, err)
	assert.Equal(t, entity.KYCVerified, doc.Status)
	require.NotNil(t, gotVerifiedBy)
	assert.Equal(t, "banker-1", *gotVerifiedBy)
	assert.Equal(t, []string{entity.ActionKYCVerified}, audit.actions())
}

func TestVerify_RejectionClearsVerifiedBy(t *testing.T) {
	audit := &recordingAuditRepo{}
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCPending
			return d, nil
		},
		ReviewFunc: func(_ context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error) {
			assert.Nil(t, verifiedBy)
			d := uploadingDoc("user-1")
			d.Status = status
			d.ReviewNotes = notes
			return d, nil
		},
	}
	svc := newKYCService(repo, audit)

	doc, err := svc.Verify(context.Background(), "doc-1", "REJECTED", "banker-1", "photo unreadable")
	require.NoError(t, err)
	assert.Equal(t, entity.KYCRejected, doc.Status)
	assert.Nil(t, doc.VerifiedBy)
	assert.Equal(t, []string{entity.ActionKYCRejected}, audit.actions())
}

func TestVerify_InvalidDecision(t *testing.T) {
	svc := newKYCService(&fakeKYCRepo{}, &recordingAuditRepo{})

	_, err := svc.Verify(context.Background(), "doc-1", "PENDING", "banker-1", "")
	assert.True(t, apperr.From(err).Is(apperr.ErrValidation))
}

func TestVerify_AlreadyReviewed(t *testing.T) {
	repo := &fakeKYCRepo{
		GetByIDFunc: func(_ context.Context, id string) (*entity.KYCDocument, error) {
			d := uploadingDoc("user-1")
			d.Status = entity.KYCVerified
			return d, nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	_, err := svc.Verify(context.Background(), "doc-1", "REJECTED", "banker-1", "")
	assert.True(t, apperr.From(err).Is(apperr.ErrInvalidTransition))
}

func TestListPendingForReview_OverdueFlag(t *testing.T) {
	old := time.Now().Add(-5 * 24 * time.Hour)
	repo := &fakeKYCRepo{
		ListPendingFunc: func(_ context.Context, limit int) ([]*repository.KYCDocumentWithOwner, error) {
			return []*repository.KYCDocumentWithOwner{
				{
					Document: entity.KYCDocument{
						ID: "doc-1", Type: entity.DocPANCard,
						Status: entity.KYCPending, CreatedAt: old,
					},
					OwnerName:  "Jo",
					OwnerEmail: "jo@example.com",
					OwnerRole:  entity.RoleCustomer,
				},
			}, nil
		},
	}
	svc := newKYCService(repo, &recordingAuditRepo{})

	items, err := svc.ListPendingForReview(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].DaysPending)
	assert.True(t, items[0].IsOverdue)
	assert.Equal(t, "Jo", items[0].OwnerName)
}
