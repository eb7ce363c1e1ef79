package application

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
)

// UploadSigner issues time-boxed signed upload authorizations. The ledger is
// never on the data path for document bytes.
type UploadSigner interface {
	SignedUploadURL(objectKey, contentType string, expires time.Time) (string, error)
	ObjectURL(objectKey string) string
}

// KYCService is the KYC document ledger.
type KYCService struct {
	Repo         repository.KYCRepository
	Signer       UploadSigner
	Audit        *AuditTrail
	Logger       *logrus.Logger
	MaxFileSize  int64
	AllowedTypes []string
	UploadURLTTL time.Duration
}

func NewKYCService(repo repository.KYCRepository, signer UploadSigner, audit *AuditTrail, logger *logrus.Logger, maxFileSize int64, allowedTypes []string, uploadTTL time.Duration) *KYCService {
	return &KYCService{
		Repo:         repo,
		Signer:       signer,
		Audit:        audit,
		Logger:       logger,
		MaxFileSize:  maxFileSize,
		AllowedTypes: allowedTypes,
		UploadURLTTL: uploadTTL,
	}
}

// UploadRegistration is everything a client needs to PUT the bytes directly
// to storage and later finalize the document.
type UploadRegistration struct {
	DocumentID string    `json:"documentId"`
	StorageKey string    `json:"storageKey"`
	UploadURL  string    `json:"uploadUrl"`
	Method     string    `json:"method"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// RegisterUpload records the intent to upload a document and returns a signed
// authorization. The document starts in UPLOADING with no URL.
func (s *KYCService) RegisterUpload(ctx context.Context, userID, docType string) (*UploadRegistration, error) {
	t, ok := entity.ParseKYCDocumentType(docType)
	if !ok {
		return nil, apperr.ValidationMsg("type", "must be one of: ID_PROOF, ADDRESS_PROOF, PAN_CARD, BANK_STATEMENT")
	}

	doc := &entity.KYCDocument{
		Type:       t,
		Status:     entity.KYCUploading,
		StorageKey: fmt.Sprintf("kyc/%s/%s", userID, uuid.NewString()),
		UserID:     userID,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	expires := time.Now().Add(s.UploadURLTTL)
	url, err := s.Signer.SignedUploadURL(doc.StorageKey, "", expires)
	if err != nil {
		return nil, err
	}
	return &UploadRegistration{
		DocumentID: doc.ID,
		StorageKey: doc.StorageKey,
		UploadURL:  url,
		Method:     "PUT",
		ExpiresAt:  expires,
	}, nil
}

// FinalizeUpload validates the uploaded object's metadata and transitions the
// document UPLOADING -> PENDING.
func (s *KYCService) FinalizeUpload(ctx context.Context, documentID, userID string, fileSize int64, contentType string) (*entity.KYCDocument, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, apperr.Forbidden("")
	}
	if fileSize > s.MaxFileSize {
		return nil, apperr.PayloadTooLarge(s.MaxFileSize)
	}
	if !slices.Contains(s.AllowedTypes, contentType) {
		return nil, apperr.UnsupportedMediaType(contentType)
	}
	if doc.Status != entity.KYCUploading {
		return nil, apperr.InvalidTransition("document is not awaiting upload")
	}

	updated, err := s.Repo.Finalize(ctx, documentID, s.Signer.ObjectURL(doc.StorageKey), fileSize, contentType)
	if err != nil {
		if apperr.From(err).Is(apperr.ErrNotFound) {
			return nil, apperr.InvalidTransition("document is not awaiting upload")
		}
		return nil, err
	}

	s.Audit.Record(ctx, nil, entity.ActionKYCSubmitted, &userID, map[string]any{
		"document_id": updated.ID,
		"type":        string(updated.Type),
	})
	return updated, nil
}

// DocumentView annotates a document for client display.
type DocumentView struct {
	*entity.KYCDocument
	TypeLabel         string `json:"typeLabel"`
	IsPending         bool   `json:"isPending"`
	NeedsResubmission bool   `json:"needsResubmission"`
}

func newDocumentView(d *entity.KYCDocument) DocumentView {
	return DocumentView{
		KYCDocument:       d,
		TypeLabel:         d.Type.DisplayName(),
		IsPending:         d.Status == entity.KYCPending,
		NeedsResubmission: d.Status == entity.KYCRejected,
	}
}

// ListForUser returns the user's documents newest-first. statusFilter may be
// empty or one of the document statuses.
func (s *KYCService) ListForUser(ctx context.Context, userID, statusFilter string) ([]DocumentView, error) {
	var status entity.KYCStatus
	if statusFilter != "" {
		status = entity.KYCStatus(statusFilter)
		switch status {
		case entity.KYCUploading, entity.KYCPending, entity.KYCVerified, entity.KYCRejected:
		default:
			return nil, apperr.ValidationMsg("status", "unknown document status")
		}
	}
	docs, err := s.Repo.ListForUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentView(d))
	}
	return out, nil
}

// StatusSummary is the caller's own KYC position.
type StatusSummary struct {
	Documents  []DocumentView            `json:"documents"`
	Required   []entity.RequiredDocument `json:"required"`
	Completion entity.Completion         `json:"completion"`
}

// Status lists the user's documents together with the requirement set for
// their role (optionally widened by a loan type) and the derived completion.
func (s *KYCService) Status(ctx context.Context, userID string, role entity.Role, loanType entity.LoanType) (*StatusSummary, error) {
	docs, err := s.Repo.ListForUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	required := entity.RequiredDocuments(role, loanType)
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, newDocumentView(d))
	}
	return &StatusSummary{
		Documents:  views,
		Required:   required,
		Completion: entity.CompletionStatus(docs, required),
	}, nil
}

// ReviewItem is a queue entry for banker review.
type ReviewItem struct {
	DocumentView
	OwnerName   string `json:"ownerName"`
	OwnerEmail  string `json:"ownerEmail"`
	OwnerRole   string `json:"ownerRole"`
	DaysPending int    `json:"daysPending"`
	IsOverdue   bool   `json:"isOverdue"`
}

func newReviewItem(rec *repository.KYCDocumentWithOwner, now time.Time) ReviewItem {
	d := rec.Document
	return ReviewItem{
		DocumentView: newDocumentView(&d),
		OwnerName:    rec.OwnerName,
		OwnerEmail:   rec.OwnerEmail,
		OwnerRole:    string(rec.OwnerRole),
		DaysPending:  d.DaysPending(now),
		IsOverdue:    d.Overdue(now),
	}
}

// ListPendingForReview returns the FIFO review queue, oldest first.
func (s *KYCService) ListPendingForReview(ctx context.Context, limit int) ([]ReviewItem, error) {
	recs, err := s.Repo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]ReviewItem, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newReviewItem(rec, now))
	}
	return out, nil
}

func (s *KYCService) GetForReview(ctx context.Context, documentID string) (*ReviewItem, error) {
	rec, err := s.Repo.GetWithOwner(ctx, documentID)
	if err != nil {
		return nil, err
	}
	item := newReviewItem(rec, time.Now())
	return &item, nil
}

// Verify applies a banker decision. Only PENDING documents can be decided;
// VerifiedBy carries the reviewer only on a VERIFIED outcome.
func (s *KYCService) Verify(ctx context.Context, documentID, decision, reviewerID, notes string) (*entity.KYCDocument, error) {
	status := entity.KYCStatus(decision)
	if !entity.ValidKYCDecision(status) {
		return nil, apperr.ValidationMsg("decision", "must be VERIFIED or REJECTED")
	}

	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.KYCPending {
		return nil, apperr.InvalidTransition("document has already been reviewed")
	}

	var verifiedBy *string
	if status == entity.KYCVerified {
		verifiedBy = &reviewerID
	}
	updated, err := s.Repo.Review(ctx, documentID, status, verifiedBy, notes)
	if err != nil {
		if apperr.From(err).Is(apperr.ErrNotFound) {
			return nil, apperr.InvalidTransition("document has already been reviewed")
		}
		return nil, err
	}

	action := entity.ActionKYCVerified
	if status == entity.KYCRejected {
		action = entity.ActionKYCRejected
	}
	s.Audit.Record(ctx, nil, action, &reviewerID, map[string]any{
		"document_id": updated.ID,
		"type":        string(updated.Type),
		"owner_id":    updated.UserID,
	})
	return updated, nil
}
