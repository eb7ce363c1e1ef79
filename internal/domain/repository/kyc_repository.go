package repository

import (
	"context"

	"github.com/lendora/loan-origination/internal/domain/entity"
)

// KYCDocumentWithOwner joins a document with its owner's profile fields for
// the banker review queue.
type KYCDocumentWithOwner struct {
	Document   entity.KYCDocument
	OwnerName  string
	OwnerEmail string
	OwnerRole  entity.Role
}

type KYCRepository interface {
	Create(ctx context.Context, d *entity.KYCDocument) error
	GetByID(ctx context.Context, id string) (*entity.KYCDocument, error)
	// Finalize transitions UPLOADING -> PENDING and records the resolved URL
	// plus the upload metadata. Guarded: only UPLOADING rows are touched.
	Finalize(ctx context.Context, id, url string, fileSize int64, contentType string) (*entity.KYCDocument, error)
	// ListForUser returns the user's documents newest-first, optionally
	// filtered by status ("" means all).
	ListForUser(ctx context.Context, userID string, status entity.KYCStatus) ([]*entity.KYCDocument, error)
	// ListPending returns the FIFO review queue (oldest-first), capped at limit.
	ListPending(ctx context.Context, limit int) ([]*KYCDocumentWithOwner, error)
	GetWithOwner(ctx context.Context, id string) (*KYCDocumentWithOwner, error)
	// Review applies a banker decision with a status guard: only PENDING rows
	// are touched. verifiedBy is nil for any non-VERIFIED outcome.
	Review(ctx context.Context, id string, status entity.KYCStatus, verifiedBy *string, notes string) (*entity.KYCDocument, error)
}
