package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
)

// AuditTrail is the best-effort writer behind every state-changing operation.
// Record is called after the primary mutation has committed; failures are
// logged and swallowed so an audit outage can never fail a loan or KYC
// operation.
type AuditTrail struct {
	Repo   repository.AuditLogRepository
	Logger *logrus.Logger
}

func NewAuditTrail(repo repository.AuditLogRepository, logger *logrus.Logger) *AuditTrail {
	return &AuditTrail{Repo: repo, Logger: logger}
}

func (t *AuditTrail) Record(ctx context.Context, loanID *string, action string, actorID *string, details map[string]any) {
	if t == nil || t.Repo == nil {
		return
	}
	entry := &entity.AuditLog{
		LoanID:  loanID,
		Action:  action,
		ActorID: actorID,
		Details: details,
	}
	if err := t.Repo.Insert(ctx, entry); err != nil && t.Logger != nil {
		t.Logger.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}
