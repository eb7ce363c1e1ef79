package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lendora/loan-origination/internal/application"
	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/interface/middleware"
	"github.com/lendora/loan-origination/pkg/apperr"
	"github.com/lendora/loan-origination/pkg/response"
	"github.com/lendora/loan-origination/pkg/validation"
)

type KYCHandler struct {
	Svc    *application.KYCService
	Logger *logrus.Logger
	Env    string
}

func NewKYCHandler(svc *application.KYCService, logger *logrus.Logger, env string) *KYCHandler {
	return &KYCHandler{Svc: svc, Logger: logger, Env: env}
}

type registerUploadRequest struct {
	Type string `json:"type" binding:"required"`
}

type completeUploadRequest struct {
	DocumentID  string `json:"documentId" binding:"required,uuid"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType string `json:"contentType" binding:"required"`
}

type verifyDocumentRequest struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// RegisterUpload POST /kyc/upload-url
// Issues a signed PUT authorization; document bytes never pass through here.
func (h *KYCHandler) RegisterUpload(c *gin.Context) {
	var req registerUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	reg, err := h.Svc.RegisterUpload(c.Request.Context(), uid, req.Type)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusCreated, reg, "upload registered")
}

// CompleteUpload POST /kyc/complete-upload
func (h *KYCHandler) CompleteUpload(c *gin.Context) {
	var req completeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	doc, err := h.Svc.FinalizeUpload(c.Request.Context(), req.DocumentID, uid, req.FileSize, req.ContentType)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, doc, "document submitted for review")
}

// ListDocuments GET /kyc/documents
func (h *KYCHandler) ListDocuments(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	docs, err := h.Svc.ListForUser(c.Request.Context(), uid, c.Query("status"))
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, docs, "documents")
}

// Status GET /kyc/status
// loan_type widens the requirement set beyond the caller's role baseline.
func (h *KYCHandler) Status(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	role := entity.Role(c.GetString(middleware.CtxUserRoleKey))

	var loanType entity.LoanType
	if raw := c.Query("loan_type"); raw != "" {
		t, ok := entity.ParseLoanType(raw)
		if !ok {
			response.FromError(c, apperr.ValidationMsg("loan_type", "unknown loan type"), h.Env)
			return
		}
		loanType = t
	}

	summary, err := h.Svc.Status(c.Request.Context(), uid, role, loanType)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, summary, "kyc status")
}

// Required GET /kyc/required
func (h *KYCHandler) Required(c *gin.Context) {
	role := entity.Role(c.GetString(middleware.CtxUserRoleKey))

	var loanType entity.LoanType
	if raw := c.Query("loan_type"); raw != "" {
		t, ok := entity.ParseLoanType(raw)
		if !ok {
			response.FromError(c, apperr.ValidationMsg("loan_type", "unknown loan type"), h.Env)
			return
		}
		loanType = t
	}

	response.Success(c, http.StatusOK, gin.H{
		"required": entity.RequiredDocuments(role, loanType),
	}, "required documents")
}

// Pending GET /kyc/pending
func (h *KYCHandler) Pending(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	items, err := h.Svc.ListPendingForReview(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, items, "pending documents")
}

// Review GET /kyc/:id/review
func (h *KYCHandler) Review(c *gin.Context) {
	item, err := h.Svc.GetForReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, item, "document")
}

// Verify POST /kyc/:id/verify
func (h *KYCHandler) Verify(c *gin.Context) {
	var req verifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	reviewerID := c.GetString(middleware.CtxUserIDKey)
	doc, err := h.Svc.Verify(c.Request.Context(), c.Param("id"), req.Decision, reviewerID, req.Notes)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, doc, "document reviewed")
}
