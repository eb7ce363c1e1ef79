package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendora/loan-origination/internal/application"
	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/interface/middleware"
	"github.com/lendora/loan-origination/pkg/apperr"
	"github.com/lendora/loan-origination/pkg/response"
	"github.com/lendora/loan-origination/pkg/validation"
)

type LoanHandler struct {
	Svc    *application.LoanService
	Logger *logrus.Logger
	Env    string
}

func NewLoanHandler(svc *application.LoanService, logger *logrus.Logger, env string) *LoanHandler {
	return &LoanHandler{Svc: svc, Logger: logger, Env: env}
}

type applyLoanRequest struct {
	Type       string          `json:"type" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	MerchantID string          `json:"merchantId" binding:"omitempty,uuid"`
}

type decideLoanRequest struct {
	Notes string `json:"notes"`
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Apply POST /loan/apply
func (h *LoanHandler) Apply(c *gin.Context) {
	var req applyLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	role := entity.Role(c.GetString(middleware.CtxUserRoleKey))

	l, err := h.Svc.Create(c.Request.Context(), uid, role, application.CreateLoanInput{
		Type:        req.Type,
		Amount:      req.Amount,
		MerchantRef: req.MerchantID,
	})
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusCreated, l, "loan application submitted")
}

// GetStatus GET /loan/:id/status
func (h *LoanHandler) GetStatus(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	role := entity.Role(c.GetString(middleware.CtxUserRoleKey))

	detail, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), uid, role)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"loan":    detail.Loan,
		"history": detail.History,
	}, "loan status")
}

// List GET /loan/list
func (h *LoanHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	role := entity.Role(c.GetString(middleware.CtxUserRoleKey))

	in := application.ListLoansInput{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Limit:  queryInt(c, "limit", 0),
	}
	if raw := c.Query("min_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			response.FromError(c, apperr.ValidationMsg("min_amount", "must be a number"), h.Env)
			return
		}
		in.MinAmount = &d
	}

	loans, err := h.Svc.List(c.Request.Context(), uid, role, in)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, loans, "loans")
}

// Approve POST /loan/:id/approve
func (h *LoanHandler) Approve(c *gin.Context) {
	h.decide(c, entity.LoanApproved)
}

// Reject POST /loan/:id/reject
func (h *LoanHandler) Reject(c *gin.Context) {
	h.decide(c, entity.LoanRejected)
}

func (h *LoanHandler) decide(c *gin.Context, status entity.LoanStatus) {
	var req decideLoanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
	}
	bankerID := c.GetString(middleware.CtxUserIDKey)

	l, err := h.Svc.Decide(c.Request.Context(), c.Param("id"), string(status), bankerID, req.Notes)
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, l, "loan "+string(l.Status))
}

// Analytics GET /loan/analytics/merchant
func (h *LoanHandler) Analytics(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	stats, err := h.Svc.MerchantAnalytics(c.Request.Context(), uid, application.AnalyticsInput{
		Status:   c.Query("status"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	})
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, stats, "merchant analytics")
}

// Search GET /loan/search
func (h *LoanHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.FromError(c, apperr.ValidationMsg("q", "query is required"), h.Env)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, queryInt(c, "size", 10))
	if err != nil {
		response.FromError(c, err, h.Env)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}
