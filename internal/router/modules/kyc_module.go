package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendora/loan-origination/internal/container"
	"github.com/lendora/loan-origination/internal/domain/entity"
	handlers "github.com/lendora/loan-origination/internal/interface/http"
	"github.com/lendora/loan-origination/internal/interface/middleware"
	"github.com/lendora/loan-origination/pkg/helpers"
)

// KYCModule wires the document ledger routes. Applicants manage their own
// documents; the review queue is banker-only.

type KYCModule struct {
	Handler *handlers.KYCHandler
	JWT     *helpers.JWTManager
}

func NewKYCModule(h *handlers.KYCHandler, jwt *helpers.JWTManager) *KYCModule {
	return &KYCModule{Handler: h, JWT: jwt}
}

func (m *KYCModule) Register(rg *gin.RouterGroup) {
	applicants := middleware.RequireRoles(entity.RoleCustomer, entity.RoleMerchant)
	bankers := middleware.RequireRoles(entity.RoleBanker)

	// Signed-URL issuance is the expensive path; keep its limiter tighter than
	// the general per-user one.
	uploadLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID())

	kyc := rg.Group("/kyc")
	kyc.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()),
	)
	{
		kyc.POST("/upload-url", applicants, uploadLimiter, m.Handler.RegisterUpload)
		kyc.POST("/complete-upload", applicants, m.Handler.CompleteUpload)
		kyc.GET("/documents", applicants, m.Handler.ListDocuments)
		kyc.GET("/status", m.Handler.Status)
		kyc.GET("/required", m.Handler.Required)

		kyc.GET("/pending", bankers, m.Handler.Pending)
		kyc.GET("/:id/review", bankers, m.Handler.Review)
		kyc.POST("/:id/verify", bankers, m.Handler.Verify)
	}
}
