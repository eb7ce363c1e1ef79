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

// LoanModule wires the loan ledger routes. Everything requires authentication;
// write endpoints carry role allow-lists on top.

type LoanModule struct {
	Handler *handlers.LoanHandler
	JWT     *helpers.JWTManager
}

func NewLoanModule(h *handlers.LoanHandler, jwt *helpers.JWTManager) *LoanModule {
	return &LoanModule{Handler: h, JWT: jwt}
}

func (m *LoanModule) Register(rg *gin.RouterGroup) {
	loan := rg.Group("/loan")
	loan.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()),
	)
	{
		loan.POST("/apply", middleware.RequireRoles(entity.RoleCustomer, entity.RoleMerchant), m.Handler.Apply)
		loan.GET("/list", m.Handler.List)
		loan.GET("/:id/status", m.Handler.GetStatus)
		loan.POST("/:id/approve", middleware.RequireRoles(entity.RoleBanker), m.Handler.Approve)
		loan.POST("/:id/reject", middleware.RequireRoles(entity.RoleBanker), m.Handler.Reject)
		loan.GET("/analytics/merchant", middleware.RequireRoles(entity.RoleMerchant), m.Handler.Analytics)
		loan.GET("/search", middleware.RequireRoles(entity.RoleBanker), m.Handler.Search)
	}
}
