package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendora/loan-origination/internal/container"
	handlers "github.com/lendora/loan-origination/internal/interface/http"
	"github.com/lendora/loan-origination/internal/interface/middleware"
	"github.com/lendora/loan-origination/pkg/helpers"
)

// AuthModule wires account HTTP handlers into routes
// Public: POST /auth/signup, POST /auth/login, POST /auth/refresh
// Protected: GET /auth/profile, PUT /auth/profile

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath()) // 10 req/min per IP
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())  // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP())       // 60 req/min per IP

	auth := rg.Group("/auth")
	auth.POST("/signup", signupLimiter, m.Handler.Signup)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		protected.GET("/profile", m.Handler.GetProfile)
		protected.PUT("/profile", m.Handler.UpdateProfile)
	}
}
