package router

import (
	"github.com/lendora/loan-origination/internal/application"
	"github.com/lendora/loan-origination/internal/container"
	pginfra "github.com/lendora/loan-origination/internal/infrastructure/postgres"
	handlers "github.com/lendora/loan-origination/internal/interface/http"
	"github.com/lendora/loan-origination/internal/router/modules"
	"github.com/lendora/loan-origination/pkg/helpers"
)

// InitModules builds the feature modules from container singletons and
// registers them. Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	loanRepo := pginfra.NewLoanRepository(pool)
	kycRepo := pginfra.NewKYCRepository(pool)
	auditRepo := pginfra.NewAuditLogRepository(pool)

	audit := application.NewAuditTrail(auditRepo, logger)

	userSvc := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetRedis(),
		logger,
		container.GetRabbitPub(),
		cfg.MailSendEnabled,
	)

	loanSvc := application.NewLoanService(
		loanRepo,
		userRepo,
		auditRepo,
		audit,
		logger,
		container.GetES(),
		cfg.ESLoansIndex,
		container.GetRabbitPub(),
		cfg.MailSendEnabled,
	)

	signer := helpers.NewGCSSigner(container.GetGCS(), cfg.GCSBucket)
	kycSvc := application.NewKYCService(
		kycRepo,
		signer,
		audit,
		logger,
		cfg.KYCMaxFileSize,
		cfg.AllowedMimeTypes(),
		cfg.UploadURLTTL,
	)

	jwt := container.GetJWT()
	env := cfg.Env

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(pool, container.GetRedis())))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, logger, env), jwt))
	r.Add(modules.NewLoanModule(handlers.NewLoanHandler(loanSvc, logger, env), jwt))
	r.Add(modules.NewKYCModule(handlers.NewKYCHandler(kycSvc, logger, env), jwt))
}
