package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "loanfund-backend/internal/adapter/http"
	idemp "loanfund-backend/internal/adapter/middleware"
	"loanfund-backend/internal/adapter/repository/mysql"
	"loanfund-backend/internal/config"
	"loanfund-backend/internal/infrastructure/cache"
	"loanfund-backend/internal/infrastructure/db"
	"loanfund-backend/internal/notify"
	"loanfund-backend/internal/observability"
	"loanfund-backend/internal/usecase/lifecycle"
	"loanfund-backend/internal/usecase/loanrequest"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := observability.NewLogger(cfg.AppEnv)

	gormDB, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	memberRepo := mysql.NewMemberRepository(gormDB)
	loanRepo := mysql.NewLoanRepository(gormDB)
	auditRepo := mysql.NewAuditRepository(gormDB)
	guow := mysql.NewGormUoW(gormDB)
	notifier := notify.NewRedisNotifier(rdb, cfg.EventChannel, logger)

	submitUC := loanrequest.NewUsecase(guow, memberRepo, loanRepo, logger)
	lifecycleUC := lifecycle.NewUsecase(guow, auditRepo, notifier, logger)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(submitUC)
	decisionH := httpadp.NewDecisionHandler(lifecycleUC)
	paymentH := httpadp.NewPaymentHandler(lifecycleUC)
	adminH := httpadp.NewAdminHandler(lifecycleUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	e.Validator = httpadp.NewValidator()

	idempTTL := time.Duration(cfg.IdempTTLSecs) * time.Second

	// routes
	e.GET("/health", h.Health)
	e.GET("/terms", loanH.ComputeTerms)
	e.GET("/members/:member_id/eligibility", loanH.CheckEligibility)
	e.POST("/loans", loanH.SubmitLoan, idemp.IdempotencyMiddleware(rdb, idempTTL))
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.POST("/loans/:loan_id/decision", decisionH.DecideLoan)
	e.POST("/loans/:loan_id/payments", paymentH.RecordPayment)
	e.POST("/admin/sweep", adminH.RunSweep)
	e.GET("/admin/override-audit", adminH.ListOverrideAudit)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
