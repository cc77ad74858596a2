package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "motofin-ledger/internal/adapter/http"
	"motofin-ledger/internal/adapter/middleware"
	"motofin-ledger/internal/adapter/repository/mysql"
	"motofin-ledger/internal/config"
	"motofin-ledger/internal/domain/authz"
	"motofin-ledger/internal/domain/notify"
	riskDomain "motofin-ledger/internal/domain/risk"
	"motofin-ledger/internal/infrastructure/cache"
	"motofin-ledger/internal/infrastructure/db"
	"motofin-ledger/internal/infrastructure/logging"
	archiveuc "motofin-ledger/internal/usecase/archive"
	"motofin-ledger/internal/usecase/consistency"
	loanuc "motofin-ledger/internal/usecase/loan"
	"motofin-ledger/internal/usecase/monitor"
	paymentuc "motofin-ledger/internal/usecase/payment"
	riskuc "motofin-ledger/internal/usecase/risk"

	"os"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(os.Getenv("APP_ENV"))
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	gormDB, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}

	riskParams := riskDomain.Params{
		BaseScore:     cfg.RiskBaseScore,
		LowThreshold:  cfg.RiskLowThreshold,
		HighThreshold: cfg.RiskHighThreshold,
	}

	uow := mysql.NewGormUoW(gormDB)
	auth := authz.AllowAll{}
	notifier := notify.Noop{}

	loanUC := loanuc.NewUsecase(uow, auth, riskParams)
	paymentUC := paymentuc.NewUsecase(uow, auth, notifier, riskParams, log)
	riskUC := riskuc.NewUsecase(uow, riskParams)
	archiveUC := archiveuc.NewUsecase(uow, auth)
	checker := consistency.NewChecker(
		mysql.NewLoanRepository(gormDB),
		mysql.NewAssetRepository(gormDB),
		mysql.NewFinancingTermRepository(gormDB),
	)
	mon := monitor.New(mysql.NewAuditRepository(gormDB), cfg.MonitorWindow(), cfg.MonitorThreshold, log)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(loanUC)
	paymentH := httpadp.NewPaymentHandler(paymentUC)
	riskH := httpadp.NewRiskHandler(riskUC)
	archiveH := httpadp.NewArchiveHandler(archiveUC)
	consistencyH := httpadp.NewConsistencyHandler(checker, mon)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover(), middleware.Correlation())

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", h.Health)

	e.POST("/loans", loanH.Submit, idemp)
	e.GET("/loans/:loan_id", loanH.Get)
	e.GET("/loans/:loan_id/schedule", loanH.Schedule)
	e.POST("/loans/:loan_id/approve", loanH.Approve, idemp)
	e.POST("/loans/:loan_id/reject", loanH.Reject, idemp)
	e.POST("/loans/:loan_id/activate", loanH.Activate, idemp)
	e.POST("/loans/:loan_id/complete", loanH.Complete, idemp)
	e.POST("/loans/:loan_id/risk/recompute", riskH.Recompute, idemp)

	e.POST("/schedule-entries/:entry_id/payments", paymentH.Record, idemp)
	e.POST("/payments/overdue-sweep", paymentH.OverdueSweep, idemp)

	e.POST("/archives", archiveH.Archive, idemp)
	e.POST("/archives/:archive_id/restore", archiveH.Restore, idemp)
	e.GET("/archives", archiveH.List)

	e.GET("/consistency", consistencyH.CheckAll)
	e.GET("/consistency/loans/:loan_id", consistencyH.CheckLoan)
	e.GET("/race-flags", consistencyH.RaceFlags)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
