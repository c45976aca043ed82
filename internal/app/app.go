package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"PowerOyoApi/internal/config"
	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/service"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"
)

const apiPrefix = "api/"

func Start(cfg *config.Config, gdb *gorm.DB, publisher *notify.RedisPublisher) {
	gin.DisableConsoleColor()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BlockBadActorsMiddleware())

	accountService := service.NewAccountService(gdb, cfg.JWTSecret)
	planService := service.NewPlanService(gdb)
	commissionEngine := service.NewCommissionEngine(gdb, publisher)
	investmentService := service.NewInvestmentService(gdb, commissionEngine, publisher)
	withdrawalService := service.NewWithdrawalService(gdb, publisher, cfg.KYCWithdrawalLimit)
	fundRequestService := service.NewFundRequestService(gdb, publisher)
	kycService := service.NewKYCService(gdb, publisher)
	transactionService := service.NewTransactionService(gdb)
	adminService := service.NewAdminService(gdb)
	notificationWS := service.NewNotificationWebsocketService(publisher)

	authorized := router.Group("/", middleware.AuthMiddleware(gdb, cfg.JWTSecret))
	admin := authorized.Group("/", middleware.AdminMiddleware(gdb))

	// router
	{
		router.POST(apiPrefix+"auth/signup", accountService.SignUp)
		router.POST(apiPrefix+"auth/login", accountService.Login)
		router.GET(apiPrefix+"plans", planService.GetPlans)
	}

	// authorized
	{
		authorized.GET(apiPrefix+"users", accountService.GetAccount)
		authorized.GET(apiPrefix+"users/referrals", accountService.GetReferrals)

		authorized.POST(apiPrefix+"investments", investmentService.CreateInvestment)
		authorized.GET(apiPrefix+"investments", investmentService.GetInvestments)

		authorized.GET(apiPrefix+"commissions", commissionEngine.GetCommissionEarnings)

		authorized.GET(apiPrefix+"withdrawals/eligibility", withdrawalService.GetEligibility)
		authorized.POST(apiPrefix+"withdrawals", withdrawalService.CreateWithdrawal)
		authorized.GET(apiPrefix+"withdrawals", withdrawalService.GetWithdrawals)

		authorized.POST(apiPrefix+"funds/requests", fundRequestService.CreateFundRequest)
		authorized.GET(apiPrefix+"funds/requests", fundRequestService.GetFundRequests)

		authorized.POST(apiPrefix+"kyc", kycService.SubmitKYC)
		authorized.GET(apiPrefix+"kyc", kycService.GetKYCStatus)

		authorized.GET(apiPrefix+"transactions", transactionService.GetTransactions)

		authorized.GET(apiPrefix+"ws/notifications", notificationWS.WebsocketHandler)
	}

	// admin
	{
		admin.GET(apiPrefix+"admin/summary", adminService.GetSummary)

		admin.POST(apiPrefix+"admin/plans", planService.CreatePlan)
		admin.PATCH(apiPrefix+"admin/plans/:id", planService.UpdatePlan)

		admin.GET(apiPrefix+"admin/withdrawals", withdrawalService.GetPendingWithdrawals)
		admin.POST(apiPrefix+"admin/withdrawals/:id", withdrawalService.ReviewWithdrawal)

		admin.GET(apiPrefix+"admin/funds/requests", fundRequestService.GetPendingFundRequests)
		admin.POST(apiPrefix+"admin/funds/requests/:id", fundRequestService.ReviewFundRequest)

		admin.GET(apiPrefix+"admin/kyc", kycService.GetPendingSubmissions)
		admin.POST(apiPrefix+"admin/kyc/:id", kycService.ReviewKYC)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router.Handler(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	logger.Info("Server exiting")
}
