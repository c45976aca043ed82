package main

import (
	"PowerOyoApi/internal/config"
	"PowerOyoApi/internal/db"
	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	createTables(gdb)
	createPartialIndexes(gdb)
	seedCommissionLevels(gdb)
	seedPlans(gdb)
	seedAdmin(gdb)

	logger.Info("Migrated.")
}

func createTables(gdb *gorm.DB) {
	err := gdb.AutoMigrate(
		&models.Account{},
		&models.InvestmentPlan{},
		&models.Investment{},
		&models.CommissionSetting{},
		&models.CommissionEarning{},
		&models.Withdrawal{},
		&models.FundRequest{},
		&models.Transaction{},
		&models.KYCSubmission{},
	)
	if err != nil {
		logger.Fatal("%v", err)
	}
}

// Partial unique indexes back the one-PENDING-request-per-account rules
// under concurrent submissions; the in-transaction checks alone race.
func createPartialIndexes(gdb *gorm.DB) {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_withdrawals_one_pending
			ON withdrawals (account_id) WHERE status = 'PENDING'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fund_requests_one_pending
			ON fund_requests (account_id) WHERE status = 'PENDING'`,
	}

	for _, stmt := range statements {
		if err := gdb.Exec(stmt).Error; err != nil {
			logger.Fatal("%v", err)
		}
	}
}

func seedCommissionLevels(gdb *gorm.DB) {
	var count int64
	if err := gdb.Model(&models.CommissionSetting{}).Count(&count).Error; err != nil {
		logger.Fatal("%v", err)
	}
	if count > 0 {
		return
	}

	settings := []models.CommissionSetting{
		{Level: 1, Percentage: 10, Active: true},
		{Level: 2, Percentage: 5, Active: true},
		{Level: 3, Percentage: 3, Active: true},
		{Level: 4, Percentage: 2, Active: true},
		{Level: 5, Percentage: 1, Active: true},
	}
	if err := gdb.Create(&settings).Error; err != nil {
		logger.Fatal("%v", err)
	}
}

func seedPlans(gdb *gorm.DB) {
	var count int64
	if err := gdb.Model(&models.InvestmentPlan{}).Count(&count).Error; err != nil {
		logger.Fatal("%v", err)
	}
	if count > 0 {
		return
	}

	plans := []models.InvestmentPlan{
		{Name: "Starter", Amount: 500, DailyROI: 15, DurationDays: 45, Active: true},
		{Name: "Silver", Amount: 2000, DailyROI: 65, DurationDays: 45, Active: true},
		{Name: "Gold", Amount: 5000, DailyROI: 170, DurationDays: 45, Active: true},
		{Name: "Platinum", Amount: 10000, DailyROI: 360, DurationDays: 45, Active: true},
	}
	if err := gdb.Create(&plans).Error; err != nil {
		logger.Fatal("%v", err)
	}
}

func seedAdmin(gdb *gorm.DB) {
	var count int64
	if err := gdb.Model(&models.Account{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		logger.Fatal("%v", err)
	}
	if count > 0 {
		return
	}

	hashed, err := middleware.HashPassword("changeme-now")
	if err != nil {
		logger.Fatal("%v", err)
	}

	admin := models.Account{
		Name:         "Administrator",
		Email:        "admin@poweroyo.local",
		Password:     hashed,
		ReferralCode: models.NewReferralCode(),
		KYCStatus:    models.KYCApproved,
		IsAdmin:      true,
	}
	if err := gdb.Create(&admin).Error; err != nil {
		logger.Fatal("%v", err)
	}

	logger.Info("Seeded admin account %s; change its password immediately", admin.Email)
}
