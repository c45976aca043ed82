package service

import (
	"net/http"
	"testing"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newInvestmentRouter(gdb *gorm.DB, accountID int64) *gin.Engine {
	engine := NewCommissionEngine(gdb, notify.Nop{})
	service := NewInvestmentService(gdb, engine, notify.Nop{})

	return newAuthedRouter(accountID, func(g *gin.RouterGroup) {
		g.POST("/api/investments", service.CreateInvestment)
		g.GET("/api/investments", service.GetInvestments)
	})
}

func TestCreateInvestmentWithoutReferrer(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10)
	account := createAccount(t, gdb, "solo", 1000, nil)
	plan := createPlan(t, gdb, 100)
	router := newInvestmentRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 200)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 900 {
		t.Fatalf("balance = %v, want 900", account.Balance)
	}

	var record models.Transaction
	err := gdb.First(&record, "account_id = ? AND type = ?", account.ID, models.TxInvestment).Error
	if err != nil {
		t.Fatalf("load transaction record: %v", err)
	}
	if record.Amount != 100 || record.Status != models.TxCompleted {
		t.Fatalf("transaction = %+v, want amount 100 COMPLETED", record)
	}

	var count int64
	if err := gdb.Model(&models.CommissionEarning{}).Count(&count).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if count != 0 {
		t.Fatalf("no referrer means no ledger entries, got %d", count)
	}

	var investment models.Investment
	if err := gdb.First(&investment, "account_id = ?", account.ID).Error; err != nil {
		t.Fatalf("load investment: %v", err)
	}
	if investment.Status != models.InvestmentActive || investment.Amount != 100 ||
		investment.RemainingDays != plan.DurationDays {
		t.Fatalf("investment = %+v", investment)
	}
}

func TestCreateInvestmentPaysDirectReferrer(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10)
	referrer := createAccount(t, gdb, "referrer", 0, nil)
	investor := createAccount(t, gdb, "investor", 500, &referrer.ReferralCode)
	plan := createPlan(t, gdb, 100)
	router := newInvestmentRouter(gdb, investor.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 200)

	referrer = reloadAccount(t, gdb, referrer.ID)
	if referrer.Balance != 10 || referrer.TotalEarnings != 10 {
		t.Fatalf("referrer balance/earnings = %v/%v, want 10/10", referrer.Balance, referrer.TotalEarnings)
	}

	var earnings []models.CommissionEarning
	if err := gdb.Find(&earnings).Error; err != nil {
		t.Fatalf("load earnings: %v", err)
	}
	if len(earnings) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(earnings))
	}
	if earnings[0].Level != 1 || earnings[0].Percentage != 10 || earnings[0].Amount != 10 {
		t.Fatalf("entry = %+v", earnings[0])
	}
}

func TestCreateInvestmentBrokenReferralChainStillSucceeds(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10)

	ghost := "GHOSTREF"
	investor := createAccount(t, gdb, "investor", 500, &ghost)
	plan := createPlan(t, gdb, 100)
	router := newInvestmentRouter(gdb, investor.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 200)

	investor = reloadAccount(t, gdb, investor.ID)
	if investor.Balance != 400 {
		t.Fatalf("balance = %v, want 400", investor.Balance)
	}

	var count int64
	if err := gdb.Model(&models.CommissionEarning{}).Count(&count).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if count != 0 {
		t.Fatalf("broken chain must create no ledger entries, got %d", count)
	}
}

func TestCreateInvestmentRejectsDuplicateActive(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 1000, nil)
	plan := createPlan(t, gdb, 100)
	router := newInvestmentRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 200)

	w = doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 409)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 900 {
		t.Fatalf("rejected purchase must not debit: balance = %v", account.Balance)
	}
}

func TestCreateInvestmentInsufficientBalance(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 40, nil)
	plan := createPlan(t, gdb, 100)
	router := newInvestmentRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 402)
}

func TestCreateInvestmentUnknownPlan(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 1000, nil)
	router := newInvestmentRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": 999})
	mustStatus(t, w, 404)
}

func TestCreateInvestmentInactivePlan(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 1000, nil)
	plan := createPlan(t, gdb, 100)
	if err := gdb.Model(plan).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate plan: %v", err)
	}
	router := newInvestmentRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/investments", gin.H{"plan_id": plan.ID})
	mustStatus(t, w, 404)
}
