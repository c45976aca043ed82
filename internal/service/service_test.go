package service

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = gdb.AutoMigrate(
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
		t.Fatalf("migrate test db: %v", err)
	}

	return gdb
}

func createAccount(t *testing.T, gdb *gorm.DB, name string, balance float64, referredBy *string) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:         name,
		Email:        name + "@test.local",
		Password:     "x",
		ReferralCode: models.NewReferralCode(),
		ReferredBy:   referredBy,
		Balance:      balance,
		KYCStatus:    models.KYCNotSubmitted,
	}
	if err := gdb.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}

	return account
}

func createCommissionLevels(t *testing.T, gdb *gorm.DB, percentages ...float64) {
	t.Helper()

	for i, pct := range percentages {
		setting := models.CommissionSetting{Level: i + 1, Percentage: pct, Active: true}
		if err := gdb.Create(&setting).Error; err != nil {
			t.Fatalf("create commission setting: %v", err)
		}
	}
}

func createPlan(t *testing.T, gdb *gorm.DB, amount float64) *models.InvestmentPlan {
	t.Helper()

	plan := &models.InvestmentPlan{
		Name:         "Test Plan",
		Amount:       amount,
		DailyROI:     amount / 30,
		DurationDays: 45,
		Active:       true,
	}
	if err := gdb.Create(plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}

	return plan
}

// newAuthedRouter wires routes behind a middleware that injects the given
// account id, standing in for the JWT middleware.
func newAuthedRouter(accountID int64, register func(g *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	group := router.Group("/", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, accountID)
		c.Next()
	})
	register(group)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func reloadAccount(t *testing.T, gdb *gorm.DB, id int64) *models.Account {
	t.Helper()

	account, err := models.GetAccountByID(gdb, id)
	if err != nil {
		t.Fatalf("reload account %d: %v", id, err)
	}

	return account
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}
