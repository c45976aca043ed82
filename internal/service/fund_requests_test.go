package service

import (
	"fmt"
	"net/http"
	"testing"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newFundRequestRouter(gdb *gorm.DB, accountID int64) *gin.Engine {
	service := NewFundRequestService(gdb, notify.Nop{})

	return newAuthedRouter(accountID, func(g *gin.RouterGroup) {
		g.POST("/api/funds/requests", service.CreateFundRequest)
		g.POST("/api/admin/funds/requests/:id", service.ReviewFundRequest)
	})
}

func TestFundRequestApprovalCreditsWallet(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 0, nil)
	router := newFundRequestRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/funds/requests", gin.H{
		"amount": 500, "method": "upi", "reference": "UTR-1001",
	})
	mustStatus(t, w, 200)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 0 {
		t.Fatalf("submission must not credit: balance = %v", account.Balance)
	}

	var request models.FundRequest
	if err := gdb.First(&request, "account_id = ?", account.ID).Error; err != nil {
		t.Fatalf("load fund request: %v", err)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/admin/funds/requests/%d", request.ID),
		gin.H{"action": "approve"})
	mustStatus(t, w, 200)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 500 {
		t.Fatalf("balance = %v, want 500", account.Balance)
	}

	var record models.Transaction
	err := gdb.First(&record, "type = ? AND reference = ?", models.TxDeposit, request.ID).Error
	if err != nil {
		t.Fatalf("load transaction record: %v", err)
	}
	if record.Status != models.TxCompleted {
		t.Fatalf("transaction status = %s, want COMPLETED", record.Status)
	}
}

func TestFundRequestRejectionLeavesWallet(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 100, nil)
	router := newFundRequestRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/funds/requests", gin.H{
		"amount": 500, "method": "upi", "reference": "UTR-1002",
	})
	mustStatus(t, w, 200)

	var request models.FundRequest
	if err := gdb.First(&request, "account_id = ?", account.ID).Error; err != nil {
		t.Fatalf("load fund request: %v", err)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/admin/funds/requests/%d", request.ID),
		gin.H{"action": "reject", "remark": "no payment received"})
	mustStatus(t, w, 200)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 100 {
		t.Fatalf("rejection must not credit: balance = %v", account.Balance)
	}
}

func TestFundRequestDoubleProcessingConflicts(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 0, nil)
	router := newFundRequestRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/funds/requests", gin.H{
		"amount": 500, "method": "upi", "reference": "UTR-1003",
	})
	mustStatus(t, w, 200)

	var request models.FundRequest
	if err := gdb.First(&request, "account_id = ?", account.ID).Error; err != nil {
		t.Fatalf("load fund request: %v", err)
	}

	path := fmt.Sprintf("/api/admin/funds/requests/%d", request.ID)
	w = doJSON(t, router, http.MethodPost, path, gin.H{"action": "approve"})
	mustStatus(t, w, 200)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"action": "approve"})
	mustStatus(t, w, 409)

	account = reloadAccount(t, gdb, account.ID)
	if account.Balance != 500 {
		t.Fatalf("double processing must not credit twice: balance = %v", account.Balance)
	}
}

func TestFundRequestRejectsSecondPending(t *testing.T) {
	gdb := openTestDB(t)
	account := createAccount(t, gdb, "user", 0, nil)
	router := newFundRequestRouter(gdb, account.ID)

	w := doJSON(t, router, http.MethodPost, "/api/funds/requests", gin.H{
		"amount": 500, "method": "upi", "reference": "UTR-1004",
	})
	mustStatus(t, w, 200)

	w = doJSON(t, router, http.MethodPost, "/api/funds/requests", gin.H{
		"amount": 200, "method": "upi", "reference": "UTR-1005",
	})
	mustStatus(t, w, 409)
}
