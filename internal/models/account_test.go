package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&Account{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

func seedAccount(t *testing.T, gdb *gorm.DB, balance float64) *Account {
	t.Helper()

	account := &Account{
		Name:         "wallet",
		Email:        "wallet@test.local",
		ReferralCode: NewReferralCode(),
		Balance:      balance,
	}
	if err := gdb.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}

	return account
}

func TestDebitBalanceRejectsInsufficientFunds(t *testing.T) {
	gdb := openTestDB(t)
	account := seedAccount(t, gdb, 50)

	err := DebitBalance(gdb, account.ID, 100)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	reloaded, err := GetAccountByID(gdb, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Balance != 50 {
		t.Fatalf("failed debit must not change balance: %v", reloaded.Balance)
	}
}

func TestDebitBalanceAllowsExactBalance(t *testing.T) {
	gdb := openTestDB(t)
	account := seedAccount(t, gdb, 100)

	if err := DebitBalance(gdb, account.ID, 100); err != nil {
		t.Fatalf("debit: %v", err)
	}

	reloaded, err := GetAccountByID(gdb, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Balance != 0 {
		t.Fatalf("balance = %v, want 0", reloaded.Balance)
	}
}

func TestCreditCommissionIncrementsBalanceAndEarnings(t *testing.T) {
	gdb := openTestDB(t)
	account := seedAccount(t, gdb, 10)

	if err := CreditCommission(gdb, account.ID, 25); err != nil {
		t.Fatalf("credit: %v", err)
	}

	reloaded, err := GetAccountByID(gdb, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Balance != 35 || reloaded.TotalEarnings != 25 {
		t.Fatalf("balance/earnings = %v/%v, want 35/25", reloaded.Balance, reloaded.TotalEarnings)
	}
}

func TestGetAccountByReferralCodeUnknownCodeIsNil(t *testing.T) {
	gdb := openTestDB(t)
	seedAccount(t, gdb, 0)

	account, err := GetAccountByReferralCode(gdb, "DOESNOTX")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if account != nil {
		t.Fatalf("unknown code must resolve to nil, got %+v", account)
	}
}
