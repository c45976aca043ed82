package service

import (
	"testing"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/notify"
)

func TestDistributeWalksTwoLevels(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10, 5)

	grandparent := createAccount(t, gdb, "grandparent", 0, nil)
	parent := createAccount(t, gdb, "parent", 0, &grandparent.ReferralCode)
	investor := createAccount(t, gdb, "investor", 0, &parent.ReferralCode)

	engine := NewCommissionEngine(gdb, notify.Nop{})
	if err := engine.Distribute(investor.ID, *investor.ReferredBy, 100, 1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	parent = reloadAccount(t, gdb, parent.ID)
	if parent.Balance != 10 || parent.TotalEarnings != 10 {
		t.Fatalf("parent balance/earnings = %v/%v, want 10/10", parent.Balance, parent.TotalEarnings)
	}

	grandparent = reloadAccount(t, gdb, grandparent.ID)
	if grandparent.Balance != 5 || grandparent.TotalEarnings != 5 {
		t.Fatalf("grandparent balance/earnings = %v/%v, want 5/5", grandparent.Balance, grandparent.TotalEarnings)
	}

	var earnings []models.CommissionEarning
	if err := gdb.Order("level ASC").Find(&earnings).Error; err != nil {
		t.Fatalf("load earnings: %v", err)
	}
	if len(earnings) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(earnings))
	}

	if earnings[0].AccountID != parent.ID || earnings[0].Level != 1 ||
		earnings[0].Percentage != 10 || earnings[0].Amount != 10 {
		t.Fatalf("level 1 entry = %+v", earnings[0])
	}
	if earnings[1].AccountID != grandparent.ID || earnings[1].Level != 2 ||
		earnings[1].Percentage != 5 || earnings[1].Amount != 5 {
		t.Fatalf("level 2 entry = %+v", earnings[1])
	}

	for _, earning := range earnings {
		var count int64
		err := gdb.Model(&models.Transaction{}).
			Where("account_id = ? AND type = ? AND status = ?",
				earning.AccountID, models.TxReferral, models.TxCompleted).
			Count(&count).Error
		if err != nil {
			t.Fatalf("count referral transactions: %v", err)
		}
		if count != 1 {
			t.Fatalf("referral transactions for account %d = %d, want 1", earning.AccountID, count)
		}
	}
}

func TestDistributeStopsWhenChainShorterThanLevels(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10, 5, 3)

	parent := createAccount(t, gdb, "parent", 0, nil)
	investor := createAccount(t, gdb, "investor", 0, &parent.ReferralCode)

	engine := NewCommissionEngine(gdb, notify.Nop{})
	if err := engine.Distribute(investor.ID, *investor.ReferredBy, 200, 1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	var count int64
	if err := gdb.Model(&models.CommissionEarning{}).Count(&count).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger entries = %d, want 1", count)
	}

	parent = reloadAccount(t, gdb, parent.ID)
	if parent.Balance != 20 {
		t.Fatalf("parent balance = %v, want 20", parent.Balance)
	}
}

func TestDistributeUnresolvableCodeIsNoop(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10)

	investor := createAccount(t, gdb, "investor", 0, nil)

	engine := NewCommissionEngine(gdb, notify.Nop{})
	if err := engine.Distribute(investor.ID, "NOSUCHCD", 100, 1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	var count int64
	if err := gdb.Model(&models.CommissionEarning{}).Count(&count).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if count != 0 {
		t.Fatalf("ledger entries = %d, want 0", count)
	}
}

func TestDistributeDuplicateInvocationDoesNotDoubleCredit(t *testing.T) {
	gdb := openTestDB(t)
	createCommissionLevels(t, gdb, 10)

	parent := createAccount(t, gdb, "parent", 0, nil)
	investor := createAccount(t, gdb, "investor", 0, &parent.ReferralCode)

	engine := NewCommissionEngine(gdb, notify.Nop{})
	if err := engine.Distribute(investor.ID, *investor.ReferredBy, 100, 7); err != nil {
		t.Fatalf("first distribute: %v", err)
	}

	// second run trips the (investment, level) unique index and rolls back
	if err := engine.Distribute(investor.ID, *investor.ReferredBy, 100, 7); err == nil {
		t.Fatal("expected duplicate distribute to fail")
	}

	parent = reloadAccount(t, gdb, parent.ID)
	if parent.Balance != 10 || parent.TotalEarnings != 10 {
		t.Fatalf("parent balance/earnings = %v/%v, want 10/10", parent.Balance, parent.TotalEarnings)
	}

	var count int64
	if err := gdb.Model(&models.CommissionEarning{}).Count(&count).Error; err != nil {
		t.Fatalf("count earnings: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger entries = %d, want 1", count)
	}
}

func TestDistributeSkipsInactiveLevelConfiguration(t *testing.T) {
	gdb := openTestDB(t)

	settings := []models.CommissionSetting{
		{Level: 1, Percentage: 10, Active: true},
		{Level: 2, Percentage: 5, Active: false},
	}
	if err := gdb.Create(&settings).Error; err != nil {
		t.Fatalf("create settings: %v", err)
	}

	grandparent := createAccount(t, gdb, "grandparent", 0, nil)
	parent := createAccount(t, gdb, "parent", 0, &grandparent.ReferralCode)
	investor := createAccount(t, gdb, "investor", 0, &parent.ReferralCode)

	engine := NewCommissionEngine(gdb, notify.Nop{})
	if err := engine.Distribute(investor.ID, *investor.ReferredBy, 100, 1); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	grandparent = reloadAccount(t, gdb, grandparent.ID)
	if grandparent.Balance != 0 {
		t.Fatalf("inactive level credited: balance = %v", grandparent.Balance)
	}
}
