package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

// CommissionSetting defines one referral level's cut. The engine only ever
// reads these; administration maintains them.
type CommissionSetting struct {
	ID         int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	Level      int     `gorm:"uniqueIndex;not null" json:"level"`
	Percentage float64 `gorm:"not null" json:"percentage"`
	Active     bool    `gorm:"default:true" json:"active"`
}

// CommissionEarning is the immutable ledger entry for one commission
// payment. The (investment, level) unique index guards against a duplicate
// cascade run crediting the same level twice.
type CommissionEarning struct {
	ID           int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID    int64   `gorm:"index;not null" json:"account_id"`
	FromAccountID int64  `gorm:"index;not null" json:"from_account_id"`
	InvestmentID int64   `gorm:"not null;uniqueIndex:idx_investment_level" json:"investment_id"`
	Level        int     `gorm:"not null;uniqueIndex:idx_investment_level" json:"level"`
	Percentage   float64 `gorm:"not null" json:"percentage"`
	Amount       float64 `gorm:"not null" json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetActiveCommissionLevels returns the active settings ordered by level.
func GetActiveCommissionLevels(tx *gorm.DB) ([]CommissionSetting, error) {
	var settings []CommissionSetting
	err := tx.Where("active = ?", true).
		Order("level ASC").
		Find(&settings).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return settings, nil
}

func GetCommissionEarningsByAccount(tx *gorm.DB, accountID int64) ([]CommissionEarning, error) {
	var earnings []CommissionEarning
	err := tx.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&earnings).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return earnings, nil
}
