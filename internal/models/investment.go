package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

const (
	InvestmentActive    = "ACTIVE"
	InvestmentCompleted = "COMPLETED"
	InvestmentInactive  = "INACTIVE"
)

// Investment carries the plan terms as they were at purchase time.
type Investment struct {
	ID            int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID     int64   `gorm:"index;not null" json:"account_id"`
	PlanID        int64   `gorm:"index;not null" json:"plan_id"`
	Amount        float64 `gorm:"not null" json:"amount"`
	DailyROI      float64 `gorm:"not null" json:"daily_roi"`
	DurationDays  int     `gorm:"not null" json:"duration_days"`
	RemainingDays int     `gorm:"not null" json:"remaining_days"`
	TotalEarned   float64 `gorm:"default:0" json:"total_earned"`
	Status        string  `gorm:"default:ACTIVE;index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasActiveInvestment reports whether the account already holds an ACTIVE
// investment on the given plan. At most one is permitted per pair.
func HasActiveInvestment(tx *gorm.DB, accountID, planID int64) (bool, error) {
	var exists bool
	err := tx.Model(&Investment{}).
		Select("count(*) > 0").
		Where("account_id = ? AND plan_id = ? AND status = ?", accountID, planID, InvestmentActive).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetInvestmentsByAccount(tx *gorm.DB, accountID int64) ([]Investment, error) {
	var investments []Investment
	err := tx.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&investments).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return investments, nil
}
