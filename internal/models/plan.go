package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

// InvestmentPlan is a fixed-terms template. Its values are snapshotted onto
// an Investment at purchase time, so later plan edits never touch running
// investments.
type InvestmentPlan struct {
	ID          int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Amount      float64 `gorm:"not null" json:"amount"`
	DailyROI    float64 `gorm:"not null" json:"daily_roi"`
	DurationDays int    `gorm:"not null" json:"duration_days"`
	Active      bool    `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func GetActivePlans(tx *gorm.DB) ([]InvestmentPlan, error) {
	var plans []InvestmentPlan
	if err := tx.Where("active = ?", true).Order("amount ASC").Find(&plans).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return plans, nil
}

func GetPlanByID(tx *gorm.DB, id int64) (*InvestmentPlan, error) {
	var plan InvestmentPlan
	if err := tx.First(&plan, id).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &plan, nil
}
