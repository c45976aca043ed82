package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

const (
	FundRequestPending  = "PENDING"
	FundRequestApproved = "APPROVED"
	FundRequestRejected = "REJECTED"
)

// FundRequest is a user's claim to have paid in funds out of band; an
// admin reviews it and approval credits the wallet.
type FundRequest struct {
	ID          int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID   int64   `gorm:"index;not null" json:"account_id"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Method      string  `gorm:"not null" json:"method"`
	Reference   string  `json:"reference"` // payment reference / UTR number
	Status      string  `gorm:"default:PENDING;index" json:"status"`
	AdminRemark string  `json:"admin_remark"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func HasPendingFundRequest(tx *gorm.DB, accountID int64) (bool, error) {
	var exists bool
	err := tx.Model(&FundRequest{}).
		Select("count(*) > 0").
		Where("account_id = ? AND status = ?", accountID, FundRequestPending).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetFundRequestsByAccount(tx *gorm.DB, accountID int64) ([]FundRequest, error) {
	var requests []FundRequest
	err := tx.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return requests, nil
}

func GetFundRequestsByStatus(tx *gorm.DB, status string) ([]FundRequest, error) {
	var requests []FundRequest
	err := tx.Where("status = ?", status).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return requests, nil
}
