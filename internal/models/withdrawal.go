package models

import (
	"database/sql"
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "PENDING"
	WithdrawalApproved = "APPROVED"
	WithdrawalRejected = "REJECTED"
)

// Withdrawal is a payout request. Submission never touches the wallet;
// only admin approval moves money.
type Withdrawal struct {
	ID            int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID     int64   `gorm:"index;not null" json:"account_id"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Method        string  `gorm:"not null" json:"method"`
	PayoutDetails string  `json:"payout_details"`
	Status        string  `gorm:"default:PENDING;index" json:"status"`
	AdminRemark   string  `json:"admin_remark"`
	ProcessedAt   *time.Time `json:"processed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasPendingWithdrawal reports whether an outstanding request exists.
// Exactly one PENDING request is permitted per account.
func HasPendingWithdrawal(tx *gorm.DB, accountID int64) (bool, error) {
	var exists bool
	err := tx.Model(&Withdrawal{}).
		Select("count(*) > 0").
		Where("account_id = ? AND status = ?", accountID, WithdrawalPending).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

// GetTotalApprovedWithdrawals sums all APPROVED requests of the account.
// PENDING and REJECTED requests never count toward the KYC threshold.
func GetTotalApprovedWithdrawals(tx *gorm.DB, accountID int64) (float64, error) {
	var sum sql.NullFloat64
	err := tx.Model(&Withdrawal{}).
		Where("account_id = ? AND status = ?", accountID, WithdrawalApproved).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return 0, logger.WrapError(err, "")
	}

	if sum.Valid {
		return sum.Float64, nil
	}

	return 0, nil
}

func GetWithdrawalsByAccount(tx *gorm.DB, accountID int64) ([]Withdrawal, error) {
	var withdrawals []Withdrawal
	err := tx.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return withdrawals, nil
}

func GetWithdrawalsByStatus(tx *gorm.DB, status string) ([]Withdrawal, error) {
	var withdrawals []Withdrawal
	err := tx.Where("status = ?", status).
		Order("created_at ASC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return withdrawals, nil
}
