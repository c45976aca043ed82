package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

const (
	TxInvestment = "INVESTMENT"
	TxWithdrawal = "WITHDRAWAL"
	TxDeposit    = "DEPOSIT"
	TxReferral   = "REFERRAL"
	TxKYC        = "KYC"
)

const (
	TxPending   = "PENDING"
	TxCompleted = "COMPLETED"
	TxFailed    = "FAILED"
)

// Transaction is the append-only audit trail. Every state-changing
// operation writes one; nothing ever deletes them.
type Transaction struct {
	ID        int64   `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID int64   `gorm:"index;not null" json:"account_id"`
	Type      string  `gorm:"index;not null" json:"type"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Status    string  `gorm:"not null" json:"status"`
	Reference int64   `gorm:"index" json:"reference"` // id of the originating record
	Note      string  `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func AppendTransaction(tx *gorm.DB, record *Transaction) error {
	if err := tx.Create(record).Error; err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

func GetTransactionsByAccount(tx *gorm.DB, accountID int64, txType string) ([]Transaction, error) {
	query := tx.Where("account_id = ?", accountID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var records []Transaction
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return records, nil
}
