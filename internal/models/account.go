package models

import (
	"errors"
	"strings"
	"time"

	"PowerOyoApi/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KYC status values consumed by the withdrawal gate.
const (
	KYCNotSubmitted = "NOT_SUBMITTED"
	KYCPending      = "PENDING"
	KYCApproved     = "APPROVED"
	KYCRejected     = "REJECTED"
)

// ErrInsufficientBalance is returned by DebitBalance when the wallet does
// not cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

type Account struct {
	ID            int64  `gorm:"primaryKey,autoIncrement" json:"id"`
	Name          string `json:"name"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Password      string `json:"-"`
	ReferralCode  string  `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredBy    *string `gorm:"index" json:"referred_by"` // referral code of the inviter
	Balance       float64 `json:"balance"`
	TotalEarnings float64 `json:"total_earnings"`
	KYCStatus     string  `gorm:"default:NOT_SUBMITTED" json:"kyc_status"`
	IsAdmin       bool    `gorm:"default:false" json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReferralCode returns a fresh short code. Codes are assigned once at
// registration and never reused, so the referral chain stays acyclic.
func NewReferralCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func GetAccountByID(tx *gorm.DB, id int64) (*Account, error) {
	var account Account
	if err := tx.First(&account, id).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &account, nil
}

func GetAccountByEmail(tx *gorm.DB, email string) (*Account, error) {
	var account Account
	if err := tx.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &account, nil
}

// GetAccountByReferralCode resolves one link of the referral chain.
// A nil account with nil error means the code does not resolve.
func GetAccountByReferralCode(tx *gorm.DB, code string) (*Account, error) {
	var account Account
	err := tx.Where("referral_code = ?", code).First(&account).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &account, nil
}

func CheckIfAccountExistsByEmail(tx *gorm.DB, email string) (bool, error) {
	var exists bool
	err := tx.Model(&Account{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func CheckIfAccountExistsByID(tx *gorm.DB, id int64) (bool, error) {
	var exists bool
	err := tx.Model(&Account{}).
		Select("count(*) > 0").
		Where("id = ?", id).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

// CreditBalance atomically increments the wallet balance.
func CreditBalance(tx *gorm.DB, accountID int64, amount float64) error {
	err := tx.Model(&Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

// CreditCommission atomically increments both the wallet balance and the
// lifetime earnings counter of a commission beneficiary.
func CreditCommission(tx *gorm.DB, accountID int64, amount float64) error {
	err := tx.Model(&Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", amount),
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
		}).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

// DebitBalance decrements the wallet balance only when it covers the
// amount; the guard and the write happen in one statement so a stale read
// can never drive the balance negative.
func DebitBalance(tx *gorm.DB, accountID int64, amount float64) error {
	res := tx.Model(&Account{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}

	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// SetKYCStatus updates the stored KYC status value.
func SetKYCStatus(tx *gorm.DB, accountID int64, status string) error {
	err := tx.Model(&Account{}).
		Where("id = ?", accountID).
		Update("kyc_status", status).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}
