package models

import (
	"time"

	"PowerOyoApi/pkg/logger"

	"gorm.io/gorm"
)

// KYCSubmission holds the identity documents under review. The withdrawal
// gate never reads these; it only consumes Account.KYCStatus.
type KYCSubmission struct {
	ID             int64  `gorm:"primaryKey,autoIncrement" json:"id"`
	AccountID      int64  `gorm:"index;not null" json:"account_id"`
	DocumentType   string `gorm:"not null" json:"document_type"`
	DocumentNumber string `gorm:"not null" json:"document_number"`
	DocumentImage  string `json:"document_image"` // storage reference, not the blob
	SelfieImage    string `json:"selfie_image"`
	Status         string `gorm:"default:PENDING;index" json:"status"`
	AdminRemark    string `json:"admin_remark"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func GetLatestKYCSubmission(tx *gorm.DB, accountID int64) (*KYCSubmission, error) {
	var submission KYCSubmission
	err := tx.Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&submission).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &submission, nil
}

func GetKYCSubmissionsByStatus(tx *gorm.DB, status string) ([]KYCSubmission, error) {
	var submissions []KYCSubmission
	err := tx.Where("status = ?", status).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return submissions, nil
}
