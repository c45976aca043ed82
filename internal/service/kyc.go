package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errKYCAlreadyUnderReview = errors.New("a KYC submission is already under review or approved")

type KYCService struct {
	db       *gorm.DB
	notifier notify.Publisher
}

func NewKYCService(gdb *gorm.DB, notifier notify.Publisher) *KYCService {
	return &KYCService{db: gdb, notifier: notifier}
}

type kycInput struct {
	DocumentType   string `json:"document_type" validate:"required,oneof=aadhaar pan passport voter_id"`
	DocumentNumber string `json:"document_number" validate:"required,min=4,max=32"`
	DocumentImage  string `json:"document_image" validate:"required"`
	SelfieImage    string `json:"selfie_image" validate:"required"`
}

func (i *kycInput) Validate() error {
	return validate.Struct(i)
}

// SubmitKYC files identity documents for review and moves the account's
// KYC status to PENDING. Resubmission is allowed only after a rejection.
func (s *KYCService) SubmitKYC(c *gin.Context) {
	var input kycInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var submission models.KYCSubmission

	err = s.db.Transaction(func(tx *gorm.DB) error {
		account, err := models.GetAccountByID(tx, accountID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if account.KYCStatus == models.KYCPending || account.KYCStatus == models.KYCApproved {
			return errKYCAlreadyUnderReview
		}

		submission = models.KYCSubmission{
			AccountID:      accountID,
			DocumentType:   input.DocumentType,
			DocumentNumber: input.DocumentNumber,
			DocumentImage:  input.DocumentImage,
			SelfieImage:    input.SelfieImage,
			Status:         models.KYCPending,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return models.SetKYCStatus(tx, accountID, models.KYCPending)
	})

	if err != nil {
		if errors.Is(err, errKYCAlreadyUnderReview) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, submission)
}

func (s *KYCService) GetKYCStatus(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	account, err := models.GetAccountByID(s.db, accountID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	resp := gin.H{"kyc_status": account.KYCStatus}

	submission, err := models.GetLatestKYCSubmission(s.db, accountID)
	if err == nil {
		resp["submission"] = submission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, resp)
}

func (s *KYCService) GetPendingSubmissions(c *gin.Context) {
	submissions, err := models.GetKYCSubmissionsByStatus(s.db, models.KYCPending)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, submissions)
}

// ReviewKYC finalizes a PENDING submission and mirrors the verdict onto
// the account's KYC status, which is what the withdrawal gate reads.
func (s *KYCService) ReviewKYC(c *gin.Context) {
	submissionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid submission id"})
		return
	}

	var input reviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	var submission models.KYCSubmission

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, submissionID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if submission.Status != models.KYCPending {
			return errAlreadyProcessed
		}

		newStatus := models.KYCRejected
		if input.Action == "approve" {
			newStatus = models.KYCApproved
		}

		now := time.Now()
		submission.Status = newStatus
		submission.AdminRemark = input.Remark
		submission.ReviewedAt = &now
		if err := tx.Save(&submission).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if err := models.SetKYCStatus(tx, submission.AccountID, newStatus); err != nil {
			return logger.WrapError(err, "")
		}

		return models.AppendTransaction(tx, &models.Transaction{
			AccountID: submission.AccountID,
			Type:      models.TxKYC,
			Status:    models.TxCompleted,
			Reference: submission.ID,
			Note:      newStatus,
		})
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "submission not found"})
			return
		} else if errors.Is(err, errAlreadyProcessed) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	s.notifier.Publish(context.Background(), submission.AccountID, notify.EventKYCUpdate, submission)

	c.JSON(200, submission)
}
