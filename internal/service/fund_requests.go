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

var errFundRequestPending = errors.New("a pending fund request already exists")

type FundRequestService struct {
	db       *gorm.DB
	notifier notify.Publisher
}

func NewFundRequestService(gdb *gorm.DB, notifier notify.Publisher) *FundRequestService {
	return &FundRequestService{db: gdb, notifier: notifier}
}

type fundRequestInput struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required"`
	Reference string  `json:"reference" validate:"required"`
}

func (i *fundRequestInput) Validate() error {
	return validate.Struct(i)
}

// CreateFundRequest records a claim of an out-of-band payment. The wallet
// is only credited when an admin approves it.
func (s *FundRequestService) CreateFundRequest(c *gin.Context) {
	var input fundRequestInput
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

	var request models.FundRequest

	err = s.db.Transaction(func(tx *gorm.DB) error {
		pending, err := models.HasPendingFundRequest(tx, accountID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if pending {
			return errFundRequestPending
		}

		request = models.FundRequest{
			AccountID: accountID,
			Amount:    input.Amount,
			Method:    input.Method,
			Reference: input.Reference,
			Status:    models.FundRequestPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return models.AppendTransaction(tx, &models.Transaction{
			AccountID: accountID,
			Type:      models.TxDeposit,
			Amount:    input.Amount,
			Status:    models.TxPending,
			Reference: request.ID,
		})
	})

	if err != nil {
		if errors.Is(err, errFundRequestPending) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, request)
}

func (s *FundRequestService) GetFundRequests(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	requests, err := models.GetFundRequestsByAccount(s.db, accountID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, requests)
}

func (s *FundRequestService) GetPendingFundRequests(c *gin.Context) {
	requests, err := models.GetFundRequestsByStatus(s.db, models.FundRequestPending)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, requests)
}

// ReviewFundRequest finalizes a PENDING request; approval credits the
// wallet. An already-processed request cannot be processed again.
func (s *FundRequestService) ReviewFundRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid fund request id"})
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

	var request models.FundRequest

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if request.Status != models.FundRequestPending {
			return errAlreadyProcessed
		}

		newStatus := models.FundRequestRejected
		txStatus := models.TxFailed

		if input.Action == "approve" {
			if err := models.CreditBalance(tx, request.AccountID, request.Amount); err != nil {
				return logger.WrapError(err, "")
			}
			newStatus = models.FundRequestApproved
			txStatus = models.TxCompleted
		}

		now := time.Now()
		request.Status = newStatus
		request.AdminRemark = input.Remark
		request.ProcessedAt = &now
		if err := tx.Save(&request).Error; err != nil {
			return logger.WrapError(err, "")
		}

		err := tx.Model(&models.Transaction{}).
			Where("type = ? AND reference = ? AND status = ?",
				models.TxDeposit, request.ID, models.TxPending).
			Update("status", txStatus).Error
		if err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "fund request not found"})
			return
		} else if errors.Is(err, errAlreadyProcessed) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	s.notifier.Publish(context.Background(), request.AccountID, notify.EventFundRequestUpdate, request)

	c.JSON(200, request)
}
