package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var withdrawalAllowedMethods = map[string]bool{
	"imps": true,
	"neft": true,
	"rtgs": true,
	"upi":  true,
}

var (
	errInsufficientBalance = errors.New("insufficient balance")
	errPendingExists       = errors.New("a pending withdrawal request already exists")
	errAlreadyProcessed    = errors.New("withdrawal request already processed")
)

// KYCRequiredError carries the figures the client needs to prompt for KYC.
type KYCRequiredError struct {
	CurrentTotal float64
	Limit        float64
	NewTotal     float64
}

func (e *KYCRequiredError) Error() string {
	return fmt.Sprintf("cumulative withdrawals of %.2f would exceed the %.2f limit (current total %.2f); KYC verification required",
		e.NewTotal, e.Limit, e.CurrentTotal)
}

// EligibilityResult is the gate's verdict on one prospective withdrawal.
type EligibilityResult struct {
	CanWithdraw  bool    `json:"can_withdraw"`
	RequiresKYC  bool    `json:"requires_kyc"`
	CurrentTotal float64 `json:"current_total"`
	Limit        float64 `json:"limit"`
	Message      string  `json:"message"`
}

type WithdrawalService struct {
	db       *gorm.DB
	notifier notify.Publisher
	kycLimit float64
}

func NewWithdrawalService(gdb *gorm.DB, notifier notify.Publisher, kycLimit float64) *WithdrawalService {
	return &WithdrawalService{db: gdb, notifier: notifier, kycLimit: kycLimit}
}

// CheckEligibility applies the KYC gate: an account with APPROVED KYC may
// always withdraw; otherwise the request is allowed only while the sum of
// its APPROVED withdrawals plus the requested amount stays within the
// limit. Lookup failures fail closed.
func (s *WithdrawalService) CheckEligibility(tx *gorm.DB, accountID int64, amount float64) (*EligibilityResult, error) {
	result := &EligibilityResult{Limit: s.kycLimit}

	account, err := models.GetAccountByID(tx, accountID)
	if err != nil {
		result.Message = "Unable to verify withdrawal eligibility"
		return result, logger.WrapError(err, "")
	}

	if account.KYCStatus == models.KYCApproved {
		result.CanWithdraw = true
		result.Message = "KYC verified; no withdrawal limit applies"
		return result, nil
	}

	currentTotal, err := models.GetTotalApprovedWithdrawals(tx, accountID)
	if err != nil {
		result.Message = "Unable to verify withdrawal eligibility"
		return result, logger.WrapError(err, "")
	}

	result.CurrentTotal = currentTotal
	newTotal := currentTotal + amount

	if newTotal > s.kycLimit {
		result.RequiresKYC = true
		result.Message = fmt.Sprintf(
			"Withdrawing %.2f would bring your total to %.2f, above the %.2f limit (currently %.2f). Complete KYC to continue.",
			amount, newTotal, s.kycLimit, currentTotal)
		return result, nil
	}

	result.CanWithdraw = true
	result.Message = fmt.Sprintf("You can withdraw %.2f more before KYC becomes mandatory",
		s.kycLimit-newTotal)
	return result, nil
}

// GetEligibility exposes the gate as a read-only endpoint for the client
// to pre-check amounts.
func (s *WithdrawalService) GetEligibility(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	amount, err := strconv.ParseFloat(c.DefaultQuery("amount", "0"), 64)
	if err != nil || amount < 0 {
		c.JSON(400, gin.H{"error": "invalid amount"})
		return
	}

	result, err := s.CheckEligibility(s.db, accountID, amount)
	if err != nil {
		logger.Error("%v", err)
		c.JSON(500, result)
		return
	}

	c.JSON(200, result)
}

type withdrawalInput struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Method        string  `json:"method" validate:"required"`
	PayoutDetails string  `json:"payout_details" validate:"required"`
}

func (i *withdrawalInput) Validate() error {
	return validate.Struct(i)
}

// CreateWithdrawal submits a payout request. The wallet is not debited
// here; the amount stays reserved only by the single-pending-request rule
// until an admin approves.
func (s *WithdrawalService) CreateWithdrawal(c *gin.Context) {
	var input withdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if _, ok := withdrawalAllowedMethods[input.Method]; !ok {
		c.JSON(400, gin.H{"error": "payout method not supported"})
		return
	}

	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	var withdrawal models.Withdrawal
	var eligibility *EligibilityResult

	err = s.db.Transaction(func(tx *gorm.DB) error {
		account, err := models.GetAccountByID(tx, accountID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if account.Balance < input.Amount {
			return errInsufficientBalance
		}

		eligibility, err = s.CheckEligibility(tx, accountID, input.Amount)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if !eligibility.CanWithdraw {
			return &KYCRequiredError{
				CurrentTotal: eligibility.CurrentTotal,
				Limit:        eligibility.Limit,
				NewTotal:     eligibility.CurrentTotal + input.Amount,
			}
		}

		pending, err := models.HasPendingWithdrawal(tx, accountID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if pending {
			return errPendingExists
		}

		withdrawal = models.Withdrawal{
			AccountID:     accountID,
			Amount:        input.Amount,
			Method:        input.Method,
			PayoutDetails: input.PayoutDetails,
			Status:        models.WithdrawalPending,
		}
		if err := tx.Create(&withdrawal).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return models.AppendTransaction(tx, &models.Transaction{
			AccountID: accountID,
			Type:      models.TxWithdrawal,
			Amount:    input.Amount,
			Status:    models.TxPending,
			Reference: withdrawal.ID,
		})
	})

	if err != nil {
		var kycErr *KYCRequiredError
		if errors.As(err, &kycErr) {
			c.JSON(403, gin.H{
				"error":         kycErr.Error(),
				"requires_kyc":  true,
				"current_total": kycErr.CurrentTotal,
				"limit":         kycErr.Limit,
			})
			return
		} else if errors.Is(err, errInsufficientBalance) {
			c.JSON(402, gin.H{"error": err.Error()})
			return
		} else if errors.Is(err, errPendingExists) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	s.notifier.Publish(context.Background(), accountID, notify.EventWithdrawalUpdate, withdrawal)

	c.JSON(200, gin.H{
		"withdrawal": withdrawal,
		"message":    eligibility.Message,
	})
}

func (s *WithdrawalService) GetWithdrawals(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	withdrawals, err := models.GetWithdrawalsByAccount(s.db, accountID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, withdrawals)
}

// GetPendingWithdrawals lists requests awaiting admin review.
func (s *WithdrawalService) GetPendingWithdrawals(c *gin.Context) {
	withdrawals, err := models.GetWithdrawalsByStatus(s.db, models.WithdrawalPending)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, withdrawals)
}

type reviewInput struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Remark string `json:"remark"`
}

func (i *reviewInput) Validate() error {
	return validate.Struct(i)
}

// ReviewWithdrawal finalizes a PENDING request. Approval is the only path
// that debits the wallet, and it re-validates the balance at approval
// time; a request that is no longer PENDING cannot be re-processed.
func (s *WithdrawalService) ReviewWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid withdrawal id"})
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

	var withdrawal models.Withdrawal

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&withdrawal, withdrawalID).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if withdrawal.Status != models.WithdrawalPending {
			return errAlreadyProcessed
		}

		newStatus := models.WithdrawalRejected
		txStatus := models.TxFailed

		if input.Action == "approve" {
			if err := models.DebitBalance(tx, withdrawal.AccountID, withdrawal.Amount); err != nil {
				return err
			}
			newStatus = models.WithdrawalApproved
			txStatus = models.TxCompleted
		}

		now := time.Now()
		withdrawal.Status = newStatus
		withdrawal.AdminRemark = input.Remark
		withdrawal.ProcessedAt = &now
		if err := tx.Save(&withdrawal).Error; err != nil {
			return logger.WrapError(err, "")
		}

		err := tx.Model(&models.Transaction{}).
			Where("type = ? AND reference = ? AND status = ?",
				models.TxWithdrawal, withdrawal.ID, models.TxPending).
			Update("status", txStatus).Error
		if err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "withdrawal not found"})
			return
		} else if errors.Is(err, errAlreadyProcessed) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		} else if errors.Is(err, models.ErrInsufficientBalance) {
			c.JSON(402, gin.H{"error": "account balance no longer covers this withdrawal"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	s.notifier.Publish(context.Background(), withdrawal.AccountID, notify.EventWithdrawalUpdate, withdrawal)

	c.JSON(200, withdrawal)
}
