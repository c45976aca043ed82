package service

import (
	"context"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommissionEngine walks the referrer chain of an investing account and
// credits each ancestor level its configured percentage of the principal.
type CommissionEngine struct {
	db       *gorm.DB
	notifier notify.Publisher
}

func NewCommissionEngine(gdb *gorm.DB, notifier notify.Publisher) *CommissionEngine {
	return &CommissionEngine{db: gdb, notifier: notifier}
}

// Distribute runs the cascade for one committed investment. The walk is
// bounded by the number of active commission levels, so a malformed
// back-reference can never loop forever. A referral code that does not
// resolve ends the walk; that is a normal terminal condition.
//
// The ledger entry, the wallet credit and the REFERRAL transaction of all
// reached levels are applied in one transaction.
func (e *CommissionEngine) Distribute(accountID int64, referralCode string, principal float64, investmentID int64) error {
	var credited []models.CommissionEarning

	err := e.db.Transaction(func(tx *gorm.DB) error {
		settings, err := models.GetActiveCommissionLevels(tx)
		if err != nil {
			return logger.WrapError(err, "")
		}

		current, err := models.GetAccountByReferralCode(tx, referralCode)
		if err != nil {
			return logger.WrapError(err, "")
		}

		for _, setting := range settings {
			if current == nil {
				break
			}

			amount := principal * setting.Percentage / 100

			earning := models.CommissionEarning{
				AccountID:     current.ID,
				FromAccountID: accountID,
				InvestmentID:  investmentID,
				Level:         setting.Level,
				Percentage:    setting.Percentage,
				Amount:        amount,
			}
			if err := tx.Create(&earning).Error; err != nil {
				return logger.WrapError(err, "")
			}

			if err := models.CreditCommission(tx, current.ID, amount); err != nil {
				return logger.WrapError(err, "")
			}

			if err := models.AppendTransaction(tx, &models.Transaction{
				AccountID: current.ID,
				Type:      models.TxReferral,
				Amount:    amount,
				Status:    models.TxCompleted,
				Reference: investmentID,
			}); err != nil {
				return logger.WrapError(err, "")
			}

			credited = append(credited, earning)

			if current.ReferredBy == nil {
				break
			}

			current, err = models.GetAccountByReferralCode(tx, *current.ReferredBy)
			if err != nil {
				return logger.WrapError(err, "")
			}
		}

		return nil
	})
	if err != nil {
		return logger.WrapError(err, "")
	}

	for _, earning := range credited {
		e.notifier.Publish(context.Background(), earning.AccountID,
			notify.EventCommissionEarned, earning)
	}

	return nil
}

// DistributeAfterCommit is the post-commit hook invoked by investment
// creation. The triggering investment is already committed, so a failed
// cascade is logged for reconciliation and never surfaced.
func (e *CommissionEngine) DistributeAfterCommit(accountID int64, referralCode *string, principal float64, investmentID int64) {
	if referralCode == nil || *referralCode == "" {
		return
	}

	if err := e.Distribute(accountID, *referralCode, principal, investmentID); err != nil {
		logger.Error("commission cascade failed for investment %d: %v", investmentID, err)
	}
}

// GetCommissionEarnings lists the authenticated account's ledger entries.
func (e *CommissionEngine) GetCommissionEarnings(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	earnings, err := models.GetCommissionEarningsByAccount(e.db, accountID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, earnings)
}
