package service

import (
	"context"
	"errors"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errDuplicateInvestment = errors.New("an active investment on this plan already exists")

type InvestmentService struct {
	db       *gorm.DB
	engine   *CommissionEngine
	notifier notify.Publisher
}

func NewInvestmentService(gdb *gorm.DB, engine *CommissionEngine, notifier notify.Publisher) *InvestmentService {
	return &InvestmentService{db: gdb, engine: engine, notifier: notifier}
}

type investmentInput struct {
	PlanID int64 `json:"plan_id" validate:"required"`
}

func (i *investmentInput) Validate() error {
	return validate.Struct(i)
}

// CreateInvestment purchases a plan: debits the wallet, snapshots the plan
// terms onto the new investment and records the INVESTMENT transaction in
// one atomic unit. The commission cascade runs after the commit so a
// failed cascade can never take the investment down with it.
func (s *InvestmentService) CreateInvestment(c *gin.Context) {
	var input investmentInput
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

	var investment models.Investment
	var account *models.Account

	err = s.db.Transaction(func(tx *gorm.DB) error {
		plan, err := models.GetPlanByID(tx, input.PlanID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if !plan.Active {
			return gorm.ErrRecordNotFound
		}

		duplicate, err := models.HasActiveInvestment(tx, accountID, plan.ID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if duplicate {
			return errDuplicateInvestment
		}

		account, err = models.GetAccountByID(tx, accountID)
		if err != nil {
			return logger.WrapError(err, "")
		}

		if err := models.DebitBalance(tx, accountID, plan.Amount); err != nil {
			return err
		}

		investment = models.Investment{
			AccountID:     accountID,
			PlanID:        plan.ID,
			Amount:        plan.Amount,
			DailyROI:      plan.DailyROI,
			DurationDays:  plan.DurationDays,
			RemainingDays: plan.DurationDays,
			Status:        models.InvestmentActive,
		}
		if err := tx.Create(&investment).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return models.AppendTransaction(tx, &models.Transaction{
			AccountID: accountID,
			Type:      models.TxInvestment,
			Amount:    plan.Amount,
			Status:    models.TxCompleted,
			Reference: investment.ID,
		})
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "plan not found"})
			return
		} else if errors.Is(err, errDuplicateInvestment) {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		} else if errors.Is(err, models.ErrInsufficientBalance) {
			c.JSON(402, gin.H{"error": err.Error()})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	// post-commit side effects
	s.engine.DistributeAfterCommit(accountID, account.ReferredBy, investment.Amount, investment.ID)
	s.notifier.Publish(context.Background(), accountID, notify.EventInvestmentCreated, investment)

	c.JSON(200, investment)
}

func (s *InvestmentService) GetInvestments(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	investments, err := models.GetInvestmentsByAccount(s.db, accountID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, investments)
}
