package service

import (
	"errors"
	"strconv"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(gdb *gorm.DB) *PlanService {
	return &PlanService{db: gdb}
}

func (s *PlanService) GetPlans(c *gin.Context) {
	plans, err := models.GetActivePlans(s.db)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, plans)
}

type planInput struct {
	Name         string  `json:"name" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	DailyROI     float64 `json:"daily_roi" validate:"required,gt=0"`
	DurationDays int     `json:"duration_days" validate:"required,gt=0"`
}

func (i *planInput) Validate() error {
	return validate.Struct(i)
}

func (s *PlanService) CreatePlan(c *gin.Context) {
	var input planInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	plan := models.InvestmentPlan{
		Name:         input.Name,
		Amount:       input.Amount,
		DailyROI:     input.DailyROI,
		DurationDays: input.DurationDays,
		Active:       true,
	}
	if err := s.db.Create(&plan).Error; err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, plan)
}

type planUpdateInput struct {
	Name         *string  `json:"name"`
	Amount       *float64 `json:"amount" validate:"omitempty,gt=0"`
	DailyROI     *float64 `json:"daily_roi" validate:"omitempty,gt=0"`
	DurationDays *int     `json:"duration_days" validate:"omitempty,gt=0"`
	Active       *bool    `json:"active"`
}

func (i *planUpdateInput) Validate() error {
	return validate.Struct(i)
}

// UpdatePlan edits the template only; investments already created from it
// keep their snapshotted terms.
func (s *PlanService) UpdatePlan(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid plan id"})
		return
	}

	var input planUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	plan, err := models.GetPlanByID(s.db, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "plan not found"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if input.Name != nil {
		plan.Name = *input.Name
	}
	if input.Amount != nil {
		plan.Amount = *input.Amount
	}
	if input.DailyROI != nil {
		plan.DailyROI = *input.DailyROI
	}
	if input.DurationDays != nil {
		plan.DurationDays = *input.DurationDays
	}
	if input.Active != nil {
		plan.Active = *input.Active
	}

	if err := s.db.Save(plan).Error; err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, plan)
}
