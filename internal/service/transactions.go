package service

import (
	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TransactionService struct {
	db *gorm.DB
}

func NewTransactionService(gdb *gorm.DB) *TransactionService {
	return &TransactionService{db: gdb}
}

// GetTransactions lists the audit trail of the authenticated account,
// optionally filtered by type.
func (s *TransactionService) GetTransactions(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	records, err := models.GetTransactionsByAccount(s.db, accountID, c.Query("type"))
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, records)
}
