package service

import (
	"database/sql"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(gdb *gorm.DB) *AdminService {
	return &AdminService{db: gdb}
}

type adminSummary struct {
	PendingWithdrawals       int64   `json:"pending_withdrawals"`
	PendingWithdrawalAmount  float64 `json:"pending_withdrawal_amount"`
	PendingFundRequests      int64   `json:"pending_fund_requests"`
	PendingFundRequestAmount float64 `json:"pending_fund_request_amount"`
	PendingKYCSubmissions    int64   `json:"pending_kyc_submissions"`
	TotalAccounts            int64   `json:"total_accounts"`
	ActiveInvestments        int64   `json:"active_investments"`
}

// GetSummary backs the admin dashboard's review queues.
func (s *AdminService) GetSummary(c *gin.Context) {
	summary, err := s.collectSummary()
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, summary)
}

func (s *AdminService) collectSummary() (*adminSummary, error) {
	var summary adminSummary
	var err error

	if summary.PendingWithdrawals, err = s.count(&models.Withdrawal{}, "status = ?", models.WithdrawalPending); err != nil {
		return nil, err
	}
	if summary.PendingWithdrawalAmount, err = s.sumAmount(&models.Withdrawal{}, "status = ?", models.WithdrawalPending); err != nil {
		return nil, err
	}
	if summary.PendingFundRequests, err = s.count(&models.FundRequest{}, "status = ?", models.FundRequestPending); err != nil {
		return nil, err
	}
	if summary.PendingFundRequestAmount, err = s.sumAmount(&models.FundRequest{}, "status = ?", models.FundRequestPending); err != nil {
		return nil, err
	}
	if summary.PendingKYCSubmissions, err = s.count(&models.KYCSubmission{}, "status = ?", models.KYCPending); err != nil {
		return nil, err
	}
	if summary.TotalAccounts, err = s.count(&models.Account{}, ""); err != nil {
		return nil, err
	}
	if summary.ActiveInvestments, err = s.count(&models.Investment{}, "status = ?", models.InvestmentActive); err != nil {
		return nil, err
	}

	return &summary, nil
}

func (s *AdminService) count(model interface{}, query string, args ...interface{}) (int64, error) {
	q := s.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, logger.WrapError(err, "")
	}

	return n, nil
}

func (s *AdminService) sumAmount(model interface{}, query string, args ...interface{}) (float64, error) {
	var total sql.NullFloat64
	err := s.db.Model(model).Where(query, args...).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return 0, logger.WrapError(err, "")
	}

	if total.Valid {
		return total.Float64, nil
	}

	return 0, nil
}
