package service

import (
	"errors"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

type AccountService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAccountService(gdb *gorm.DB, jwtSecret string) *AccountService {
	return &AccountService{db: gdb, jwtSecret: jwtSecret}
}

type signUpInput struct {
	Name         string `json:"name" validate:"required,min=2,max=64"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ReferralCode string `json:"referral_code"`
}

func (i *signUpInput) Validate() error {
	return validate.Struct(i)
}

// SignUp registers an account and assigns it a fresh referral code. An
// unknown inviter code is ignored; historical chains are often broken and
// must not block registration.
func (s *AccountService) SignUp(c *gin.Context) {
	var input signUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	exists, err := models.CheckIfAccountExistsByEmail(s.db, input.Email)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(409, gin.H{"error": "Account with this email already exists"})
		return
	}

	hashed, err := middleware.HashPassword(input.Password)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	account := models.Account{
		Name:         input.Name,
		Email:        input.Email,
		Password:     hashed,
		ReferralCode: models.NewReferralCode(),
		KYCStatus:    models.KYCNotSubmitted,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if input.ReferralCode != "" {
			referrer, err := models.GetAccountByReferralCode(tx, input.ReferralCode)
			if err != nil {
				return logger.WrapError(err, "")
			}
			if referrer != nil {
				account.ReferredBy = &referrer.ReferralCode
			}
		}

		if err := tx.Create(&account).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	token, err := middleware.TokenNew(s.jwtSecret, account.ID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"account": account, "access_token": token})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (i *loginInput) Validate() error {
	return validate.Struct(i)
}

func (s *AccountService) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	account, err := models.GetAccountByEmail(s.db, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if !middleware.ComparePasswords(account.Password, input.Password) {
		c.JSON(401, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.TokenNew(s.jwtSecret, account.ID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"access_token": token})
}

func (s *AccountService) GetAccount(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	account, err := models.GetAccountByID(s.db, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, account)
}

type referralEntry struct {
	AccountID int64   `json:"account_id"`
	Name      string  `json:"name"`
	Earned    float64 `json:"earned"`
}

// GetReferrals lists the caller's direct referrals with the commission
// total each one brought in.
func (s *AccountService) GetReferrals(c *gin.Context) {
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

	var referrals []referralEntry
	err = s.db.Model(&models.Account{}).
		Select("accounts.id AS account_id, accounts.name, COALESCE(SUM(commission_earnings.amount), 0) AS earned").
		Joins("LEFT JOIN commission_earnings ON commission_earnings.from_account_id = accounts.id AND commission_earnings.account_id = ?", accountID).
		Where("accounts.referred_by = ?", account.ReferralCode).
		Group("accounts.id, accounts.name").
		Scan(&referrals).Error
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, referrals)
}
