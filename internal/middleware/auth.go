package middleware

import (
	"errors"
	"strings"
	"time"

	"PowerOyoApi/internal/models"
	"PowerOyoApi/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ContextUserIDKey = "user_id"
	TokenAccess      = "access"

	AccessTokenTTL = 24 * time.Hour
)

type accessClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenNew signs an access token for the account.
func TokenNew(secret string, userID int64) (string, error) {
	claims := accessClaims{
		UserID:    userID,
		TokenType: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", logger.WrapError(err, "")
	}

	return token, nil
}

// TokenCheck parses and validates a signed access token.
func TokenCheck(tokenString, secret string) (int64, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	if claims.TokenType != TokenAccess {
		return 0, errors.New("not an access token")
	}

	return claims.UserID, nil
}

func GetTokenFromAuthorizationHeader(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// websocket upgrades can't set headers from the browser
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errors.New("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("malformed Authorization header")
	}

	return parts[1], nil
}

// AuthMiddleware validates the bearer token and checks the account still
// exists before letting the request through.
func AuthMiddleware(gdb *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := GetTokenFromAuthorizationHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		userID, err := TokenCheck(token, jwtSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(401, gin.H{"error": "Token expired"})
				c.Abort()
				return
			}
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		exists, err := models.CheckIfAccountExistsByID(gdb, userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		if !exists {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// AdminMiddleware allows only accounts flagged as admin. It runs after
// AuthMiddleware, so the user id is already in the context.
func AdminMiddleware(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromGinContext(c)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		account, err := models.GetAccountByID(gdb, userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		if !account.IsAdmin {
			c.JSON(403, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserIDFromGinContext(c *gin.Context) (int64, error) {
	userIDAny, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, logger.WrapError(errors.New("user_id not in GIN context"), "")
	}

	userIDInt, ok := userIDAny.(int64)
	if !ok {
		return 0, logger.WrapError(errors.New("unable to cast user_id value to int"), "")
	}

	return userIDInt, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", logger.WrapError(err, "")
	}

	return string(hash), nil
}

func ComparePasswords(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
