package auth

import (
	"net/http"
	"strings"
	"time"

	"streamdraw/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserCookie  = "user"
	AdminCookie = "admin"

	userTokenTTL  = 7 * 24 * time.Hour
	adminTokenTTL = 2 * 24 * time.Hour
)

func IssueUserToken(userID uint) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    "user",
		"exp":     time.Now().Add(userTokenTTL).Unix(),
	})
	return t.SignedString([]byte(config.JWT_SECRET))
}

// IssueAdminToken signs an admin token; email is empty for password logins.
func IssueAdminToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(adminTokenTTL).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(config.JWT_SECRET))
}

func setTokenCookie(c *gin.Context, name, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		token,
		int(ttl.Seconds()),
		"/",
		"",
		strings.HasPrefix(config.BASE_URL, "https://"),
		true,
	)
}
