package auth

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"streamdraw/config"
	"streamdraw/database"
	"streamdraw/internal/domain/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

var (
	mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	upiPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
)

type RegisterInput struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	UPI    string `json:"upi"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.UPI = strings.TrimSpace(in.UPI)
}

// Register is idempotent on mobile: a known number gets its existing user
// back with a fresh token.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}
	input.normalize()

	if input.Name == "" || input.Mobile == "" || input.UPI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing fields"})
		return
	}
	if !mobilePattern.MatchString(input.Mobile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid mobile number"})
		return
	}
	if !upiPattern.MatchString(input.UPI) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid UPI id"})
		return
	}

	user, err := findOrCreateUser(c, input)
	if err != nil {
		log.Printf("❌ register %s: %v", input.Mobile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}

	token, err := IssueUserToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not create token"})
		return
	}
	setTokenCookie(c, UserCookie, token, userTokenTTL)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func findOrCreateUser(c *gin.Context, input RegisterInput) (users.User, error) {
	db := database.DB.WithContext(c.Request.Context())

	candidate := users.User{Name: input.Name, Mobile: input.Mobile, UPI: input.UPI}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mobile"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return users.User{}, err
	}

	// on conflict nothing was inserted; the winner's row is authoritative
	var user users.User
	if err := db.Where("mobile = ?", input.Mobile).First(&user).Error; err != nil {
		return users.User{}, err
	}
	return user, nil
}

func AdminLogin(c *gin.Context) {
	var input struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Password is required"})
		return
	}

	if config.ADMIN_PASSWORD_HASH == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Admin password login is disabled"})
		return
	}

	err := bcrypt.CompareHashAndPassword([]byte(config.ADMIN_PASSWORD_HASH), []byte(input.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid admin password"})
		return
	}
	if err != nil {
		log.Printf("❌ admin password hash unusable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}

	token, err := IssueAdminToken("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not create token"})
		return
	}
	setTokenCookie(c, AdminCookie, token, adminTokenTTL)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin authenticated"})
}

// Logout clears both session cookies.
func Logout(c *gin.Context) {
	for _, name := range []string{UserCookie, AdminCookie} {
		c.SetCookie(name, "", -1, "/", "", false, true)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
