package users

import (
	"errors"
	"net/http"

	"streamdraw/database"
	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var user users.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	joined := []uint{}
	if err := db.Model(&streams.Participant{}).
		Where("user_id = ?", user.ID).
		Order("stream_id").
		Pluck("stream_id", &joined).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load streams"})
		return
	}

	var pending int64
	if err := db.Model(&billing.Payment{}).
		Where("user_id = ? AND status = ?", user.ID, billing.StatusPending).
		Count(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User: UserDTO{
			ID:       user.ID,
			Name:     user.Name,
			Mobile:   user.Mobile,
			UPI:      user.UPI,
			JoinedAt: user.CreatedAt,
		},
		JoinedStreams:   joined,
		PendingPayments: pending,
	})
}
