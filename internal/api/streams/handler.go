package streams

import (
	"net/http"
	"time"

	"streamdraw/database"
	"streamdraw/internal/domain/streams"

	"github.com/gin-gonic/gin"
)

type RunningStream struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Host             string    `json:"host"`
	Price            int64     `json:"price"`
	CreatedAt        time.Time `json:"created_at"`
	ParticipantCount int64     `json:"participant_count"`
	Joined           bool      `json:"joined"`
}

// ListRunning returns open streams, newest first, flagged with whether the
// caller already joined.
func ListRunning(c *gin.Context) {
	userID := c.GetUint("user_id")

	out := []RunningStream{}
	err := database.DB.WithContext(c.Request.Context()).
		Model(&streams.Stream{}).
		Select(`streams.id, streams.title, streams.description, streams.host, streams.price, streams.created_at,
			(SELECT COUNT(*) FROM stream_participants sp WHERE sp.stream_id = streams.id) AS participant_count,
			EXISTS (SELECT 1 FROM stream_participants sp WHERE sp.stream_id = streams.id AND sp.user_id = ?) AS joined`, userID).
		Where("streams.status = ?", streams.StatusOpen).
		Order("streams.created_at DESC").
		Scan(&out).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load streams"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "streams": out})
}
