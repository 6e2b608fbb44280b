package admin

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"streamdraw/database"
	"streamdraw/internal/domain/draw"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"
	"streamdraw/internal/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentStreamsLimit = 50

type AdminStream struct {
	ID           uint        `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Host         string      `json:"host"`
	Price        int64       `json:"price"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	Participants []AdminUser `json:"participants"`
}

type CreateStreamInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Host        string `json:"host"`
	Price       int64  `json:"price"`
}

func toAdminStream(s streams.Stream) AdminStream {
	out := AdminStream{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Host:         s.Host,
		Price:        s.Price,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		Participants: make([]AdminUser, 0, len(s.Participants)),
	}
	for _, u := range s.Participants {
		out.Participants = append(out.Participants, toAdminUser(u))
	}
	return out
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// loadStream answers 400/404/500 itself and returns false when it did.
func loadStream(c *gin.Context, withParticipants bool) (*streams.Stream, bool) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid stream ID"})
		return nil, false
	}

	q := database.DB.WithContext(c.Request.Context())
	if withParticipants {
		q = q.Preload("Participants")
	}

	var stream streams.Stream
	if err := q.First(&stream, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Stream not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load stream"})
		return nil, false
	}
	return &stream, true
}

func CreateStream(c *gin.Context) {
	var input CreateStreamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Host = strings.TrimSpace(input.Host)
	input.Description = strings.TrimSpace(input.Description)

	if input.Title == "" || input.Host == "" || input.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or missing fields"})
		return
	}

	stream := streams.Stream{
		Title:       input.Title,
		Description: input.Description,
		Host:        input.Host,
		Price:       input.Price,
		Status:      streams.StatusOpen,
	}
	if err := database.DB.Create(&stream).Error; err != nil {
		log.Printf("❌ create stream: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "stream": toAdminStream(stream)})
}

func ListRecentStreams(c *gin.Context) {
	var recent []streams.Stream
	if err := database.DB.
		Preload("Participants").
		Order("created_at DESC").
		Limit(recentStreamsLimit).
		Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load streams"})
		return
	}

	result := make([]AdminStream, 0, len(recent))
	for _, s := range recent {
		result = append(result, toAdminStream(s))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "streams": result})
}

func GetStreamParticipants(c *gin.Context) {
	stream, ok := loadStream(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stream": toAdminStream(*stream)})
}

// UpdateStreamStatus applies an operator transition. The update is
// conditional on the status that was validated so two operators cannot both win.
func UpdateStreamStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}
	to, err := streams.ParseStatus(input.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status"})
		return
	}

	stream, ok := loadStream(c, false)
	if !ok {
		return
	}

	if _, err := streams.Transition(stream.Status, to); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}

	res := database.DB.Model(&streams.Stream{}).
		Where("id = ? AND status = ?", stream.ID, stream.Status).
		Update("status", to)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Stream status changed concurrently"})
		return
	}

	stream.Status = to
	log.Printf("stream %d -> %s", stream.ID, to)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully", "stream": toAdminStream(*stream)})
}

// LuckyDraw picks a winner among the stream's participants. Nothing is stored.
func LuckyDraw(c *gin.Context) {
	stream, ok := loadStream(c, true)
	if !ok {
		return
	}

	winner, err := draw.SelectWinner[users.User](stream.Participants)
	if errors.Is(err, draw.ErrNoParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No participants in this stream"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Draw failed"})
		return
	}

	metrics.Draws.Inc()
	log.Printf("🎉 stream %d lucky draw winner: user %d", stream.ID, winner.ID)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"winner":       toAdminUser(winner),
		"participants": len(stream.Participants),
	})
}
