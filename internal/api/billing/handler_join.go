package billing

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type joinInput struct {
	StreamID uint `json:"streamId"`
}

// CreatePayment starts a paid join. The stream id comes from the JSON body or
// the streamId query parameter.
func (h *Handler) CreatePayment(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not identified"})
		return
	}

	streamID, ok := streamIDFromRequest(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Stream ID required"})
		return
	}

	res, err := h.Engine.RequestJoin(c.Request.Context(), userID, streamID)
	if err != nil {
		status, msg := joinStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("❌ join stream %d for user %d: %v", streamID, userID, err)
		}
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"txnid":   res.Payment.TxnRef,
		"res":     res.Payload,
	})
}

func streamIDFromRequest(c *gin.Context) (uint, bool) {
	if raw := c.Query("streamId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		return uint(id), err == nil && id > 0
	}

	var input joinInput
	if err := c.ShouldBindJSON(&input); err != nil || input.StreamID == 0 {
		return 0, false
	}
	return input.StreamID, true
}
