package billing

import (
	"net/http"
	"time"

	"streamdraw/database"
	"streamdraw/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// PaymentHistoryItem is one payment attempt as the paying user sees it.
type PaymentHistoryItem struct {
	TxnID         string         `json:"txnid"`
	StreamID      uint           `json:"stream_id"`
	StreamTitle   string         `json:"stream_title"`
	Amount        int64          `json:"amount"`
	Gateway       string         `json:"gateway"`
	Status        billing.Status `json:"status"`
	FailureReason *string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
}

// GET /api/payments?status=pending|success|failure
func GetPaymentHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	q := database.DB.
		Table("payments p").
		Select(`p.txn_ref AS txn_id, p.stream_id, s.title AS stream_title, p.amount,
			p.gateway, p.status, p.failure_reason, p.created_at, p.resolved_at`).
		Joins("JOIN streams s ON s.id = p.stream_id").
		Where("p.user_id = ?", userID)

	if raw := c.Query("status"); raw != "" {
		status := billing.Status(raw)
		if status != billing.StatusPending && !status.Terminal() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment status"})
			return
		}
		q = q.Where("p.status = ?", status)
	}

	items := []PaymentHistoryItem{}
	if err := q.Order("p.created_at DESC, p.id DESC").Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": items})
}
