package admin

import (
	"net/http"
	"time"

	"streamdraw/database"
	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Mobile   string    `json:"mobile"`
	UPI      string    `json:"upi"`
	JoinedAt time.Time `json:"joined_at"`
}

type AdminPayment struct {
	ID            uint    `json:"id"`
	TxnRef        string  `json:"txn_ref"`
	Gateway       string  `json:"gateway"`
	UserName      string  `json:"user_name"`
	Mobile        string  `json:"mobile"`
	StreamTitle   string  `json:"stream_title"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	FailureReason *string `json:"failure_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers         int64            `json:"total_users"`
	StreamsByStatus    map[string]int64 `json:"streams_by_status"`
	SuccessfulPayments int64            `json:"successful_payments"`
	PendingPayments    int64            `json:"pending_payments"`
	TotalRevenue       string           `json:"total_revenue"`
	RecentRevenue      string           `json:"recent_revenue"`
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{ID: u.ID, Name: u.Name, Mobile: u.Mobile, UPI: u.UPI, JoinedAt: u.CreatedAt}
}

func ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	result := make([]AdminUser, 0, len(all))
	for _, u := range all {
		result = append(result, toAdminUser(u))
	}
	c.JSON(http.StatusOK, result)
}

func ListAllPayments(c *gin.Context) {
	type row struct {
		billing.Payment
		UserName    string
		Mobile      string
		StreamTitle string
	}

	var rows []row
	err := database.DB.
		Table("payments").
		Select("payments.*, users.name AS user_name, users.mobile AS mobile, streams.title AS stream_title").
		Joins("LEFT JOIN users ON users.id = payments.user_id").
		Joins("LEFT JOIN streams ON streams.id = payments.stream_id").
		Order("payments.created_at DESC").
		Limit(500).
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	result := make([]AdminPayment, 0, len(rows))
	for _, p := range rows {
		result = append(result, AdminPayment{
			ID:            p.ID,
			TxnRef:        p.TxnRef,
			Gateway:       p.Gateway,
			UserName:      p.UserName,
			Mobile:        p.Mobile,
			StreamTitle:   p.StreamTitle,
			Amount:        billing.FormatMinor(p.Amount),
			Status:        string(p.Status),
			FailureReason: p.FailureReason,
			CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, result)
}

func GetAdminStats(c *gin.Context) {
	stats := AdminStats{StreamsByStatus: map[string]int64{}}
	db := database.DB.WithContext(c.Request.Context())

	if err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var perStatus []struct {
		Status string
		Count  int64
	}
	db.Model(&streams.Stream{}).Select("status, COUNT(*) AS count").Group("status").Scan(&perStatus)
	for _, s := range perStatus {
		stats.StreamsByStatus[s.Status] = s.Count
	}

	db.Model(&billing.Payment{}).Where("status = ?", billing.StatusSuccess).Count(&stats.SuccessfulPayments)
	db.Model(&billing.Payment{}).Where("status = ?", billing.StatusPending).Count(&stats.PendingPayments)

	var total, recent int64
	db.Model(&billing.Payment{}).
		Where("status = ?", billing.StatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&total)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	db.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", billing.StatusSuccess, thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").Scan(&recent)

	stats.TotalRevenue = billing.FormatMinor(total)
	stats.RecentRevenue = billing.FormatMinor(recent)

	c.JSON(http.StatusOK, stats)
}

func GetUserDetails(c *gin.Context) {
	userID, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var payments []billing.Payment
	if err := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     toAdminUser(user),
		"payments": payments,
	})
}
