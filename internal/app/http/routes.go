package routes

import (
	adminapi "streamdraw/internal/api/admin"
	authapi "streamdraw/internal/api/auth"
	"streamdraw/internal/api/billing"
	streamsapi "streamdraw/internal/api/streams"
	stripewebhooks "streamdraw/internal/api/stripewebhook"
	"streamdraw/internal/api/users"
	"streamdraw/internal/app/http/middleware"
	"streamdraw/internal/metrics"
	"streamdraw/internal/participation"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Engine              *participation.Engine
	SupportEmail        string
	StripeWebhookSecret string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	payments := billing.NewHandler(deps.Engine, deps.SupportEmail)
	r.SetHTMLTemplate(billing.OutcomeTemplate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// gateway callbacks: no auth, the workflow verifies with the provider
	r.POST("/webhook/stripe", stripewebhooks.NewHandler(deps.Engine, deps.StripeWebhookSecret).StripeWebhook)
	r.POST("/api/payment/give-access", payments.GiveAccess)
	r.GET("/api/payment/give-access", payments.GiveAccess)

	// ✅ Apply input sanitization to public JSON routes only
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware("password"))
	public.POST("/api/register", authapi.Register)
	public.POST("/api/admin/login", authapi.AdminLogin)
	public.POST("/api/logout", authapi.Logout)

	r.GET("/auth/google", authapi.GoogleStart)
	r.GET("/auth/google/callback", authapi.GoogleCallback)

	// Registered users
	auth := r.Group("/api")
	auth.Use(middleware.AuthMiddleware(authapi.UserCookie), middleware.RequireUser())
	auth.GET("/me", users.GetCurrentUser)
	auth.GET("/streams/running", streamsapi.ListRunning)
	auth.GET("/payments", billing.GetPaymentHistory)
	auth.POST("/payment/create", payments.CreatePayment)
	auth.GET("/payment/create", payments.CreatePayment)

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(authapi.AdminCookie), middleware.RequireRole("admin"))
	admin.GET("/streams", adminapi.ListRecentStreams)
	admin.POST("/streams", middleware.SanitizeAndCleanInputMiddleware(), adminapi.CreateStream)
	admin.GET("/streams/:id/participants", adminapi.GetStreamParticipants)
	admin.POST("/streams/:id/status", adminapi.UpdateStreamStatus)
	admin.POST("/streams/:id/draw", adminapi.LuckyDraw)
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/users/:id", adminapi.GetUserDetails)
	admin.GET("/payments", adminapi.ListAllPayments)
}
