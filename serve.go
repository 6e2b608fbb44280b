package main

import (
	"log"
	"time"

	"streamdraw/config"
	"streamdraw/database"
	routes "streamdraw/internal/app/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	database.InitDB()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	r := gin.Default()

	// ✅ Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Engine:              engine,
		SupportEmail:        config.SUPPORT_EMAIL,
		StripeWebhookSecret: config.STRIPE_WEBHOOK_SECRET,
	})

	log.Printf("Listening on :%s (gateway %s)", config.PORT, config.GATEWAY)
	return r.Run(":" + config.PORT)
}
