package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/config"
	controller "github.com/Lucifer21-lab/synchro-ai-sub000/controllers"
	"github.com/Lucifer21-lab/synchro-ai-sub000/middleware"
	"github.com/Lucifer21-lab/synchro-ai-sub000/routes"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
	"github.com/Lucifer21-lab/synchro-ai-sub000/utils"
	"github.com/Lucifer21-lab/synchro-ai-sub000/worker"
)

func main() {
	logger := log.New(os.Stdout, "SYNCHRO: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()
	app.Use(middleware.CORS())

	// External collaborators
	var mailer services.EmailSender
	if config.AppConfig.SMTP.Host != "" {
		mailer = utils.NewMailer(config.AppConfig.SMTP)
	}
	reviewer := utils.NewOpenAIReviewer(config.AppConfig.ReviewModel)

	var uploader controller.Uploader
	if config.AppConfig.Minio.AccessKey != "" {
		blobs, err := utils.NewBlobStore(config.AppConfig.Minio)
		if err != nil {
			logger.Fatalf("Failed to connect to blob storage: %v", err)
		}
		uploader = blobs
	}

	// Service graph (explicit construction, no package-level singletons)
	svc := routes.BuildServices(config.DB, mailer, reviewer)

	// Deadline reminder worker
	reminderWorker := worker.NewReminderWorker(config.DB, svc.Notifications,
		log.New(os.Stdout, "REMINDER: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reminderWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, svc, uploader)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
