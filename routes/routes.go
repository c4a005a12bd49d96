package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/config"
	controller "github.com/Lucifer21-lab/synchro-ai-sub000/controllers"
	"github.com/Lucifer21-lab/synchro-ai-sub000/middleware"
	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

// Services bundles the constructed service graph so main can share it with
// the worker.
type Services struct {
	Activities    *services.ActivityService
	Notifications *services.NotificationService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Hub           *controller.Hub
}

// BuildServices constructs the dependency-injected service graph. mailer and
// reviewer are interfaces so main decides the real implementations.
func BuildServices(db *gorm.DB, mailer services.EmailSender, reviewer services.Reviewer) *Services {
	hub := controller.NewHub(log.New(os.Stdout, "HUB: ", log.LstdFlags))
	activities := services.NewActivityService(db, log.New(os.Stdout, "ACTIVITY: ", log.LstdFlags))
	notifications := services.NewNotificationService(db, hub, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))
	projects := services.NewProjectService(db, activities, notifications, mailer,
		[]byte(config.AppConfig.EncryptionKey), log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	tasks := services.NewTaskService(db, activities, notifications, projects, mailer, reviewer,
		log.New(os.Stdout, "TASK: ", log.LstdFlags))

	return &Services{
		Activities:    activities,
		Notifications: notifications,
		Projects:      projects,
		Tasks:         tasks,
		Hub:           hub,
	}
}

func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, svc *Services, uploader controller.Uploader) {
	projectController := controller.NewProjectController(svc.Projects, svc.Activities,
		log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	taskController := controller.NewTaskController(svc.Tasks,
		log.New(os.Stdout, "TASK: ", log.LstdFlags))
	submissionController := controller.NewSubmissionController(svc.Tasks, uploader,
		log.New(os.Stdout, "SUBMISSION: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(svc.Notifications,
		log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))

	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:projectId", projectController.GetProject)
	project.Post("/:projectId/invites",
		middleware.RequireProjectOwner(svc.Projects), projectController.InviteMember)
	project.Post("/:projectId/invites/respond", projectController.RespondToInvite)
	project.Put("/:projectId/ai-key",
		middleware.RequireProjectOwner(svc.Projects), projectController.SetAIKey)
	project.Get("/:projectId/activities",
		middleware.RequireProjectRole(svc.Projects, models.RoleOwner, models.RoleContributor, models.RoleViewer),
		projectController.GetActivities)

	// Task routes nested under their project
	project.Post("/:projectId/tasks",
		middleware.RequireProjectRole(svc.Projects, models.RoleOwner, models.RoleContributor),
		taskController.CreateTask)
	project.Get("/:projectId/tasks",
		middleware.RequireProjectRole(svc.Projects, models.RoleOwner, models.RoleContributor, models.RoleViewer),
		taskController.GetTasks)

	// Task routes addressed by task id
	task := api.Group("/tasks")
	task.Get("/:id", taskController.GetTask)
	task.Post("/:id/assignment", taskController.RespondToAssignment)
	task.Put("/:id/status", taskController.UpdateStatus)
	task.Post("/:id/submissions", submissionController.SubmitWork)
	task.Get("/:id/submissions", submissionController.GetSubmissions)

	// Merge is owner-gated and rate limited: every merge is an oracle call
	api.Post("/submissions/:id/merge",
		middleware.MergeRateLimiter(),
		middleware.RequireSubmissionProjectOwner(db, svc.Projects),
		submissionController.MergeWork)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetNotifications)
	notification.Get("/unread-count", notificationController.GetUnreadCount)
	notification.Put("/:id/read", notificationController.MarkAsRead)
	notification.Put("/read-all", notificationController.MarkAllAsRead)

	// WebSocket stream feeding the live notification channel
	app.Get("/api/v1/notifications/stream", middleware.Protected(),
		websocket.New(svc.Hub.HandleNotificationWS))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, svc *Services, uploader controller.Uploader) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app)
	SetupAPIRoutes(app, db, svc, uploader)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
