package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

type NotificationController struct {
	Notifications *services.NotificationService
	Logger        *log.Logger
}

func NewNotificationController(notifications *services.NotificationService, logger *log.Logger) *NotificationController {
	return &NotificationController{Notifications: notifications, Logger: logger}
}

func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	notifications, err := nc.Notifications.ListForUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}
	return c.JSON(notifications)
}

func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	count, err := nc.Notifications.UnreadCount(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count notifications",
		})
	}
	return c.JSON(fiber.Map{"unread": count})
}

func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := nc.Notifications.MarkAsRead(user.ID, notificationID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (nc *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	if err := nc.Notifications.MarkAllAsRead(user.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notifications read",
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
