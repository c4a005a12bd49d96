package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
	"github.com/Lucifer21-lab/synchro-ai-sub000/utils"
)

type TaskController struct {
	Tasks  *services.TaskService
	Logger *log.Logger
}

func NewTaskController(tasks *services.TaskService, logger *log.Logger) *TaskController {
	return &TaskController{Tasks: tasks, Logger: logger}
}

type CreateTaskRequest struct {
	Title         string     `json:"title" validate:"required,min=2"`
	Description   string     `json:"description"`
	AssigneeEmail string     `json:"assignee_email" validate:"omitempty,email"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Deadline      *time.Time `json:"deadline"`
}

type AssignmentResponseRequest struct {
	Response string `json:"response" validate:"required,oneof=accept decline"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress review_requested merged"`
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	task, err := tc.Tasks.CreateTask(services.CreateTaskInput{
		ProjectID:     projectID,
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		CreatorID:     user.ID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	tasks, err := tc.Tasks.ListForProject(projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch tasks",
		})
	}
	return c.JSON(tasks)
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	task, err := tc.Tasks.GetTask(taskID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) RespondToAssignment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req AssignmentResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	task, err := tc.Tasks.RespondToAssignment(taskID, user.ID, req.Response)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

func (tc *TaskController) UpdateStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	task, err := tc.Tasks.UpdateStatus(taskID, req.Status, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}
