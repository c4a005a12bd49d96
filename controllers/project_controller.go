package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
	"github.com/Lucifer21-lab/synchro-ai-sub000/utils"
)

type ProjectController struct {
	Projects   *services.ProjectService
	Activities *services.ActivityService
	Logger     *log.Logger
}

func NewProjectController(projects *services.ProjectService, activities *services.ActivityService, logger *log.Logger) *ProjectController {
	return &ProjectController{Projects: projects, Activities: activities, Logger: logger}
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=contributor viewer"`
}

type InviteResponseRequest struct {
	Response string `json:"response" validate:"required,oneof=accept decline"`
}

type SetAIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateProjectRequest
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

	project, err := pc.Projects.CreateProject(user.ID, req.Name, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	projects, err := pc.Projects.ListForUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}
	return c.JSON(projects)
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	project, err := pc.Projects.GetProject(projectID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

func (pc *ProjectController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	var req InviteMemberRequest
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

	member, err := pc.Projects.InviteMember(projectID, user.ID, req.Email, req.Role)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (pc *ProjectController) RespondToInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	var req InviteResponseRequest
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

	member, err := pc.Projects.RespondToInvite(projectID, user.ID, req.Response == "accept")
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(member)
}

func (pc *ProjectController) SetAIKey(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	var req SetAIKeyRequest
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

	if err := pc.Projects.SetAIKey(projectID, user.ID, req.APIKey); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (pc *ProjectController) GetActivities(c *fiber.Ctx) error {
	projectID, err := paramID(c, "projectId")
	if err != nil {
		return err
	}

	activities, err := pc.Activities.ListForProject(projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activities",
		})
	}
	return c.JSON(activities)
}
