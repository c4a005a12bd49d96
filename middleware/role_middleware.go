package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be numeric")
	}
	return uint(id), nil
}

// RequireProjectOwner gates owner-only routes. The project id comes from the
// :projectId route parameter.
func RequireProjectOwner(projects *services.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		projectID, err := paramUint(c, "projectId")
		if err != nil {
			return err
		}

		isOwner, err := projects.IsOwner(projectID, user.ID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Project not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check project ownership",
			})
		}
		if !isOwner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the project owner may perform this action",
			})
		}
		return c.Next()
	}
}

// RequireProjectRole gates routes to active members holding one of the
// allowed roles.
func RequireProjectRole(projects *services.ProjectService, allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		projectID, err := paramUint(c, "projectId")
		if err != nil {
			return err
		}

		ok, err := projects.HasRole(projectID, user.ID, allowedRoles...)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check project role",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You do not have permission to perform this action",
			})
		}
		return c.Next()
	}
}

// RequireSubmissionProjectOwner gates the merge route: it resolves the
// submission's task to its project and requires ownership of that project.
func RequireSubmissionProjectOwner(db *gorm.DB, projects *services.ProjectService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		submissionID, err := paramUint(c, "id")
		if err != nil {
			return err
		}

		var submission models.Submission
		if err := db.Preload("Task").First(&submission, submissionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Submission not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load submission",
			})
		}

		isOwner, err := projects.IsOwner(submission.Task.ProjectID, user.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check project ownership",
			})
		}
		if !isOwner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the project owner may merge submissions",
			})
		}
		return c.Next()
	}
}
