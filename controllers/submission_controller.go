package controller

import (
	"context"
	"io"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

// Uploader resolves an uploaded file into a hosted URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type SubmissionController struct {
	Tasks  *services.TaskService
	Blobs  Uploader // nil disables file uploads; links still work
	Logger *log.Logger
}

func NewSubmissionController(tasks *services.TaskService, blobs Uploader, logger *log.Logger) *SubmissionController {
	return &SubmissionController{Tasks: tasks, Blobs: blobs, Logger: logger}
}

// SubmitWork accepts multipart form data: an optional "file" part plus
// optional "content_url" and "comment" fields. An uploaded file wins over a
// supplied link.
func (sc *SubmissionController) SubmitWork(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	linkURL := c.FormValue("content_url")
	comment := c.FormValue("comment")

	var fileURL string
	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
		if sc.Blobs == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "File uploads are not enabled",
			})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read uploaded file",
			})
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to read uploaded file",
			})
		}

		fileURL, err = sc.Blobs.Upload(c.UserContext(), fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			sc.Logger.Printf("upload for task %d failed: %v", taskID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to store uploaded file",
			})
		}
	}

	submission, err := sc.Tasks.SubmitWork(taskID, user.ID, fileURL, linkURL, comment)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(submission)
}

// MergeWork finalizes a submission. Ownership of the project is enforced by
// route middleware; the AI review happens inside the service.
func (sc *SubmissionController) MergeWork(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	submissionID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	submission, task, err := sc.Tasks.MergeWork(c.UserContext(), submissionID, user.ID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"submission_id": submissionID,
			"user_id":       user.ID,
		}).Errorf("merge failed: %v", err)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("operation", "merge")
			scope.SetExtra("submission_id", submissionID)
			sentry.CaptureException(err)
		})
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"submission": submission,
		"task":       task,
	})
}

func (sc *SubmissionController) GetSubmissions(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	submissions, err := sc.Tasks.ListSubmissions(taskID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch submissions",
		})
	}
	return c.JSON(submissions)
}
