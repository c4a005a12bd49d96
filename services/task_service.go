package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
)

// EmailSender delivers transactional email. Failures never abort the primary
// workflow operation.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// Reviewer is the AI scoring oracle. It is called synchronously during merge
// and its failure aborts the merge.
type Reviewer interface {
	Review(ctx context.Context, apiKey, title, description, content string) (models.AIReview, error)
}

// TaskService is the workflow engine for tasks and submissions: creation,
// assignment responses, status transitions, work submission and the
// owner-gated merge.
type TaskService struct {
	DB            *gorm.DB
	Activities    *ActivityService
	Notifications *NotificationService
	Projects      *ProjectService
	Mailer        EmailSender
	Reviewer      Reviewer
	Logger        *log.Logger
}

func NewTaskService(db *gorm.DB, activities *ActivityService, notifications *NotificationService, projects *ProjectService, mailer EmailSender, reviewer Reviewer, logger *log.Logger) *TaskService {
	return &TaskService{
		DB:            db,
		Activities:    activities,
		Notifications: notifications,
		Projects:      projects,
		Mailer:        mailer,
		Reviewer:      reviewer,
		Logger:        logger,
	}
}

// CreateTaskInput carries the fields for task creation. AssigneeEmail is
// optional; when present it must resolve to an existing user.
type CreateTaskInput struct {
	ProjectID     uint
	Title         string
	Description   string
	AssigneeEmail string
	Priority      string
	Deadline      *time.Time
	CreatorID     uint
}

// CreateTask creates a task. Assigning to the creator activates the
// assignment immediately; assigning to anyone else leaves it pending until
// they respond, and notifies them.
func (s *TaskService) CreateTask(in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}

	task := models.Task{
		ProjectID:        in.ProjectID,
		Title:            in.Title,
		Description:      in.Description,
		Priority:         in.Priority,
		Deadline:         in.Deadline,
		CreatedBy:        in.CreatorID,
		Status:           models.StatusTodo,
		AssignmentStatus: models.AssignmentNone,
	}

	var assignee *models.User
	if in.AssigneeEmail != "" {
		var user models.User
		if err := s.DB.Where("email = ?", in.AssigneeEmail).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: no user with email %s", ErrNotFound, in.AssigneeEmail)
			}
			return nil, err
		}
		assignee = &user
		task.AssignedTo = &user.ID
		if user.ID == in.CreatorID {
			task.AssignmentStatus = models.AssignmentActive
		} else {
			task.AssignmentStatus = models.AssignmentPending
		}
	}

	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}

	s.Activities.Record(task.ProjectID, in.CreatorID, fmt.Sprintf("Created Task: %s", task.Title))

	if task.AssignmentStatus == models.AssignmentPending && assignee != nil {
		message := fmt.Sprintf("You have been assigned the task %q", task.Title)
		if s.Mailer != nil {
			if err := s.Mailer.Send(assignee.Email, "New task assignment", message); err != nil {
				s.Logger.Printf("assignment email to %s failed: %v", assignee.Email, err)
			}
		}
		if err := s.Notifications.Notify(assignee.ID, &in.CreatorID, message, models.NotificationTask); err != nil {
			s.Logger.Printf("assignment notification to user %d failed: %v", assignee.ID, err)
		}
	}

	return &task, nil
}

// RespondToAssignment lets the assignee accept or decline a pending
// assignment. Declining clears the assignee and resets the assignment; the
// activity entry keeps the audit trail.
func (s *TaskService) RespondToAssignment(taskID, userID uint, response string) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	if task.AssignedTo == nil || *task.AssignedTo != userID {
		return nil, fmt.Errorf("%w: only the assignee may respond to this assignment", ErrForbidden)
	}

	switch response {
	case "accept":
		if err := s.DB.Model(&task).Update("assignment_status", models.AssignmentActive).Error; err != nil {
			return nil, err
		}
		task.AssignmentStatus = models.AssignmentActive
		s.Activities.Record(task.ProjectID, userID, fmt.Sprintf("Accepted assignment for task: %s", task.Title))
	case "decline":
		if err := s.DB.Model(&task).Updates(map[string]interface{}{
			"assigned_to":       nil,
			"assignment_status": models.AssignmentNone,
		}).Error; err != nil {
			return nil, err
		}
		task.AssignedTo = nil
		task.AssignmentStatus = models.AssignmentNone
		s.Activities.Record(task.ProjectID, userID, fmt.Sprintf("Declined assignment for task: %s", task.Title))
	default:
		return nil, fmt.Errorf("%w: response must be accept or decline", ErrInvalidState)
	}

	return &task, nil
}

// UpdateStatus moves a task between statuses. Every mutation goes through
// the shared transition guard; tasks with a pending assignment cannot leave
// todo.
func (s *TaskService) UpdateStatus(taskID uint, newStatus string, userID uint) (*models.Task, error) {
	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	if task.AssignmentStatus == models.AssignmentPending {
		return nil, fmt.Errorf("%w: must accept assignment first", ErrInvalidState)
	}
	if !models.CanTransition(task.Status, newStatus, false) {
		return nil, fmt.Errorf("%w: cannot move task from %s to %s", ErrInvalidState, task.Status, newStatus)
	}

	oldStatus := task.Status
	if err := s.DB.Model(&task).Update("status", newStatus).Error; err != nil {
		return nil, err
	}
	task.Status = newStatus

	if oldStatus != newStatus {
		s.Activities.Record(task.ProjectID, userID,
			fmt.Sprintf("Moved task %q from %s to %s", task.Title, oldStatus, newStatus))
	}
	return &task, nil
}

// SubmitWork records a submission against a task and moves the task to
// review. fileURL is the hosted URL of an uploaded file and wins over
// linkURL when both are present; at least one must be set.
func (s *TaskService) SubmitWork(taskID, submitterID uint, fileURL, linkURL, comment string) (*models.Submission, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	if !models.CanTransition(task.Status, models.StatusReviewRequested, true) {
		return nil, fmt.Errorf("%w: task is already merged", ErrInvalidState)
	}

	contentURL := fileURL
	if contentURL == "" {
		contentURL = linkURL
	}
	if contentURL == "" {
		return nil, fmt.Errorf("%w: a file or a content link is required", ErrValidation)
	}

	submission := models.Submission{
		TaskID:      task.ID,
		SubmittedBy: submitterID,
		ContentURL:  contentURL,
		Comment:     comment,
		Status:      models.SubmissionPending,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return tx.Model(&task).Update("status", models.StatusReviewRequested).Error
	})
	if err != nil {
		return nil, err
	}
	task.Status = models.StatusReviewRequested

	s.Activities.Record(task.ProjectID, submitterID, fmt.Sprintf("Submitted work for task: %s", task.Title))
	return &submission, nil
}

// MergeWork finalizes a submission. The oracle is consulted before any
// durable mutation so an oracle failure leaves both records untouched.
// Owner gating happens upstream in the route middleware.
func (s *TaskService) MergeWork(ctx context.Context, submissionID, approverID uint) (*models.Submission, *models.Task, error) {
	var submission models.Submission
	if err := s.DB.Preload("Task").First(&submission, submissionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: submission %d", ErrNotFound, submissionID)
		}
		return nil, nil, err
	}
	task := submission.Task
	if task.ID == 0 {
		return nil, nil, fmt.Errorf("%w: task for submission %d", ErrNotFound, submissionID)
	}
	if task.Status == models.StatusMerged {
		return nil, nil, fmt.Errorf("%w: task is already merged", ErrInvalidState)
	}

	apiKey, err := s.Projects.AIKey(task.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	// Oracle call first: the merge is all-or-nothing around this step.
	review, err := s.Reviewer.Review(ctx, apiKey, task.Title, task.Description,
		submission.Comment+" "+submission.ContentURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ai review failed: %v", ErrService, err)
	}
	review.PassedAI = models.Passed(review.Score)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&submission).Updates(map[string]interface{}{
			"status":       models.SubmissionApproved,
			"ai_feedback":  review.Feedback,
			"ai_score":     review.Score,
			"ai_passed_ai": review.PassedAI,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&task).Updates(map[string]interface{}{
			"status":    models.StatusMerged,
			"merged_by": approverID,
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	submission.Status = models.SubmissionApproved
	submission.AIReview = &review
	task.Status = models.StatusMerged
	task.MergedBy = &approverID

	s.Activities.Record(task.ProjectID, approverID,
		fmt.Sprintf("Merged task %q with AI score %d", task.Title, review.Score))
	message := fmt.Sprintf("Your submission for %q was merged (AI score %d)", task.Title, review.Score)
	if err := s.Notifications.Notify(submission.SubmittedBy, &approverID, message, models.NotificationMerge); err != nil {
		s.Logger.Printf("merge notification to user %d failed: %v", submission.SubmittedBy, err)
	}

	return &submission, &task, nil
}

// GetTask loads a task with its relations.
func (s *TaskService) GetTask(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.DB.Preload("Assignee").Preload("Creator").Preload("Submissions").
		First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	return &task, nil
}

// ListForProject returns a project's tasks.
func (s *TaskService) ListForProject(projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Where("project_id = ?", projectID).
		Preload("Assignee").
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListSubmissions returns a task's submissions, newest first.
func (s *TaskService) ListSubmissions(taskID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.DB.Where("task_id = ?", taskID).
		Preload("Submitter").
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}
