package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values. review_requested is only reachable through a work
// submission and merged only through an owner merge.
const (
	StatusTodo            = "todo"
	StatusInProgress      = "in_progress"
	StatusReviewRequested = "review_requested"
	StatusMerged          = "merged"
)

// Assignment status is an axis independent of the work status. A task with a
// pending assignment cannot advance past todo.
const (
	AssignmentNone     = "none"
	AssignmentPending  = "pending"
	AssignmentActive   = "active"
	AssignmentDeclined = "declined" // kept for historical rows; declines reset to none
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Submission status values
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// PassingScore is the AI review score above which a submission passes.
const PassingScore = 70

// Task represents a unit of work inside a project
type Task struct {
	gorm.Model

	ProjectID uint `gorm:"not null;index" json:"project_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Status           string `gorm:"default:'todo'" json:"status"`            // todo, in_progress, review_requested, merged
	AssignmentStatus string `gorm:"default:'none'" json:"assignment_status"` // none, pending, active, declined
	Priority         string `gorm:"default:'medium'" json:"priority"`        // low, medium, high

	AssignedTo *uint      `gorm:"index" json:"assigned_to,omitempty"`
	CreatedBy  uint       `gorm:"not null" json:"created_by"`
	MergedBy   *uint      `json:"merged_by,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`

	// Set once the reminder worker has notified the assignee about an
	// approaching deadline, so the reminder fires only once.
	DeadlineReminded bool `gorm:"default:false" json:"deadline_reminded"`

	// Relations
	Assignee    *User        `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Creator     User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Submissions []Submission `gorm:"foreignKey:TaskID" json:"submissions,omitempty"`
}

// AIReview holds the oracle verdict for a submission. It is embedded into
// the submissions table and populated exactly once, at merge time.
type AIReview struct {
	Feedback string `gorm:"type:text" json:"feedback"`
	Score    int    `json:"score"`
	PassedAI bool   `json:"passed_ai"`
}

// Submission is a unit of work offered against a task
type Submission struct {
	gorm.Model

	TaskID      uint `gorm:"not null;index" json:"task_id"`
	SubmittedBy uint `gorm:"not null;index" json:"submitted_by"`

	ContentURL string `gorm:"not null" json:"content_url"`
	Comment    string `gorm:"type:text" json:"comment"`

	Status   string    `gorm:"default:'pending'" json:"status"` // pending, approved, rejected
	AIReview *AIReview `gorm:"embedded;embeddedPrefix:ai_" json:"ai_review,omitempty"`

	// Relations
	Task      Task `json:"-"`
	Submitter User `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReviewRequested, StatusMerged:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// CanTransition is the single gate every status mutation goes through.
// viaWorkflow is true when the change is driven by SubmitWork or MergeWork;
// review_requested and merged are unreachable through a plain status update.
// merged is terminal. Moving back from review_requested to in_progress is
// allowed so rejected work can be reworked.
func CanTransition(from, to string, viaWorkflow bool) bool {
	if from == to {
		return true
	}
	if from == StatusMerged {
		return false
	}
	switch to {
	case StatusTodo, StatusInProgress:
		return true
	case StatusReviewRequested, StatusMerged:
		return viaWorkflow
	}
	return false
}

// Passed converts an oracle score into the pass verdict.
func Passed(score int) bool {
	return score > PassingScore
}
