package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

// ReminderWorker nudges assignees about deadlines approaching within the
// next 24 hours. Each task is reminded once.
type ReminderWorker struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
	Logger        *log.Logger
}

func NewReminderWorker(db *gorm.DB, notifications *services.NotificationService, logger *log.Logger) *ReminderWorker {
	return &ReminderWorker{
		DB:            db,
		Notifications: notifications,
		Logger:        logger,
	}
}

func (rw *ReminderWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Reminder worker started")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Reminder worker shutting down...")
			return
		case <-ticker.C:
			rw.ProcessDueTasks(time.Now())
		}
	}
}

// ProcessDueTasks sends one reminder per task whose deadline falls inside
// the next 24 hours.
func (rw *ReminderWorker) ProcessDueTasks(now time.Time) {
	cutoff := now.Add(24 * time.Hour)

	var tasks []models.Task
	if err := rw.DB.
		Where("deadline IS NOT NULL AND deadline > ? AND deadline <= ?", now, cutoff).
		Where("status <> ?", models.StatusMerged).
		Where("assigned_to IS NOT NULL AND assignment_status = ?", models.AssignmentActive).
		Where("deadline_reminded = ?", false).
		Find(&tasks).Error; err != nil {
		rw.Logger.Printf("Error fetching tasks with due deadlines: %v", err)
		return
	}

	for _, task := range tasks {
		message := fmt.Sprintf("Task %q is due %s", task.Title, task.Deadline.Format("Jan 2 15:04"))
		if err := rw.Notifications.Notify(*task.AssignedTo, nil, message, models.NotificationTask); err != nil {
			rw.Logger.Printf("Error notifying assignee of task %d: %v", task.ID, err)
			continue
		}
		if err := rw.DB.Model(&task).Update("deadline_reminded", true).Error; err != nil {
			rw.Logger.Printf("Error flagging reminder for task %d: %v", task.ID, err)
		}
	}
}
