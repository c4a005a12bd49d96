package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
)

// ActivityService appends audit entries per project. Recording is log-only:
// a failed insert is logged and never surfaces to the calling operation.
type ActivityService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewActivityService(db *gorm.DB, logger *log.Logger) *ActivityService {
	return &ActivityService{DB: db, Logger: logger}
}

// Record appends an immutable activity entry. It deliberately has no error
// return; the primary operation must complete regardless.
func (s *ActivityService) Record(projectID, userID uint, action string) {
	entry := models.Activity{
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		s.Logger.Printf("failed to record activity for project %d: %v", projectID, err)
	}
}

// ListForProject returns a project's activity feed, newest first.
func (s *ActivityService) ListForProject(projectID uint) ([]models.Activity, error) {
	var activities []models.Activity
	if err := s.DB.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
