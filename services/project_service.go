package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/utils"
)

// ProjectService owns project lifecycle, membership and the authorization
// checks the workflow engine relies on.
type ProjectService struct {
	DB            *gorm.DB
	Activities    *ActivityService
	Notifications *NotificationService
	Mailer        EmailSender
	EncryptionKey []byte
	Logger        *log.Logger
}

func NewProjectService(db *gorm.DB, activities *ActivityService, notifications *NotificationService, mailer EmailSender, encryptionKey []byte, logger *log.Logger) *ProjectService {
	return &ProjectService{
		DB:            db,
		Activities:    activities,
		Notifications: notifications,
		Mailer:        mailer,
		EncryptionKey: encryptionKey,
		Logger:        logger,
	}
}

// IsOwner reports whether userID owns projectID.
func (s *ProjectService) IsOwner(projectID, userID uint) (bool, error) {
	var project models.Project
	if err := s.DB.Select("id", "owner_id").First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return false, err
	}
	return project.OwnerID == userID, nil
}

// HasRole reports whether userID is an active member of projectID holding
// one of the allowed roles. Pending members never count.
func (s *ProjectService) HasRole(projectID, userID uint, allowedRoles ...string) (bool, error) {
	var member models.ProjectMember
	err := s.DB.Where("project_id = ? AND user_id = ? AND status = ?",
		projectID, userID, models.MemberActive).First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	for _, role := range allowedRoles {
		if member.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// CreateProject creates a project and its owner membership.
func (s *ProjectService) CreateProject(ownerID uint, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	project := models.Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
			Status:    models.MemberActive,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.Activities.Record(project.ID, ownerID, fmt.Sprintf("Created Project: %s", project.Name))
	return &project, nil
}

// GetProject loads a project with its members.
func (s *ProjectService) GetProject(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.DB.Preload("Members.User").First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	return &project, nil
}

// ListForUser returns projects userID owns or is an active member of.
func (s *ProjectService) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.DB.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND project_members.status = ? AND project_members.deleted_at IS NULL",
			userID, models.MemberActive).
		Find(&projects).Error
	return projects, err
}

// InviteMember invites a user, resolved by email, into a project with the
// given role. The invitee gets an invite notification and a best-effort
// email; membership stays pending until they respond.
func (s *ProjectService) InviteMember(projectID, inviterID uint, email, role string) (*models.ProjectMember, error) {
	if role != models.RoleContributor && role != models.RoleViewer {
		return nil, fmt.Errorf("%w: role must be contributor or viewer", ErrValidation)
	}

	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}

	var invitee models.User
	if err := s.DB.Where("email = ?", email).First(&invitee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no user with email %s", ErrNotFound, email)
		}
		return nil, err
	}

	var existing models.ProjectMember
	if err := s.DB.Where("project_id = ? AND user_id = ?", projectID, invitee.ID).
		First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: user is already a member of this project", ErrValidation)
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      role,
		Status:    models.MemberPending,
		InvitedBy: &inviterID,
	}
	if err := s.DB.Create(&member).Error; err != nil {
		return nil, err
	}

	s.Activities.Record(projectID, inviterID, fmt.Sprintf("Invited %s to the project as %s", invitee.Email, role))

	message := fmt.Sprintf("You have been invited to join %s as a %s", project.Name, role)
	if err := s.Notifications.Notify(invitee.ID, &inviterID, message, models.NotificationInvite); err != nil {
		s.Logger.Printf("failed to notify invitee %d: %v", invitee.ID, err)
	}
	if s.Mailer != nil {
		if err := s.Mailer.Send(invitee.Email, "Project invitation", message); err != nil {
			s.Logger.Printf("failed to email invitee %s: %v", invitee.Email, err)
		}
	}

	return &member, nil
}

// RespondToInvite accepts or declines a pending membership. Declining
// removes the membership row.
func (s *ProjectService) RespondToInvite(projectID, userID uint, accept bool) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := s.DB.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no invitation for this project", ErrNotFound)
		}
		return nil, err
	}
	if member.Status != models.MemberPending {
		return nil, fmt.Errorf("%w: invitation already answered", ErrInvalidState)
	}

	if !accept {
		if err := s.DB.Delete(&member).Error; err != nil {
			return nil, err
		}
		s.Activities.Record(projectID, userID, "Declined the project invitation")
		return &member, nil
	}

	if err := s.DB.Model(&member).Update("status", models.MemberActive).Error; err != nil {
		return nil, err
	}
	member.Status = models.MemberActive
	s.Activities.Record(projectID, userID, "Joined the project")
	return &member, nil
}

// SetAIKey stores the project's review credential encrypted at rest.
func (s *ProjectService) SetAIKey(projectID, userID uint, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: api key is required", ErrValidation)
	}
	encrypted, err := utils.Encrypt(s.EncryptionKey, apiKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt api key: %w", err)
	}
	result := s.DB.Model(&models.Project{}).Where("id = ?", projectID).
		Update("ai_api_key", encrypted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: project %d", ErrNotFound, projectID)
	}
	s.Activities.Record(projectID, userID, "Updated the AI review credential")
	return nil
}

// AIKey decrypts the project's review credential. Only the oracle call path
// uses it; the plaintext never leaves the process.
func (s *ProjectService) AIKey(projectID uint) (string, error) {
	var project models.Project
	if err := s.DB.Select("id", "ai_api_key").First(&project, projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return "", err
	}
	return utils.Decrypt(s.EncryptionKey, project.AIAPIKey)
}
