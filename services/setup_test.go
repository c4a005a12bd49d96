package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Lucifer21-lab/synchro-ai-sub000/config"
	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

var testEncryptionKey = []byte("0123456789abcdef0123456789abcdef")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "synchro.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakePusher records live pushes and can be told to fail.
type fakePusher struct {
	published []uint
	fail      bool
}

func (p *fakePusher) Publish(recipientID uint, payload interface{}) error {
	if p.fail {
		return fmt.Errorf("push channel down")
	}
	p.published = append(p.published, recipientID)
	return nil
}

// fakeMailer records sent mail and can be told to fail.
type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.sent = append(m.sent, to)
	return nil
}

// fakeReviewer returns a canned verdict and records what it was asked.
type fakeReviewer struct {
	review  models.AIReview
	err     error
	calls   int
	apiKey  string
	title   string
	content string
}

func (r *fakeReviewer) Review(_ context.Context, apiKey, title, description, content string) (models.AIReview, error) {
	r.calls++
	r.apiKey = apiKey
	r.title = title
	r.content = content
	if r.err != nil {
		return models.AIReview{}, r.err
	}
	return r.review, nil
}

// testEnv wires the full service graph against a throwaway database.
type testEnv struct {
	DB            *gorm.DB
	Activities    *services.ActivityService
	Notifications *services.NotificationService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Pusher        *fakePusher
	Mailer        *fakeMailer
	Reviewer      *fakeReviewer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	pusher := &fakePusher{}
	mailer := &fakeMailer{}
	reviewer := &fakeReviewer{review: models.AIReview{Feedback: "solid work", Score: 85}}

	activities := services.NewActivityService(db, quietLogger())
	notifications := services.NewNotificationService(db, pusher, quietLogger())
	projects := services.NewProjectService(db, activities, notifications, mailer, testEncryptionKey, quietLogger())
	tasks := services.NewTaskService(db, activities, notifications, projects, mailer, reviewer, quietLogger())

	return &testEnv{
		DB:            db,
		Activities:    activities,
		Notifications: notifications,
		Projects:      projects,
		Tasks:         tasks,
		Pusher:        pusher,
		Mailer:        mailer,
		Reviewer:      reviewer,
	}
}

func (env *testEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, PasswordHash: "x", IsActive: true}
	if err := env.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

func (env *testEnv) createProject(t *testing.T, ownerID uint, name string) *models.Project {
	t.Helper()
	project, err := env.Projects.CreateProject(ownerID, name, "")
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return project
}

// addMember puts a user straight into a project as an active member.
func (env *testEnv) addMember(t *testing.T, projectID, userID uint, role string) {
	t.Helper()
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Status:    models.MemberActive,
	}
	if err := env.DB.Create(&member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
}

func (env *testEnv) notificationsFor(t *testing.T, userID uint, ntype string) []models.Notification {
	t.Helper()
	var out []models.Notification
	if err := env.DB.Where("recipient_id = ? AND type = ?", userID, ntype).Find(&out).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return out
}

func (env *testEnv) reloadTask(t *testing.T, id uint) *models.Task {
	t.Helper()
	var task models.Task
	if err := env.DB.First(&task, id).Error; err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return &task
}

func (env *testEnv) reloadSubmission(t *testing.T, id uint) *models.Submission {
	t.Helper()
	var submission models.Submission
	if err := env.DB.First(&submission, id).Error; err != nil {
		t.Fatalf("reload submission %d: %v", id, err)
	}
	return &submission
}
