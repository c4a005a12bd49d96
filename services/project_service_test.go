package services_test

import (
	"errors"
	"testing"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

func TestCreateProjectAddsOwnerMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")

	project, err := env.Projects.CreateProject(alice.ID, "Synchro", "pilot project")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if project.OwnerID != alice.ID {
		t.Fatalf("owner = %d, want %d", project.OwnerID, alice.ID)
	}

	ok, err := env.Projects.HasRole(project.ID, alice.ID, models.RoleOwner)
	if err != nil || !ok {
		t.Fatalf("owner must hold an active owner membership (ok=%v err=%v)", ok, err)
	}

	if _, err := env.Projects.CreateProject(alice.ID, "", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}
}

func TestIsOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	bob := env.createUser(t, "Bob", "bob@x.com")
	project := env.createProject(t, alice.ID, "Synchro")

	if ok, err := env.Projects.IsOwner(project.ID, alice.ID); err != nil || !ok {
		t.Fatalf("alice must be owner (ok=%v err=%v)", ok, err)
	}
	if ok, err := env.Projects.IsOwner(project.ID, bob.ID); err != nil || ok {
		t.Fatalf("bob must not be owner (ok=%v err=%v)", ok, err)
	}
	if _, err := env.Projects.IsOwner(9999, alice.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing project, got %v", err)
	}
}

func TestHasRoleIgnoresPendingMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	bob := env.createUser(t, "Bob", "bob@x.com")
	project := env.createProject(t, alice.ID, "Synchro")

	if _, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleContributor); err != nil {
		t.Fatalf("invite: %v", err)
	}

	ok, err := env.Projects.HasRole(project.ID, bob.ID, models.RoleContributor)
	if err != nil || ok {
		t.Fatalf("pending member must not have a role (ok=%v err=%v)", ok, err)
	}

	if _, err := env.Projects.RespondToInvite(project.ID, bob.ID, true); err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	ok, err = env.Projects.HasRole(project.ID, bob.ID, models.RoleContributor)
	if err != nil || !ok {
		t.Fatalf("accepted member must have the role (ok=%v err=%v)", ok, err)
	}
}

func TestInviteMember(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	bob := env.createUser(t, "Bob", "bob@x.com")
	project := env.createProject(t, alice.ID, "Synchro")

	member, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleViewer)
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if member.Status != models.MemberPending {
		t.Fatalf("status = %s, want %s", member.Status, models.MemberPending)
	}
	if len(env.notificationsFor(t, bob.ID, models.NotificationInvite)) != 1 {
		t.Fatal("invitee must receive one invite notification")
	}
	if len(env.Mailer.sent) != 1 || env.Mailer.sent[0] != bob.Email {
		t.Fatalf("invitee must be emailed, got %v", env.Mailer.sent)
	}

	if _, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleViewer); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate invite, got %v", err)
	}
	if _, err := env.Projects.InviteMember(project.ID, alice.ID, "ghost@x.com", models.RoleViewer); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
	if _, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleOwner); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for owner role, got %v", err)
	}
}

func TestRespondToInviteDecline(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	bob := env.createUser(t, "Bob", "bob@x.com")
	project := env.createProject(t, alice.ID, "Synchro")

	if _, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleContributor); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := env.Projects.RespondToInvite(project.ID, bob.ID, false); err != nil {
		t.Fatalf("decline: %v", err)
	}

	// membership row is gone, so a second response has nothing to answer
	if _, err := env.Projects.RespondToInvite(project.ID, bob.ID, false); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after decline, got %v", err)
	}
	// and a declined invitee can be invited again
	if _, err := env.Projects.InviteMember(project.ID, alice.ID, bob.Email, models.RoleContributor); err != nil {
		t.Fatalf("re-invite after decline: %v", err)
	}
}

func TestAIKeyRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	project := env.createProject(t, alice.ID, "Synchro")

	const apiKey = "sk-live-0123456789"
	if err := env.Projects.SetAIKey(project.ID, alice.ID, apiKey); err != nil {
		t.Fatalf("set key: %v", err)
	}

	var stored models.Project
	if err := env.DB.First(&stored, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if stored.AIAPIKey == "" || stored.AIAPIKey == apiKey {
		t.Fatal("credential must be stored encrypted, not in plaintext")
	}

	got, err := env.Projects.AIKey(project.ID)
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if got != apiKey {
		t.Fatalf("decrypted key = %q, want %q", got, apiKey)
	}

	if err := env.Projects.SetAIKey(9999, alice.ID, apiKey); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing project, got %v", err)
	}
	if err := env.Projects.SetAIKey(project.ID, alice.ID, ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty key, got %v", err)
	}
}
