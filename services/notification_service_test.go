package services_test

import (
	"errors"
	"testing"

	"github.com/Lucifer21-lab/synchro-ai-sub000/models"
	"github.com/Lucifer21-lab/synchro-ai-sub000/services"
)

func TestNotifyPersistsAndPushes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@x.com")
	bob := env.createUser(t, "Bob", "bob@x.com")

	if err := env.Notifications.Notify(bob.ID, &alice.ID, "hi bob", models.NotificationTask); err != nil {
		t.Fatalf("notify: %v", err)
	}

	got := env.notificationsFor(t, bob.ID, models.NotificationTask)
	if len(got) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(got))
	}
	if got[0].IsRead {
		t.Fatal("new notifications must be unread")
	}
	if got[0].SenderID == nil || *got[0].SenderID != alice.ID {
		t.Fatal("sender must be recorded")
	}
	if len(env.Pusher.published) != 1 || env.Pusher.published[0] != bob.ID {
		t.Fatalf("expected one live push to bob, got %v", env.Pusher.published)
	}
}

func TestNotifySwallowsPushFailure(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "Bob", "bob@x.com")

	env.Pusher.fail = true
	if err := env.Notifications.Notify(bob.ID, nil, "hi", models.NotificationMerge); err != nil {
		t.Fatalf("notify must succeed when the push channel is down: %v", err)
	}
	if len(env.notificationsFor(t, bob.ID, models.NotificationMerge)) != 1 {
		t.Fatal("notification must still be persisted")
	}
}

func TestMarkAsRead(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "Bob", "bob@x.com")
	carol := env.createUser(t, "Carol", "carol@x.com")

	if err := env.Notifications.Notify(bob.ID, nil, "hi", models.NotificationTask); err != nil {
		t.Fatalf("notify: %v", err)
	}
	notification := env.notificationsFor(t, bob.ID, models.NotificationTask)[0]

	if err := env.Notifications.MarkAsRead(bob.ID, notification.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// marking again is a no-op, not an error
	if err := env.Notifications.MarkAsRead(bob.ID, notification.ID); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if !env.notificationsFor(t, bob.ID, models.NotificationTask)[0].IsRead {
		t.Fatal("notification must be read")
	}

	// another user cannot touch it
	err := env.Notifications.MarkAsRead(carol.ID, notification.ID)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
}

func TestMarkAllAsReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	bob := env.createUser(t, "Bob", "bob@x.com")

	for i := 0; i < 3; i++ {
		if err := env.Notifications.Notify(bob.ID, nil, "hi", models.NotificationTask); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	if err := env.Notifications.MarkAllAsRead(bob.ID); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, err := env.Notifications.UnreadCount(bob.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 unread, got %d (%v)", count, err)
	}

	// second call changes nothing and still succeeds
	if err := env.Notifications.MarkAllAsRead(bob.ID); err != nil {
		t.Fatalf("second mark all: %v", err)
	}
	count, err = env.Notifications.UnreadCount(bob.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 unread after repeat, got %d (%v)", count, err)
	}
}
