package notify

import (
	"log/slog"
	"testing"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/database"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.NotificationStore, *model.Family, []*model.User) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	families := store.NewFamilyStore(db)
	users := store.NewUserStore(db)
	notifications := store.NewNotificationStore(db)

	family, err := families.Create("Testers")
	if err != nil {
		t.Fatal(err)
	}
	var members []*model.User
	for _, m := range []struct{ email, name, role string }{
		{"a@example.com", "A", model.RoleParent},
		{"b@example.com", "B", model.RoleChild},
		{"c@example.com", "C", model.RoleChild},
	} {
		u, err := users.Create(family.ID, m.email, m.name, m.role)
		if err != nil {
			t.Fatal(err)
		}
		members = append(members, u)
	}

	// nil sender keeps delivery synchronous and offline.
	svc := New(notifications, store.NewPushStore(db), users, nil, slog.Default())
	return svc, notifications, family, members
}

func TestNotifyCreatesInAppRecord(t *testing.T) {
	svc, notifications, family, members := newTestService(t)

	svc.Notify(family.ID, members[1].ID, model.NotifChoreVerified, "Chore verified", "You earned 10 points")

	got, err := notifications.ListByUser(members[1].ID, false, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0].Type != model.NotifChoreVerified || got[0].Read {
		t.Errorf("notification = %+v, want unread chore_verified", got[0])
	}
}

func TestNotifyFamilyExcludesActor(t *testing.T) {
	svc, notifications, family, members := newTestService(t)

	svc.NotifyFamily(family.ID, members[0].ID, model.NotifGroceryAdded, "Grocery list", "Milk was added")

	for i, m := range members {
		got, err := notifications.ListByUser(m.ID, false, 10)
		if err != nil {
			t.Fatal(err)
		}
		want := 1
		if i == 0 {
			want = 0
		}
		if len(got) != want {
			t.Errorf("member %d notifications = %d, want %d", i, len(got), want)
		}
	}
}
