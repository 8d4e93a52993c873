package store

import (
	"database/sql"
	"testing"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/database"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedFamily creates a family with one parent and one child member.
func seedFamily(t *testing.T, db *sql.DB) (*model.Family, *model.User, *model.User) {
	t.Helper()
	family, err := NewFamilyStore(db).Create("Testers")
	if err != nil {
		t.Fatal(err)
	}
	users := NewUserStore(db)
	parent, err := users.Create(family.ID, "pat@example.com", "Pat", model.RoleParent)
	if err != nil {
		t.Fatal(err)
	}
	child, err := users.Create(family.ID, "casey@example.com", "Casey", model.RoleChild)
	if err != nil {
		t.Fatal(err)
	}
	return family, parent, child
}

func seedChore(t *testing.T, db *sql.DB, familyID int64, createdBy int64) *model.Chore {
	t.Helper()
	c, err := NewChoreStore(db).Create(familyID, "Dishes", "Wash and dry", 10, 500, "kitchen", "easy", "", &createdBy)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
