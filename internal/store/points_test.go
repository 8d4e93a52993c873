package store

import (
	"testing"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

func TestBalanceReadsCachedColumn(t *testing.T) {
	db := testDB(t)
	_, _, child := seedFamily(t, db)
	points := NewPointsStore(db)

	// Ledger entries alone do not move the balance.
	if _, err := points.Insert(child.ID, child.FamilyID, 10, model.PointsChoreCompleted, "test", nil, nil); err != nil {
		t.Fatal(err)
	}
	balance, err := points.Balance(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0 before the column is updated", balance)
	}

	if _, err := db.Exec(`UPDATE users SET points_balance = 25 WHERE id = ?`, child.ID); err != nil {
		t.Fatal(err)
	}
	balance, err = points.Balance(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 25 {
		t.Errorf("balance = %d, want 25", balance)
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	db := testDB(t)
	balance, err := NewPointsStore(db).Balance(9999)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

func TestEarnedTotalExcludesPendingAndSpends(t *testing.T) {
	db := testDB(t)
	_, _, child := seedFamily(t, db)
	points := NewPointsStore(db)

	inserts := []struct {
		amount int
		typ    string
	}{
		{10, model.PointsChoreCompleted},
		{15, model.PointsChoreCompleted},
		{5, model.PointsAchievementUnlocked},
		{8, model.PointsChorePending},   // provisional, excluded
		{-20, model.PointsRewardRedeemed}, // spend, excluded
	}
	for _, in := range inserts {
		if _, err := points.Insert(child.ID, child.FamilyID, in.amount, in.typ, "test", nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	total, err := points.EarnedTotal(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 30 {
		t.Errorf("earned total = %d, want 30", total)
	}
}

func TestListByUserLimit(t *testing.T) {
	db := testDB(t)
	_, _, child := seedFamily(t, db)
	points := NewPointsStore(db)

	for i := 0; i < 5; i++ {
		if _, err := points.Insert(child.ID, child.FamilyID, 1, model.PointsChoreCompleted, "test", nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := points.ListByUser(child.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}
}

func TestLeaderboardOrderAndOptOut(t *testing.T) {
	db := testDB(t)
	family, parent, child := seedFamily(t, db)
	users := NewUserStore(db)

	if _, err := db.Exec(`UPDATE users SET points_balance = 30 WHERE id = ?`, child.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE users SET points_balance = 10 WHERE id = ?`, parent.ID); err != nil {
		t.Fatal(err)
	}

	entries, err := NewPointsStore(db).Leaderboard(family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].UserID != child.ID || entries[1].UserID != parent.ID {
		t.Errorf("order = %d then %d, want child first", entries[0].UserID, entries[1].UserID)
	}

	// Opted-out members disappear from the board.
	if err := users.SetGamificationEnabled(parent.ID, false); err != nil {
		t.Fatal(err)
	}
	entries, err = NewPointsStore(db).Leaderboard(family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].UserID != child.ID {
		t.Errorf("entries after opt-out = %+v", entries)
	}
}
