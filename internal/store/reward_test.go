package store

import (
	"errors"
	"testing"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

func TestRedeemSpendsAtomically(t *testing.T) {
	db := testDB(t)
	family, _, child := seedFamily(t, db)
	rewards := NewRewardStore(db)

	reward, err := rewards.Create(family.ID, "Movie night", "", 20, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE users SET points_balance = 30 WHERE id = ?`, child.ID); err != nil {
		t.Fatal(err)
	}

	redemption, err := rewards.Redeem(reward, child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if redemption.PointsSpent != 20 {
		t.Errorf("points spent = %d, want 20", redemption.PointsSpent)
	}

	balance, err := NewPointsStore(db).Balance(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}

	// The spend lands in the ledger as a negative entry.
	spends, err := NewPointsStore(db).ListByType(child.ID, model.PointsRewardRedeemed)
	if err != nil {
		t.Fatal(err)
	}
	if len(spends) != 1 || spends[0].Amount != -20 {
		t.Errorf("ledger spends = %+v", spends)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	db := testDB(t)
	family, _, child := seedFamily(t, db)
	rewards := NewRewardStore(db)

	reward, err := rewards.Create(family.ID, "Movie night", "", 20, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE users SET points_balance = 19 WHERE id = ?`, child.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := rewards.Redeem(reward, child.ID); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	// Nothing was spent and nothing was recorded.
	balance, _ := NewPointsStore(db).Balance(child.ID)
	if balance != 19 {
		t.Errorf("balance = %d, want 19", balance)
	}
	redemptions, err := rewards.ListRedemptionsByUser(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(redemptions) != 0 {
		t.Errorf("redemptions = %d, want 0", len(redemptions))
	}
}

func TestRewardListScopedToFamily(t *testing.T) {
	db := testDB(t)
	family, _, _ := seedFamily(t, db)
	other, err := NewFamilyStore(db).Create("Others")
	if err != nil {
		t.Fatal(err)
	}

	rewards := NewRewardStore(db)
	if _, err := rewards.Create(family.ID, "Ours", "", 5, true); err != nil {
		t.Fatal(err)
	}
	if _, err := rewards.Create(other.ID, "Theirs", "", 5, true); err != nil {
		t.Fatal(err)
	}

	list, err := rewards.ListByFamily(family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Ours" {
		t.Errorf("list = %+v", list)
	}
}
