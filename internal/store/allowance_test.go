package store

import (
	"testing"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

func TestAllowanceMarkPaid(t *testing.T) {
	db := testDB(t)
	family, parent, child := seedFamily(t, db)
	chore := seedChore(t, db, family.ID, parent.ID)
	a, err := NewAssignmentStore(db).Create(chore, child.ID, parent.ID, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(
		`INSERT INTO allowance_payments (user_id, family_id, assignment_id, amount_cents, status) VALUES (?, ?, ?, ?, 'pending')`,
		child.ID, family.ID, a.ID, 500,
	); err != nil {
		t.Fatal(err)
	}

	allowances := NewAllowanceStore(db)
	pending, err := allowances.ListByUser(child.ID, model.AllowancePending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d payments, want 1", len(pending))
	}

	paid, err := allowances.MarkPaid(pending[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if paid.Status != model.AllowancePaid {
		t.Errorf("status = %q, want paid", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Error("paid_at not stamped")
	}

	pending, err = allowances.ListByUser(child.ID, model.AllowancePending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after payment = %d, want 0", len(pending))
	}
}

func TestPendingTotalCents(t *testing.T) {
	db := testDB(t)
	family, parent, child := seedFamily(t, db)
	chore := seedChore(t, db, family.ID, parent.ID)
	assignments := NewAssignmentStore(db)

	amounts := []int{500, 250, 100}
	for i, cents := range amounts {
		a, err := assignments.Create(chore, child.ID, parent.ID, nil, "")
		if err != nil {
			t.Fatal(err)
		}
		status := "pending"
		if i == 2 {
			status = "paid"
		}
		if _, err := db.Exec(
			`INSERT INTO allowance_payments (user_id, family_id, assignment_id, amount_cents, status) VALUES (?, ?, ?, ?, ?)`,
			child.ID, family.ID, a.ID, cents, status,
		); err != nil {
			t.Fatal(err)
		}
	}

	total, err := NewAllowanceStore(db).PendingTotalCents(family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 750 {
		t.Errorf("pending total = %d cents, want 750", total)
	}
}
