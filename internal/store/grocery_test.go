package store

import (
	"testing"
)

func TestGroceryItemLifecycle(t *testing.T) {
	db := testDB(t)
	family, _, child := seedFamily(t, db)
	groceries := NewGroceryStore(db)

	list, err := groceries.CreateList(family.ID, "Weekly", 0)
	if err != nil {
		t.Fatal(err)
	}

	item, err := groceries.CreateItem(list.ID, "Milk", "1", "gallon", "", "Dairy", &child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Checked {
		t.Error("new item should be unchecked")
	}

	checked, err := groceries.SetChecked(item.ID, true, &child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !checked.Checked || checked.CheckedBy == nil || *checked.CheckedBy != child.ID {
		t.Errorf("checked item = %+v", checked)
	}
	if checked.CheckedAt == nil {
		t.Error("checked_at not stamped")
	}

	// Unchecking clears the attribution.
	unchecked, err := groceries.SetChecked(item.ID, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if unchecked.Checked || unchecked.CheckedBy != nil || unchecked.CheckedAt != nil {
		t.Errorf("unchecked item = %+v", unchecked)
	}
}

func TestClearChecked(t *testing.T) {
	db := testDB(t)
	family, _, child := seedFamily(t, db)
	groceries := NewGroceryStore(db)

	list, err := groceries.CreateList(family.ID, "Weekly", 0)
	if err != nil {
		t.Fatal(err)
	}

	names := []string{"Milk", "Bread", "Eggs"}
	for i, name := range names {
		item, err := groceries.CreateItem(list.ID, name, "", "", "", "Other", &child.ID)
		if err != nil {
			t.Fatal(err)
		}
		if i < 2 {
			if _, err := groceries.SetChecked(item.ID, true, &child.ID); err != nil {
				t.Fatal(err)
			}
		}
	}

	removed, err := groceries.ClearChecked(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	remaining, err := groceries.ListItems(list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].Name != "Eggs" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestDeleteListCascadesItems(t *testing.T) {
	db := testDB(t)
	family, _, child := seedFamily(t, db)
	groceries := NewGroceryStore(db)

	list, err := groceries.CreateList(family.ID, "Weekly", 0)
	if err != nil {
		t.Fatal(err)
	}
	item, err := groceries.CreateItem(list.ID, "Milk", "", "", "", "Dairy", &child.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := groceries.DeleteList(list.ID); err != nil {
		t.Fatal(err)
	}

	got, err := groceries.GetItemByID(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("item survived list deletion")
	}
}
