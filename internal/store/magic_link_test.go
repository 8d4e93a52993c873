package store

import (
	"testing"
)

func TestMagicLinkValidation(t *testing.T) {
	db := testDB(t)
	links := NewMagicLinkStore(db)

	ml, err := links.Create("pat@example.com", "login", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ml.Token == "" {
		t.Fatal("no token generated")
	}

	got, err := links.GetValidByToken(ml.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != ml.ID {
		t.Fatalf("got = %+v", got)
	}

	// A consumed link no longer validates.
	if err := links.MarkUsed(ml.ID); err != nil {
		t.Fatal(err)
	}
	got, err = links.GetValidByToken(ml.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("used link still validates")
	}
}

func TestMagicLinkUnknownToken(t *testing.T) {
	db := testDB(t)
	got, err := NewMagicLinkStore(db).GetValidByToken("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestMagicLinkDeleteExpired(t *testing.T) {
	db := testDB(t)
	links := NewMagicLinkStore(db)

	ml, err := links.Create("pat@example.com", "login", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE magic_links SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, ml.ID); err != nil {
		t.Fatal(err)
	}

	n, err := links.DeleteExpired()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}
