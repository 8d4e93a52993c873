package gamification

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/database"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

type sentNotification struct {
	FamilyID int64
	UserID   int64
	Type     string
	Title    string
	Message  string
}

type captureNotifier struct {
	sent []sentNotification
}

func (c *captureNotifier) Notify(familyID, userID int64, notifType, title, message string) {
	c.sent = append(c.sent, sentNotification{familyID, userID, notifType, title, message})
}

func (c *captureNotifier) lastOfType(notifType string) *sentNotification {
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Type == notifType {
			return &c.sent[i]
		}
	}
	return nil
}

type fixture struct {
	db       *sql.DB
	engine   *Engine
	notifier *captureNotifier

	family *model.Family
	parent *model.User
	child  *model.User
	chore  *model.Chore

	parentCtx auth.AuthContext
	childCtx  auth.AuthContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Seeded achievements would fire during tests; each test inserts its own.
	if _, err := db.Exec(`UPDATE achievements SET active = 0`); err != nil {
		t.Fatalf("deactivate seed achievements: %v", err)
	}

	families := store.NewFamilyStore(db)
	users := store.NewUserStore(db)
	chores := store.NewChoreStore(db)

	family, err := families.Create("Testers")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	parent, err := users.Create(family.ID, "parent@example.com", "Pat", model.RoleParent)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := users.Create(family.ID, "child@example.com", "Casey", model.RoleChild)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	chore, err := chores.Create(family.ID, "Dishes", "Load the dishwasher", 10, 500, "kitchen", "easy", "", &parent.ID)
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	notifier := &captureNotifier{}
	engine := New(db, slog.Default())
	engine.SetNotifier(notifier)

	return &fixture{
		db:       db,
		engine:   engine,
		notifier: notifier,
		family:   family,
		parent:   parent,
		child:    child,
		chore:    chore,
		parentCtx: auth.AuthContext{
			UserID:   parent.ID,
			FamilyID: family.ID,
			Role:     model.RoleParent,
		},
		childCtx: auth.AuthContext{
			UserID:   child.ID,
			FamilyID: family.ID,
			Role:     model.RoleChild,
		},
	}
}

// assignCompleted assigns the fixture chore to the child and completes it.
func (f *fixture) assignCompleted(t *testing.T) *model.ChoreAssignment {
	t.Helper()
	a, err := f.engine.Assign(f.parentCtx, f.chore.ID, f.child.ID, nil, "")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	a, err = f.engine.Complete(f.childCtx, a.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return a
}

func (f *fixture) balance(t *testing.T, userID int64) int {
	t.Helper()
	balance, err := store.NewPointsStore(f.db).Balance(userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return balance
}

func (f *fixture) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestAssignSnapshotsChore(t *testing.T) {
	f := newFixture(t)

	a, err := f.engine.Assign(f.parentCtx, f.chore.ID, f.child.ID, nil, "before dinner")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if a.Status != model.AssignmentPending {
		t.Errorf("status = %q, want pending", a.Status)
	}
	if a.Title != "Dishes" || a.Points != 10 || a.AllowanceCents != 500 {
		t.Errorf("snapshot = (%q, %d, %d), want (Dishes, 10, 500)", a.Title, a.Points, a.AllowanceCents)
	}

	// Editing the chore template must not touch existing assignments.
	if _, err := store.NewChoreStore(f.db).Update(f.chore.ID, "Dishes", "", 99, 0, "kitchen", "easy", ""); err != nil {
		t.Fatalf("update chore: %v", err)
	}
	got, err := f.engine.assignments.GetByID(a.ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if got.Points != 10 || got.AllowanceCents != 500 {
		t.Errorf("after chore edit: (%d, %d), want (10, 500)", got.Points, got.AllowanceCents)
	}

	if n := f.notifier.lastOfType(model.NotifChoreAssigned); n == nil || n.UserID != f.child.ID {
		t.Errorf("expected chore_assigned notification to child, got %+v", n)
	}
}

func TestAssignUnknownChore(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Assign(f.parentCtx, 9999, f.child.ID, nil, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignAssigneeOutsideFamily(t *testing.T) {
	f := newFixture(t)

	other, err := store.NewFamilyStore(f.db).Create("Others")
	if err != nil {
		t.Fatal(err)
	}
	stranger, err := store.NewUserStore(f.db).Create(other.ID, "x@example.com", "X", model.RoleChild)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.engine.Assign(f.parentCtx, f.chore.ID, stranger.ID, nil, "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCompleteRequiresAssignee(t *testing.T) {
	f := newFixture(t)

	a, err := f.engine.Assign(f.parentCtx, f.chore.ID, f.child.ID, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.engine.Complete(f.parentCtx, a.ID, "")
	if !errors.Is(err, ErrNotAssignee) {
		t.Errorf("err = %v, want ErrNotAssignee", err)
	}
}

func TestCompleteIsProvisional(t *testing.T) {
	f := newFixture(t)
	a := f.assignCompleted(t)

	if a.Status != model.AssignmentCompleted {
		t.Errorf("status = %q, want completed", a.Status)
	}
	if a.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	// Provisional ledger entry exists but the balance has not moved.
	pending := f.countRows(t,
		`SELECT COUNT(*) FROM point_transactions WHERE user_id = ? AND type = ?`,
		f.child.ID, model.PointsChorePending)
	if pending != 1 {
		t.Errorf("pending entries = %d, want 1", pending)
	}
	if got := f.balance(t, f.child.ID); got != 0 {
		t.Errorf("balance = %d, want 0 before verification", got)
	}

	// Completing twice is a status violation.
	if _, err := f.engine.Complete(f.childCtx, a.ID, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("second complete err = %v, want ErrInvalidStatus", err)
	}
}

func TestVerifySettlement(t *testing.T) {
	f := newFixture(t)
	a := f.assignCompleted(t)

	got, err := f.engine.Verify(f.parentCtx, a.ID, true, "")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Status != model.AssignmentVerified {
		t.Errorf("status = %q, want verified", got.Status)
	}
	if got.VerifiedBy == nil || *got.VerifiedBy != f.parent.ID {
		t.Errorf("verified_by = %v, want %d", got.VerifiedBy, f.parent.ID)
	}

	if b := f.balance(t, f.child.ID); b != 10 {
		t.Errorf("balance = %d, want 10", b)
	}
	settled := f.countRows(t,
		`SELECT COUNT(*) FROM point_transactions WHERE user_id = ? AND type = ?`,
		f.child.ID, model.PointsChoreCompleted)
	if settled != 1 {
		t.Errorf("settlement entries = %d, want 1", settled)
	}
	// The ledger accumulates both entries; only the balance reflects one.
	pending := f.countRows(t,
		`SELECT COUNT(*) FROM point_transactions WHERE user_id = ? AND type = ?`,
		f.child.ID, model.PointsChorePending)
	if pending != 1 {
		t.Errorf("provisional entries = %d, want 1 retained after settlement", pending)
	}

	payments := f.countRows(t,
		`SELECT COUNT(*) FROM allowance_payments WHERE assignment_id = ? AND amount_cents = 500 AND status = ?`,
		a.ID, model.AllowancePending)
	if payments != 1 {
		t.Errorf("allowance payments = %d, want 1", payments)
	}

	streak, err := store.NewStreakStore(f.db).GetDaily(f.child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if streak == nil || streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Errorf("streak = %+v, want current 1 longest 1", streak)
	}

	n := f.notifier.lastOfType(model.NotifChoreVerified)
	if n == nil || n.UserID != f.child.ID {
		t.Fatalf("expected chore_verified notification to child, got %+v", n)
	}
	if !strings.Contains(n.Message, "10") || !strings.Contains(n.Message, "$5.00") {
		t.Errorf("message %q should mention points and allowance", n.Message)
	}
}

func TestVerifyWithoutAllowance(t *testing.T) {
	f := newFixture(t)

	chore, err := store.NewChoreStore(f.db).Create(f.family.ID, "Homework", "", 5, 0, "school", "easy", "", &f.parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	a, err := f.engine.Assign(f.parentCtx, chore.ID, f.child.ID, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Complete(f.childCtx, a.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM allowance_payments WHERE assignment_id = ?`, a.ID); n != 0 {
		t.Errorf("allowance payments = %d, want 0 for zero-allowance chore", n)
	}
	if n := f.notifier.lastOfType(model.NotifChoreVerified); n == nil || strings.Contains(n.Message, "$") {
		t.Errorf("message should not mention allowance, got %+v", n)
	}
}

func TestVerifyRequiresGuardian(t *testing.T) {
	f := newFixture(t)
	a := f.assignCompleted(t)

	_, err := f.engine.Verify(f.childCtx, a.ID, true, "")
	if !errors.Is(err, ErrNotGuardian) {
		t.Errorf("err = %v, want ErrNotGuardian", err)
	}
	if b := f.balance(t, f.child.ID); b != 0 {
		t.Errorf("balance = %d, want 0 after denied verify", b)
	}
}

func TestVerifyIsTerminal(t *testing.T) {
	f := newFixture(t)
	a := f.assignCompleted(t)

	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("second verify err = %v, want ErrInvalidStatus", err)
	}

	// The double verify must not double-credit.
	if b := f.balance(t, f.child.ID); b != 10 {
		t.Errorf("balance = %d, want 10", b)
	}
}

func TestRejectCreditsNothing(t *testing.T) {
	f := newFixture(t)
	a := f.assignCompleted(t)

	got, err := f.engine.Verify(f.parentCtx, a.ID, false, "still dirty")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != model.AssignmentRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if b := f.balance(t, f.child.ID); b != 0 {
		t.Errorf("balance = %d, want 0", b)
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM allowance_payments WHERE assignment_id = ?`, a.ID); n != 0 {
		t.Errorf("allowance payments = %d, want 0", n)
	}
	if n := f.countRows(t,
		`SELECT COUNT(*) FROM point_transactions WHERE assignment_id = ? AND type = ?`,
		a.ID, model.PointsChoreCompleted); n != 0 {
		t.Errorf("settlement entries = %d, want 0", n)
	}
	if n := f.countRows(t,
		`SELECT COUNT(*) FROM point_transactions WHERE assignment_id = ? AND type = ?`,
		a.ID, model.PointsChorePending); n != 1 {
		t.Errorf("provisional entries = %d, want 1 retained after rejection", n)
	}

	notif := f.notifier.lastOfType(model.NotifChoreRejected)
	if notif == nil || !strings.Contains(notif.Message, "still dirty") {
		t.Errorf("rejection notification should carry the reason, got %+v", notif)
	}

	// Rejected is terminal.
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("verify after reject err = %v, want ErrInvalidStatus", err)
	}
}

// verifyOn runs a full assign/complete/verify cycle with the engine clock
// pinned to at.
func (f *fixture) verifyOn(t *testing.T, at time.Time) {
	t.Helper()
	f.engine.now = func() time.Time { return at }
	a := f.assignCompleted(t)
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatalf("verify at %v: %v", at, err)
	}
}

func TestStreakProgression(t *testing.T) {
	f := newFixture(t)
	streaks := store.NewStreakStore(f.db)
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	check := func(wantCurrent, wantLongest int) {
		t.Helper()
		st, err := streaks.GetDaily(f.child.ID)
		if err != nil {
			t.Fatal(err)
		}
		if st.CurrentStreak != wantCurrent || st.LongestStreak != wantLongest {
			t.Errorf("streak = (%d, %d), want (%d, %d)", st.CurrentStreak, st.LongestStreak, wantCurrent, wantLongest)
		}
	}

	f.verifyOn(t, day)
	check(1, 1)

	// Second verification the same day leaves the streak alone.
	f.verifyOn(t, day.Add(2*time.Hour))
	check(1, 1)

	// Next calendar day extends.
	f.verifyOn(t, day.AddDate(0, 0, 1))
	check(2, 2)

	// A gap resets the run but the longest survives.
	f.verifyOn(t, day.AddDate(0, 0, 4))
	check(1, 2)
}

func TestCheckAchievementsInclusiveThreshold(t *testing.T) {
	f := newFixture(t)
	achievements := store.NewAchievementStore(f.db)
	points := store.NewPointsStore(f.db)

	ach, err := achievements.Create("Centurion", "Hold 100 points", "points", "points_earned:100", 0, "rare")
	if err != nil {
		t.Fatal(err)
	}

	f.addPoints(t, points, 99)
	newly, err := f.engine.CheckAchievements(f.child.ID, f.family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newly) != 0 {
		t.Fatalf("unlocked at 99 points: %v", newly)
	}

	f.addPoints(t, points, 1)
	newly, err = f.engine.CheckAchievements(f.child.ID, f.family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newly) != 1 || newly[0].ID != ach.ID {
		t.Fatalf("unlocked = %v, want exactly Centurion at 100 points", newly)
	}
}

// addPoints credits the child's ledger and cached balance together, the way
// settlement and redemption do.
func (f *fixture) addPoints(t *testing.T, points *store.PointsStore, amount int) {
	t.Helper()
	typ := model.PointsChoreCompleted
	if amount < 0 {
		typ = model.PointsRewardRedeemed
	}
	if _, err := points.Insert(f.child.ID, f.family.ID, amount, typ, "seed", nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.db.Exec(`UPDATE users SET points_balance = points_balance + ? WHERE id = ?`, amount, f.child.ID); err != nil {
		t.Fatal(err)
	}
}

func TestCheckAchievementsReadBalanceNotLifetime(t *testing.T) {
	f := newFixture(t)
	achievements := store.NewAchievementStore(f.db)
	points := store.NewPointsStore(f.db)

	if _, err := achievements.Create("Centurion", "Hold 100 points", "points", "points_earned:100", 0, "rare"); err != nil {
		t.Fatal(err)
	}

	// Lifetime earned is 100 but spending dropped the balance to 40, so
	// the condition is not met.
	f.addPoints(t, points, 100)
	f.addPoints(t, points, -60)

	newly, err := f.engine.CheckAchievements(f.child.ID, f.family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newly) != 0 {
		t.Fatalf("unlocked with balance 40: %v", newly)
	}

	f.addPoints(t, points, 60)
	newly, err = f.engine.CheckAchievements(f.child.ID, f.family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newly) != 1 {
		t.Fatalf("unlocked = %v, want Centurion once balance reaches 100", newly)
	}
}

func TestCheckAchievementsIdempotent(t *testing.T) {
	f := newFixture(t)
	achievements := store.NewAchievementStore(f.db)

	if _, err := achievements.Create("Starter", "First verified chore", "chores", "chores_completed:1", 5, "common"); err != nil {
		t.Fatal(err)
	}

	a := f.assignCompleted(t)
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	// Verify already ran the check; the unlock and its bonus exist once.
	if n := f.countRows(t, `SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, f.child.ID); n != 1 {
		t.Fatalf("unlocks = %d, want 1", n)
	}
	if b := f.balance(t, f.child.ID); b != 15 {
		t.Errorf("balance = %d, want 10 chore + 5 bonus", b)
	}

	newly, err := f.engine.CheckAchievements(f.child.ID, f.family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newly) != 0 {
		t.Errorf("re-check unlocked %v, want nothing", newly)
	}
	if b := f.balance(t, f.child.ID); b != 15 {
		t.Errorf("balance after re-check = %d, want 15", b)
	}

	if n := f.notifier.lastOfType(model.NotifAchievementUnlocked); n == nil || !strings.Contains(n.Message, "Starter") {
		t.Errorf("expected unlock notification for Starter, got %+v", n)
	}
}

func TestCheckAchievementsUnknownKind(t *testing.T) {
	f := newFixture(t)

	if _, err := store.NewAchievementStore(f.db).Create("Mystery", "???", "misc", "perfect_week:1", 50, "legendary"); err != nil {
		t.Fatal(err)
	}

	a := f.assignCompleted(t)
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, f.child.ID); n != 0 {
		t.Errorf("unknown condition kind unlocked %d achievements, want 0", n)
	}
}

func TestCheckAchievementsGamificationDisabled(t *testing.T) {
	f := newFixture(t)

	if _, err := store.NewAchievementStore(f.db).Create("Starter", "", "chores", "chores_completed:1", 5, "common"); err != nil {
		t.Fatal(err)
	}
	if err := store.NewUserStore(f.db).SetGamificationEnabled(f.child.ID, false); err != nil {
		t.Fatal(err)
	}

	a := f.assignCompleted(t)
	if _, err := f.engine.Verify(f.parentCtx, a.ID, true, ""); err != nil {
		t.Fatal(err)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`, f.child.ID); n != 0 {
		t.Errorf("opted-out user unlocked %d achievements, want 0", n)
	}
}
