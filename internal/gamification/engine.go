package gamification

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/store"
)

// Notifier delivers notifications after a state change has committed.
// Implementations must not fail the calling operation.
type Notifier interface {
	Notify(familyID, userID int64, notifType, title, message string)
}

// Broadcaster pushes activity events to connected family members.
type Broadcaster interface {
	BroadcastActivity(familyID int64, event string, payload any)
}

// Engine implements the chore-to-reward pipeline: assignment, completion,
// verification settlement, streak maintenance, and achievement evaluation.
// Settlement runs in a single transaction so points, allowance, and streak
// state can never partially apply.
type Engine struct {
	db           *sql.DB
	chores       *store.ChoreStore
	assignments  *store.AssignmentStore
	users        *store.UserStore
	points       *store.PointsStore
	streaks      *store.StreakStore
	achievements *store.AchievementStore
	notifier     Notifier
	broadcaster  Broadcaster
	logger       *slog.Logger

	now func() time.Time
}

func New(db *sql.DB, logger *slog.Logger) *Engine {
	return &Engine{
		db:           db,
		chores:       store.NewChoreStore(db),
		assignments:  store.NewAssignmentStore(db),
		users:        store.NewUserStore(db),
		points:       store.NewPointsStore(db),
		streaks:      store.NewStreakStore(db),
		achievements: store.NewAchievementStore(db),
		logger:       logger.With("component", "gamification"),
		now:          time.Now,
	}
}

// SetNotifier attaches the notification sink. Without one the engine still
// settles correctly; it just stays silent.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

// Assign creates a pending assignment of a chore to a family member,
// snapshotting the chore's title, points, and allowance.
func (e *Engine) Assign(caller auth.AuthContext, choreID, assigneeID int64, dueDate *time.Time, notes string) (*model.ChoreAssignment, error) {
	chore, err := e.chores.GetByID(choreID)
	if err != nil {
		return nil, err
	}
	if chore == nil || !caller.MemberOf(chore.FamilyID) {
		return nil, fmt.Errorf("chore %d: %w", choreID, ErrNotFound)
	}

	assignee, err := e.users.GetByID(assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil || assignee.FamilyID != chore.FamilyID {
		return nil, fmt.Errorf("assignee %d is not in the family: %w", assigneeID, ErrValidation)
	}

	a, err := e.assignments.Create(chore, assigneeID, caller.UserID, dueDate, notes)
	if err != nil {
		return nil, err
	}

	e.notify(a.FamilyID, a.AssignedTo, model.NotifChoreAssigned,
		"New chore assigned",
		fmt.Sprintf("%q is waiting for you (%d points)", a.Title, a.Points))
	e.broadcast(a.FamilyID, "assignment_created", a)

	e.logger.Info("chore assigned",
		"assignment_id", a.ID,
		"chore_id", choreID,
		"assigned_to", assigneeID,
		"assigned_by", caller.UserID)
	return a, nil
}

// Complete marks a pending assignment as completed by its assignee and
// records a provisional ledger entry. The provisional entry is history only;
// the balance does not move until verification.
func (e *Engine) Complete(caller auth.AuthContext, assignmentID int64, notes string) (*model.ChoreAssignment, error) {
	a, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || !caller.MemberOf(a.FamilyID) {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
	}
	if a.AssignedTo != caller.UserID {
		return nil, fmt.Errorf("assignment %d belongs to user %d: %w", assignmentID, a.AssignedTo, ErrNotAssignee)
	}

	now := e.now().UTC()

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback()

	// The status predicate doubles as the concurrency guard: a second
	// concurrent Complete matches zero rows.
	res, err := tx.Exec(
		`UPDATE chore_assignments SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.AssignmentCompleted, now, assignmentID, model.AssignmentPending,
	)
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("assignment %d is %s, want pending: %w", assignmentID, a.Status, ErrInvalidStatus)
	}

	if notes != "" {
		if _, err := tx.Exec(`UPDATE chore_assignments SET notes = ? WHERE id = ?`, notes, assignmentID); err != nil {
			return nil, fmt.Errorf("update notes: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO point_transactions (user_id, family_id, amount, type, description, assignment_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AssignedTo, a.FamilyID, a.Points, model.PointsChorePending,
		fmt.Sprintf("Completed %q (awaiting verification)", a.Title),
		assignmentID, caller.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert provisional entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete tx: %w", err)
	}

	updated, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}

	e.notify(a.FamilyID, a.AssignedBy, model.NotifChoreCompleted,
		"Chore completed",
		fmt.Sprintf("%q was marked done and needs verification", a.Title))
	e.broadcast(a.FamilyID, "assignment_completed", updated)

	e.logger.Info("chore completed", "assignment_id", assignmentID, "user_id", caller.UserID)
	return updated, nil
}

// Verify settles a completed assignment. Approval credits the snapshotted
// points, records an allowance liability when one exists, and advances the
// assignee's daily streak, all in one transaction. Rejection only flips the
// status; nothing is credited. Both outcomes are terminal.
func (e *Engine) Verify(caller auth.AuthContext, assignmentID int64, approved bool, notes string) (*model.ChoreAssignment, error) {
	a, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || !caller.MemberOf(a.FamilyID) {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
	}
	if !caller.Manages(a.FamilyID) {
		return nil, fmt.Errorf("verify assignment %d: %w", assignmentID, ErrNotGuardian)
	}

	if approved {
		err = e.settle(caller, a)
	} else {
		err = e.reject(caller, a, notes)
	}
	if err != nil {
		return nil, err
	}

	updated, err := e.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}

	if approved {
		msg := fmt.Sprintf("You earned %d points for %q", a.Points, a.Title)
		if a.AllowanceCents > 0 {
			msg += fmt.Sprintf(" plus %s allowance", FormatCents(a.AllowanceCents))
		}
		e.notify(a.FamilyID, a.AssignedTo, model.NotifChoreVerified, "Chore verified", msg)
		e.broadcast(a.FamilyID, "assignment_verified", updated)

		// Settlement may have pushed the assignee over a threshold.
		if _, err := e.CheckAchievements(a.AssignedTo, a.FamilyID); err != nil {
			e.logger.Error("achievement check after verify", "user_id", a.AssignedTo, "error", err)
		}
	} else {
		msg := fmt.Sprintf("%q was not approved", a.Title)
		if notes != "" {
			msg += ": " + notes
		}
		e.notify(a.FamilyID, a.AssignedTo, model.NotifChoreRejected, "Chore rejected", msg)
		e.broadcast(a.FamilyID, "assignment_rejected", updated)
	}

	e.logger.Info("chore verified",
		"assignment_id", assignmentID,
		"approved", approved,
		"verified_by", caller.UserID)
	return updated, nil
}

func (e *Engine) settle(caller auth.AuthContext, a *model.ChoreAssignment) error {
	now := e.now().UTC()

	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settlement tx: %w", err)
	}
	defer tx.Rollback()

	// Conditional update is both the precondition check and the guard
	// against two guardians settling the same assignment.
	res, err := tx.Exec(
		`UPDATE chore_assignments SET status = ?, verified_by = ?, verified_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.AssignmentVerified, caller.UserID, now, a.ID, model.AssignmentCompleted,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("assignment %d is %s, want completed: %w", a.ID, a.Status, ErrInvalidStatus)
	}

	// The ledger is append-only: the credit lands alongside the provisional
	// chore_pending entry from completion, which stays as history. Earned
	// totals exclude the provisional type so nothing double-counts.
	_, err = tx.Exec(
		`INSERT INTO point_transactions (user_id, family_id, amount, type, description, assignment_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AssignedTo, a.FamilyID, a.Points, model.PointsChoreCompleted,
		fmt.Sprintf("Verified %q", a.Title), a.ID, caller.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert settlement entry: %w", err)
	}

	// Relative increment, never a read-modify-write of the balance.
	_, err = tx.Exec(
		`UPDATE users SET points_balance = points_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a.Points, a.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}

	if a.AllowanceCents > 0 {
		_, err = tx.Exec(
			`INSERT INTO allowance_payments (user_id, family_id, assignment_id, amount_cents, status)
			 VALUES (?, ?, ?, ?, ?)`,
			a.AssignedTo, a.FamilyID, a.ID, a.AllowanceCents, model.AllowancePending,
		)
		if err != nil {
			return fmt.Errorf("insert allowance payment: %w", err)
		}
	}

	if err := advanceStreakTx(tx, a.AssignedTo, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement tx: %w", err)
	}
	return nil
}

// advanceStreakTx updates the assignee's daily streak inside the settlement
// transaction so the read-modify-write cannot interleave with a concurrent
// settlement for the same user.
func advanceStreakTx(tx *sql.Tx, userID int64, now time.Time) error {
	var current, longest int
	var last time.Time
	err := tx.QueryRow(
		`SELECT current_streak, longest_streak, last_activity_date FROM user_streaks WHERE user_id = ? AND streak_type = 'daily'`,
		userID,
	).Scan(&current, &longest, &last)
	if err == sql.ErrNoRows {
		_, err = tx.Exec(
			`INSERT INTO user_streaks (user_id, streak_type, current_streak, longest_streak, last_activity_date)
			 VALUES (?, 'daily', 1, 1, ?)`,
			userID, now,
		)
		if err != nil {
			return fmt.Errorf("insert streak: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read streak: %w", err)
	}

	current, longest = AdvanceStreak(current, longest, last, now)
	_, err = tx.Exec(
		`UPDATE user_streaks SET current_streak = ?, longest_streak = ?, last_activity_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND streak_type = 'daily'`,
		current, longest, now, userID,
	)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// reject flips the status and credits nothing. The provisional chore_pending
// ledger entry stays: the ledger is append-only history, and provisional
// entries never count toward balances or earned totals.
func (e *Engine) reject(caller auth.AuthContext, a *model.ChoreAssignment, notes string) error {
	now := e.now().UTC()

	query := `UPDATE chore_assignments SET status = ?, verified_by = ?, verified_at = ?, updated_at = CURRENT_TIMESTAMP`
	args := []any{model.AssignmentRejected, caller.UserID, now}
	if notes != "" {
		query += `, notes = ?`
		args = append(args, notes)
	}
	query += ` WHERE id = ? AND status = ?`
	args = append(args, a.ID, model.AssignmentCompleted)

	res, err := e.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("mark rejected: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("assignment %d is %s, want completed: %w", a.ID, a.Status, ErrInvalidStatus)
	}
	return nil
}

// CheckAchievements evaluates the active catalog against the user's current
// statistics and unlocks anything newly earned. Safe to call repeatedly;
// already-unlocked achievements are skipped and the unique constraint
// absorbs races. Returns only the achievements unlocked by this call.
func (e *Engine) CheckAchievements(userID, familyID int64) ([]model.Achievement, error) {
	user, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.FamilyID != familyID {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if !user.GamificationEnabled {
		return nil, nil
	}

	stats, err := e.statsFor(userID)
	if err != nil {
		return nil, err
	}

	catalog, err := e.achievements.ListActive()
	if err != nil {
		return nil, err
	}
	unlocked, err := e.achievements.UnlockedIDs(userID)
	if err != nil {
		return nil, err
	}

	var newly []model.Achievement
	for _, ach := range catalog {
		if unlocked[ach.ID] {
			continue
		}
		if !ParseCondition(ach.Condition).Met(stats) {
			continue
		}

		ok, err := e.unlock(userID, familyID, ach)
		if err != nil {
			return newly, err
		}
		if !ok {
			continue
		}

		e.notify(familyID, userID, model.NotifAchievementUnlocked,
			"Achievement unlocked",
			fmt.Sprintf("%s: %s", ach.Name, ach.Description))
		e.broadcast(familyID, "achievement_unlocked", map[string]any{
			"user_id":     userID,
			"achievement": ach,
		})
		e.logger.Info("achievement unlocked", "user_id", userID, "achievement", ach.Name)
		newly = append(newly, ach)
	}
	return newly, nil
}

// unlock records one achievement for a user and credits its bonus points.
// Returns false when a concurrent check already recorded it.
func (e *Engine) unlock(userID, familyID int64, ach model.Achievement) (bool, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin unlock tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`,
		userID, ach.ID,
	)
	if err != nil {
		return false, fmt.Errorf("insert user achievement: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, nil
	}

	if ach.BonusPoints > 0 {
		_, err = tx.Exec(
			`INSERT INTO point_transactions (user_id, family_id, amount, type, description)
			 VALUES (?, ?, ?, ?, ?)`,
			userID, familyID, ach.BonusPoints, model.PointsAchievementUnlocked,
			fmt.Sprintf("Achievement unlocked: %s", ach.Name),
		)
		if err != nil {
			return false, fmt.Errorf("insert bonus entry: %w", err)
		}
		_, err = tx.Exec(
			`UPDATE users SET points_balance = points_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			ach.BonusPoints, userID,
		)
		if err != nil {
			return false, fmt.Errorf("credit bonus: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit unlock tx: %w", err)
	}
	return true, nil
}

func (e *Engine) statsFor(userID int64) (Stats, error) {
	completed, err := e.assignments.CountVerifiedByUser(userID)
	if err != nil {
		return Stats{}, err
	}
	balance, err := e.points.Balance(userID)
	if err != nil {
		return Stats{}, err
	}
	streak, err := e.streaks.CurrentDaily(userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{ChoresCompleted: completed, PointsBalance: balance, StreakDays: streak}, nil
}

func (e *Engine) notify(familyID, userID int64, notifType, title, message string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(familyID, userID, notifType, title, message)
}

func (e *Engine) broadcast(familyID int64, event string, payload any) {
	if e.broadcaster == nil {
		return
	}
	e.broadcaster.BroadcastActivity(familyID, event, payload)
}

// FormatCents renders an amount of cents as dollars, e.g. 500 -> "$5.00".
func FormatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
