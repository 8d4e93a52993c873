package store

import (
	"database/sql"
	"fmt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type StreakStore struct {
	db *sql.DB
}

func NewStreakStore(db *sql.DB) *StreakStore {
	return &StreakStore{db: db}
}

func scanStreak(scanner interface{ Scan(...any) error }) (*model.UserStreak, error) {
	var st model.UserStreak
	err := scanner.Scan(&st.ID, &st.UserID, &st.StreakType, &st.CurrentStreak, &st.LongestStreak, &st.LastActivityDate, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

const streakCols = `id, user_id, streak_type, current_streak, longest_streak, last_activity_date, updated_at`

// GetDaily returns the user's daily streak row, or nil if the user has never
// had a verified completion.
func (s *StreakStore) GetDaily(userID int64) (*model.UserStreak, error) {
	row := s.db.QueryRow(
		`SELECT `+streakCols+` FROM user_streaks WHERE user_id = ? AND streak_type = 'daily'`,
		userID,
	)
	st, err := scanStreak(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return st, nil
}

// CurrentDaily returns the current daily streak length, 0 if no row exists.
func (s *StreakStore) CurrentDaily(userID int64) (int, error) {
	st, err := s.GetDaily(userID)
	if err != nil {
		return 0, err
	}
	if st == nil {
		return 0, nil
	}
	return st.CurrentStreak, nil
}
