package store

import (
	"database/sql"
	"fmt"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type AchievementStore struct {
	db *sql.DB
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	var active int

	err := scanner.Scan(&a.ID, &a.Name, &a.Description, &a.Category, &a.Condition, &a.BonusPoints, &a.Rarity, &active, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.Active = active != 0
	return &a, nil
}

const achievementCols = `id, name, description, category, condition, bonus_points, rarity, active, created_at`

func (s *AchievementStore) Create(name, description, category, condition string, bonusPoints int, rarity string) (*model.Achievement, error) {
	result, err := s.db.Exec(
		`INSERT INTO achievements (name, description, category, condition, bonus_points, rarity) VALUES (?, ?, ?, ?, ?, ?)`,
		name, description, category, condition, bonusPoints, rarity,
	)
	if err != nil {
		return nil, fmt.Errorf("insert achievement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AchievementStore) GetByID(id int64) (*model.Achievement, error) {
	row := s.db.QueryRow(`SELECT `+achievementCols+` FROM achievements WHERE id = ?`, id)
	a, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get achievement: %w", err)
	}
	return a, nil
}

func (s *AchievementStore) ListActive() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements WHERE active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

func (s *AchievementStore) SetActive(id int64, active bool) error {
	var a int
	if active {
		a = 1
	}
	_, err := s.db.Exec(`UPDATE achievements SET active = ? WHERE id = ?`, a, id)
	if err != nil {
		return fmt.Errorf("set achievement active: %w", err)
	}
	return nil
}

// --- User achievement methods ---

// UnlockedIDs returns the set of achievement ids the user has already
// unlocked.
func (s *AchievementStore) UnlockedIDs(userID int64) (map[int64]bool, error) {
	rows, err := s.db.Query(`SELECT achievement_id FROM user_achievements WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked achievement ids: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan achievement id: %w", err)
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

func (s *AchievementStore) ListUnlockedByUser(userID int64) ([]model.UserAchievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, achievement_id, progress, unlocked_at FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	defer rows.Close()

	var unlocks []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.Progress, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		unlocks = append(unlocks, ua)
	}
	return unlocks, rows.Err()
}
