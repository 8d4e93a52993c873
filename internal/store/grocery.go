package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/model"
)

type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// --- List methods ---

func scanGroceryList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	err := scanner.Scan(&l.ID, &l.FamilyID, &l.Name, &l.SortOrder, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const groceryListCols = `id, family_id, name, sort_order, created_at`

func (s *GroceryStore) CreateList(familyID int64, name string, sortOrder int) (*model.GroceryList, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_lists (family_id, name, sort_order) VALUES (?, ?, ?)`,
		familyID, name, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListByID(id)
}

func (s *GroceryStore) GetListByID(id int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+groceryListCols+` FROM grocery_lists WHERE id = ?`, id)
	l, err := scanGroceryList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery list: %w", err)
	}
	return l, nil
}

func (s *GroceryStore) ListsByFamily(familyID int64) ([]model.GroceryList, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryListCols+` FROM grocery_lists WHERE family_id = ? ORDER BY sort_order ASC, name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grocery lists: %w", err)
	}
	defer rows.Close()

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanGroceryList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *GroceryStore) DeleteList(id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete grocery list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanGroceryItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var i model.GroceryItem
	var checked int
	var checkedBy, addedBy sql.NullInt64
	var checkedAt sql.NullTime

	err := scanner.Scan(
		&i.ID, &i.ListID, &i.Name, &i.Quantity, &i.Unit, &i.Notes, &i.Category,
		&checked, &checkedBy, &checkedAt, &addedBy, &i.SortOrder, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.Checked = checked != 0
	if checkedBy.Valid {
		i.CheckedBy = &checkedBy.Int64
	}
	if checkedAt.Valid {
		i.CheckedAt = &checkedAt.Time
	}
	if addedBy.Valid {
		i.AddedBy = &addedBy.Int64
	}
	return &i, nil
}

const groceryItemCols = `id, list_id, name, quantity, unit, notes, category, checked, checked_by, checked_at, added_by, sort_order, created_at`

func (s *GroceryStore) CreateItem(listID int64, name, quantity, unit, notes, category string, addedBy *int64) (*model.GroceryItem, error) {
	var aBy sql.NullInt64
	if addedBy != nil {
		aBy = sql.NullInt64{Int64: *addedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO grocery_items (list_id, name, quantity, unit, notes, category, added_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		listID, name, quantity, unit, notes, category, aBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) GetItemByID(id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+groceryItemCols+` FROM grocery_items WHERE id = ?`, id)
	i, err := scanGroceryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery item: %w", err)
	}
	return i, nil
}

func (s *GroceryStore) ListItems(listID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryItemCols+` FROM grocery_items WHERE list_id = ? ORDER BY checked ASC, category ASC, sort_order ASC, name ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		i, err := scanGroceryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery item: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

func (s *GroceryStore) UpdateItem(id int64, name, quantity, unit, notes, category string) (*model.GroceryItem, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, quantity = ?, unit = ?, notes = ?, category = ? WHERE id = ?`,
		name, quantity, unit, notes, category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update grocery item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) SetChecked(id int64, checked bool, checkedBy *int64) (*model.GroceryItem, error) {
	if checked {
		var cBy sql.NullInt64
		if checkedBy != nil {
			cBy = sql.NullInt64{Int64: *checkedBy, Valid: true}
		}
		_, err := s.db.Exec(
			`UPDATE grocery_items SET checked = 1, checked_by = ?, checked_at = ? WHERE id = ?`,
			cBy, time.Now().UTC(), id,
		)
		if err != nil {
			return nil, fmt.Errorf("check grocery item: %w", err)
		}
	} else {
		_, err := s.db.Exec(
			`UPDATE grocery_items SET checked = 0, checked_by = NULL, checked_at = NULL WHERE id = ?`,
			id,
		)
		if err != nil {
			return nil, fmt.Errorf("uncheck grocery item: %w", err)
		}
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete grocery item: %w", err)
	}
	return nil
}

// ClearChecked removes all checked items from a list, returning the number
// deleted.
func (s *GroceryStore) ClearChecked(listID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM grocery_items WHERE list_id = ? AND checked = 1`, listID)
	if err != nil {
		return 0, fmt.Errorf("clear checked items: %w", err)
	}
	return result.RowsAffected()
}
