package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tgienger/daybook/internal/models"
)

const groupColumns = "g.group_id, g.group_name, g.leader_id, g.created_at"

func scanGroup(row scanner) (*models.Group, error) {
	g := &models.Group{}
	if err := row.Scan(&g.ID, &g.Name, &g.LeaderID, &g.CreatedAt); err != nil {
		return nil, classify(err)
	}
	return g, nil
}

// CreateGroup creates a group led by leaderID and adds the leader as its
// first member. Both rows are written in one transaction.
func (db *DB) CreateGroup(name string, leaderID int64) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalid)
	}

	var id int64
	err := db.withTx(func(tx *sql.Tx) error {
		result, err := tx.Exec("INSERT INTO groups (group_name, leader_id) VALUES (?, ?)", name, leaderID)
		if err != nil {
			return classify(err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return classify(err)
		}
		if _, err := tx.Exec("INSERT INTO group_members (user_id, group_id) VALUES (?, ?)", leaderID, id); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.GetGroup(id)
}

// GetGroup retrieves a group by ID
func (db *DB) GetGroup(id int64) (*models.Group, error) {
	return scanGroup(db.QueryRow("SELECT "+groupColumns+" FROM groups g WHERE g.group_id = ?", id))
}

// GetGroupByName retrieves a group by exact name
func (db *DB) GetGroupByName(name string) (*models.Group, error) {
	return scanGroup(db.QueryRow("SELECT "+groupColumns+" FROM groups g WHERE g.group_name = ?", strings.TrimSpace(name)))
}

// ListGroupsForUser returns the groups userID is a member of, ordered by name
func (db *DB) ListGroupsForUser(userID int64) ([]models.Group, error) {
	rows, err := db.Query(`
		SELECT `+groupColumns+`
		FROM groups g
		JOIN group_members gm ON g.group_id = gm.group_id
		WHERE gm.user_id = ?
		ORDER BY g.group_name
	`, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, classify(rows.Err())
}

// DeleteGroup deletes a group with its memberships and tasks
func (db *DB) DeleteGroup(id int64) error {
	return requireAffected(db.Exec("DELETE FROM groups WHERE group_id = ?", id))
}
