package db

import (
	"fmt"

	"github.com/tgienger/daybook/internal/models"
)

// AddGroupMember adds userID to a group. Adding an existing member is a no-op.
func (db *DB) AddGroupMember(groupID, userID int64) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO group_members (user_id, group_id) VALUES (?, ?)
	`, userID, groupID)
	return classify(err)
}

// RemoveGroupMember removes userID from a group. The leader cannot be removed.
func (db *DB) RemoveGroupMember(groupID, userID int64) error {
	g, err := db.GetGroup(groupID)
	if err != nil {
		return err
	}
	if g.LeaderID == userID {
		return fmt.Errorf("%w: the group leader cannot leave the group", ErrInvalid)
	}
	return requireAffected(db.Exec("DELETE FROM group_members WHERE user_id = ? AND group_id = ?", userID, groupID))
}

// IsGroupMember reports whether userID belongs to the group
func (db *DB) IsGroupMember(groupID, userID int64) (bool, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM group_members WHERE user_id = ? AND group_id = ?
	`, userID, groupID).Scan(&n)
	if err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// ListGroupMembers returns the members of a group ordered by name
func (db *DB) ListGroupMembers(groupID int64) ([]models.GroupMember, error) {
	rows, err := db.Query(`
		SELECT gm.group_id, u.user_id, u.user_name
		FROM group_members gm
		JOIN users u ON u.user_id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY u.user_name
	`, groupID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.UserName); err != nil {
			return nil, classify(err)
		}
		members = append(members, m)
	}
	return members, classify(rows.Err())
}
