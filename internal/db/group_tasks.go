package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

const groupTaskColumns = "task_id, group_id, assignee_id, creator_id, title, note, is_done, priority, estimate_minutes, due_at, created_at"

func scanGroupTask(row scanner) (*models.GroupTask, error) {
	t := &models.GroupTask{}
	var due sql.NullString
	err := row.Scan(&t.ID, &t.GroupID, &t.AssigneeID, &t.CreatorID, &t.Title, &t.Note, &t.Done,
		&t.Priority, &t.EstimateMinutes, &due, &t.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	if t.DueAt, err = parseDue(due); err != nil {
		return nil, err
	}
	return t, nil
}

func (db *DB) queryGroupTasks(query string, args ...any) ([]models.GroupTask, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	tasks := []models.GroupTask{}
	for rows.Next() {
		t, err := scanGroupTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, classify(rows.Err())
}

// checkAssignee enforces assignee membership when strict assignees are on
func (db *DB) checkAssignee(groupID int64, assigneeID *int64) error {
	if !db.strictAssignees || assigneeID == nil {
		return nil
	}
	ok, err := db.IsGroupMember(groupID, *assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d is not a member of group %d", ErrInvalid, *assigneeID, groupID)
	}
	return nil
}

// AddGroupTask creates a task in a group and returns its ID
func (db *DB) AddGroupTask(groupID, creatorID int64, assigneeID *int64, in models.TaskInput) (int64, error) {
	if err := validateTask(in); err != nil {
		return 0, err
	}
	if err := db.checkAssignee(groupID, assigneeID); err != nil {
		return 0, err
	}

	result, err := db.Exec(`
		INSERT INTO group_tasks (group_id, assignee_id, creator_id, title, note, is_done, priority, estimate_minutes, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, groupID, assigneeID, creatorID, strings.TrimSpace(in.Title), in.Note, in.Done, in.Priority.OrDefault(),
		in.EstimateMinutes, formatDue(in.DueAt))
	if err != nil {
		return 0, classify(err)
	}

	id, err := result.LastInsertId()
	return id, classify(err)
}

// GetGroupTask retrieves a group task by ID
func (db *DB) GetGroupTask(id int64) (*models.GroupTask, error) {
	return scanGroupTask(db.QueryRow("SELECT "+groupTaskColumns+" FROM group_tasks WHERE task_id = ?", id))
}

// ListGroupTasksForGroup returns all tasks of a group, dated tasks first by due time
func (db *DB) ListGroupTasksForGroup(groupID int64) ([]models.GroupTask, error) {
	return db.queryGroupTasks(`
		SELECT `+groupTaskColumns+` FROM group_tasks
		WHERE group_id = ?
		ORDER BY due_at IS NULL, due_at, priority DESC, task_id
	`, groupID)
}

// ListGroupTasksForAssignee returns all group tasks assigned to a user
func (db *DB) ListGroupTasksForAssignee(assigneeID int64) ([]models.GroupTask, error) {
	return db.queryGroupTasks(`
		SELECT `+groupTaskColumns+` FROM group_tasks
		WHERE assignee_id = ?
		ORDER BY due_at IS NULL, due_at, priority DESC, task_id
	`, assigneeID)
}

// ListGroupTasksForGroupMonth returns a group's tasks due in ym, ordered by due time
func (db *DB) ListGroupTasksForGroupMonth(groupID int64, ym models.YearMonth) ([]models.GroupTask, error) {
	return db.queryGroupTasks(`
		SELECT `+groupTaskColumns+` FROM group_tasks
		WHERE group_id = ? AND due_at IS NOT NULL AND substr(due_at, 1, 7) = ?
		ORDER BY due_at
	`, groupID, ym.String())
}

// ListGroupTasksForAssigneeMonth returns the group tasks assigned to a user and due in ym
func (db *DB) ListGroupTasksForAssigneeMonth(assigneeID int64, ym models.YearMonth) ([]models.GroupTask, error) {
	return db.queryGroupTasks(`
		SELECT `+groupTaskColumns+` FROM group_tasks
		WHERE assignee_id = ? AND due_at IS NOT NULL AND substr(due_at, 1, 7) = ?
		ORDER BY due_at
	`, assigneeID, ym.String())
}

// ListGroupTasksForAssigneeRange returns the group tasks assigned to a user and due in [from, to)
func (db *DB) ListGroupTasksForAssigneeRange(assigneeID int64, from, to time.Time) ([]models.GroupTask, error) {
	return db.queryGroupTasks(`
		SELECT `+groupTaskColumns+` FROM group_tasks
		WHERE assignee_id = ? AND due_at IS NOT NULL AND due_at >= ? AND due_at < ?
		ORDER BY due_at
	`, assigneeID, from.In(time.Local).Format(dueLayout), to.In(time.Local).Format(dueLayout))
}

// UpdateGroupTaskCompletion sets the done flag of a group task
func (db *DB) UpdateGroupTaskCompletion(id int64, done bool) error {
	return requireAffected(db.Exec("UPDATE group_tasks SET is_done = ? WHERE task_id = ?", done, id))
}

// AssignGroupTask sets or clears (nil) the assignee of a group task
func (db *DB) AssignGroupTask(id int64, assigneeID *int64) error {
	t, err := db.GetGroupTask(id)
	if err != nil {
		return err
	}
	if err := db.checkAssignee(t.GroupID, assigneeID); err != nil {
		return err
	}
	return requireAffected(db.Exec("UPDATE group_tasks SET assignee_id = ? WHERE task_id = ?", assigneeID, id))
}

// DeleteGroupTask deletes a group task
func (db *DB) DeleteGroupTask(id int64) error {
	return requireAffected(db.Exec("DELETE FROM group_tasks WHERE task_id = ?", id))
}
