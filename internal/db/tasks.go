package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

const taskColumns = "task_id, user_id, title, note, is_done, priority, estimate_minutes, due_at, created_at"

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Note, &t.Done, &t.Priority,
		&t.EstimateMinutes, &due, &t.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	if t.DueAt, err = parseDue(due); err != nil {
		return nil, err
	}
	return t, nil
}

func (db *DB) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, classify(rows.Err())
}

func validateTask(in models.TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if in.Priority < models.PriorityUnset || in.Priority > models.PriorityHigh {
		return fmt.Errorf("%w: priority %d out of range", ErrInvalid, in.Priority)
	}
	if in.EstimateMinutes != nil && *in.EstimateMinutes < 0 {
		return fmt.Errorf("%w: negative estimate", ErrInvalid)
	}
	return nil
}

// AddTask creates a personal task for ownerID and returns its ID
func (db *DB) AddTask(ownerID int64, in models.TaskInput) (int64, error) {
	if err := validateTask(in); err != nil {
		return 0, err
	}

	result, err := db.Exec(`
		INSERT INTO tasks (user_id, title, note, is_done, priority, estimate_minutes, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ownerID, strings.TrimSpace(in.Title), in.Note, in.Done, in.Priority.OrDefault(), in.EstimateMinutes, formatDue(in.DueAt))
	if err != nil {
		return 0, classify(err)
	}

	id, err := result.LastInsertId()
	return id, classify(err)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(id int64) (*models.Task, error) {
	return scanTask(db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE task_id = ?", id))
}

// ListTasksForOwner returns every task of a user, dated tasks first by due time
func (db *DB) ListTasksForOwner(ownerID int64) ([]models.Task, error) {
	return db.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ?
		ORDER BY due_at IS NULL, due_at, priority DESC, task_id
	`, ownerID)
}

// ListTasksForOwnerMonth returns the user's tasks due in ym, ordered by due time.
// Tasks without a due date are excluded.
func (db *DB) ListTasksForOwnerMonth(ownerID int64, ym models.YearMonth) ([]models.Task, error) {
	return db.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND due_at IS NOT NULL AND substr(due_at, 1, 7) = ?
		ORDER BY due_at
	`, ownerID, ym.String())
}

// ListTasksForOwnerRange returns the user's tasks due in [from, to), ordered by due time
func (db *DB) ListTasksForOwnerRange(ownerID int64, from, to time.Time) ([]models.Task, error) {
	return db.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND due_at IS NOT NULL AND due_at >= ? AND due_at < ?
		ORDER BY due_at
	`, ownerID, from.In(time.Local).Format(dueLayout), to.In(time.Local).Format(dueLayout))
}

// UpdateTask replaces the editable fields of a task
func (db *DB) UpdateTask(id int64, in models.TaskInput) error {
	if err := validateTask(in); err != nil {
		return err
	}
	return requireAffected(db.Exec(`
		UPDATE tasks SET title = ?, note = ?, is_done = ?, priority = ?, estimate_minutes = ?, due_at = ?
		WHERE task_id = ?
	`, strings.TrimSpace(in.Title), in.Note, in.Done, in.Priority.OrDefault(), in.EstimateMinutes, formatDue(in.DueAt), id))
}

// UpdateTaskCompletion sets the done flag of a task
func (db *DB) UpdateTaskCompletion(id int64, done bool) error {
	return requireAffected(db.Exec("UPDATE tasks SET is_done = ? WHERE task_id = ?", done, id))
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id int64) error {
	return requireAffected(db.Exec("DELETE FROM tasks WHERE task_id = ?", id))
}
