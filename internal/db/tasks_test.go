package db

import (
	"errors"
	"testing"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

func TestTask_Create_Get_Update_Delete(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	estimate := 45
	id, err := database.AddTask(ann.ID, models.TaskInput{
		Title:           "Write report",
		Note:            "quarterly",
		Priority:        models.PriorityHigh,
		EstimateMinutes: &estimate,
		DueAt:           due(2024, time.March, 5, 9),
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	got, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.UserID != ann.ID || got.Title != "Write report" || got.Note != "quarterly" || got.Done {
		t.Errorf("GetTask mismatch: %+v", got)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("priority = %v, want high", got.Priority)
	}
	if got.EstimateMinutes == nil || *got.EstimateMinutes != 45 {
		t.Errorf("estimate = %v, want 45", got.EstimateMinutes)
	}
	if got.DueAt == nil || !got.DueAt.Equal(*due(2024, time.March, 5, 9)) {
		t.Errorf("due = %v", got.DueAt)
	}

	if err := database.UpdateTask(id, models.TaskInput{Title: "Write summary", Priority: models.PriorityLow}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	got, err = database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask after update: %v", err)
	}
	if got.Title != "Write summary" || got.DueAt != nil || got.EstimateMinutes != nil {
		t.Errorf("update not applied: %+v", got)
	}

	if err := database.UpdateTaskCompletion(id, true); err != nil {
		t.Fatalf("UpdateTaskCompletion: %v", err)
	}
	got, _ = database.GetTask(id)
	if !got.Done {
		t.Error("task not marked done")
	}

	if err := database.DeleteTask(id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := database.GetTask(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddTask_DefaultPriority(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	id, err := database.AddTask(ann.ID, models.TaskInput{Title: "plain"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	got, _ := database.GetTask(id)
	if got.Priority != models.PriorityMedium || got.DueAt != nil {
		t.Errorf("unexpected task: %+v", got)
	}

	if err := database.UpdateTask(id, models.TaskInput{Title: "plain, edited"}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	got, _ = database.GetTask(id)
	if got.Priority != models.PriorityMedium {
		t.Errorf("priority after update = %v, want medium", got.Priority)
	}
}

func TestTask_DueInOtherZone(t *testing.T) {
	setLocal(t, "America/New_York")
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	// 19:00 EDT on March 31
	utc := time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)
	// 22:00 EDT on March 31, already April in UTC
	lateUTC := time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC)

	id, err := database.AddTask(ann.ID, models.TaskInput{Title: "call home", DueAt: &utc})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if _, err := database.AddTask(ann.ID, models.TaskInput{Title: "late", DueAt: &lateUTC}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	got, err := database.GetTask(id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.DueAt == nil || !got.DueAt.Equal(utc) {
		t.Fatalf("due = %v, want %v", got.DueAt, utc)
	}

	march, err := database.ListTasksForOwnerMonth(ann.ID, models.YearMonth{Year: 2024, Month: time.March})
	if err != nil {
		t.Fatalf("ListTasksForOwnerMonth: %v", err)
	}
	if len(march) != 2 {
		t.Errorf("March has %d tasks, want 2", len(march))
	}

	// bounds given in UTC cover 18:00-20:00 EDT
	from := time.Date(2024, time.March, 31, 22, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	ranged, err := database.ListTasksForOwnerRange(ann.ID, from, to)
	if err != nil {
		t.Fatalf("ListTasksForOwnerRange: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != id {
		t.Errorf("range = %+v, want only task %d", ranged, id)
	}
}

func TestAddTask_Errors(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	negative := -5

	tests := []struct {
		name  string
		owner int64
		in    models.TaskInput
		want  error
	}{
		{"empty title", ann.ID, models.TaskInput{Title: " "}, ErrInvalid},
		{"bad priority", ann.ID, models.TaskInput{Title: "x", Priority: 7}, ErrInvalid},
		{"negative estimate", ann.ID, models.TaskInput{Title: "x", EstimateMinutes: &negative}, ErrInvalid},
		{"missing owner", 999, models.TaskInput{Title: "x"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := database.AddTask(tt.owner, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTask_MissingID(t *testing.T) {
	database := setupTestDB(t)

	if err := database.UpdateTaskCompletion(42, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTaskCompletion: expected ErrNotFound, got %v", err)
	}
	if err := database.UpdateTask(42, models.TaskInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask: expected ErrNotFound, got %v", err)
	}
	if err := database.DeleteTask(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask: expected ErrNotFound, got %v", err)
	}
}

func TestListTasksForOwnerMonth(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	bob := createUser(t, database, "bob")

	add := func(owner int64, title string, d *time.Time) {
		t.Helper()
		if _, err := database.AddTask(owner, models.TaskInput{Title: title, DueAt: d}); err != nil {
			t.Fatalf("AddTask %s: %v", title, err)
		}
	}
	add(ann.ID, "late", due(2024, time.March, 31, 23))
	add(ann.ID, "early", due(2024, time.March, 5, 8))
	add(ann.ID, "undated", nil)
	add(ann.ID, "february", due(2024, time.February, 29, 12))
	add(ann.ID, "april", due(2024, time.April, 1, 0))
	add(bob.ID, "other owner", due(2024, time.March, 10, 10))

	tasks, err := database.ListTasksForOwnerMonth(ann.ID, models.YearMonth{Year: 2024, Month: time.March})
	if err != nil {
		t.Fatalf("ListTasksForOwnerMonth: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", tasks)
	}
	if tasks[0].Title != "early" || tasks[1].Title != "late" {
		t.Errorf("unexpected order: %s, %s", tasks[0].Title, tasks[1].Title)
	}

	all, err := database.ListTasksForOwner(ann.ID)
	if err != nil {
		t.Fatalf("ListTasksForOwner: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 tasks, got %d", len(all))
	}
	if all[len(all)-1].Title != "undated" {
		t.Errorf("undated task should sort last, got %s", all[len(all)-1].Title)
	}
}

func TestListTasksForOwnerRange(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	for _, d := range []*time.Time{
		due(2024, time.March, 3, 23),
		due(2024, time.March, 4, 0),
		due(2024, time.March, 10, 23),
		due(2024, time.March, 11, 0),
	} {
		if _, err := database.AddTask(ann.ID, models.TaskInput{Title: d.Format("Jan 2 15h"), DueAt: d}); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}

	from := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local)
	tasks, err := database.ListTasksForOwnerRange(ann.ID, from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("ListTasksForOwnerRange: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks in range, got %d", len(tasks))
	}
	if tasks[0].DueAt.Day() != 4 || tasks[1].DueAt.Day() != 10 {
		t.Errorf("unexpected tasks: %v, %v", tasks[0].DueAt, tasks[1].DueAt)
	}
}

func TestListTasks_Empty(t *testing.T) {
	database := setupTestDB(t)

	tasks, err := database.ListTasksForOwner(7)
	if err != nil {
		t.Fatalf("ListTasksForOwner: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}
