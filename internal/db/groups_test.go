package db

import (
	"errors"
	"testing"
	"time"

	"github.com/tgienger/daybook/internal/models"
)

func countRows(t *testing.T, database *DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := database.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCreateGroup(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	g, err := database.CreateGroup("chores", ann.ID)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if g.Name != "chores" || g.LeaderID != ann.ID {
		t.Errorf("unexpected group: %+v", g)
	}

	member, err := database.IsGroupMember(g.ID, ann.ID)
	if err != nil || !member {
		t.Errorf("leader should be a member: %v, %v", member, err)
	}

	if _, err := database.CreateGroup("chores", ann.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate name, got %v", err)
	}
	if _, err := database.CreateGroup("orphans", 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing leader, got %v", err)
	}
	if _, err := database.CreateGroup("", ann.ID); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty name, got %v", err)
	}
	if n := countRows(t, database, "SELECT COUNT(*) FROM groups"); n != 1 {
		t.Errorf("expected 1 group, got %d", n)
	}
}

func TestCreateGroup_RollbackOnMemberFailure(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")

	_, err := database.Exec(`
		CREATE TRIGGER fail_membership BEFORE INSERT ON group_members
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END
	`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	for i := 0; i < 25; i++ {
		if _, err := database.CreateGroup("group", ann.ID); err == nil {
			t.Fatalf("trial %d: expected error from injected failure", i)
		}
		if n := countRows(t, database, "SELECT COUNT(*) FROM groups"); n != 0 {
			t.Fatalf("trial %d: leader-less group left behind (%d rows)", i, n)
		}
	}

	if _, err := database.Exec("DROP TRIGGER fail_membership"); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	if _, err := database.CreateGroup("group", ann.ID); err != nil {
		t.Fatalf("CreateGroup after failures: %v", err)
	}
}

func TestAddGroupMember_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	bob := createUser(t, database, "bob")
	g, err := database.CreateGroup("chores", ann.ID)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := database.AddGroupMember(g.ID, bob.ID); err != nil {
			t.Fatalf("AddGroupMember call %d: %v", i+1, err)
		}
	}
	n := countRows(t, database, "SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?", g.ID, bob.ID)
	if n != 1 {
		t.Errorf("expected exactly 1 membership row, got %d", n)
	}

	if err := database.AddGroupMember(g.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestGroupMembers(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	bob := createUser(t, database, "bob")
	g, _ := database.CreateGroup("chores", ann.ID)
	other, _ := database.CreateGroup("work", bob.ID)
	database.AddGroupMember(g.ID, bob.ID)

	members, err := database.ListGroupMembers(g.ID)
	if err != nil {
		t.Fatalf("ListGroupMembers: %v", err)
	}
	if len(members) != 2 || members[0].UserName != "ann" || members[1].UserName != "bob" {
		t.Errorf("unexpected members: %+v", members)
	}

	groups, err := database.ListGroupsForUser(bob.ID)
	if err != nil {
		t.Fatalf("ListGroupsForUser: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != g.ID || groups[1].ID != other.ID {
		t.Errorf("unexpected groups: %+v", groups)
	}

	if err := database.RemoveGroupMember(g.ID, ann.ID); !errors.Is(err, ErrInvalid) {
		t.Errorf("removing the leader: expected ErrInvalid, got %v", err)
	}
	if err := database.RemoveGroupMember(g.ID, bob.ID); err != nil {
		t.Fatalf("RemoveGroupMember: %v", err)
	}
	if err := database.RemoveGroupMember(g.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second removal: expected ErrNotFound, got %v", err)
	}

	byName, err := database.GetGroupByName("work")
	if err != nil || byName.ID != other.ID {
		t.Errorf("GetGroupByName = %+v, %v", byName, err)
	}
}

func TestDeleteGroup_Cascades(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	g, _ := database.CreateGroup("chores", ann.ID)
	if _, err := database.AddGroupTask(g.ID, ann.ID, nil, models.TaskInput{Title: "dishes"}); err != nil {
		t.Fatalf("AddGroupTask: %v", err)
	}

	if err := database.DeleteGroup(g.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if n := countRows(t, database, "SELECT COUNT(*) FROM group_tasks"); n != 0 {
		t.Errorf("group tasks not removed: %d", n)
	}
	if n := countRows(t, database, "SELECT COUNT(*) FROM group_members"); n != 0 {
		t.Errorf("memberships not removed: %d", n)
	}
	if _, err := database.GetGroup(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddGroupTask_DefaultPriority(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	g, _ := database.CreateGroup("chores", ann.ID)

	id, err := database.AddGroupTask(g.ID, ann.ID, nil, models.TaskInput{Title: "sweep"})
	if err != nil {
		t.Fatalf("AddGroupTask: %v", err)
	}
	got, err := database.GetGroupTask(id)
	if err != nil {
		t.Fatalf("GetGroupTask: %v", err)
	}
	if got.Priority != models.PriorityMedium {
		t.Errorf("priority = %v, want medium", got.Priority)
	}
}

func TestGroupTasks(t *testing.T) {
	database := setupTestDB(t)
	ann := createUser(t, database, "ann")
	bob := createUser(t, database, "bob")
	g, _ := database.CreateGroup("chores", ann.ID)

	march := models.YearMonth{Year: 2024, Month: time.March}
	id1, err := database.AddGroupTask(g.ID, ann.ID, &bob.ID, models.TaskInput{Title: "dishes", DueAt: due(2024, time.March, 5, 18)})
	if err != nil {
		t.Fatalf("AddGroupTask: %v", err)
	}
	if _, err := database.AddGroupTask(g.ID, ann.ID, nil, models.TaskInput{Title: "laundry", DueAt: due(2024, time.March, 2, 9)}); err != nil {
		t.Fatalf("AddGroupTask: %v", err)
	}
	if _, err := database.AddGroupTask(g.ID, ann.ID, &bob.ID, models.TaskInput{Title: "someday"}); err != nil {
		t.Fatalf("AddGroupTask: %v", err)
	}

	byGroup, err := database.ListGroupTasksForGroupMonth(g.ID, march)
	if err != nil {
		t.Fatalf("ListGroupTasksForGroupMonth: %v", err)
	}
	if len(byGroup) != 2 || byGroup[0].Title != "laundry" || byGroup[1].Title != "dishes" {
		t.Errorf("unexpected group month: %+v", byGroup)
	}

	byAssignee, err := database.ListGroupTasksForAssigneeMonth(bob.ID, march)
	if err != nil {
		t.Fatalf("ListGroupTasksForAssigneeMonth: %v", err)
	}
	if len(byAssignee) != 1 || byAssignee[0].ID != id1 || *byAssignee[0].AssigneeID != bob.ID {
		t.Errorf("unexpected assignee month: %+v", byAssignee)
	}

	all, _ := database.ListGroupTasksForAssignee(bob.ID)
	if len(all) != 2 {
		t.Errorf("expected 2 assigned tasks, got %d", len(all))
	}

	if err := database.AssignGroupTask(id1, nil); err != nil {
		t.Fatalf("AssignGroupTask: %v", err)
	}
	got, _ := database.GetGroupTask(id1)
	if got.AssigneeID != nil {
		t.Errorf("assignee not cleared: %v", *got.AssigneeID)
	}

	if err := database.UpdateGroupTaskCompletion(id1, true); err != nil {
		t.Fatalf("UpdateGroupTaskCompletion: %v", err)
	}
	got, _ = database.GetGroupTask(id1)
	if !got.Done || got.CreatorID != ann.ID {
		t.Errorf("unexpected task: %+v", got)
	}

	if err := database.DeleteGroupTask(id1); err != nil {
		t.Fatalf("DeleteGroupTask: %v", err)
	}
	if err := database.DeleteGroupTask(id1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupTasks_StrictAssignees(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		want   error
	}{
		{"permissive", false, nil},
		{"strict", true, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := setupTestDB(t)
			database.SetStrictAssignees(tt.strict)
			ann := createUser(t, database, "ann")
			outsider := createUser(t, database, "outsider")
			g, _ := database.CreateGroup("chores", ann.ID)

			_, err := database.AddGroupTask(g.ID, ann.ID, &outsider.ID, models.TaskInput{Title: "x"})
			if !errors.Is(err, tt.want) {
				t.Errorf("AddGroupTask: expected %v, got %v", tt.want, err)
			}

			id, err := database.AddGroupTask(g.ID, ann.ID, &ann.ID, models.TaskInput{Title: "y"})
			if err != nil {
				t.Fatalf("AddGroupTask with member: %v", err)
			}
			if err := database.AssignGroupTask(id, &outsider.ID); !errors.Is(err, tt.want) {
				t.Errorf("AssignGroupTask: expected %v, got %v", tt.want, err)
			}
		})
	}
}
