package authz

import (
	"testing"

	"github.com/taskhive/taskhive/internal/models"
)

func sampleTasks() []models.Task {
	pid := uint(1)
	a42 := uint(42)
	a10 := uint(10)
	return []models.Task{
		{ID: 1, ProjectID: &pid, CreatorID: 10, Title: "created by 10"},
		{ID: 2, ProjectID: &pid, CreatorID: 99, AssigneeID: &a10, Title: "assigned to 10"},
		{ID: 3, ProjectID: &pid, CreatorID: 99, AssigneeID: &a42, Title: "someone else's"},
		{ID: 4, ProjectID: &pid, CreatorID: 99, Title: "unassigned"},
	}
}

func TestFilterTasks_FullListRoles(t *testing.T) {
	tasks := sampleTasks()

	for _, role := range []Role{RoleOwner, RoleCollaborator, RoleViewer} {
		got := FilterTasks(role, 10, tasks)
		if len(got) != len(tasks) {
			t.Errorf("FilterTasks(%q) returned %d tasks, expected %d", role, len(got), len(tasks))
		}
	}
}

func TestFilterTasks_Member(t *testing.T) {
	got := FilterTasks(RoleMember, 10, sampleTasks())

	if len(got) != 2 {
		t.Fatalf("member should see 2 tasks, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("member sees tasks %d,%d, expected 1,2", got[0].ID, got[1].ID)
	}
}

func TestFilterTasks_NoRole(t *testing.T) {
	got := FilterTasks(RoleNone, 10, sampleTasks())
	if len(got) != 0 {
		t.Errorf("user without membership should see no tasks, got %d", len(got))
	}
}

func TestFilterTasks_Empty(t *testing.T) {
	if got := FilterTasks(RoleMember, 10, nil); len(got) != 0 {
		t.Errorf("empty input should yield empty output, got %d", len(got))
	}
}
