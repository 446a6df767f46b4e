package authz

import "testing"

func uintPtr(v uint) *uint { return &v }

var allRoles = []Role{RoleOwner, RoleCollaborator, RoleMember, RoleViewer, RoleNone}

func TestValidMemberRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{"collaborator", true},
		{"member", true},
		{"viewer", true},
		{"owner", false},
		{"admin", false},
		{"", false},
		{"Member", false},
	}

	for _, tt := range tests {
		if got := ValidMemberRole(tt.role); got != tt.expected {
			t.Errorf("ValidMemberRole(%q) = %v, expected %v", tt.role, got, tt.expected)
		}
	}
}

func TestCanProject_Matrix(t *testing.T) {
	// Full project-level policy table: owner, collaborator, member, viewer, none.
	tests := []struct {
		action  Action
		allowed map[Role]bool
	}{
		{ViewProject, map[Role]bool{RoleOwner: true, RoleCollaborator: true, RoleMember: true, RoleViewer: true, RoleNone: false}},
		{EditProject, map[Role]bool{RoleOwner: true, RoleCollaborator: true, RoleMember: false, RoleViewer: false, RoleNone: false}},
		{ArchiveProject, map[Role]bool{RoleOwner: true, RoleCollaborator: false, RoleMember: false, RoleViewer: false, RoleNone: false}},
		{DeleteProject, map[Role]bool{RoleOwner: true, RoleCollaborator: false, RoleMember: false, RoleViewer: false, RoleNone: false}},
		{ManageMembers, map[Role]bool{RoleOwner: true, RoleCollaborator: false, RoleMember: false, RoleViewer: false, RoleNone: false}},
	}

	for _, tt := range tests {
		for _, role := range allRoles {
			if got := CanProject(role, tt.action); got != tt.allowed[role] {
				t.Errorf("CanProject(%q, %q) = %v, expected %v", role, tt.action, got, tt.allowed[role])
			}
		}
	}
}

func TestCanProject_UnknownAction(t *testing.T) {
	if CanProject(RoleOwner, Action("project:nuke")) {
		t.Error("unknown action should be denied even for owner")
	}
}

func TestTaskChecks_Matrix(t *testing.T) {
	const self = uint(10)
	projectID := uintPtr(1)

	mine := &TaskFacts{ProjectID: projectID, CreatorID: self}
	assignedToMe := &TaskFacts{ProjectID: projectID, CreatorID: 99, AssigneeID: uintPtr(self)}
	others := &TaskFacts{ProjectID: projectID, CreatorID: 99, AssigneeID: uintPtr(42)}

	tests := []struct {
		name  string
		check func(Role, *TaskFacts) (bool, error)
		// verdicts per role for: task-is-mine, task-assigned-to-me, task-is-others
		verdicts map[Role][3]bool
	}{
		{
			name:  "view",
			check: func(r Role, f *TaskFacts) (bool, error) { return CanViewTask(r, self, f) },
			verdicts: map[Role][3]bool{
				RoleOwner:        {true, true, true},
				RoleCollaborator: {true, true, true},
				RoleMember:       {true, true, false},
				RoleViewer:       {true, true, true},
				RoleNone:         {false, false, false},
			},
		},
		{
			name:  "edit",
			check: func(r Role, f *TaskFacts) (bool, error) { return CanEditTask(r, self, f) },
			verdicts: map[Role][3]bool{
				RoleOwner:        {true, true, true},
				RoleCollaborator: {true, true, true},
				RoleMember:       {true, true, false},
				RoleViewer:       {false, false, false},
				RoleNone:         {false, false, false},
			},
		},
		{
			name:  "delete",
			check: func(r Role, f *TaskFacts) (bool, error) { return CanDeleteTask(r, self, f) },
			verdicts: map[Role][3]bool{
				RoleOwner:        {true, true, true},
				RoleCollaborator: {true, true, true},
				RoleMember:       {false, false, false},
				RoleViewer:       {false, false, false},
				RoleNone:         {false, false, false},
			},
		},
	}

	facts := []*TaskFacts{mine, assignedToMe, others}
	factNames := []string{"mine", "assigned-to-me", "others"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, role := range allRoles {
				for i, f := range facts {
					got, err := tt.check(role, f)
					if err != nil {
						t.Fatalf("%s(%q, %s) unexpected error: %v", tt.name, role, factNames[i], err)
					}
					if got != tt.verdicts[role][i] {
						t.Errorf("%s(%q, %s) = %v, expected %v", tt.name, role, factNames[i], got, tt.verdicts[role][i])
					}
				}
			}
		})
	}
}

func TestCanCreateTask(t *testing.T) {
	const self = uint(10)

	tests := []struct {
		role     Role
		assignee *uint
		expected bool
	}{
		{RoleOwner, uintPtr(42), true},
		{RoleOwner, nil, true},
		{RoleCollaborator, uintPtr(42), true},
		{RoleMember, nil, true},
		{RoleMember, uintPtr(self), true},
		{RoleMember, uintPtr(42), false},
		{RoleViewer, nil, false},
		{RoleViewer, uintPtr(self), false},
		{RoleNone, nil, false},
	}

	for _, tt := range tests {
		if got := CanCreateTask(tt.role, self, tt.assignee); got != tt.expected {
			t.Errorf("CanCreateTask(%q, assignee=%v) = %v, expected %v", tt.role, tt.assignee, got, tt.expected)
		}
	}
}

func TestCanAssignTask(t *testing.T) {
	const self = uint(10)
	projectID := uintPtr(1)

	mine := &TaskFacts{ProjectID: projectID, CreatorID: self}
	others := &TaskFacts{ProjectID: projectID, CreatorID: 99, AssigneeID: uintPtr(42)}

	tests := []struct {
		name     string
		role     Role
		facts    *TaskFacts
		target   *uint
		expected bool
	}{
		{"owner any target", RoleOwner, others, uintPtr(77), true},
		{"collaborator any target", RoleCollaborator, others, uintPtr(77), true},
		{"member own task to self", RoleMember, mine, uintPtr(self), true},
		{"member own task clear", RoleMember, mine, nil, true},
		{"member own task to other", RoleMember, mine, uintPtr(42), false},
		{"member others task", RoleMember, others, uintPtr(self), false},
		{"viewer", RoleViewer, mine, nil, false},
		{"no membership", RoleNone, mine, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanAssignTask(tt.role, self, tt.facts, tt.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CanAssignTask = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPersonalTask_BypassesRoles(t *testing.T) {
	const creator = uint(10)
	const stranger = uint(20)
	personal := &TaskFacts{ProjectID: nil, CreatorID: creator}

	// Even an owner-level role grants nothing on someone else's personal task.
	for _, role := range allRoles {
		if ok, _ := CanViewTask(role, stranger, personal); ok {
			t.Errorf("role %q should not view another user's personal task", role)
		}
		if ok, _ := CanEditTask(role, stranger, personal); ok {
			t.Errorf("role %q should not edit another user's personal task", role)
		}
		if ok, _ := CanDeleteTask(role, stranger, personal); ok {
			t.Errorf("role %q should not delete another user's personal task", role)
		}
	}

	// The creator needs no role at all.
	if ok, _ := CanViewTask(RoleNone, creator, personal); !ok {
		t.Error("creator should view their personal task without any role")
	}
	if ok, _ := CanEditTask(RoleNone, creator, personal); !ok {
		t.Error("creator should edit their personal task without any role")
	}
	if ok, _ := CanDeleteTask(RoleNone, creator, personal); !ok {
		t.Error("creator should delete their personal task without any role")
	}
	if ok, _ := CanAssignTask(RoleNone, creator, personal, nil); !ok {
		t.Error("creator should reassign their personal task without any role")
	}
}

func TestPersonalTask_AssignStaysWithCreator(t *testing.T) {
	const creator = uint(10)
	const other = uint(20)
	personal := &TaskFacts{ProjectID: nil, CreatorID: creator}

	// Mirrors the creation rule: a personal task can never be handed to a
	// user who cannot see it.
	if ok, _ := CanAssignTask(RoleNone, creator, personal, uintPtr(other)); ok {
		t.Error("creator should not assign a personal task to another user")
	}
	if ok, _ := CanAssignTask(RoleNone, creator, personal, uintPtr(creator)); !ok {
		t.Error("creator should keep a personal task assigned to themselves")
	}
	if ok, _ := CanAssignTask(RoleNone, creator, personal, nil); !ok {
		t.Error("creator should clear a personal task's assignee")
	}
}

func TestTaskChecks_MissingFacts(t *testing.T) {
	if _, err := CanViewTask(RoleOwner, 1, nil); err != ErrMissingFacts {
		t.Errorf("CanViewTask(nil facts) error = %v, expected ErrMissingFacts", err)
	}
	if _, err := CanEditTask(RoleOwner, 1, nil); err != ErrMissingFacts {
		t.Errorf("CanEditTask(nil facts) error = %v, expected ErrMissingFacts", err)
	}
	if _, err := CanDeleteTask(RoleOwner, 1, nil); err != ErrMissingFacts {
		t.Errorf("CanDeleteTask(nil facts) error = %v, expected ErrMissingFacts", err)
	}
	if _, err := CanAssignTask(RoleOwner, 1, nil, nil); err != ErrMissingFacts {
		t.Errorf("CanAssignTask(nil facts) error = %v, expected ErrMissingFacts", err)
	}
}
