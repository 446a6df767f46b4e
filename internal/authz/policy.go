package authz

import "errors"

// Action identifies an operation checked against the policy table.
type Action string

const (
	ViewProject    Action = "project:view"
	EditProject    Action = "project:edit"
	ArchiveProject Action = "project:archive"
	DeleteProject  Action = "project:delete"
	ManageMembers  Action = "project:manage_members"
)

// ErrMissingFacts is returned when a task-level check is attempted without
// the task's ownership facts. Access denial is never an error; a malformed
// call is.
var ErrMissingFacts = errors.New("authz: missing task facts")

// TaskFacts are the per-resource facts the evaluator needs. A nil ProjectID
// marks a personal task.
type TaskFacts struct {
	ProjectID  *uint
	CreatorID  uint
	AssigneeID *uint
}

// Personal reports whether the task belongs to no project.
func (f *TaskFacts) Personal() bool { return f.ProjectID == nil }

// owned reports whether userID is the creator or the assignee of the task.
// This is the one place a role interacts with per-resource facts: a member
// who is neither creator nor assignee sees and touches nothing.
func (f *TaskFacts) owned(userID uint) bool {
	if f.CreatorID == userID {
		return true
	}
	return f.AssigneeID != nil && *f.AssigneeID == userID
}

// projectPolicy is the flat role/action table for project-level operations.
var projectPolicy = map[Action]map[Role]bool{
	ViewProject:    {RoleOwner: true, RoleCollaborator: true, RoleMember: true, RoleViewer: true},
	EditProject:    {RoleOwner: true, RoleCollaborator: true},
	ArchiveProject: {RoleOwner: true},
	DeleteProject:  {RoleOwner: true},
	ManageMembers:  {RoleOwner: true},
}

// CanProject evaluates a project-level action for a role.
func CanProject(role Role, action Action) bool {
	allowed, ok := projectPolicy[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// CanViewTask evaluates read access to a task. Personal tasks are visible to
// their creator only, regardless of any role.
func CanViewTask(role Role, userID uint, facts *TaskFacts) (bool, error) {
	if facts == nil {
		return false, ErrMissingFacts
	}
	if facts.Personal() {
		return facts.CreatorID == userID, nil
	}
	switch role {
	case RoleOwner, RoleCollaborator, RoleViewer:
		return true, nil
	case RoleMember:
		return facts.owned(userID), nil
	}
	return false, nil
}

// CanCreateTask evaluates whether a user may create a task in a project with
// the given initial assignee. A member may only assign to themselves or leave
// the task unassigned; viewers may not create at all.
func CanCreateTask(role Role, userID uint, assigneeID *uint) bool {
	switch role {
	case RoleOwner, RoleCollaborator:
		return true
	case RoleMember:
		return assigneeID == nil || *assigneeID == userID
	}
	return false
}

// CanEditTask evaluates write access to a task's fields.
func CanEditTask(role Role, userID uint, facts *TaskFacts) (bool, error) {
	if facts == nil {
		return false, ErrMissingFacts
	}
	if facts.Personal() {
		return facts.CreatorID == userID, nil
	}
	switch role {
	case RoleOwner, RoleCollaborator:
		return true, nil
	case RoleMember:
		return facts.owned(userID), nil
	}
	return false, nil
}

// CanDeleteTask evaluates task deletion. Members may never delete project
// tasks, not even their own.
func CanDeleteTask(role Role, userID uint, facts *TaskFacts) (bool, error) {
	if facts == nil {
		return false, ErrMissingFacts
	}
	if facts.Personal() {
		return facts.CreatorID == userID, nil
	}
	switch role {
	case RoleOwner, RoleCollaborator:
		return true, nil
	}
	return false, nil
}

// CanAssignTask evaluates a change of assignee to target (nil clears the
// assignee). Owners and collaborators may pick any target; a member may only
// reassign their own task to themselves or clear it.
func CanAssignTask(role Role, userID uint, facts *TaskFacts, target *uint) (bool, error) {
	if facts == nil {
		return false, ErrMissingFacts
	}
	if facts.Personal() {
		// Same rule as creation: a personal task stays with its creator, so
		// it can never be parked on someone who cannot see it.
		if facts.CreatorID != userID {
			return false, nil
		}
		return target == nil || *target == userID, nil
	}
	switch role {
	case RoleOwner, RoleCollaborator:
		return true, nil
	case RoleMember:
		if !facts.owned(userID) {
			return false, nil
		}
		return target == nil || *target == userID, nil
	}
	return false, nil
}
