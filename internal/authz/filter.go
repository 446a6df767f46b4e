package authz

import "github.com/taskhive/taskhive/internal/models"

// FilterTasks reduces a project task list to the subset visible to a user
// with the given role. The role is resolved once by the caller, not per task,
// so a bulk listing cannot observe a role change mid-filter.
//
// Members see only tasks they created or are assigned to. Owners,
// collaborators and viewers see the full list; users without a role see
// nothing.
func FilterTasks(role Role, userID uint, tasks []models.Task) []models.Task {
	switch role {
	case RoleOwner, RoleCollaborator, RoleViewer:
		return tasks
	case RoleMember:
		visible := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.CreatorID == userID || (t.AssigneeID != nil && *t.AssigneeID == userID) {
				visible = append(visible, t)
			}
		}
		return visible
	}
	return []models.Task{}
}
