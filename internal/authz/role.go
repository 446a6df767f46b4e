package authz

// Role scopes what a user may do within one project. The owner role is
// derived from Project.OwnerID and is never stored in a membership row.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCollaborator Role = "collaborator"
	RoleMember       Role = "member"
	RoleViewer       Role = "viewer"

	// RoleNone means the user has no membership in the project.
	RoleNone Role = ""
)

// ValidMemberRole reports whether s names a role that may be granted through
// membership or invitation. Owner is deliberately excluded: a project has
// exactly one owner, set at creation.
func ValidMemberRole(s string) bool {
	switch Role(s) {
	case RoleCollaborator, RoleMember, RoleViewer:
		return true
	}
	return false
}
