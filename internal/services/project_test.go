package services

import (
	"testing"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
)

func TestProjectListMine(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	other := createTestUser(t, db, "other", "other@example.com")
	mine := createTestProject(t, db, "Mine", owner.ID)
	theirs := createTestProject(t, db, "Theirs", other.ID)
	addTestMember(t, db, theirs.ID, owner.ID, "viewer")

	items, err := NewProjectService(db).ListMine(owner.ID)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListMine() returned %d projects, expected 2", len(items))
	}

	rolesByID := map[uint]authz.Role{}
	for _, item := range items {
		rolesByID[item.ID] = item.Role
	}
	if rolesByID[mine.ID] != authz.RoleOwner {
		t.Errorf("role in owned project = %q, expected owner", rolesByID[mine.ID])
	}
	if rolesByID[theirs.ID] != authz.RoleViewer {
		t.Errorf("role in joined project = %q, expected viewer", rolesByID[theirs.ID])
	}
}

func TestProjectUpdate_CollaboratorAllowedViewerDenied(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	collab := createTestUser(t, db, "collab", "collab@example.com")
	viewer := createTestUser(t, db, "viewer", "viewer@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)
	addTestMember(t, db, project.ID, collab.ID, "collaborator")
	addTestMember(t, db, project.ID, viewer.ID, "viewer")

	svc := NewProjectService(db)
	name := "Renamed"

	if _, err := svc.Update(collab.ID, project.ID, &UpdateProjectRequest{Name: &name}); err != nil {
		t.Errorf("Update(collaborator) error = %v", err)
	}

	_, err := svc.Update(viewer.ID, project.ID, &UpdateProjectRequest{Name: &name})
	if !IsKind(err, KindPermissionDenied) {
		t.Errorf("Update(viewer) error kind = %v, expected permission_denied", KindOf(err))
	}
}

func TestProjectArchive_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	collab := createTestUser(t, db, "collab", "collab@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)
	addTestMember(t, db, project.ID, collab.ID, "collaborator")

	svc := NewProjectService(db)

	_, err := svc.SetArchived(collab.ID, project.ID, true)
	if !IsKind(err, KindPermissionDenied) {
		t.Errorf("SetArchived(collaborator) error kind = %v, expected permission_denied", KindOf(err))
	}

	archived, err := svc.SetArchived(owner.ID, project.ID, true)
	if err != nil {
		t.Fatalf("SetArchived(owner) error = %v", err)
	}
	if !archived.Archived {
		t.Error("project should be archived")
	}
}

func TestProjectDelete_Cascades(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	member := createTestUser(t, db, "member", "member@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)
	addTestMember(t, db, project.ID, member.ID, "member")

	invSvc := NewInvitationService(db, nil)
	invSvc.Create(owner.ID, project.ID, &CreateInvitationRequest{Email: "guest@example.com", Role: "viewer"})
	NewTaskService(db).Create(owner.ID, &CreateTaskRequest{ProjectID: &project.ID, Title: "t"})

	if err := NewProjectService(db).Delete(owner.ID, project.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var members, invitations, tasks int64
	db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&members)
	db.Model(&models.Invitation{}).Where("project_id = ?", project.ID).Count(&invitations)
	db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks)

	if members != 0 || invitations != 0 || tasks != 0 {
		t.Errorf("cascade left members=%d invitations=%d tasks=%d, expected all 0",
			members, invitations, tasks)
	}
}

func TestProjectTransferOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	successor := createTestUser(t, db, "successor", "successor@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)
	addTestMember(t, db, project.ID, successor.ID, "member")

	svc := NewProjectService(db)
	updated, err := svc.TransferOwnership(owner.ID, project.ID, successor.ID)
	if err != nil {
		t.Fatalf("TransferOwnership() error = %v", err)
	}
	if updated.OwnerID != successor.ID {
		t.Errorf("OwnerID = %d, expected %d", updated.OwnerID, successor.ID)
	}

	roles := NewRoleService(db)

	// The new owner resolves as owner with no leftover membership row.
	role, _ := roles.Resolve(successor.ID, project.ID)
	if role != authz.RoleOwner {
		t.Errorf("new owner role = %q, expected owner", role)
	}
	var rows int64
	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, successor.ID).
		Count(&rows)
	if rows != 0 {
		t.Errorf("new owner still has %d membership rows, expected 0", rows)
	}

	// The previous owner stays on the project as a collaborator.
	role, _ = roles.Resolve(owner.ID, project.ID)
	if role != authz.RoleCollaborator {
		t.Errorf("previous owner role = %q, expected collaborator", role)
	}
}

func TestProjectTransferOwnership_SelfRejected(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)

	_, err := NewProjectService(db).TransferOwnership(owner.ID, project.ID, owner.ID)
	if !IsKind(err, KindValidation) {
		t.Errorf("TransferOwnership(self) error kind = %v, expected validation", KindOf(err))
	}
}
