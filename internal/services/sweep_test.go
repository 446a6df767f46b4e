package services

import (
	"testing"
	"time"

	"github.com/taskhive/taskhive/internal/models"
)

func TestSweeperRun_FlipsStaleInvitations(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	project := createTestProject(t, db, "Alpha", owner.ID)

	svc := NewInvitationService(db, nil)
	inv, _ := svc.Create(owner.ID, project.ID, &CreateInvitationRequest{Email: "guest@example.com", Role: "member"})
	db.Model(&models.Invitation{}).Where("id = ?", inv.ID).
		Update("expires_at", time.Now().Add(-time.Hour))

	sweeper := NewInvitationSweeper(db)
	sweeper.Run()

	var stored models.Invitation
	db.First(&stored, inv.ID)
	if stored.Status != models.InvitationExpired {
		t.Errorf("status after sweep = %q, expected expired", stored.Status)
	}
}

func TestSweeperLock_SingleHolderPerWindow(t *testing.T) {
	db := newTestDB(t)

	first := NewInvitationSweeper(db)
	second := NewInvitationSweeper(db)

	if !first.acquireLock() {
		t.Fatal("first acquireLock() should succeed")
	}
	if second.acquireLock() {
		t.Error("second acquireLock() in the same window should fail")
	}
}

func TestSweeperLock_StaleLockReclaimed(t *testing.T) {
	db := newTestDB(t)

	stale := models.SchedulerLock{
		LockName:  sweepLockName,
		LockKey:   time.Now().Format("2006-01-02T15"),
		LockedAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-30 * time.Minute),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("failed to seed stale lock: %v", err)
	}

	sweeper := NewInvitationSweeper(db)
	if !sweeper.acquireLock() {
		t.Error("acquireLock() should reclaim an expired lock")
	}
}
