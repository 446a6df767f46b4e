package services

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

const (
	sweepLockName = "invitation_sweep"
	sweepLockTTL  = 10 * time.Minute
)

// InvitationSweeper opportunistically flips stored pending invitations past
// their expiry to expired. Expiry is also evaluated lazily on every read, so
// the sweep only keeps the stored statuses and the pending-invitation
// listings tidy; nothing depends on it for correctness.
type InvitationSweeper struct {
	db          *gorm.DB
	invitations *InvitationService
	scheduler   *cron.Cron
}

func NewInvitationSweeper(db *gorm.DB) *InvitationSweeper {
	return &InvitationSweeper{
		db:          db,
		invitations: NewInvitationService(db, nil),
	}
}

// Start schedules the hourly sweep.
func (s *InvitationSweeper) Start() {
	s.scheduler = cron.New()
	s.scheduler.AddFunc("@hourly", s.Run)
	s.scheduler.Start()
	logger.Infof("[Sweep] Invitation expiry sweep scheduled hourly")
}

// Stop halts the scheduler.
func (s *InvitationSweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Run executes one sweep pass, guarded by the scheduler lock so only one
// instance sweeps when several replicas share a database.
func (s *InvitationSweeper) Run() {
	if !s.acquireLock() {
		return
	}

	flipped, err := s.invitations.ExpireStale()
	if err != nil {
		LogError("Invitations", "Sweep", "invitation expiry sweep failed: "+err.Error(),
			nil, "", "", nil)
		return
	}
	if flipped > 0 {
		logger.Infof("[Sweep] Marked %d invitations as expired", flipped)
	}
}

// acquireLock claims the sweep lock for this pass. The unique index on
// (lock_name, lock_key) makes the claim race-safe across instances.
func (s *InvitationSweeper) acquireLock() bool {
	now := time.Now()

	// Clear a stale holder before trying to claim.
	s.db.Where("lock_name = ? AND expires_at <= ?", sweepLockName, now).
		Delete(&models.SchedulerLock{})

	hostname, _ := os.Hostname()
	lock := models.SchedulerLock{
		LockName:  sweepLockName,
		LockKey:   now.Format("2006-01-02T15"),
		LockedBy:  hostname,
		LockedAt:  now,
		ExpiresAt: now.Add(sweepLockTTL),
	}
	return s.db.Create(&lock).Error == nil
}
