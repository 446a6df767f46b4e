package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/authz"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// InvitationTTL is the fixed validity window of an invitation.
	InvitationTTL = 7 * 24 * time.Hour

	inviteTokenBytes = 32
)

// InvitationService owns the invitation state machine: pending is the only
// live state; accepted, revoked and expired are terminal. Create, revoke,
// resend and list are owner-only; accept only requires a valid token and a
// matching account email.
type InvitationService struct {
	db    *gorm.DB
	roles *RoleService
	queue TaskQueue
}

func NewInvitationService(db *gorm.DB, queue TaskQueue) *InvitationService {
	return &InvitationService{
		db:    db,
		roles: NewRoleService(db),
		queue: queue,
	}
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type AcceptInvitationResult struct {
	Invitation *models.Invitation    `json:"invitation"`
	Membership *models.ProjectMember `json:"membership"`
}

// generateInviteToken returns a URL-safe bearer token from a
// cryptographically strong random source. The token is the only way to
// accept an invitation, so it must not be derivable from anything else.
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create issues a new invitation. Any prior pending invitation for the same
// (project, email) pair is superseded in the same transaction, so the pair
// never has two simultaneously-pending invitations.
func (s *InvitationService) Create(actorID, projectID uint, req *CreateInvitationRequest) (*models.Invitation, error) {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return nil, err
	}

	if !authz.ValidMemberRole(req.Role) {
		return nil, ValidationError("invalid role, must be 'collaborator', 'member' or 'viewer'")
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ValidationError("invited email is required")
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, storageError(err)
	}

	now := time.Now()
	invitation := &models.Invitation{
		ProjectID: projectID,
		Email:     email,
		Role:      req.Role,
		Token:     token,
		Status:    models.InvitationPending,
		InvitedBy: actorID,
		ExpiresAt: now.Add(InvitationTTL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Supersede any prior pending invitation for this pair.
		if err := tx.Model(&models.Invitation{}).
			Where("project_id = ? AND email = ? AND status = ?", projectID, email, models.InvitationPending).
			Update("status", models.InvitationRevoked).Error; err != nil {
			return err
		}
		return tx.Create(invitation).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent create for the same pair won the race; the partial
		// unique index on pending (project, email) rejected this one.
		return nil, Consistency("an invitation is already pending for this email")
	}
	if err != nil {
		return nil, storageError(err)
	}

	s.deliver(invitation)
	return invitation, nil
}

// List returns all invitations for a project, newest first. Owner only.
// Stored statuses are resolved lazily: a pending row past its expiry is
// reported as expired whether or not the sweep has run.
func (s *InvitationService) List(actorID, projectID uint) ([]models.Invitation, error) {
	if err := s.roles.RequireOwner(actorID, projectID); err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	if err := s.db.Where("project_id = ?", projectID).
		Preload("Inviter").
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, storageError(err)
	}

	now := time.Now()
	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus(now)
	}
	return invitations, nil
}

// ListMine returns the caller's pending, unexpired invitations keyed by
// their verified account email.
func (s *InvitationService) ListMine(email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := s.db.Where("email = ? AND status = ? AND expires_at > ?",
		normalizeEmail(email), models.InvitationPending, time.Now()).
		Preload("Project").
		Preload("Inviter").
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, storageError(err)
	}
	return invitations, nil
}

// GetByToken looks up an invitation by its bearer token for the public
// landing page. The status is resolved lazily.
func (s *InvitationService) GetByToken(token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.Where("token = ?", token).
		Preload("Project").
		Preload("Inviter").
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("invitation not found")
	}
	if err != nil {
		return nil, storageError(err)
	}

	invitation.Status = invitation.EffectiveStatus(time.Now())
	return &invitation, nil
}

// Accept consumes an invitation on behalf of the authenticated user. The
// status flip and the membership upsert run in one transaction behind a
// compare-and-swap on the pending status, so concurrent accepts on the same
// token produce exactly one success; the rest observe AlreadyConsumed.
func (s *InvitationService) Accept(actorID uint, token string) (*AcceptInvitationResult, error) {
	var user models.User
	if err := s.db.First(&user, actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, storageError(err)
	}

	var invitation models.Invitation
	err := s.db.Where("token = ?", token).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("invitation not found")
	}
	if err != nil {
		return nil, storageError(err)
	}

	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, EmailMismatch("this invitation was sent to a different email address")
	}

	now := time.Now()
	var membership models.ProjectMember

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// CAS on the pending status; only one concurrent accept can win.
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ? AND expires_at > ?", invitation.ID, models.InvitationPending, now).
			Updates(map[string]interface{}{
				"status":      models.InvitationAccepted,
				"accepted_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race or the window closed; re-read to report why.
			var current models.Invitation
			if err := tx.First(&current, invitation.ID).Error; err != nil {
				return err
			}
			switch current.EffectiveStatus(now) {
			case models.InvitationExpired:
				return Expired("this invitation has expired")
			case models.InvitationAccepted:
				return AlreadyConsumed("this invitation has already been accepted")
			case models.InvitationRevoked:
				return AlreadyConsumed("this invitation has been revoked")
			default:
				return InvalidState("invitation is not pending")
			}
		}

		// Upsert so a double accept converges on one membership row instead
		// of tripping the unique (project, user) constraint.
		membership = models.ProjectMember{
			ProjectID: invitation.ProjectID,
			UserID:    actorID,
			Role:      invitation.Role,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "deleted_at", "updated_at"}),
		}).Create(&membership).Error
	})
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, storageError(err)
	}

	invitation.Status = models.InvitationAccepted
	invitation.AcceptedAt = &now

	logger.Info().
		Uint("user_id", actorID).
		Uint("project_id", invitation.ProjectID).
		Str("role", invitation.Role).
		Msg("invitation accepted")

	return &AcceptInvitationResult{Invitation: &invitation, Membership: &membership}, nil
}

// Revoke moves a pending invitation to revoked. Owner only. Revoking an
// invitation in any terminal state, including a lazily-expired one, is an
// error rather than a silent success.
func (s *InvitationService) Revoke(actorID, invitationID uint) (*models.Invitation, error) {
	invitation, err := s.getForOwner(actorID, invitationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if status := invitation.EffectiveStatus(now); status != models.InvitationPending {
		return nil, InvalidState("cannot revoke an invitation in status '" + status + "'")
	}

	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ? AND expires_at > ?", invitation.ID, models.InvitationPending, now).
		Update("status", models.InvitationRevoked)
	if res.Error != nil {
		return nil, storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, InvalidState("invitation is no longer pending")
	}

	invitation.Status = models.InvitationRevoked
	return invitation, nil
}

// Resend refreshes an invitation's expiry window and re-delivers the
// notification. An expired invitation resends too, with a fresh token so a
// possibly-leaked stale link cannot come back to life. The decision is made
// on the effective status, so the outcome is the same whether the background
// sweep has flipped the stored status or the expiry was only observed lazily.
// Accepted and revoked invitations cannot be resent.
func (s *InvitationService) Resend(actorID, invitationID uint) (*models.Invitation, error) {
	invitation, err := s.getForOwner(actorID, invitationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := invitation.EffectiveStatus(now)
	if status != models.InvitationPending && status != models.InvitationExpired {
		return nil, InvalidState("cannot resend an invitation in status '" + status + "'")
	}

	updates := map[string]interface{}{
		"status":     models.InvitationPending,
		"expires_at": now.Add(InvitationTTL),
	}
	if status == models.InvitationExpired {
		token, err := generateInviteToken()
		if err != nil {
			return nil, storageError(err)
		}
		updates["token"] = token
		invitation.Token = token
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Reviving an expired row must not leave a second pending invitation
		// for the same (project, email) pair.
		if err := tx.Model(&models.Invitation{}).
			Where("project_id = ? AND email = ? AND status = ? AND id <> ?",
				invitation.ProjectID, invitation.Email, models.InvitationPending, invitation.ID).
			Update("status", models.InvitationRevoked).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status IN ?", invitation.ID,
				[]string{models.InvitationPending, models.InvitationExpired}).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return InvalidState("invitation was accepted or revoked in the meantime")
		}
		return nil
	})
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Consistency("an invitation is already pending for this email")
		}
		return nil, storageError(err)
	}

	invitation.Status = models.InvitationPending
	invitation.ExpiresAt = updates["expires_at"].(time.Time)
	s.deliver(invitation)
	return invitation, nil
}

// ExpireStale flips stored pending invitations past their expiry to expired.
// This is an opportunistic sweep; reads never depend on it because expiry is
// also evaluated lazily.
func (s *InvitationService) ExpireStale() (int64, error) {
	res := s.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at <= ?", models.InvitationPending, time.Now()).
		Update("status", models.InvitationExpired)
	if res.Error != nil {
		return 0, storageError(res.Error)
	}
	return res.RowsAffected, nil
}

// getForOwner loads an invitation and verifies the actor owns its project.
func (s *InvitationService) getForOwner(actorID, invitationID uint) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.First(&invitation, invitationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("invitation not found")
	}
	if err != nil {
		return nil, storageError(err)
	}

	if err := s.roles.RequireOwner(actorID, invitation.ProjectID); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// deliver queues the notification email. Delivery is best-effort: a failure
// here is logged and never rolled back against the lifecycle state that
// already committed.
func (s *InvitationService) deliver(invitation *models.Invitation) {
	if s.queue == nil {
		return
	}
	task := &EmailTask{InvitationID: invitation.ID}
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warn().
			Err(err).
			Uint("invitation_id", invitation.ID).
			Msg("failed to queue invitation email, invitation remains valid")
	}
}
