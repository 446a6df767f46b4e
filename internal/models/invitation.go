package models

import (
	"time"

	"gorm.io/gorm"
)

// Invitation statuses. pending is the only non-terminal state.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

// Invitation offers a role in a project to an email address. The token is a
// bearer credential; rows are kept after acceptance or revocation as audit
// history and only disappear with their project.
type Invitation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"index:idx_invitation_project_email;not null" json:"project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email      string         `gorm:"index:idx_invitation_project_email;size:255;not null" json:"email"`
	Role       string         `gorm:"size:50;not null" json:"role"` // collaborator, member, viewer
	Token      string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status     string         `gorm:"size:20;default:pending;index" json:"status"`
	InvitedBy  uint           `gorm:"not null" json:"invited_by"`
	Inviter    *User          `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	ExpiresAt  time.Time      `gorm:"index;not null" json:"expires_at"`
	AcceptedAt *time.Time     `json:"accepted_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Invitation) TableName() string { return "invitations" }

// Expired reports whether the invitation's window has passed, regardless of
// the stored status. Reads must treat a stale pending row as expired even if
// no background sweep has flipped it yet.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// EffectiveStatus resolves lazy expiration: a pending invitation past its
// expiry reports as expired.
func (i *Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationPending && i.Expired(now) {
		return InvitationExpired
	}
	return i.Status
}
