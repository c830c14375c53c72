package model

import "time"

// InvitationStatus tracks a collaborator invitation through its life.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationApproved InvitationStatus = "approved"
	InvitationRevoked  InvitationStatus = "revoked"
)

// InvitationRole is the access level an invitation grants.
type InvitationRole string

const (
	RoleViewer  InvitationRole = "viewer"
	RoleAnalyst InvitationRole = "analyst"
	RoleAdmin   InvitationRole = "admin"
)

// Invitation is a pending or resolved request to share a deal's
// analysis with an outside party (lender, co-investor, operator).
type Invitation struct {
	ID        string           `json:"id"`
	DealID    string           `json:"deal_id,omitempty"`
	Email     string           `json:"email"`
	Role      InvitationRole   `json:"role"`
	Status    InvitationStatus `json:"status"`
	InvitedBy string           `json:"invited_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CanTransition reports whether an invitation may move to next.
// Pending resolves to approved or revoked; approved may still be
// revoked; revoked is terminal.
func (i Invitation) CanTransition(next InvitationStatus) bool {
	switch i.Status {
	case InvitationPending:
		return next == InvitationApproved || next == InvitationRevoked
	case InvitationApproved:
		return next == InvitationRevoked
	default:
		return false
	}
}

// ValidInvitationRole reports whether r is a known role.
func ValidInvitationRole(r InvitationRole) bool {
	switch r {
	case RoleViewer, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}
