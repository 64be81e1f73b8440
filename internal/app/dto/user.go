package dto

import (
	"time"

	"travelnest/internal/domain/membership"
	domainuser "travelnest/internal/domain/user"
)

type UserProfile struct {
	ID         string           `json:"id"`
	Email      string           `json:"email"`
	Name       string           `json:"name"`
	Roles      []string         `json:"roles"`
	Membership MembershipStatus `json:"membership"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

type MembershipStatus struct {
	Status                string     `json:"status"`
	Active                bool       `json:"active"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	FreeCancellationsUsed int        `json:"free_cancellations_used"`
	FreeCancellationsLeft int        `json:"free_cancellations_left"`
	ResetAt               *time.Time `json:"reset_at,omitempty"`
}

// MapMembership reports the state as of now, after a lazy quota rollover.
func MapMembership(ledger membership.Ledger, state membership.State, now time.Time) MembershipStatus {
	state = ledger.EnsureResetWindow(state, now)
	out := MembershipStatus{
		Status:                string(ledger.Status(state, now)),
		Active:                ledger.IsActive(state, now),
		FreeCancellationsUsed: state.FreeCancellationsUsed,
		FreeCancellationsLeft: ledger.FreeCancellationsLeft(state, now),
	}
	if !state.ExpiresAt.IsZero() {
		at := state.ExpiresAt
		out.ExpiresAt = &at
	}
	if !state.ResetAt.IsZero() {
		at := state.ResetAt
		out.ResetAt = &at
	}
	return out
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return UserProfile{
		ID:         string(user.ID),
		Email:      user.Email,
		Name:       user.Name,
		Roles:      roles,
		Membership: MapMembership(membership.DefaultLedger(), user.Membership, time.Now().UTC()),
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{
		User:  MapUserProfile(user),
		Token: token,
	}
}
