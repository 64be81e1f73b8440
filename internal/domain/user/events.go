package user

import "time"

const EventMembershipActivated = "membership.activated"

type MembershipActivated struct {
	UserID    ID        `json:"user_id"`
	PaymentID string    `json:"payment_id"`
	ExpiresAt time.Time `json:"expires_at"`
	At        time.Time `json:"at"`
}

func (e MembershipActivated) EventName() string     { return EventMembershipActivated }
func (e MembershipActivated) AggregateID() string   { return string(e.UserID) }
func (e MembershipActivated) OccurredAt() time.Time { return e.At }
