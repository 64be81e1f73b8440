package contact

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNameRequired    = errors.New("contact: name is required")
	ErrEmailRequired   = errors.New("contact: email is required")
	ErrSubjectRequired = errors.New("contact: subject is required")
	ErrMessageRequired = errors.New("contact: message is required")
	ErrInvalidStatus   = errors.New("contact: invalid status")
	ErrNotFound        = errors.New("contact: message not found")
)

type MessageID string

type Status string

const (
	StatusUnread  Status = "unread"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

// Message is a note left through the public contact form.
type Message struct {
	ID        MessageID
	Name      string
	Email     string
	Subject   string
	Body      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListParams struct {
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id MessageID) (*Message, error)
	Save(ctx context.Context, msg *Message) error
	List(ctx context.Context, params ListParams) ([]*Message, int, error)
}

type SubmitParams struct {
	ID      MessageID
	Name    string
	Email   string
	Subject string
	Body    string
	Now     time.Time
}

func NewMessage(params SubmitParams) (*Message, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrMessageRequired
	}
	now := params.Now.UTC()
	return &Message{
		ID:        params.ID,
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		Status:    StatusUnread,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *Message) SetStatus(status Status, now time.Time) error {
	status = ParseStatus(string(status))
	if status == "" {
		return ErrInvalidStatus
	}
	m.Status = status
	m.UpdatedAt = now.UTC()
	return nil
}

// ParseStatus returns "" for unknown values.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusUnread:
		return StatusUnread
	case StatusRead:
		return StatusRead
	case StatusReplied:
		return StatusReplied
	default:
		return ""
	}
}
