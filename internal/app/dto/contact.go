package dto

import (
	"time"

	domaincontact "travelnest/internal/domain/contact"
)

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ContactMessageList struct {
	Items []ContactMessage `json:"items"`
	Total int              `json:"total"`
}

func MapContactMessage(msg *domaincontact.Message) ContactMessage {
	if msg == nil {
		return ContactMessage{}
	}
	return ContactMessage{
		ID:        string(msg.ID),
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Body,
		Status:    string(msg.Status),
		CreatedAt: msg.CreatedAt,
	}
}
