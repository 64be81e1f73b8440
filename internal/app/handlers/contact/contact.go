package contact

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domaincontact "travelnest/internal/domain/contact"
)

const (
	submitContactMessageKey = "contact.submit"
	listContactMessagesKey  = "contact.list"
	updateContactStatusKey  = "contact.status.update"
)

type SubmitContactMessageCommand struct {
	Name    string `validate:"required,max=120"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,max=5000"`
}

func (c SubmitContactMessageCommand) Key() string { return submitContactMessageKey }

type SubmitContactMessageHandler struct {
	Logger *slog.Logger
}

func (h *SubmitContactMessageHandler) Handle(ctx context.Context, cmd SubmitContactMessageCommand) (*dto.ContactMessage, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	msg, err := domaincontact.NewMessage(domaincontact.SubmitParams{
		ID:      domaincontact.MessageID(uuid.NewString()),
		Name:    cmd.Name,
		Email:   cmd.Email,
		Subject: cmd.Subject,
		Body:    cmd.Message,
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Contacts().Save(ctx, msg); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("contact message received", "message_id", msg.ID)
	}
	result := dto.MapContactMessage(msg)
	return &result, nil
}

type ListContactMessagesQuery struct {
	Status string `validate:"omitempty,oneof=unread read replied"`
	Limit  int    `validate:"gte=0,lte=200"`
	Offset int    `validate:"gte=0"`
}

func (q ListContactMessagesQuery) Key() string { return listContactMessagesKey }

type ListContactMessagesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListContactMessagesHandler) Handle(ctx context.Context, q ListContactMessagesQuery) (dto.ContactMessageList, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ContactMessageList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	msgs, total, err := unit.Contacts().List(execCtx, domaincontact.ListParams{
		Status: domaincontact.ParseStatus(q.Status),
		Limit:  limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.ContactMessageList{}, err
	}
	items := make([]dto.ContactMessage, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, dto.MapContactMessage(m))
	}
	return dto.ContactMessageList{Items: items, Total: total}, nil
}

type UpdateContactStatusCommand struct {
	MessageID string `validate:"required"`
	Status    string `validate:"required,oneof=unread read replied"`
}

func (c UpdateContactStatusCommand) Key() string { return updateContactStatusKey }

type UpdateContactStatusHandler struct{}

func (h *UpdateContactStatusHandler) Handle(ctx context.Context, cmd UpdateContactStatusCommand) (*dto.ContactMessage, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	msg, err := unit.Contacts().ByID(ctx, domaincontact.MessageID(cmd.MessageID))
	if err != nil {
		return nil, err
	}
	if err := msg.SetStatus(domaincontact.Status(cmd.Status), time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Contacts().Save(ctx, msg); err != nil {
		return nil, err
	}
	result := dto.MapContactMessage(msg)
	return &result, nil
}

var _ commands.Handler[SubmitContactMessageCommand, *dto.ContactMessage] = (*SubmitContactMessageHandler)(nil)
var _ queries.Handler[ListContactMessagesQuery, dto.ContactMessageList] = (*ListContactMessagesHandler)(nil)
var _ commands.Handler[UpdateContactStatusCommand, *dto.ContactMessage] = (*UpdateContactStatusHandler)(nil)
