package admin

import (
	"context"

	"travelnest/internal/app/dto"
	handlersupport "travelnest/internal/app/handlers/support"
	"travelnest/internal/app/queries"
	"travelnest/internal/app/uow"
	domainuser "travelnest/internal/domain/user"
)

const listUsersKey = "admin.users.list"

type ListUsersQuery struct {
	Query  string
	Role   string `validate:"omitempty,oneof=traveller manager admin"`
	Limit  int    `validate:"gte=0,lte=200"`
	Offset int    `validate:"gte=0"`
}

func (q ListUsersQuery) Key() string { return listUsersKey }

type ListUsersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (dto.UserList, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	users, total, err := unit.Users().List(execCtx, domainuser.ListParams{
		Query:  q.Query,
		Role:   domainuser.Role(q.Role),
		Limit:  limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.UserList{}, err
	}
	items := make([]dto.UserProfile, 0, len(users))
	for _, u := range users {
		items = append(items, dto.MapUserProfile(u))
	}
	return dto.UserList{Items: items, Total: total}, nil
}

var _ queries.Handler[ListUsersQuery, dto.UserList] = (*ListUsersHandler)(nil)
