package middleware

import (
	"context"
	"errors"
	"strings"

	"travelnest/internal/app/commands"
	"travelnest/internal/app/queries"
)

var (
	ErrUnauthenticated = errors.New("middleware: authentication required")
	ErrForbidden       = errors.New("middleware: insufficient permissions")
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Caller is the authenticated principal attached to a request context.
type Caller struct {
	ID    string
	Roles []string
}

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok && caller.ID != ""
}

type keyed interface {
	Key() string
}

// RoleRules maps message keys to the roles allowed to send them. A key with an
// empty role list only needs an authenticated caller; unknown keys are public.
type RoleRules map[string][]string

func (r RoleRules) Authorize(ctx context.Context, message any) error {
	msg, ok := message.(keyed)
	if !ok {
		return nil
	}
	roles, guarded := r[msg.Key()]
	if !guarded {
		return nil
	}
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if caller.HasRole(role) {
			return nil
		}
	}
	return ErrForbidden
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
