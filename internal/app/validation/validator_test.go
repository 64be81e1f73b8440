package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Email  string `validate:"required,email"`
	Status string `validate:"omitempty,oneof=unread read"`
	Guests int    `validate:"gte=0,lte=50"`
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(context.Background(), sample{Email: "a@b.co", Guests: 3}))
	require.NoError(t, v.Validate(context.Background(), &sample{Email: "a@b.co", Status: "read"}))
}

func TestValidateReportsFields(t *testing.T) {
	v := New()
	err := v.Validate(context.Background(), sample{Email: "nope", Status: "archived", Guests: 99})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "email must be a valid email")
	require.Contains(t, err.Error(), "status must be one of [unread read]")
	require.Contains(t, err.Error(), "guests must satisfy lte=50")
}

func TestValidateIgnoresNonStructs(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(context.Background(), nil))
	require.NoError(t, v.Validate(context.Background(), "plain"))
	var p *sample
	require.NoError(t, v.Validate(context.Background(), p))
}
