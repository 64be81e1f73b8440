package contact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	m, err := NewMessage(SubmitParams{ID: "c1", Name: " Ravi ", Email: "Ravi@Mail.com", Subject: "Refund", Body: "Where is it?", Now: now})
	require.NoError(t, err)
	require.Equal(t, "Ravi", m.Name)
	require.Equal(t, "ravi@mail.com", m.Email)
	require.Equal(t, StatusUnread, m.Status)

	_, err = NewMessage(SubmitParams{Name: "Ravi", Email: "r@m.com", Subject: "x"})
	require.ErrorIs(t, err, ErrMessageRequired)
}

func TestSetStatus(t *testing.T) {
	m := &Message{Status: StatusUnread}
	require.NoError(t, m.SetStatus("REPLIED", time.Now()))
	require.Equal(t, StatusReplied, m.Status)
	require.ErrorIs(t, m.SetStatus("archived", time.Now()), ErrInvalidStatus)
}
