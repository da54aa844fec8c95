package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/pkg/logger"
)

func newServer(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/42", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, logger.NewNop())
}

func TestGetUser(t *testing.T) {
	client := newServer(t, http.StatusOK, `{"id":42,"name":"Anna","role":"tutor"}`)

	user, err := client.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.True(t, user.IsTutor())
}

func TestGetUserErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: ErrUserNotFound},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrInvalidResponse},
		{name: "server error", status: http.StatusBadGateway, body: "upstream", wantErr: ErrUnavailable},
		{name: "broken body", status: http.StatusOK, body: "{", wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, tt.status, tt.body)
			_, err := client.GetUser(context.Background(), 42)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIsTutor(t *testing.T) {
	student := newServer(t, http.StatusOK, `{"id":42,"role":"student"}`)
	ok, err := student.IsTutor(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)

	missing := newServer(t, http.StatusNotFound, "")
	ok, err = missing.IsTutor(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)

	down := newServer(t, http.StatusServiceUnavailable, "")
	_, err = down.IsTutor(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnavailable)
}
