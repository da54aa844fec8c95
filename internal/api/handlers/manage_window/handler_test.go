package manage_window

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
	"github.com/m04kA/SMC-TutorBooking/pkg/logger"
)

type stubService struct {
	added   *models.AddWindowRequest
	updated *models.UpdateWindowRequest
	removed *models.RemoveWindowRequest
	err     error
}

func (s *stubService) result(id int64, day string) (*models.DayWindowsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DayWindowsResponse{OfferingID: id, Day: day, Windows: []string{"09:00 - 11:00"}}, nil
}

func (s *stubService) AddWindow(_ context.Context, id int64, req *models.AddWindowRequest) (*models.DayWindowsResponse, error) {
	s.added = req
	return s.result(id, req.Day)
}

func (s *stubService) UpdateWindow(_ context.Context, id int64, req *models.UpdateWindowRequest) (*models.DayWindowsResponse, error) {
	s.updated = req
	return s.result(id, req.Day)
}

func (s *stubService) RemoveWindow(_ context.Context, id int64, req *models.RemoveWindowRequest) (*models.DayWindowsResponse, error) {
	s.removed = req
	return s.result(id, req.Day)
}

func newRouter(svc *stubService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/offerings/{offeringId}/availability/{day}/windows", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/offerings/{offeringId}/availability/{day}/windows/{index}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/offerings/{offeringId}/availability/{day}/windows/{index}", h.Remove).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "100")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdd(t *testing.T) {
	svc := &stubService{}
	rec := do(newRouter(svc), http.MethodPost, "/offerings/5/availability/Monday/windows", `{"timeSlot":"09:00 - 11:00"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.added)
	assert.Equal(t, int64(100), svc.added.UserID)
	assert.Equal(t, "Monday", svc.added.Day)
	assert.Equal(t, "09:00 - 11:00", svc.added.TimeSlot)
	assert.JSONEq(t, `{"offeringId":5,"day":"Monday","windows":["09:00 - 11:00"]}`, rec.Body.String())
}

func TestUpdateAndRemovePassIndex(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	rec := do(r, http.MethodPatch, "/offerings/5/availability/Monday/windows/1", `{"end":"12:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated)
	assert.Equal(t, 1, svc.updated.Index)
	assert.Nil(t, svc.updated.Start)
	require.NotNil(t, svc.updated.End)
	assert.Equal(t, "12:00", *svc.updated.End)

	rec = do(r, http.MethodDelete, "/offerings/5/availability/Monday/windows/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.removed)
	assert.Equal(t, 0, svc.removed.Index)
	assert.Equal(t, int64(100), svc.removed.UserID)
}

func TestInvalidPathParams(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/offerings/abc/availability/Monday/windows/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/offerings/5/availability/Monday/windows/-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/offerings/5/availability/Monday/windows/x", "").Code)
	assert.Nil(t, svc.removed)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: offerings.ErrOfferingNotFound, code: http.StatusNotFound},
		{err: offerings.ErrWindowNotFound, code: http.StatusNotFound},
		{err: offerings.ErrAccessDenied, code: http.StatusForbidden},
		{err: offerings.ErrCapacityExceeded, code: http.StatusConflict},
		{err: offerings.ErrInvalidWindow, code: http.StatusBadRequest},
		{err: offerings.ErrInvalidInput, code: http.StatusBadRequest},
		{err: offerings.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := do(newRouter(&stubService{err: tt.err}), http.MethodPost,
				"/offerings/5/availability/Monday/windows", `{"timeSlot":"09:00 - 11:00"}`)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
