package manage_window

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TutorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
	"github.com/m04kA/SMC-TutorBooking/internal/service/offerings/models"
)

const (
	msgInvalidOfferingID  = "некорректный ID предложения"
	msgInvalidIndex       = "некорректный индекс окна"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "предложение тьютора не найдено"
	msgWindowNotFound     = "окно не найдено"
	msgForbidden          = "менять расписание может только тьютор предложения"
	msgInvalidData        = "некорректный день или время"
	msgInvalidWindow      = "окно пустое или пересекается с другим окном дня"
	msgCapacityExceeded   = "в день можно добавить не больше 3 окон"
)

// Handler окна одного дня: добавление, изменение и удаление
type Handler struct {
	service OfferingService
	logger  Logger
}

func NewHandler(service OfferingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// target параметры пути, общие для всех операций с окнами
type target struct {
	offeringID int64
	day        string
	userID     int64
}

// Add POST /api/v1/offerings/{offeringId}/availability/{day}/windows
// Body: {"timeSlot": "HH:MM - HH:MM"}
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	const op = "POST /offerings/{id}/availability/{day}/windows"

	t, ok := h.parseTarget(w, r, op)
	if !ok {
		return
	}

	var req models.AddWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, req.Day = t.userID, t.day

	result, err := h.service.AddWindow(r.Context(), t.offeringID, &req)
	if err != nil {
		h.respondError(w, op, t, err)
		return
	}

	h.logger.Info("%s - Window added: offering_id=%d, day=%s, windows=%d", op, t.offeringID, t.day, len(result.Windows))
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Update PATCH /api/v1/offerings/{offeringId}/availability/{day}/windows/{index}
// Body: {"start": "HH:MM", "end": "HH:MM"}, любую границу можно опустить
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "PATCH /offerings/{id}/availability/{day}/windows/{index}"

	t, ok := h.parseTarget(w, r, op)
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r, op)
	if !ok {
		return
	}

	var req models.UpdateWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, req.Day, req.Index = t.userID, t.day, index

	result, err := h.service.UpdateWindow(r.Context(), t.offeringID, &req)
	if err != nil {
		h.respondError(w, op, t, err)
		return
	}

	h.logger.Info("%s - Window updated: offering_id=%d, day=%s, index=%d", op, t.offeringID, t.day, index)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Remove DELETE /api/v1/offerings/{offeringId}/availability/{day}/windows/{index}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "DELETE /offerings/{id}/availability/{day}/windows/{index}"

	t, ok := h.parseTarget(w, r, op)
	if !ok {
		return
	}
	index, ok := h.parseIndex(w, r, op)
	if !ok {
		return
	}

	result, err := h.service.RemoveWindow(r.Context(), t.offeringID, &models.RemoveWindowRequest{
		UserID: t.userID,
		Day:    t.day,
		Index:  index,
	})
	if err != nil {
		h.respondError(w, op, t, err)
		return
	}

	h.logger.Info("%s - Window removed: offering_id=%d, day=%s, index=%d", op, t.offeringID, t.day, index)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parseTarget(w http.ResponseWriter, r *http.Request, op string) (target, bool) {
	vars := mux.Vars(r)

	offeringID, err := strconv.ParseInt(vars["offeringId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid offering ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidOfferingID)
		return target{}, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return target{}, false
	}

	return target{offeringID: offeringID, day: vars["day"], userID: userID}, true
}

func (h *Handler) parseIndex(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || index < 0 {
		h.logger.Warn("%s - Invalid window index: %q", op, mux.Vars(r)["index"])
		handlers.RespondBadRequest(w, msgInvalidIndex)
		return 0, false
	}
	return index, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, t target, err error) {
	switch {
	case errors.Is(err, offerings.ErrOfferingNotFound):
		h.logger.Warn("%s - Offering not found: offering_id=%d", op, t.offeringID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, offerings.ErrWindowNotFound):
		h.logger.Warn("%s - Window not found: offering_id=%d, day=%s", op, t.offeringID, t.day)
		handlers.RespondNotFound(w, msgWindowNotFound)

	case errors.Is(err, offerings.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: offering_id=%d, user_id=%d", op, t.offeringID, t.userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, offerings.ErrCapacityExceeded):
		h.logger.Warn("%s - Capacity exceeded: offering_id=%d, day=%s", op, t.offeringID, t.day)
		handlers.RespondConflict(w, msgCapacityExceeded)

	case errors.Is(err, offerings.ErrInvalidWindow):
		h.logger.Warn("%s - Invalid window: offering_id=%d, error=%v", op, t.offeringID, err)
		handlers.RespondBadRequest(w, msgInvalidWindow)

	case errors.Is(err, offerings.ErrInvalidInput):
		h.logger.Warn("%s - Invalid data: offering_id=%d, error=%v", op, t.offeringID, err)
		handlers.RespondBadRequest(w, msgInvalidData)

	default:
		h.logger.Error("%s - Failed: offering_id=%d, error=%v", op, t.offeringID, err)
		handlers.RespondInternalError(w)
	}
}
