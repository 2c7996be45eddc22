package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"arenabook/internal/booking"
	"arenabook/internal/database"
)

// envelope is the response shape the portal expects:
// {"status":"success","data":...,"message":"..."}.
type envelope struct {
	Status  string            `json:"status"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// pageEnvelope is the paginated list shape.
type pageEnvelope struct {
	Data        any `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, envelope{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Status: "error", Message: message})
}

func writePage(w http.ResponseWriter, data any, page, perPage, total int) {
	lastPage := 1
	if perPage > 0 {
		lastPage = (total + perPage - 1) / perPage
	}
	if lastPage < 1 {
		lastPage = 1
	}
	writeJSON(w, http.StatusOK, pageEnvelope{Data: data, CurrentPage: page, LastPage: lastPage})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var validation *booking.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Status:  "error",
			Message: "validation failed",
			Errors:  validation.FieldErrors,
		})
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrSlotTaken):
		writeError(w, http.StatusConflict, "the requested time slot is already booked")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "the booking was modified by another request, reload and retry")
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "booking is not in a state that allows this action")
	case errors.Is(err, booking.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "insufficient role for this action")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
