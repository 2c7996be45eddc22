package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"arenabook/internal/metrics"
	"arenabook/internal/models"
	"arenabook/internal/recurrence"
)

const dateLayout = "2006-01-02"

type bookingRequest struct {
	Title             string   `json:"title"`
	Type              string   `json:"type"`
	Responsible       string   `json:"responsible"`
	Contact           string   `json:"contact"`
	SpaceID           int64    `json:"space_id"`
	ProjectID         int64    `json:"project_id"`
	Date              string   `json:"date"`
	StartHour         int      `json:"start_hour"`
	EndHour           int      `json:"end_hour"`
	Description       string   `json:"description"`
	Observations      string   `json:"observations"`
	Status            string   `json:"status"`
	Recurrent         bool     `json:"recurrent"`
	RecurrencePattern string   `json:"recurrence_pattern"`
	RecurrenceDays    []string `json:"recurrence_days"`
	RecurrenceEndDate string   `json:"recurrence_end_date"`
}

func (req bookingRequest) toModel() (*models.Booking, error) {
	b := &models.Booking{
		Title:             strings.TrimSpace(req.Title),
		Type:              req.Type,
		Responsible:       strings.TrimSpace(req.Responsible),
		Contact:           strings.TrimSpace(req.Contact),
		SpaceID:           req.SpaceID,
		ProjectID:         req.ProjectID,
		StartHour:         req.StartHour,
		EndHour:           req.EndHour,
		Description:       req.Description,
		Observations:      req.Observations,
		Status:            req.Status,
		Recurrent:         req.Recurrent,
		RecurrencePattern: req.RecurrencePattern,
		RecurrenceDays:    req.RecurrenceDays,
	}

	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, err
		}
		b.Date = date
	}
	if req.RecurrenceEndDate != "" {
		end, err := time.Parse(dateLayout, req.RecurrenceEndDate)
		if err != nil {
			return nil, err
		}
		b.RecurrenceEndDate = end
	}
	return b, nil
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	if err := s.bookings.Create(r.Context(), b, actorFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, b)
}

// handleListBookings serves both the paginated listing and the range filter.
// When start/end are present the response is the plain range slice used by
// the calendar view; otherwise the paginated envelope.
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("start") != "" || q.Get("end") != "" {
		start, err := time.Parse(dateLayout, q.Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse(dateLayout, q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
			return
		}
		spaceID, _ := strconv.ParseInt(q.Get("space_id"), 10, 64)

		items, err := s.bookings.ByRange(r.Context(), spaceID, start, end)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, items)
		return
	}

	page, perPage := pagination(q.Get("page"), q.Get("per_page"))
	items, total, err := s.bookings.List(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, items, page, perPage, total)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := s.bookings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleGetBookingByPublicID(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("public_id")
	if publicID == "" {
		writeError(w, http.StatusBadRequest, "public_id is required")
		return
	}
	b, err := s.bookings.GetByPublicID(r.Context(), publicID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.Delete(r.Context(), id, actorFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "booking deleted")
}

func (s *Server) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.Approve(r.Context(), id, actorFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "booking approved")
}

func (s *Server) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.Reject(r.Context(), id, strings.TrimSpace(body.Reason), actorFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "booking rejected")
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	if err := s.bookings.Cancel(r.Context(), id, actorFrom(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "booking cancelled")
}

type occurrencesResponse struct {
	Booking     *models.Booking         `json:"booking"`
	Occurrences []recurrence.Occurrence `json:"occurrences"`
}

func (s *Server) handleBookingOccurrences(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, occurrences, err := s.bookings.Occurrences(r.Context(), id)
	if err != nil {
		if errors.Is(err, recurrence.ErrNotRecurrent) {
			writeError(w, http.StatusBadRequest, "booking is not recurrent")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, occurrencesResponse{Booking: b, Occurrences: occurrences})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spaceID, err := strconv.ParseInt(q.Get("space_id"), 10, 64)
	if err != nil || spaceID <= 0 {
		writeError(w, http.StatusBadRequest, "space_id is required")
		return
	}
	date, err := time.Parse(dateLayout, q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	slots, err := s.bookings.Availability(r.Context(), spaceID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"space_id": spaceID,
		"date":     date.Format(dateLayout),
		"slots":    slots,
	})
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(dateLayout, q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}
	spaceID, _ := strconv.ParseInt(q.Get("space_id"), 10, 64)

	conflicts, err := s.bookings.Conflicts(r.Context(), spaceID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.IncConflicts(len(conflicts))
	writeData(w, http.StatusOK, conflicts)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func pagination(pageRaw, perPageRaw string) (int, int) {
	page, _ := strconv.Atoi(pageRaw)
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(perPageRaw)
	if perPage < 1 || perPage > 100 {
		perPage = models.DefaultPageSize
	}
	return page, perPage
}
