package api

import (
	"encoding/json"
	"net/http"
	"time"

	"arenabook/internal/models"
)

// requireModerator gates mutating entity endpoints to approver roles.
func requireModerator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r).CanModerate() {
			writeError(w, http.StatusForbidden, "insufficient role for this action")
			return
		}
		next(w, r)
	}
}

// --- spaces ---

func (s *Server) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("active") == "true" {
		spaces, err := s.db.GetActiveSpaces(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, spaces)
		return
	}

	page, perPage := pagination(q.Get("page"), q.Get("per_page"))
	spaces, total, err := s.db.ListSpaces(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, spaces, page, perPage, total)
}

func (s *Server) handleGetSpace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space id")
		return
	}
	space, err := s.db.GetSpace(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, space)
}

func (s *Server) handleCreateSpace(w http.ResponseWriter, r *http.Request) {
	var space models.Space
	if err := json.NewDecoder(r.Body).Decode(&space); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if space.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := s.db.CreateSpace(r.Context(), &space); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, space)
}

func (s *Server) handleUpdateSpace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space id")
		return
	}
	var space models.Space
	if err := json.NewDecoder(r.Body).Decode(&space); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	space.ID = id
	if err := s.db.UpdateSpace(r.Context(), &space); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, space)
}

// Spaces are deactivated, never hard-deleted: historical bookings keep
// pointing at them.
func (s *Server) handleDeactivateSpace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space id")
		return
	}
	if err := s.db.DeactivateSpace(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "space deactivated")
}

// --- projects ---

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	items, total, err := s.db.ListProjects(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, items, page, perPage, total)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	item, err := s.db.GetProject(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if err := s.db.CreateProject(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p.ID = id
	if err := s.db.UpdateProject(r.Context(), &p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if err := s.db.DeleteProject(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "project deleted")
}

// --- modalities ---

func (s *Server) handleListModalities(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	items, total, err := s.db.ListModalities(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, items, page, perPage, total)
}

func (s *Server) handleGetModality(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid modality id")
		return
	}
	item, err := s.db.GetModality(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleCreateModality(w http.ResponseWriter, r *http.Request) {
	var m models.Modality
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if m.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if m.Status == "" {
		m.Status = models.StatusActive
	}
	if err := s.db.CreateModality(r.Context(), &m); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateModality(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid modality id")
		return
	}
	var m models.Modality
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	m.ID = id
	if err := s.db.UpdateModality(r.Context(), &m); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

func (s *Server) handleDeleteModality(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid modality id")
		return
	}
	if err := s.db.DeleteModality(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "modality deleted")
}

// --- teams ---

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	items, total, err := s.db.ListTeams(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, items, page, perPage, total)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	item, err := s.db.GetTeam(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var t models.Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if t.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if t.Status == "" {
		t.Status = models.StatusActive
	}
	if err := s.db.CreateTeam(r.Context(), &t); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	var t models.Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t.ID = id
	if err := s.db.UpdateTeam(r.Context(), &t); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	if err := s.db.DeleteTeam(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "team deleted")
}

// --- evaluations ---

type evaluationRequest struct {
	AthleteName string `json:"athlete_name"`
	TeamID      int64  `json:"team_id"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

func (req evaluationRequest) toModel() (*models.Evaluation, error) {
	e := &models.Evaluation{
		AthleteName: req.AthleteName,
		TeamID:      req.TeamID,
		Notes:       req.Notes,
		Status:      req.Status,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, err
		}
		e.Date = date
	}
	if e.Status == "" {
		e.Status = models.StatusActive
	}
	return e, nil
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	items, total, err := s.db.ListEvaluations(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w, items, page, perPage, total)
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}
	item, err := s.db.GetEvaluation(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

func (s *Server) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AthleteName == "" {
		writeError(w, http.StatusBadRequest, "athlete_name is required")
		return
	}
	e, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	if err := s.db.CreateEvaluation(r.Context(), e); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	e, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	e.ID = id
	if err := s.db.UpdateEvaluation(r.Context(), e); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid evaluation id")
		return
	}
	if err := s.db.DeleteEvaluation(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "evaluation deleted")
}
