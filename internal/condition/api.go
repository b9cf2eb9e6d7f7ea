package condition

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/auth"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/metrics"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Handler provides HTTP handlers for the condition module
type Handler struct {
	repo *Repository
	bus  *events.Bus
}

// NewHandler creates a new condition handler
func NewHandler(repo *Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the condition routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{conditionID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// List lists the caller's conditions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	filter := ListFilter{}

	if fm := r.URL.Query().Get("familyMemberId"); fm != "" {
		id, err := types.ParseID(fm)
		if err != nil {
			writeError(w, errors.BadRequest("invalid familyMemberId filter"))
			return
		}
		filter.FamilyMemberID = &id
	}

	if t := r.URL.Query().Get("type"); t != "" {
		condType := ConditionType(t)
		filter.Type = &condType
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		filter.Status = &status
	}

	list, err := h.repo.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []Condition{}
	}

	writeJSON(w, http.StatusOK, list)
}

// Get gets one of the caller's conditions
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "conditionID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid condition ID"))
		return
	}

	c, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Create creates a new condition
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req CreateConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	c, err := NewCondition(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordRecordCreated("condition")

	if h.bus != nil {
		event := events.NewEvent("condition.created", "condition", map[string]any{
			"conditionId": c.ID,
			"name":        c.Name,
			"type":        c.Type,
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, c)
}

// Update applies a partial update to a condition
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "conditionID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid condition ID"))
		return
	}

	c, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateConditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := c.Apply(req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Delete removes a condition
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "conditionID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid condition ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
