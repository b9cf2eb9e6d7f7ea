package medication

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

// Handler provides HTTP handlers for the medication module
type Handler struct {
	repo *Repository
	bus  *events.Bus
}

// NewHandler creates a new medication handler
func NewHandler(repo *Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the medication routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{medicationID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// List lists the caller's medications
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

	if c := r.URL.Query().Get("conditionId"); c != "" {
		id, err := types.ParseID(c)
		if err != nil {
			writeError(w, errors.BadRequest("invalid conditionId filter"))
			return
		}
		filter.ConditionID = &id
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
		list = []Medication{}
	}

	writeJSON(w, http.StatusOK, list)
}

// Get gets one of the caller's medications
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "medicationID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid medication ID"))
		return
	}

	m, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// Create creates a new medication
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req CreateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	m, err := NewMedication(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordRecordCreated("medication")

	if h.bus != nil {
		event := events.NewEvent("medication.created", "medication", map[string]any{
			"medicationId": m.ID,
			"name":         m.Name,
			"status":       m.Status,
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, m)
}

// Update applies a partial update to a medication
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "medicationID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid medication ID"))
		return
	}

	m, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := m.Apply(req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// Delete removes a medication
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "medicationID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid medication ID"))
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
