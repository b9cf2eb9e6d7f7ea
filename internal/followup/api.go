package followup

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/auth"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/metrics"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Handler provides HTTP handlers for the follow-up module
type Handler struct {
	repo *Repository
	bus  *events.Bus
}

// NewHandler creates a new follow-up handler
func NewHandler(repo *Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the follow-up task routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/children", h.ListChildren)
	})

	return r
}

// List lists the caller's follow-up tasks
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

	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		filter.Status = &status
	}

	if d := r.URL.Query().Get("daysAhead"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil || days < 0 {
			writeError(w, errors.BadRequest("invalid daysAhead filter"))
			return
		}
		filter.DaysAhead = days
	}

	tasks, err := h.repo.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get gets one of the caller's follow-up tasks
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid task ID"))
		return
	}

	t, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// ListChildren lists the sub-tasks of a task
func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid task ID"))
		return
	}

	// The parent must exist and belong to the caller
	if _, err := h.repo.Get(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.repo.ListChildren(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Create creates a new follow-up task
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	t, err := NewTask(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordRecordCreated("follow_up_task")

	if h.bus != nil {
		event := events.NewEvent("followup.created", "followup", map[string]any{
			"taskId":      t.ID,
			"purpose":     t.Purpose,
			"triggerDate": t.TriggerDate,
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, t)
}

// Update applies a partial update to a follow-up task
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid task ID"))
		return
	}

	t, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := t.Apply(req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), t); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Delete removes a follow-up task
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid task ID"))
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
