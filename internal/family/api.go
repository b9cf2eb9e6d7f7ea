package family

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

// Handler provides HTTP handlers for the family module
type Handler struct {
	repo *Repository
	bus  *events.Bus
}

// NewHandler creates a new family handler
func NewHandler(repo *Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the family member routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{memberID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// List lists the caller's family members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	filter := ListFilter{}
	if rel := r.URL.Query().Get("relationship"); rel != "" {
		relationship := Relationship(rel)
		filter.Relationship = &relationship
	}

	members, err := h.repo.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []Member{}
	}

	writeJSON(w, http.StatusOK, members)
}

// Get gets one of the caller's family members
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid family member ID"))
		return
	}

	member, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// Create creates a new family member
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	member, err := NewMember(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), member); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordRecordCreated("family_member")

	if h.bus != nil {
		event := events.NewEvent("family.member.created", "family", map[string]any{
			"memberId":     member.ID,
			"name":         member.Name,
			"relationship": member.Relationship,
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, member)
}

// Update applies a partial update to a family member
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid family member ID"))
		return
	}

	member, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := member.Apply(req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Update(r.Context(), member); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// Delete removes a family member
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "memberID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid family member ID"))
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
