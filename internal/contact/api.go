package contact

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

// Handler provides HTTP handlers for the contact module
type Handler struct {
	repo *Repository
	bus  *events.Bus
}

// NewHandler creates a new contact handler
func NewHandler(repo *Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the contact routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{contactID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

// List lists the caller's medical contacts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	filter := ListFilter{
		Specialty: r.URL.Query().Get("specialty"),
		Search:    r.URL.Query().Get("search"),
	}

	if fm := r.URL.Query().Get("familyMemberId"); fm != "" {
		id, err := types.ParseID(fm)
		if err != nil {
			writeError(w, errors.BadRequest("invalid familyMemberId filter"))
			return
		}
		filter.FamilyMemberID = &id
	}

	contacts, err := h.repo.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if contacts == nil {
		contacts = []Contact{}
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Get gets one of the caller's contacts
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid contact ID"))
		return
	}

	c, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Create creates a new contact
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	c, err := NewContact(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordRecordCreated("contact")

	if h.bus != nil {
		event := events.NewEvent("contact.created", "contact", map[string]any{
			"contactId": c.ID,
			"name":      c.Name,
			"clinic":    c.Clinic,
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, c)
}

// Update applies a partial update to a contact
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid contact ID"))
		return
	}

	c, err := h.repo.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateContactRequest
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

// Delete removes a contact
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid contact ID"))
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
