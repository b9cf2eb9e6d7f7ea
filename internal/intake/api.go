package intake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/auth"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/metrics"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Store provides persistence for intakes. Implemented by *Repository.
type Store interface {
	Create(ctx context.Context, in *Intake) error
	Get(ctx context.Context, id, userID types.ID) (*Intake, error)
	List(ctx context.Context, userID types.ID, status Status) ([]Intake, error)
	UpdateItems(ctx context.Context, in *Intake) error
	ClaimPending(ctx context.Context, id, userID types.ID, at time.Time) error
	Delete(ctx context.Context, id, userID types.ID) error
}

// Handler provides HTTP handlers for the AI intake pipeline
type Handler struct {
	store        Store
	extractor    Extractor
	materializer *Materializer
	bus          *events.Bus
}

// NewHandler creates a new intake handler. The extractor may be nil when no
// extraction backend is configured; parse requests then fail cleanly.
func NewHandler(store Store, extractor Extractor, materializer *Materializer, bus *events.Bus) *Handler {
	return &Handler{
		store:        store,
		extractor:    extractor,
		materializer: materializer,
		bus:          bus,
	}
}

// Routes registers the intake routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/parse", h.Parse)
	r.Get("/intakes", h.List)

	r.Route("/intakes/{intakeID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/confirm", h.Confirm)
	})

	return r
}

// ParseRequest is the payload for the parse endpoint
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse wraps the staged intake together with its items, which
// clients render for review without digging into the intake itself.
type ParseResponse struct {
	Intake *Intake      `json:"intake"`
	Items  []ParsedItem `json:"items"`
}

// Parse runs extraction over a free-text narrative and stages the result as
// a pending intake. Nothing is persisted when extraction fails.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if err := ValidateSourceText(req.Text); err != nil {
		writeError(w, err)
		return
	}

	if h.extractor == nil {
		writeError(w, errors.ExtractionFailed(errors.ErrExtraction))
		return
	}

	items, err := h.extractor.Extract(r.Context(), req.Text, time.Now())
	if err != nil {
		writeError(w, errors.ExtractionFailed(err))
		return
	}

	// Canonicalize what we can up front; items the normalizer rejects are
	// staged as-is so the user can still review and fix them.
	for i, item := range items {
		if normalized, err := Normalize(item); err == nil {
			items[i] = normalized
		}
		metrics.RecordItemParsed(string(item.Type))
	}

	in := NewIntake(userID, req.Text, items)
	if err := h.store.Create(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}

	metrics.RecordIntakeCreated()

	if h.bus != nil {
		event := events.NewEvent("intake.created", "intake", map[string]any{
			"intakeId":  in.ID,
			"itemCount": len(in.ParsedItems),
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusCreated, ParseResponse{Intake: in, Items: in.ParsedItems})
}

// List lists the caller's intakes, optionally filtered by status
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	var status Status
	if s := r.URL.Query().Get("status"); s != "" {
		status = Status(s)
		if status != StatusPending && status != StatusConfirmed {
			writeError(w, errors.BadRequest("invalid status filter"))
			return
		}
	}

	intakes, err := h.store.List(r.Context(), userID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	if intakes == nil {
		intakes = []Intake{}
	}

	writeJSON(w, http.StatusOK, intakes)
}

// Get gets one of the caller's intakes
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "intakeID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid intake ID"))
		return
	}

	in, err := h.store.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, in)
}

// UpdateIntakeRequest is the payload for editing a staged intake
type UpdateIntakeRequest struct {
	ParsedItems *[]ParsedItem `json:"parsedItems"`
}

// Update replaces the staged items of a pending intake
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "intakeID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid intake ID"))
		return
	}

	var req UpdateIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if req.ParsedItems == nil {
		writeError(w, errors.Validation("validation failed", map[string]string{
			"parsedItems": "parsedItems is required",
		}))
		return
	}

	in, err := h.store.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	in.ParsedItems = *req.ParsedItems
	if in.ParsedItems == nil {
		in.ParsedItems = []ParsedItem{}
	}

	if err := h.store.UpdateItems(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, in)
}

// ConfirmRequest is the payload for confirming an intake. When
// SelectedItems is omitted all staged items are materialized.
type ConfirmRequest struct {
	SelectedItems []ParsedItem `json:"selectedItems"`
}

// ConfirmResponse reports what confirmation produced
type ConfirmResponse struct {
	Success         bool           `json:"success"`
	Created         CreatedRecords `json:"created"`
	Skipped         []SkippedItem  `json:"skipped"`
	UnresolvedNames []string       `json:"unresolvedNames,omitempty"`
}

// Confirm claims a pending intake and materializes the approved items into
// records. The claim happens first, so concurrent confirms of the same
// intake materialize at most once.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "intakeID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid intake ID"))
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	in, err := h.store.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	items := req.SelectedItems
	if items == nil {
		items = in.ParsedItems
	}

	if err := h.store.ClaimPending(r.Context(), id, userID, time.Now().UTC()); err != nil {
		writeError(w, err)
		return
	}

	result := h.materializer.Materialize(r.Context(), userID, items)

	metrics.RecordIntakeConfirmed()
	for _, item := range result.Skipped {
		metrics.RecordItemSkipped(string(item.Item.Type))
	}
	recordMaterialized(result.Created)

	if h.bus != nil {
		event := events.NewEvent("intake.confirmed", "intake", map[string]any{
			"intakeId":     id,
			"createdCount": createdCount(result.Created),
			"skippedCount": len(result.Skipped),
		}).WithActor(userID, "user")

		h.bus.Publish(r.Context(), event)
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{
		Success:         true,
		Created:         result.Created,
		Skipped:         result.Skipped,
		UnresolvedNames: result.UnresolvedNames,
	})
}

// Delete removes an intake
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID.IsZero() {
		writeError(w, errors.Unauthorized("authentication required"))
		return
	}

	id, err := types.ParseID(chi.URLParam(r, "intakeID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid intake ID"))
		return
	}

	if err := h.store.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func createdCount(c CreatedRecords) int {
	return len(c.Contacts) + len(c.Referrals) + len(c.FollowUps) +
		len(c.Conditions) + len(c.Medications)
}

func recordMaterialized(c CreatedRecords) {
	for range c.Contacts {
		metrics.RecordItemMaterialized(string(ItemTypeContact))
	}
	for range c.Referrals {
		metrics.RecordItemMaterialized(string(ItemTypeReferral))
	}
	for range c.FollowUps {
		metrics.RecordItemMaterialized(string(ItemTypeFollowUp))
	}
	for range c.Conditions {
		metrics.RecordItemMaterialized(string(ItemTypeCondition))
	}
	for range c.Medications {
		metrics.RecordItemMaterialized(string(ItemTypeMedication))
	}
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
