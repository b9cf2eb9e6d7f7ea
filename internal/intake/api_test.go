package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/auth"
	apperrors "github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

type fakeStore struct {
	intakes map[types.ID]*Intake
}

func newFakeStore() *fakeStore {
	return &fakeStore{intakes: map[types.ID]*Intake{}}
}

func (s *fakeStore) Create(ctx context.Context, in *Intake) error {
	in.CreatedAt = time.Now().UTC()
	stored := *in
	s.intakes[in.ID] = &stored
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id, userID types.ID) (*Intake, error) {
	in, ok := s.intakes[id]
	if !ok || in.UserID != userID {
		return nil, apperrors.NotFound("intake", id.String())
	}
	copied := *in
	return &copied, nil
}

func (s *fakeStore) List(ctx context.Context, userID types.ID, status Status) ([]Intake, error) {
	var out []Intake
	for _, in := range s.intakes {
		if in.UserID != userID {
			continue
		}
		if status != "" && in.Status != status {
			continue
		}
		out = append(out, *in)
	}
	return out, nil
}

func (s *fakeStore) UpdateItems(ctx context.Context, in *Intake) error {
	existing, ok := s.intakes[in.ID]
	if !ok || existing.UserID != in.UserID {
		return apperrors.NotFound("intake", in.ID.String())
	}
	if existing.Status != StatusPending {
		return apperrors.Conflict("intake already confirmed")
	}
	existing.ParsedItems = in.ParsedItems
	return nil
}

func (s *fakeStore) ClaimPending(ctx context.Context, id, userID types.ID, at time.Time) error {
	in, ok := s.intakes[id]
	if !ok || in.UserID != userID {
		return apperrors.NotFound("intake", id.String())
	}
	if in.Status != StatusPending {
		return apperrors.Conflict("intake already confirmed")
	}
	in.Status = StatusConfirmed
	in.ConfirmedAt = &at
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id, userID types.ID) error {
	in, ok := s.intakes[id]
	if !ok || in.UserID != userID {
		return apperrors.NotFound("intake", id.String())
	}
	delete(s.intakes, id)
	return nil
}

type fakeExtractor struct {
	items []ParsedItem
	err   error
}

func (e *fakeExtractor) Extract(ctx context.Context, text string, referenceDate time.Time) ([]ParsedItem, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.items, nil
}

func newTestServer(store Store, extractor Extractor, userID types.ID) *httptest.Server {
	h := NewHandler(store, extractor, NewMaterializer(&fakeEntityStore{}), nil)
	return httptest.NewServer(auth.DevMiddleware(userID)(h.Routes()))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// TestParseStagesPendingIntake tests the parse happy path
func TestParseStagesPendingIntake(t *testing.T) {
	store := newFakeStore()
	userID := types.NewID()
	extractor := &fakeExtractor{items: []ParsedItem{
		{Type: ItemTypeCondition, Confidence: 0.9, Data: json.RawMessage(`{"name":"Asthma"}`)},
	}}

	srv := newTestServer(store, extractor, userID)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/parse", map[string]string{"text": "Milica has asthma"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	var parsed ParseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if parsed.Intake == nil {
		t.Fatal("Expected intake in response envelope")
	}
	if parsed.Intake.Status != StatusPending {
		t.Errorf("Expected pending status, got %s", parsed.Intake.Status)
	}
	if len(parsed.Items) != 1 {
		t.Errorf("Expected 1 item in response envelope, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Type != ItemTypeCondition {
		t.Errorf("Expected condition item, got %s", parsed.Items[0].Type)
	}
	if _, ok := store.intakes[parsed.Intake.ID]; !ok {
		t.Error("Expected intake to be persisted")
	}
}

// TestParseRejectsEmptyText tests input validation
func TestParseRejectsEmptyText(t *testing.T) {
	srv := newTestServer(newFakeStore(), &fakeExtractor{}, types.NewID())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/parse", map[string]string{"text": "   "})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

// TestParseExtractionFailure tests that nothing is persisted on failure
func TestParseExtractionFailure(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{err: errors.New("model unavailable")}

	srv := newTestServer(store, extractor, types.NewID())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/parse", map[string]string{"text": "Milica has asthma"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	if len(store.intakes) != 0 {
		t.Errorf("Expected no intakes persisted, got %d", len(store.intakes))
	}
}

// TestConfirmMaterializes tests the confirm happy path
func TestConfirmMaterializes(t *testing.T) {
	store := newFakeStore()
	userID := types.NewID()

	in := NewIntake(userID, "text", []ParsedItem{
		{Type: ItemTypeContact, Data: json.RawMessage(`{"name":"Dr. Petrov"}`)},
	})
	store.Create(context.Background(), in)

	srv := newTestServer(store, &fakeExtractor{}, userID)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/intakes/"+in.ID.String()+"/confirm", map[string]any{})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var confirmed ConfirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&confirmed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !confirmed.Success {
		t.Error("Expected success")
	}
	if len(confirmed.Created.Contacts) != 1 {
		t.Errorf("Expected 1 contact created, got %d", len(confirmed.Created.Contacts))
	}
	if store.intakes[in.ID].Status != StatusConfirmed {
		t.Errorf("Expected confirmed status, got %s", store.intakes[in.ID].Status)
	}
	if store.intakes[in.ID].ConfirmedAt == nil {
		t.Error("Expected confirmedAt to be stamped")
	}
}

// TestConfirmTwiceConflicts tests that confirm is not repeatable
func TestConfirmTwiceConflicts(t *testing.T) {
	store := newFakeStore()
	userID := types.NewID()

	in := NewIntake(userID, "text", nil)
	store.Create(context.Background(), in)

	srv := newTestServer(store, &fakeExtractor{}, userID)
	defer srv.Close()

	url := srv.URL + "/intakes/" + in.ID.String() + "/confirm"

	first := postJSON(t, url, map[string]any{})
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on first confirm, got %d", first.StatusCode)
	}

	second := postJSON(t, url, map[string]any{})
	second.Body.Close()
	if second.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 on second confirm, got %d", second.StatusCode)
	}
}

// TestIntakeOwnership tests that foreign intakes read as missing
func TestIntakeOwnership(t *testing.T) {
	store := newFakeStore()
	owner := types.NewID()

	in := NewIntake(owner, "text", nil)
	store.Create(context.Background(), in)

	srv := newTestServer(store, &fakeExtractor{}, types.NewID())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/intakes/" + in.ID.String())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

// TestUpdateConfirmedIntake tests that confirmed intakes are immutable
func TestUpdateConfirmedIntake(t *testing.T) {
	store := newFakeStore()
	userID := types.NewID()

	in := NewIntake(userID, "text", nil)
	store.Create(context.Background(), in)
	now := time.Now().UTC()
	store.ClaimPending(context.Background(), in.ID, userID, now)

	srv := newTestServer(store, &fakeExtractor{}, userID)
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{"parsedItems": []ParsedItem{}})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/intakes/"+in.ID.String(), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.StatusCode)
	}
}

// TestListFilterByStatus tests the status filter
func TestListFilterByStatus(t *testing.T) {
	store := newFakeStore()
	userID := types.NewID()

	pending := NewIntake(userID, "pending one", nil)
	store.Create(context.Background(), pending)

	confirmed := NewIntake(userID, "confirmed one", nil)
	store.Create(context.Background(), confirmed)
	store.ClaimPending(context.Background(), confirmed.ID, userID, time.Now().UTC())

	srv := newTestServer(store, &fakeExtractor{}, userID)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/intakes?status=pending")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var intakes []Intake
	if err := json.NewDecoder(resp.Body).Decode(&intakes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(intakes) != 1 || intakes[0].ID != pending.ID {
		t.Errorf("Expected just the pending intake, got %d", len(intakes))
	}
}
