package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/intake"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/config"
)

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:         "test-key",
		Model:          "gpt-4o",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
		Enabled:        true,
	}
}

func completionResponse(t *testing.T, content any) string {
	t.Helper()
	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("Failed to marshal content: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": string(data)}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	return string(body)
}

// TestExtractDecodesItems tests the happy path against a canned completion
func TestExtractDecodesItems(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse(t, map[string]any{
			"items": []map[string]any{
				{
					"type":             "condition",
					"confidence":       0.92,
					"familyMemberName": "Milica",
					"data":             map[string]string{"name": "Asthma"},
				},
			},
		})))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	items, err := client.Extract(context.Background(), "Milica has asthma", time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("Expected completions path, got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotReq["model"] != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %v", gotReq["model"])
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Type != intake.ItemTypeCondition {
		t.Errorf("Expected condition item, got %s", items[0].Type)
	}
	if items[0].FamilyMemberName != "Milica" {
		t.Errorf("Expected Milica, got %q", items[0].FamilyMemberName)
	}
}

// TestExtractAnchorsReferenceDate tests that the prompt carries the date
func TestExtractAnchorsReferenceDate(t *testing.T) {
	var prompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for _, m := range req.Messages {
			if m.Role == "system" {
				prompt = m.Content
			}
		}

		w.Write([]byte(completionResponse(t, map[string]any{"items": []any{}})))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	reference := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	if _, err := client.Extract(context.Background(), "call next week", reference); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(prompt, "2026-03-15") {
		t.Error("Expected system prompt to carry the reference date")
	}
}

// TestExtractBackendError tests that non-200 responses surface as errors
func TestExtractBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.Extract(context.Background(), "text", time.Now())
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("Expected backend message in error, got %v", err)
	}
}

// TestExtractMalformedContent tests that non-JSON content fails cleanly
func TestExtractMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "not json"}},
			},
		})
		w.Write(body)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	if _, err := client.Extract(context.Background(), "text", time.Now()); err == nil {
		t.Fatal("Expected error but got none")
	}
}

// TestExtractMissingItemsKey tests that an absent items array reads as empty
func TestExtractMissingItemsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(t, map[string]any{})))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	items, err := client.Extract(context.Background(), "text", time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil items, got %v", items)
	}
}
