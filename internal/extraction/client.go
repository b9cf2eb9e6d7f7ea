package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/intake"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/config"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/metrics"
)

// Client extracts structured medical items from free text via an OpenAI
// compatible chat completions endpoint.
type Client struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

var _ intake.Extractor = (*Client)(nil)

// NewClient creates a new extraction client
func NewClient(cfg config.OpenAIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// extractionResult is the JSON shape the model is asked to produce
type extractionResult struct {
	Items []intake.ParsedItem `json:"items"`
}

// Extract sends the narrative to the model and decodes the proposed items.
// The reference date anchors relative expressions like "next Tuesday".
func (c *Client) Extract(ctx context.Context, text string, referenceDate time.Time) ([]intake.ParsedItem, error) {
	start := time.Now()

	items, err := c.extract(ctx, text, referenceDate)
	if err != nil {
		metrics.RecordExtraction("error", time.Since(start))
		return nil, err
	}

	metrics.RecordExtraction("ok", time.Since(start))
	return items, nil
}

func (c *Client) extract(ctx context.Context, text string, referenceDate time.Time) ([]intake.ParsedItem, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(referenceDate)},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}

	var completion chatResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if completion.Error != nil {
			return nil, fmt.Errorf("extraction backend returned %d: %s", resp.StatusCode, completion.Error.Message)
		}
		return nil, fmt.Errorf("extraction backend returned %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("extraction backend returned no choices")
	}

	var result extractionResult
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to decode extracted items: %w", err)
	}

	items := result.Items
	if items == nil {
		items = []intake.ParsedItem{}
	}
	return items, nil
}

// systemPrompt instructs the model. The rules mirror how records are kept:
// every organization with a phone number becomes a contact, every mention
// of a referral becomes a referral, and reminders carry absolute dates.
func systemPrompt(referenceDate time.Time) string {
	var b strings.Builder

	b.WriteString("You extract structured medical records from personal notes.\n")
	b.WriteString("Today's date is " + referenceDate.Format("2006-01-02") + ". ")
	b.WriteString("Resolve every relative date (\"next Tuesday\", \"in two weeks\") to an absolute YYYY-MM-DD date.\n\n")

	b.WriteString("Respond with a JSON object: {\"items\": [...]}. Each item has:\n")
	b.WriteString("  type: one of contact, referral, followUp, condition, medication\n")
	b.WriteString("  confidence: 0.0-1.0\n")
	b.WriteString("  familyMemberName: the person the item is about, when named\n")
	b.WriteString("  data: the type-specific fields\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Create a contact item for every clinic, hospital, pharmacy or practitioner that has a phone number, with fields name, role, specialty, clinic, phone, email, address, notes.\n")
	b.WriteString("- Create a referral item for every mention of a referral, with fields referredTo, reason, type (specialist, imaging, lab, therapy, general), urgency (routine, urgent, emergency), dateSent, appointmentDate, notes.\n")
	b.WriteString("- Create a followUp item for every appointment, call or reminder, with fields purpose, description, triggerDate (absolute date, required), triggerTime, priority (low, medium, high). Include phone numbers in both purpose and description when calling is needed.\n")
	b.WriteString("- Create a condition item for every illness, diagnosis or preventive concern, with fields name, type (chronic, episodic, diagnosis, preventive), status (active, monitoring, resolved), severity, diagnosedDate, notes.\n")
	b.WriteString("- Create a medication item for every medicine, with fields name, dosage, frequency, route, startDate, endDate, notes.\n")
	b.WriteString("- Omit fields the text does not support. Never invent phone numbers, dates or names.\n")

	return b.String()
}
