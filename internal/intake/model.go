package intake

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Status of an intake
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ItemType tags a parsed item with the kind of record it proposes
type ItemType string

const (
	ItemTypeContact    ItemType = "contact"
	ItemTypeReferral   ItemType = "referral"
	ItemTypeFollowUp   ItemType = "followUp"
	ItemTypeCondition  ItemType = "condition"
	ItemTypeMedication ItemType = "medication"
)

// Valid checks if the item type is a known value
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeContact, ItemTypeReferral, ItemTypeFollowUp, ItemTypeCondition, ItemTypeMedication:
		return true
	}
	return false
}

// ParsedItem is one candidate record proposed by extraction. Data holds the
// type-specific payload; FamilyMemberName carries the person the model
// attributed the item to, resolved to an id at confirmation time.
type ParsedItem struct {
	Type             ItemType        `json:"type"`
	Confidence       float64         `json:"confidence,omitempty"`
	FamilyMemberName string          `json:"familyMemberName,omitempty"`
	Data             json.RawMessage `json:"data"`
}

// Intake is a staged extraction run: the original narrative, what the model
// proposed, and whether the user has confirmed it yet.
type Intake struct {
	ID          types.ID     `json:"id"`
	UserID      types.ID     `json:"userId"`
	SourceText  string       `json:"sourceText"`
	ParsedItems []ParsedItem `json:"parsedItems"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ConfirmedAt *time.Time   `json:"confirmedAt,omitempty"`
}

// NewIntake stages a pending intake for a narrative and its parsed items
func NewIntake(userID types.ID, sourceText string, items []ParsedItem) *Intake {
	if items == nil {
		items = []ParsedItem{}
	}
	return &Intake{
		ID:          types.NewID(),
		UserID:      userID,
		SourceText:  sourceText,
		ParsedItems: items,
		Status:      StatusPending,
	}
}

// Extractor turns free text into candidate records. The reference date
// anchors relative expressions like "next Tuesday".
type Extractor interface {
	Extract(ctx context.Context, text string, referenceDate time.Time) ([]ParsedItem, error)
}

// MaxSourceTextLen bounds the narrative accepted for extraction
const MaxSourceTextLen = 10000

// ValidateSourceText checks the narrative length bounds
func ValidateSourceText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.Validation("validation failed", map[string]string{
			"text": "text is required",
		})
	}
	if len([]rune(text)) > MaxSourceTextLen {
		return errors.Validation("validation failed", map[string]string{
			"text": "text exceeds 10000 characters",
		})
	}
	return nil
}

// --- Item payloads ---
//
// Payload fields are loose strings: extraction output is untrusted, so ids
// and dates are validated by the normalizer rather than by decoding.

// ContactPayload is the data shape for contact items
type ContactPayload struct {
	FamilyMemberID string `json:"familyMemberId,omitempty"`
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	Specialty      string `json:"specialty,omitempty"`
	Clinic         string `json:"clinic,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Address        string `json:"address,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ReferralPayload is the data shape for referral items
type ReferralPayload struct {
	FamilyMemberID      string `json:"familyMemberId,omitempty"`
	ConditionID         string `json:"conditionId,omitempty"`
	SenderContactID     string `json:"senderContactId,omitempty"`
	ReferredToContactID string `json:"referredToContactId,omitempty"`
	Type                string `json:"type,omitempty"`
	ReferredTo          string `json:"referredTo"`
	Reason              string `json:"reason,omitempty"`
	Status              string `json:"status,omitempty"`
	Urgency             string `json:"urgency,omitempty"`
	DateSent            string `json:"dateSent,omitempty"`
	AppointmentDate     string `json:"appointmentDate,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// FollowUpPayload is the data shape for followUp items
type FollowUpPayload struct {
	FamilyMemberID string `json:"familyMemberId,omitempty"`
	ConditionID    string `json:"conditionId,omitempty"`
	ContactID      string `json:"contactId,omitempty"`
	ReferralID     string `json:"referralId,omitempty"`
	ParentTaskID   string `json:"parentTaskId,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	Description    string `json:"description,omitempty"`
	TriggerDate    string `json:"triggerDate,omitempty"`
	TriggerTime    string `json:"triggerTime,omitempty"`
	Status         string `json:"status,omitempty"`
	Priority       string `json:"priority,omitempty"`
}

// ConditionPayload is the data shape for condition items
type ConditionPayload struct {
	FamilyMemberID string `json:"familyMemberId,omitempty"`
	Name           string `json:"name"`
	Type           string `json:"type,omitempty"`
	Status         string `json:"status,omitempty"`
	Severity       string `json:"severity,omitempty"`
	DiagnosedDate  string `json:"diagnosedDate,omitempty"`
	ResolvedDate   string `json:"resolvedDate,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// MedicationPayload is the data shape for medication items
type MedicationPayload struct {
	FamilyMemberID string `json:"familyMemberId,omitempty"`
	ConditionID    string `json:"conditionId,omitempty"`
	PrescribedBy   string `json:"prescribedBy,omitempty"`
	Name           string `json:"name"`
	Dosage         string `json:"dosage,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
	Route          string `json:"route,omitempty"`
	Status         string `json:"status,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	Notes          string `json:"notes,omitempty"`
}
