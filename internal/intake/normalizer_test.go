package intake

import (
	"encoding/json"
	"testing"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

func contactItem(t *testing.T, payload ContactPayload) ParsedItem {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return ParsedItem{Type: ItemTypeContact, Data: data}
}

// TestNormalizeTrimsAndCoerces tests string trimming and date coercion
func TestNormalizeTrimsAndCoerces(t *testing.T) {
	item := contactItem(t, ContactPayload{
		Name:  "  Dr. Petrov  ",
		Phone: " 011-555-1234 ",
	})

	normalized, err := Normalize(item)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var p ContactPayload
	if err := json.Unmarshal(normalized.Data, &p); err != nil {
		t.Fatalf("Failed to decode normalized payload: %v", err)
	}

	if p.Name != "Dr. Petrov" {
		t.Errorf("Expected trimmed name, got %q", p.Name)
	}
	if p.Phone != "011-555-1234" {
		t.Errorf("Expected trimmed phone, got %q", p.Phone)
	}
}

// TestNormalizeBlankLinkBecomesAbsent tests blank foreign key handling
func TestNormalizeBlankLinkBecomesAbsent(t *testing.T) {
	item := contactItem(t, ContactPayload{
		Name:           "Dr. Petrov",
		FamilyMemberID: "   ",
	})

	normalized, err := Normalize(item)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var p ContactPayload
	if err := json.Unmarshal(normalized.Data, &p); err != nil {
		t.Fatalf("Failed to decode normalized payload: %v", err)
	}

	if p.FamilyMemberID != "" {
		t.Errorf("Expected absent familyMemberId, got %q", p.FamilyMemberID)
	}
}

// TestNormalizeInvalidLink tests that malformed ids are rejected
func TestNormalizeInvalidLink(t *testing.T) {
	item := contactItem(t, ContactPayload{
		Name:           "Dr. Petrov",
		FamilyMemberID: "not-a-uuid",
	})

	_, err := Normalize(item)
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Details["familyMemberId"] == "" {
		t.Errorf("Expected familyMemberId detail, got %v", appErr.Details)
	}
}

// TestNormalizeValidLinkKept tests that a well-formed id passes through
func TestNormalizeValidLinkKept(t *testing.T) {
	id := types.NewID().String()
	item := contactItem(t, ContactPayload{
		Name:           "Dr. Petrov",
		FamilyMemberID: id,
	})

	normalized, err := Normalize(item)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var p ContactPayload
	if err := json.Unmarshal(normalized.Data, &p); err != nil {
		t.Fatalf("Failed to decode normalized payload: %v", err)
	}
	if p.FamilyMemberID != id {
		t.Errorf("Expected id %q kept, got %q", id, p.FamilyMemberID)
	}
}

// TestNormalizeMissingName tests required field checks
func TestNormalizeMissingName(t *testing.T) {
	item := contactItem(t, ContactPayload{Name: "   "})

	_, err := Normalize(item)
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Details["name"] == "" {
		t.Errorf("Expected name detail, got %v", appErr.Details)
	}
}

// TestNormalizeReferralDates tests date coercion on referral payloads
func TestNormalizeReferralDates(t *testing.T) {
	data, err := json.Marshal(ReferralPayload{
		ReferredTo:      "Cardiology, City Hospital",
		DateSent:        "2026/03/15",
		AppointmentDate: "2026-04-01T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	normalized, err := Normalize(ParsedItem{Type: ItemTypeReferral, Data: data})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var p ReferralPayload
	if err := json.Unmarshal(normalized.Data, &p); err != nil {
		t.Fatalf("Failed to decode normalized payload: %v", err)
	}

	if p.DateSent != "2026-03-15" {
		t.Errorf("Expected 2026-03-15, got %q", p.DateSent)
	}
	if p.AppointmentDate != "2026-04-01" {
		t.Errorf("Expected 2026-04-01, got %q", p.AppointmentDate)
	}
}

// TestNormalizeInvalidDate tests that garbage dates are rejected
func TestNormalizeInvalidDate(t *testing.T) {
	data, err := json.Marshal(FollowUpPayload{
		Purpose:     "Call the clinic",
		TriggerDate: "next tuesday",
	})
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	_, err = Normalize(ParsedItem{Type: ItemTypeFollowUp, Data: data})
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Details["triggerDate"] == "" {
		t.Errorf("Expected triggerDate detail, got %v", appErr.Details)
	}
}

// TestNormalizeUnknownType tests rejection of unrecognized item types
func TestNormalizeUnknownType(t *testing.T) {
	item := ParsedItem{Type: "appointment", Data: json.RawMessage(`{}`)}

	_, err := Normalize(item)
	if err == nil {
		t.Fatal("Expected error but got none")
	}
}

// TestNormalizeTrimsFamilyMemberName tests the attribution name is trimmed
func TestNormalizeTrimsFamilyMemberName(t *testing.T) {
	item := contactItem(t, ContactPayload{Name: "Dr. Petrov"})
	item.FamilyMemberName = "  Milica  "

	normalized, err := Normalize(item)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if normalized.FamilyMemberName != "Milica" {
		t.Errorf("Expected trimmed name, got %q", normalized.FamilyMemberName)
	}
}
