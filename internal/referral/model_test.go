package referral

import (
	"testing"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// TestNewReferral tests creating a referral with defaults
func TestNewReferral(t *testing.T) {
	userID := types.NewID()

	rf, err := NewReferral(userID, CreateReferralRequest{
		ReferredTo: "Cardiology, City Hospital",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rf.ID.IsZero() {
		t.Error("Expected non-zero ID")
	}
	if rf.Type != TypeGeneral {
		t.Errorf("Expected type %s, got %s", TypeGeneral, rf.Type)
	}
	if rf.Status != StatusPending {
		t.Errorf("Expected status %s, got %s", StatusPending, rf.Status)
	}
	if rf.Urgency != UrgencyRoutine {
		t.Errorf("Expected urgency %s, got %s", UrgencyRoutine, rf.Urgency)
	}
	if rf.DateSent != types.DateOf(time.Now()) {
		t.Errorf("Expected dateSent defaulted to today, got %s", rf.DateSent)
	}
}

// TestNewReferralKeepsExplicitValues tests that provided values win
func TestNewReferralKeepsExplicitValues(t *testing.T) {
	rf, err := NewReferral(types.NewID(), CreateReferralRequest{
		ReferredTo: "MRI center",
		Type:       TypeImaging,
		Urgency:    UrgencyUrgent,
		DateSent:   "2026-03-01",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rf.Type != TypeImaging {
		t.Errorf("Expected type %s, got %s", TypeImaging, rf.Type)
	}
	if rf.Urgency != UrgencyUrgent {
		t.Errorf("Expected urgency %s, got %s", UrgencyUrgent, rf.Urgency)
	}
	if rf.DateSent != "2026-03-01" {
		t.Errorf("Expected dateSent 2026-03-01, got %s", rf.DateSent)
	}
}

// TestNewReferralValidation tests required fields and enum checks
func TestNewReferralValidation(t *testing.T) {
	userID := types.NewID()

	tests := []struct {
		name        string
		req         CreateReferralRequest
		expectError bool
	}{
		{"Missing referredTo", CreateReferralRequest{}, true},
		{"Whitespace referredTo", CreateReferralRequest{ReferredTo: "  "}, true},
		{"Unknown type", CreateReferralRequest{ReferredTo: "Lab", Type: "paperwork"}, true},
		{"Unknown urgency", CreateReferralRequest{ReferredTo: "Lab", Urgency: "asap"}, true},
		{"Bad appointment date", CreateReferralRequest{ReferredTo: "Lab", AppointmentDate: "soon"}, true},
		{"Valid referral", CreateReferralRequest{ReferredTo: "Lab"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReferral(userID, tt.req)

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}
