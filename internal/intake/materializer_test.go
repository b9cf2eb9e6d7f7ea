package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/condition"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/contact"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/family"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/followup"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/medication"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/referral"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

type fakeEntityStore struct {
	members    []family.Member
	membersErr error
	createErr  error

	contacts    []*contact.Contact
	referrals   []*referral.Referral
	followUps   []*followup.Task
	conditions  []*condition.Condition
	medications []*medication.Medication
}

func (s *fakeEntityStore) CreateContact(ctx context.Context, c *contact.Contact) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.contacts = append(s.contacts, c)
	return nil
}

func (s *fakeEntityStore) CreateReferral(ctx context.Context, rf *referral.Referral) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.referrals = append(s.referrals, rf)
	return nil
}

func (s *fakeEntityStore) CreateFollowUp(ctx context.Context, t *followup.Task) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.followUps = append(s.followUps, t)
	return nil
}

func (s *fakeEntityStore) CreateCondition(ctx context.Context, c *condition.Condition) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.conditions = append(s.conditions, c)
	return nil
}

func (s *fakeEntityStore) CreateMedication(ctx context.Context, m *medication.Medication) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.medications = append(s.medications, m)
	return nil
}

func (s *fakeEntityStore) ListFamilyMembers(ctx context.Context, userID types.ID) ([]family.Member, error) {
	if s.membersErr != nil {
		return nil, s.membersErr
	}
	return s.members, nil
}

func mustItem(t *testing.T, itemType ItemType, payload any) ParsedItem {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return ParsedItem{Type: itemType, Data: data}
}

// TestMaterializeEmptySelection tests that nothing selected yields a well
// formed empty result
func TestMaterializeEmptySelection(t *testing.T) {
	m := NewMaterializer(&fakeEntityStore{})

	result := m.Materialize(context.Background(), types.NewID(), nil)

	if result.Created.Contacts == nil || result.Created.Referrals == nil ||
		result.Created.FollowUps == nil || result.Created.Conditions == nil ||
		result.Created.Medications == nil {
		t.Error("Expected non-nil created slices")
	}
	if result.Skipped == nil {
		t.Error("Expected non-nil skipped slice")
	}
	if len(result.UnresolvedNames) != 0 {
		t.Errorf("Expected no unresolved names, got %v", result.UnresolvedNames)
	}
}

// TestMaterializeCreatesRecords tests the happy path across types
func TestMaterializeCreatesRecords(t *testing.T) {
	store := &fakeEntityStore{}
	m := NewMaterializer(store)
	userID := types.NewID()

	items := []ParsedItem{
		mustItem(t, ItemTypeContact, ContactPayload{Name: "Dr. Petrov", Phone: "011-555-1234"}),
		mustItem(t, ItemTypeReferral, ReferralPayload{ReferredTo: "Cardiology"}),
		mustItem(t, ItemTypeFollowUp, FollowUpPayload{Purpose: "Book scan", TriggerDate: "2026-09-10"}),
		mustItem(t, ItemTypeCondition, ConditionPayload{Name: "Hypertension"}),
		mustItem(t, ItemTypeMedication, MedicationPayload{Name: "Lisinopril", Dosage: "10mg"}),
	}

	result := m.Materialize(context.Background(), userID, items)

	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped items, got %v", result.Skipped)
	}
	if len(result.Created.Contacts) != 1 ||
		len(result.Created.Referrals) != 1 ||
		len(result.Created.FollowUps) != 1 ||
		len(result.Created.Conditions) != 1 ||
		len(result.Created.Medications) != 1 {
		t.Errorf("Expected one record per type, got %+v", result.Created)
	}

	if store.contacts[0].UserID != userID {
		t.Errorf("Expected contact owned by %s, got %s", userID, store.contacts[0].UserID)
	}
}

// TestMaterializeDefaults tests the defaults stamped on sparse items
func TestMaterializeDefaults(t *testing.T) {
	store := &fakeEntityStore{}
	m := NewMaterializer(store)

	items := []ParsedItem{
		mustItem(t, ItemTypeReferral, ReferralPayload{ReferredTo: "Cardiology"}),
		mustItem(t, ItemTypeCondition, ConditionPayload{Name: "Hypertension"}),
		mustItem(t, ItemTypeFollowUp, FollowUpPayload{TriggerDate: "2026-09-10"}),
	}

	result := m.Materialize(context.Background(), types.NewID(), items)
	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped items, got %v", result.Skipped)
	}

	rf := result.Created.Referrals[0]
	if rf.Type != referral.TypeGeneral {
		t.Errorf("Expected general referral type, got %s", rf.Type)
	}
	if rf.Status != referral.StatusPending {
		t.Errorf("Expected pending status, got %s", rf.Status)
	}
	if rf.Urgency != referral.UrgencyRoutine {
		t.Errorf("Expected routine urgency, got %s", rf.Urgency)
	}
	if rf.DateSent.IsZero() {
		t.Error("Expected dateSent to default to today")
	}

	c := result.Created.Conditions[0]
	if c.Type != condition.TypeEpisodic {
		t.Errorf("Expected episodic condition type, got %s", c.Type)
	}
	if c.Status != condition.StatusActive {
		t.Errorf("Expected active status, got %s", c.Status)
	}

	task := result.Created.FollowUps[0]
	if task.Purpose != "Follow up" {
		t.Errorf("Expected default purpose, got %q", task.Purpose)
	}
}

// TestMaterializeSkipAndContinue tests that a bad item does not block the rest
func TestMaterializeSkipAndContinue(t *testing.T) {
	store := &fakeEntityStore{}
	m := NewMaterializer(store)

	items := []ParsedItem{
		mustItem(t, ItemTypeFollowUp, FollowUpPayload{Purpose: "Call clinic"}),
		mustItem(t, ItemTypeContact, ContactPayload{Name: "Dr. Petrov"}),
	}

	result := m.Materialize(context.Background(), types.NewID(), items)

	if len(result.Created.Contacts) != 1 {
		t.Errorf("Expected the contact to be created, got %d", len(result.Created.Contacts))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected one skipped item, got %d", len(result.Skipped))
	}
	if !strings.Contains(result.Skipped[0].Reason, "triggerDate") {
		t.Errorf("Expected reason to name triggerDate, got %q", result.Skipped[0].Reason)
	}
}

// TestMaterializeNameResolution tests family member name matching
func TestMaterializeNameResolution(t *testing.T) {
	milica := family.Member{ID: types.NewID(), Name: "Milica"}
	store := &fakeEntityStore{members: []family.Member{milica}}
	m := NewMaterializer(store)

	item := mustItem(t, ItemTypeCondition, ConditionPayload{Name: "Asthma"})
	item.FamilyMemberName = "milica"

	result := m.Materialize(context.Background(), types.NewID(), []ParsedItem{item})

	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped items, got %v", result.Skipped)
	}
	if got := result.Created.Conditions[0].FamilyMemberID; got != milica.ID {
		t.Errorf("Expected familyMemberId %s, got %s", milica.ID, got)
	}
	if len(result.UnresolvedNames) != 0 {
		t.Errorf("Expected no unresolved names, got %v", result.UnresolvedNames)
	}
}

// TestMaterializeExplicitIDWins tests that a payload id beats the name
func TestMaterializeExplicitIDWins(t *testing.T) {
	milica := family.Member{ID: types.NewID(), Name: "Milica"}
	store := &fakeEntityStore{members: []family.Member{milica}}
	m := NewMaterializer(store)

	explicit := types.NewID()
	item := mustItem(t, ItemTypeCondition, ConditionPayload{
		Name:           "Asthma",
		FamilyMemberID: explicit.String(),
	})
	item.FamilyMemberName = "Milica"

	result := m.Materialize(context.Background(), types.NewID(), []ParsedItem{item})

	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped items, got %v", result.Skipped)
	}
	if got := result.Created.Conditions[0].FamilyMemberID; got != explicit {
		t.Errorf("Expected familyMemberId %s, got %s", explicit, got)
	}
}

// TestMaterializeAmbiguousName tests that duplicate names stay unresolved
func TestMaterializeAmbiguousName(t *testing.T) {
	store := &fakeEntityStore{members: []family.Member{
		{ID: types.NewID(), Name: "Ana"},
		{ID: types.NewID(), Name: "ana"},
	}}
	m := NewMaterializer(store)

	first := mustItem(t, ItemTypeCondition, ConditionPayload{Name: "Asthma"})
	first.FamilyMemberName = "Ana"
	second := mustItem(t, ItemTypeMedication, MedicationPayload{Name: "Ventolin"})
	second.FamilyMemberName = "Ana"

	result := m.Materialize(context.Background(), types.NewID(), []ParsedItem{first, second})

	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped items, got %v", result.Skipped)
	}
	if result.Created.Conditions[0].FamilyMemberID != "" {
		t.Error("Expected ambiguous name to leave familyMemberId absent")
	}
	if len(result.UnresolvedNames) != 1 || result.UnresolvedNames[0] != "Ana" {
		t.Errorf("Expected [Ana] unresolved once, got %v", result.UnresolvedNames)
	}
}

// TestMaterializeMemberListFailure tests that resolution failure is non-fatal
func TestMaterializeMemberListFailure(t *testing.T) {
	store := &fakeEntityStore{membersErr: errors.New("db down")}
	m := NewMaterializer(store)

	item := mustItem(t, ItemTypeCondition, ConditionPayload{Name: "Asthma"})
	item.FamilyMemberName = "Milica"

	result := m.Materialize(context.Background(), types.NewID(), []ParsedItem{item})

	if len(result.Created.Conditions) != 1 {
		t.Fatalf("Expected the condition to be created, got %v", result.Skipped)
	}
	if len(result.UnresolvedNames) != 1 {
		t.Errorf("Expected the name to stay unresolved, got %v", result.UnresolvedNames)
	}
}

// TestMaterializeStoreFailure tests that a store error skips just that item
func TestMaterializeStoreFailure(t *testing.T) {
	store := &fakeEntityStore{createErr: errors.New("insert failed")}
	m := NewMaterializer(store)

	items := []ParsedItem{
		mustItem(t, ItemTypeContact, ContactPayload{Name: "Dr. Petrov"}),
	}

	result := m.Materialize(context.Background(), types.NewID(), items)

	if len(result.Created.Contacts) != 0 {
		t.Errorf("Expected no contacts created, got %d", len(result.Created.Contacts))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected one skipped item, got %d", len(result.Skipped))
	}
}
