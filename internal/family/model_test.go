package family

import (
	"testing"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// TestNewMember tests creating a family member with defaults
func TestNewMember(t *testing.T) {
	userID := types.NewID()

	m, err := NewMember(userID, CreateMemberRequest{
		Name:        "  Milica  ",
		DateOfBirth: "2014-06-02",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if m.ID.IsZero() {
		t.Error("Expected non-zero ID")
	}
	if m.UserID != userID {
		t.Errorf("Expected owner %s, got %s", userID, m.UserID)
	}
	if m.Name != "Milica" {
		t.Errorf("Expected trimmed name, got %q", m.Name)
	}
	if m.Relationship != RelationshipOther {
		t.Errorf("Expected relationship %s, got %s", RelationshipOther, m.Relationship)
	}
	if m.DateOfBirth != "2014-06-02" {
		t.Errorf("Expected date of birth 2014-06-02, got %s", m.DateOfBirth)
	}
}

// TestNewMemberValidation tests validation when creating a member
func TestNewMemberValidation(t *testing.T) {
	userID := types.NewID()

	tests := []struct {
		name        string
		req         CreateMemberRequest
		expectError bool
	}{
		{"Empty name", CreateMemberRequest{Name: ""}, true},
		{"Whitespace name", CreateMemberRequest{Name: "   "}, true},
		{"Unknown relationship", CreateMemberRequest{Name: "Milica", Relationship: "cousin"}, true},
		{"Bad date of birth", CreateMemberRequest{Name: "Milica", DateOfBirth: "June 2nd"}, true},
		{"Valid member", CreateMemberRequest{Name: "Milica", Relationship: RelationshipChild}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMember(userID, tt.req)

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

// TestMemberApply tests partial updates
func TestMemberApply(t *testing.T) {
	m, err := NewMember(types.NewID(), CreateMemberRequest{
		Name:         "Milica",
		Relationship: RelationshipChild,
		Gender:       "female",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	name := "Milica Petrov"
	if err := m.Apply(UpdateMemberRequest{Name: &name}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if m.Name != "Milica Petrov" {
		t.Errorf("Expected updated name, got %q", m.Name)
	}
	if m.Relationship != RelationshipChild {
		t.Errorf("Expected relationship untouched, got %s", m.Relationship)
	}
	if m.Gender != "female" {
		t.Errorf("Expected gender untouched, got %q", m.Gender)
	}

	empty := "  "
	if err := m.Apply(UpdateMemberRequest{Name: &empty}); err == nil {
		t.Error("Expected error but got none")
	}
}
