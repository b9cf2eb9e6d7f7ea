package family

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Relationship of a family member to the account owner
type Relationship string

const (
	RelationshipSelf    Relationship = "self"
	RelationshipSpouse  Relationship = "spouse"
	RelationshipChild   Relationship = "child"
	RelationshipParent  Relationship = "parent"
	RelationshipSibling Relationship = "sibling"
	RelationshipOther   Relationship = "other"
)

// Valid checks if the relationship is a known value
func (r Relationship) Valid() bool {
	switch r {
	case RelationshipSelf, RelationshipSpouse, RelationshipChild,
		RelationshipParent, RelationshipSibling, RelationshipOther:
		return true
	}
	return false
}

// Member represents a person whose medical records are tracked under an
// account. Records across the system attach to a member through
// familyMemberId.
type Member struct {
	ID           types.ID     `json:"id"`
	UserID       types.ID     `json:"userId"`
	Name         string       `json:"name"`
	Relationship Relationship `json:"relationship"`
	DateOfBirth  types.Date   `json:"dateOfBirth,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// CreateMemberRequest is the payload for creating a family member
type CreateMemberRequest struct {
	Name         string       `json:"name"`
	Relationship Relationship `json:"relationship"`
	DateOfBirth  string       `json:"dateOfBirth,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// UpdateMemberRequest is the payload for updating a family member
type UpdateMemberRequest struct {
	Name         *string       `json:"name,omitempty"`
	Relationship *Relationship `json:"relationship,omitempty"`
	DateOfBirth  *string       `json:"dateOfBirth,omitempty"`
	Gender       *string       `json:"gender,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
}

// ListFilter filters family member listings
type ListFilter struct {
	Relationship *Relationship
}

// NewMember builds a validated member from a create request
func NewMember(userID types.ID, req CreateMemberRequest) (*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"name": "name is required",
		})
	}

	relationship := req.Relationship
	if relationship == "" {
		relationship = RelationshipOther
	}
	if !relationship.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"relationship": "unknown relationship",
		})
	}

	dob, err := types.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"dateOfBirth": err.Error(),
		})
	}

	return &Member{
		ID:           types.NewID(),
		UserID:       userID,
		Name:         name,
		Relationship: relationship,
		DateOfBirth:  dob,
		Gender:       strings.TrimSpace(req.Gender),
		Notes:        req.Notes,
	}, nil
}

// Apply merges an update request into the member
func (m *Member) Apply(req UpdateMemberRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errors.Validation("validation failed", map[string]string{
				"name": "name cannot be empty",
			})
		}
		m.Name = name
	}
	if req.Relationship != nil {
		if !req.Relationship.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"relationship": "unknown relationship",
			})
		}
		m.Relationship = *req.Relationship
	}
	if req.DateOfBirth != nil {
		dob, err := types.ParseDate(*req.DateOfBirth)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"dateOfBirth": err.Error(),
			})
		}
		m.DateOfBirth = dob
	}
	if req.Gender != nil {
		m.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	return nil
}
