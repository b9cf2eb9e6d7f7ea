package contact

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Contact represents a doctor, clinic, pharmacy or other medical
// organization in the user's care network.
type Contact struct {
	ID             types.ID  `json:"id"`
	UserID         types.ID  `json:"userId"`
	FamilyMemberID types.ID  `json:"familyMemberId,omitempty"`
	Name           string    `json:"name"`
	Role           string    `json:"role,omitempty"`
	Specialty      string    `json:"specialty,omitempty"`
	Clinic         string    `json:"clinic,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateContactRequest is the payload for creating a contact
type CreateContactRequest struct {
	FamilyMemberID types.ID `json:"familyMemberId,omitempty"`
	Name           string   `json:"name"`
	Role           string   `json:"role,omitempty"`
	Specialty      string   `json:"specialty,omitempty"`
	Clinic         string   `json:"clinic,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Email          string   `json:"email,omitempty"`
	Address        string   `json:"address,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// UpdateContactRequest is the payload for updating a contact
type UpdateContactRequest struct {
	FamilyMemberID *types.ID `json:"familyMemberId,omitempty"`
	Name           *string   `json:"name,omitempty"`
	Role           *string   `json:"role,omitempty"`
	Specialty      *string   `json:"specialty,omitempty"`
	Clinic         *string   `json:"clinic,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// ListFilter filters contact listings
type ListFilter struct {
	FamilyMemberID *types.ID
	Specialty      string
	Search         string
}

// NewContact builds a validated contact from a create request
func NewContact(userID types.ID, req CreateContactRequest) (*Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"name": "name is required",
		})
	}

	return &Contact{
		ID:             types.NewID(),
		UserID:         userID,
		FamilyMemberID: req.FamilyMemberID,
		Name:           name,
		Role:           strings.TrimSpace(req.Role),
		Specialty:      strings.TrimSpace(req.Specialty),
		Clinic:         strings.TrimSpace(req.Clinic),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Address:        strings.TrimSpace(req.Address),
		Notes:          req.Notes,
	}, nil
}

// Apply merges an update request into the contact
func (c *Contact) Apply(req UpdateContactRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errors.Validation("validation failed", map[string]string{
				"name": "name cannot be empty",
			})
		}
		c.Name = name
	}
	if req.FamilyMemberID != nil {
		c.FamilyMemberID = *req.FamilyMemberID
	}
	if req.Role != nil {
		c.Role = strings.TrimSpace(*req.Role)
	}
	if req.Specialty != nil {
		c.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.Clinic != nil {
		c.Clinic = strings.TrimSpace(*req.Clinic)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		c.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	return nil
}
