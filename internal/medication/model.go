package medication

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Status of a medication course
type Status string

const (
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusDiscontinued Status = "discontinued"
)

// Valid checks if the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDiscontinued:
		return true
	}
	return false
}

// Medication represents a prescription or over-the-counter course,
// optionally linked to the condition it treats and the prescribing contact.
type Medication struct {
	ID             types.ID   `json:"id"`
	UserID         types.ID   `json:"userId"`
	FamilyMemberID types.ID   `json:"familyMemberId,omitempty"`
	ConditionID    types.ID   `json:"conditionId,omitempty"`
	PrescribedBy   types.ID   `json:"prescribedBy,omitempty"`
	Name           string     `json:"name"`
	Dosage         string     `json:"dosage,omitempty"`
	Frequency      string     `json:"frequency,omitempty"`
	Route          string     `json:"route,omitempty"`
	Status         Status     `json:"status"`
	StartDate      types.Date `json:"startDate,omitempty"`
	EndDate        types.Date `json:"endDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CreateMedicationRequest is the payload for creating a medication
type CreateMedicationRequest struct {
	FamilyMemberID types.ID `json:"familyMemberId,omitempty"`
	ConditionID    types.ID `json:"conditionId,omitempty"`
	PrescribedBy   types.ID `json:"prescribedBy,omitempty"`
	Name           string   `json:"name"`
	Dosage         string   `json:"dosage,omitempty"`
	Frequency      string   `json:"frequency,omitempty"`
	Route          string   `json:"route,omitempty"`
	Status         Status   `json:"status,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// UpdateMedicationRequest is the payload for updating a medication
type UpdateMedicationRequest struct {
	FamilyMemberID *types.ID `json:"familyMemberId,omitempty"`
	ConditionID    *types.ID `json:"conditionId,omitempty"`
	PrescribedBy   *types.ID `json:"prescribedBy,omitempty"`
	Name           *string   `json:"name,omitempty"`
	Dosage         *string   `json:"dosage,omitempty"`
	Frequency      *string   `json:"frequency,omitempty"`
	Route          *string   `json:"route,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	StartDate      *string   `json:"startDate,omitempty"`
	EndDate        *string   `json:"endDate,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// ListFilter filters medication listings
type ListFilter struct {
	FamilyMemberID *types.ID
	ConditionID    *types.ID
	Status         *Status
}

// NewMedication builds a validated medication from a create request.
// Status defaults to active.
func NewMedication(userID types.ID, req CreateMedicationRequest) (*Medication, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"name": "name is required",
		})
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"status": "unknown status",
		})
	}

	start, err := types.ParseDate(req.StartDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"startDate": err.Error(),
		})
	}

	end, err := types.ParseDate(req.EndDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"endDate": err.Error(),
		})
	}

	return &Medication{
		ID:             types.NewID(),
		UserID:         userID,
		FamilyMemberID: req.FamilyMemberID,
		ConditionID:    req.ConditionID,
		PrescribedBy:   req.PrescribedBy,
		Name:           name,
		Dosage:         strings.TrimSpace(req.Dosage),
		Frequency:      strings.TrimSpace(req.Frequency),
		Route:          strings.TrimSpace(req.Route),
		Status:         status,
		StartDate:      start,
		EndDate:        end,
		Notes:          req.Notes,
	}, nil
}

// Apply merges an update request into the medication
func (m *Medication) Apply(req UpdateMedicationRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errors.Validation("validation failed", map[string]string{
				"name": "name cannot be empty",
			})
		}
		m.Name = name
	}
	if req.FamilyMemberID != nil {
		m.FamilyMemberID = *req.FamilyMemberID
	}
	if req.ConditionID != nil {
		m.ConditionID = *req.ConditionID
	}
	if req.PrescribedBy != nil {
		m.PrescribedBy = *req.PrescribedBy
	}
	if req.Dosage != nil {
		m.Dosage = strings.TrimSpace(*req.Dosage)
	}
	if req.Frequency != nil {
		m.Frequency = strings.TrimSpace(*req.Frequency)
	}
	if req.Route != nil {
		m.Route = strings.TrimSpace(*req.Route)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"status": "unknown status",
			})
		}
		m.Status = *req.Status
	}
	if req.StartDate != nil {
		start, err := types.ParseDate(*req.StartDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"startDate": err.Error(),
			})
		}
		m.StartDate = start
	}
	if req.EndDate != nil {
		end, err := types.ParseDate(*req.EndDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"endDate": err.Error(),
			})
		}
		m.EndDate = end
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	return nil
}
