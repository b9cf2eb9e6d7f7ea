package condition

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// ConditionType classifies how a condition runs its course
type ConditionType string

const (
	TypeChronic    ConditionType = "chronic"
	TypeEpisodic   ConditionType = "episodic"
	TypeDiagnosis  ConditionType = "diagnosis"
	TypePreventive ConditionType = "preventive"
)

// Valid checks if the condition type is a known value
func (t ConditionType) Valid() bool {
	switch t {
	case TypeChronic, TypeEpisodic, TypeDiagnosis, TypePreventive:
		return true
	}
	return false
}

// Status of a condition
type Status string

const (
	StatusActive     Status = "active"
	StatusMonitoring Status = "monitoring"
	StatusResolved   Status = "resolved"
)

// Valid checks if the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMonitoring, StatusResolved:
		return true
	}
	return false
}

// Condition represents a diagnosis, illness or preventive-care item
// tracked for a family member.
type Condition struct {
	ID             types.ID      `json:"id"`
	UserID         types.ID      `json:"userId"`
	FamilyMemberID types.ID      `json:"familyMemberId,omitempty"`
	Name           string        `json:"name"`
	Type           ConditionType `json:"type"`
	Status         Status        `json:"status"`
	Severity       string        `json:"severity,omitempty"`
	DiagnosedDate  types.Date    `json:"diagnosedDate,omitempty"`
	ResolvedDate   types.Date    `json:"resolvedDate,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// CreateConditionRequest is the payload for creating a condition
type CreateConditionRequest struct {
	FamilyMemberID types.ID      `json:"familyMemberId,omitempty"`
	Name           string        `json:"name"`
	Type           ConditionType `json:"type,omitempty"`
	Status         Status        `json:"status,omitempty"`
	Severity       string        `json:"severity,omitempty"`
	DiagnosedDate  string        `json:"diagnosedDate,omitempty"`
	ResolvedDate   string        `json:"resolvedDate,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

// UpdateConditionRequest is the payload for updating a condition
type UpdateConditionRequest struct {
	FamilyMemberID *types.ID      `json:"familyMemberId,omitempty"`
	Name           *string        `json:"name,omitempty"`
	Type           *ConditionType `json:"type,omitempty"`
	Status         *Status        `json:"status,omitempty"`
	Severity       *string        `json:"severity,omitempty"`
	DiagnosedDate  *string        `json:"diagnosedDate,omitempty"`
	ResolvedDate   *string        `json:"resolvedDate,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// ListFilter filters condition listings
type ListFilter struct {
	FamilyMemberID *types.ID
	Type           *ConditionType
	Status         *Status
}

// NewCondition builds a validated condition from a create request.
// Type defaults to episodic and status to active.
func NewCondition(userID types.ID, req CreateConditionRequest) (*Condition, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"name": "name is required",
		})
	}

	condType := req.Type
	if condType == "" {
		condType = TypeEpisodic
	}
	if !condType.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"type": "unknown condition type",
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

	diagnosed, err := types.ParseDate(req.DiagnosedDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"diagnosedDate": err.Error(),
		})
	}

	resolved, err := types.ParseDate(req.ResolvedDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"resolvedDate": err.Error(),
		})
	}

	return &Condition{
		ID:             types.NewID(),
		UserID:         userID,
		FamilyMemberID: req.FamilyMemberID,
		Name:           name,
		Type:           condType,
		Status:         status,
		Severity:       strings.TrimSpace(req.Severity),
		DiagnosedDate:  diagnosed,
		ResolvedDate:   resolved,
		Notes:          req.Notes,
	}, nil
}

// Apply merges an update request into the condition
func (c *Condition) Apply(req UpdateConditionRequest) error {
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
	if req.Type != nil {
		if !req.Type.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"type": "unknown condition type",
			})
		}
		c.Type = *req.Type
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"status": "unknown status",
			})
		}
		c.Status = *req.Status
	}
	if req.Severity != nil {
		c.Severity = strings.TrimSpace(*req.Severity)
	}
	if req.DiagnosedDate != nil {
		diagnosed, err := types.ParseDate(*req.DiagnosedDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"diagnosedDate": err.Error(),
			})
		}
		c.DiagnosedDate = diagnosed
	}
	if req.ResolvedDate != nil {
		resolved, err := types.ParseDate(*req.ResolvedDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"resolvedDate": err.Error(),
			})
		}
		c.ResolvedDate = resolved
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	return nil
}
