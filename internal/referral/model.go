package referral

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// ReferralType classifies what the referral is for
type ReferralType string

const (
	TypeSpecialist ReferralType = "specialist"
	TypeImaging    ReferralType = "imaging"
	TypeLab        ReferralType = "lab"
	TypeTherapy    ReferralType = "therapy"
	TypeGeneral    ReferralType = "general"
)

// Valid checks if the referral type is a known value
func (t ReferralType) Valid() bool {
	switch t {
	case TypeSpecialist, TypeImaging, TypeLab, TypeTherapy, TypeGeneral:
		return true
	}
	return false
}

// Status of a referral
type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid checks if the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReceived, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Urgency of a referral
type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Valid checks if the urgency is a known value
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

// Referral represents a hand-off from one provider to another: who sent it,
// where it points, and how far along it is.
type Referral struct {
	ID                  types.ID     `json:"id"`
	UserID              types.ID     `json:"userId"`
	FamilyMemberID      types.ID     `json:"familyMemberId,omitempty"`
	ConditionID         types.ID     `json:"conditionId,omitempty"`
	SenderContactID     types.ID     `json:"senderContactId,omitempty"`
	ReferredToContactID types.ID     `json:"referredToContactId,omitempty"`
	Type                ReferralType `json:"type"`
	ReferredTo          string       `json:"referredTo"`
	Reason              string       `json:"reason,omitempty"`
	Status              Status       `json:"status"`
	Urgency             Urgency      `json:"urgency"`
	DateSent            types.Date   `json:"dateSent,omitempty"`
	AppointmentDate     types.Date   `json:"appointmentDate,omitempty"`
	Notes               string       `json:"notes,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// CreateReferralRequest is the payload for creating a referral
type CreateReferralRequest struct {
	FamilyMemberID      types.ID     `json:"familyMemberId,omitempty"`
	ConditionID         types.ID     `json:"conditionId,omitempty"`
	SenderContactID     types.ID     `json:"senderContactId,omitempty"`
	ReferredToContactID types.ID     `json:"referredToContactId,omitempty"`
	Type                ReferralType `json:"type,omitempty"`
	ReferredTo          string       `json:"referredTo"`
	Reason              string       `json:"reason,omitempty"`
	Status              Status       `json:"status,omitempty"`
	Urgency             Urgency      `json:"urgency,omitempty"`
	DateSent            string       `json:"dateSent,omitempty"`
	AppointmentDate     string       `json:"appointmentDate,omitempty"`
	Notes               string       `json:"notes,omitempty"`
}

// UpdateReferralRequest is the payload for updating a referral
type UpdateReferralRequest struct {
	FamilyMemberID      *types.ID     `json:"familyMemberId,omitempty"`
	ConditionID         *types.ID     `json:"conditionId,omitempty"`
	SenderContactID     *types.ID     `json:"senderContactId,omitempty"`
	ReferredToContactID *types.ID     `json:"referredToContactId,omitempty"`
	Type                *ReferralType `json:"type,omitempty"`
	ReferredTo          *string       `json:"referredTo,omitempty"`
	Reason              *string       `json:"reason,omitempty"`
	Status              *Status       `json:"status,omitempty"`
	Urgency             *Urgency      `json:"urgency,omitempty"`
	DateSent            *string       `json:"dateSent,omitempty"`
	AppointmentDate     *string       `json:"appointmentDate,omitempty"`
	Notes               *string       `json:"notes,omitempty"`
}

// ListFilter filters referral listings
type ListFilter struct {
	FamilyMemberID *types.ID
	Status         *Status
	Type           *ReferralType
}

// NewReferral builds a validated referral from a create request.
// Type defaults to general, status to pending, urgency to routine, and
// dateSent to the current date when not provided.
func NewReferral(userID types.ID, req CreateReferralRequest) (*Referral, error) {
	referredTo := strings.TrimSpace(req.ReferredTo)
	if referredTo == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"referredTo": "referredTo is required",
		})
	}

	refType := req.Type
	if refType == "" {
		refType = TypeGeneral
	}
	if !refType.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"type": "unknown referral type",
		})
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"status": "unknown status",
		})
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = UrgencyRoutine
	}
	if !urgency.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"urgency": "unknown urgency",
		})
	}

	dateSent, err := types.ParseDate(req.DateSent)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"dateSent": err.Error(),
		})
	}
	if dateSent.IsZero() {
		dateSent = types.DateOf(time.Now())
	}

	appointment, err := types.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"appointmentDate": err.Error(),
		})
	}

	return &Referral{
		ID:                  types.NewID(),
		UserID:              userID,
		FamilyMemberID:      req.FamilyMemberID,
		ConditionID:         req.ConditionID,
		SenderContactID:     req.SenderContactID,
		ReferredToContactID: req.ReferredToContactID,
		Type:                refType,
		ReferredTo:          referredTo,
		Reason:              strings.TrimSpace(req.Reason),
		Status:              status,
		Urgency:             urgency,
		DateSent:            dateSent,
		AppointmentDate:     appointment,
		Notes:               req.Notes,
	}, nil
}

// Apply merges an update request into the referral
func (rf *Referral) Apply(req UpdateReferralRequest) error {
	if req.ReferredTo != nil {
		referredTo := strings.TrimSpace(*req.ReferredTo)
		if referredTo == "" {
			return errors.Validation("validation failed", map[string]string{
				"referredTo": "referredTo cannot be empty",
			})
		}
		rf.ReferredTo = referredTo
	}
	if req.FamilyMemberID != nil {
		rf.FamilyMemberID = *req.FamilyMemberID
	}
	if req.ConditionID != nil {
		rf.ConditionID = *req.ConditionID
	}
	if req.SenderContactID != nil {
		rf.SenderContactID = *req.SenderContactID
	}
	if req.ReferredToContactID != nil {
		rf.ReferredToContactID = *req.ReferredToContactID
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"type": "unknown referral type",
			})
		}
		rf.Type = *req.Type
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"status": "unknown status",
			})
		}
		rf.Status = *req.Status
	}
	if req.Urgency != nil {
		if !req.Urgency.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"urgency": "unknown urgency",
			})
		}
		rf.Urgency = *req.Urgency
	}
	if req.Reason != nil {
		rf.Reason = strings.TrimSpace(*req.Reason)
	}
	if req.DateSent != nil {
		dateSent, err := types.ParseDate(*req.DateSent)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"dateSent": err.Error(),
			})
		}
		rf.DateSent = dateSent
	}
	if req.AppointmentDate != nil {
		appointment, err := types.ParseDate(*req.AppointmentDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"appointmentDate": err.Error(),
			})
		}
		rf.AppointmentDate = appointment
	}
	if req.Notes != nil {
		rf.Notes = *req.Notes
	}
	return nil
}
