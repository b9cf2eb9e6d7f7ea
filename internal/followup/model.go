package followup

import (
	"strings"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/errors"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// Status of a follow-up task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusWaiting    Status = "waiting"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid checks if the status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusWaiting, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority of a follow-up task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid checks if the priority is a known value
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a dated reminder: call a clinic, book an appointment,
// chase a referral. Tasks can nest through parentTaskId.
type Task struct {
	ID                  types.ID   `json:"id"`
	UserID              types.ID   `json:"userId"`
	FamilyMemberID      types.ID   `json:"familyMemberId,omitempty"`
	ConditionID         types.ID   `json:"conditionId,omitempty"`
	ContactID           types.ID   `json:"contactId,omitempty"`
	ReferralID          types.ID   `json:"referralId,omitempty"`
	ParentTaskID        types.ID   `json:"parentTaskId,omitempty"`
	Purpose             string     `json:"purpose"`
	Description         string     `json:"description,omitempty"`
	TriggerDate         types.Date `json:"triggerDate"`
	TriggerTime         string     `json:"triggerTime,omitempty"`
	Status              Status     `json:"status"`
	Priority            Priority   `json:"priority"`
	NotificationEnabled bool       `json:"notificationEnabled"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// CreateTaskRequest is the payload for creating a follow-up task
type CreateTaskRequest struct {
	FamilyMemberID      types.ID `json:"familyMemberId,omitempty"`
	ConditionID         types.ID `json:"conditionId,omitempty"`
	ContactID           types.ID `json:"contactId,omitempty"`
	ReferralID          types.ID `json:"referralId,omitempty"`
	ParentTaskID        types.ID `json:"parentTaskId,omitempty"`
	Purpose             string   `json:"purpose"`
	Description         string   `json:"description,omitempty"`
	TriggerDate         string   `json:"triggerDate"`
	TriggerTime         string   `json:"triggerTime,omitempty"`
	Status              Status   `json:"status,omitempty"`
	Priority            Priority `json:"priority,omitempty"`
	NotificationEnabled *bool    `json:"notificationEnabled,omitempty"`
}

// UpdateTaskRequest is the payload for updating a follow-up task
type UpdateTaskRequest struct {
	FamilyMemberID      *types.ID `json:"familyMemberId,omitempty"`
	ConditionID         *types.ID `json:"conditionId,omitempty"`
	ContactID           *types.ID `json:"contactId,omitempty"`
	ReferralID          *types.ID `json:"referralId,omitempty"`
	ParentTaskID        *types.ID `json:"parentTaskId,omitempty"`
	Purpose             *string   `json:"purpose,omitempty"`
	Description         *string   `json:"description,omitempty"`
	TriggerDate         *string   `json:"triggerDate,omitempty"`
	TriggerTime         *string   `json:"triggerTime,omitempty"`
	Status              *Status   `json:"status,omitempty"`
	Priority            *Priority `json:"priority,omitempty"`
	NotificationEnabled *bool     `json:"notificationEnabled,omitempty"`
}

// ListFilter filters follow-up task listings. DaysAhead limits results to
// tasks due within the next N days.
type ListFilter struct {
	FamilyMemberID *types.ID
	Status         *Status
	DaysAhead      int
}

// NewTask builds a validated follow-up task from a create request.
// Purpose and triggerDate are required; priority defaults to medium and
// notifications default to enabled.
func NewTask(userID types.ID, req CreateTaskRequest) (*Task, error) {
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, errors.Validation("validation failed", map[string]string{
			"purpose": "purpose is required",
		})
	}

	triggerDate, err := types.ParseDate(req.TriggerDate)
	if err != nil {
		return nil, errors.Validation("validation failed", map[string]string{
			"triggerDate": err.Error(),
		})
	}
	if triggerDate.IsZero() {
		return nil, errors.Validation("validation failed", map[string]string{
			"triggerDate": "triggerDate is required",
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

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, errors.Validation("validation failed", map[string]string{
			"priority": "unknown priority",
		})
	}

	notify := true
	if req.NotificationEnabled != nil {
		notify = *req.NotificationEnabled
	}

	return &Task{
		ID:                  types.NewID(),
		UserID:              userID,
		FamilyMemberID:      req.FamilyMemberID,
		ConditionID:         req.ConditionID,
		ContactID:           req.ContactID,
		ReferralID:          req.ReferralID,
		ParentTaskID:        req.ParentTaskID,
		Purpose:             purpose,
		Description:         req.Description,
		TriggerDate:         triggerDate,
		TriggerTime:         strings.TrimSpace(req.TriggerTime),
		Status:              status,
		Priority:            priority,
		NotificationEnabled: notify,
	}, nil
}

// Apply merges an update request into the task. Moving to completed stamps
// completedAt; moving away clears it.
func (t *Task) Apply(req UpdateTaskRequest) error {
	if req.Purpose != nil {
		purpose := strings.TrimSpace(*req.Purpose)
		if purpose == "" {
			return errors.Validation("validation failed", map[string]string{
				"purpose": "purpose cannot be empty",
			})
		}
		t.Purpose = purpose
	}
	if req.FamilyMemberID != nil {
		t.FamilyMemberID = *req.FamilyMemberID
	}
	if req.ConditionID != nil {
		t.ConditionID = *req.ConditionID
	}
	if req.ContactID != nil {
		t.ContactID = *req.ContactID
	}
	if req.ReferralID != nil {
		t.ReferralID = *req.ReferralID
	}
	if req.ParentTaskID != nil {
		t.ParentTaskID = *req.ParentTaskID
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.TriggerDate != nil {
		triggerDate, err := types.ParseDate(*req.TriggerDate)
		if err != nil {
			return errors.Validation("validation failed", map[string]string{
				"triggerDate": err.Error(),
			})
		}
		if triggerDate.IsZero() {
			return errors.Validation("validation failed", map[string]string{
				"triggerDate": "triggerDate cannot be empty",
			})
		}
		t.TriggerDate = triggerDate
	}
	if req.TriggerTime != nil {
		t.TriggerTime = strings.TrimSpace(*req.TriggerTime)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"status": "unknown status",
			})
		}
		if *req.Status == StatusCompleted && t.Status != StatusCompleted {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		if *req.Status != StatusCompleted {
			t.CompletedAt = nil
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return errors.Validation("validation failed", map[string]string{
				"priority": "unknown priority",
			})
		}
		t.Priority = *req.Priority
	}
	if req.NotificationEnabled != nil {
		t.NotificationEnabled = *req.NotificationEnabled
	}
	return nil
}
