package followup

import (
	"testing"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// TestNewTask tests creating a follow-up task with defaults
func TestNewTask(t *testing.T) {
	userID := types.NewID()

	task, err := NewTask(userID, CreateTaskRequest{
		Purpose:     "Call cardiology to book the echo",
		TriggerDate: "2026-09-10",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID.IsZero() {
		t.Error("Expected non-zero ID")
	}
	if task.UserID != userID {
		t.Errorf("Expected owner %s, got %s", userID, task.UserID)
	}
	if task.Status != StatusPending {
		t.Errorf("Expected status %s, got %s", StatusPending, task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("Expected priority %s, got %s", PriorityMedium, task.Priority)
	}
	if !task.NotificationEnabled {
		t.Error("Expected notifications enabled by default")
	}
	if task.TriggerDate != "2026-09-10" {
		t.Errorf("Expected trigger date 2026-09-10, got %s", task.TriggerDate)
	}
}

// TestNewTaskValidation tests required field checks
func TestNewTaskValidation(t *testing.T) {
	userID := types.NewID()

	tests := []struct {
		name        string
		purpose     string
		triggerDate string
		expectError bool
	}{
		{"Missing purpose", "", "2026-09-10", true},
		{"Whitespace purpose", "   ", "2026-09-10", true},
		{"Missing trigger date", "Call clinic", "", true},
		{"Garbage trigger date", "Call clinic", "sometime soon", true},
		{"Valid task", "Call clinic", "2026-09-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTask(userID, CreateTaskRequest{
				Purpose:     tt.purpose,
				TriggerDate: tt.triggerDate,
			})

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

// TestTaskCompletionStampsTimestamp tests completedAt lifecycle
func TestTaskCompletionStampsTimestamp(t *testing.T) {
	task, err := NewTask(types.NewID(), CreateTaskRequest{
		Purpose:     "Call clinic",
		TriggerDate: "2026-09-10",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	completed := StatusCompleted
	if err := task.Apply(UpdateTaskRequest{Status: &completed}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.CompletedAt == nil {
		t.Fatal("Expected completedAt to be stamped")
	}

	pending := StatusPending
	if err := task.Apply(UpdateTaskRequest{Status: &pending}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.CompletedAt != nil {
		t.Error("Expected completedAt cleared after reopening")
	}
}

// TestTaskApplyRejectsUnknownStatus tests enum validation on update
func TestTaskApplyRejectsUnknownStatus(t *testing.T) {
	task, err := NewTask(types.NewID(), CreateTaskRequest{
		Purpose:     "Call clinic",
		TriggerDate: "2026-09-10",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	bogus := Status("snoozed")
	if err := task.Apply(UpdateTaskRequest{Status: &bogus}); err == nil {
		t.Error("Expected error but got none")
	}
}
