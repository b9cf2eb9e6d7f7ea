package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

func recordEvent(t *testing.T, f *Feed, actorID types.ID, eventType string) {
	t.Helper()
	event := events.NewEvent(eventType, "test", nil)
	event.ActorID = actorID
	if err := f.Record(context.Background(), event); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

// TestFeedRecentFiltersByActor tests that users only see their own activity
func TestFeedRecentFiltersByActor(t *testing.T) {
	f := NewFeed(10)
	alice := types.NewID()
	bob := types.NewID()

	recordEvent(t, f, alice, "condition.created")
	recordEvent(t, f, bob, "contact.created")
	recordEvent(t, f, alice, "intake.confirmed")

	entries := f.Recent(alice, 10)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Type != "intake.confirmed" {
		t.Errorf("Expected newest first, got %s", entries[0].Type)
	}
}

// TestFeedEvictsOldest tests the capacity bound
func TestFeedEvictsOldest(t *testing.T) {
	f := NewFeed(3)
	actor := types.NewID()

	for i := 0; i < 5; i++ {
		recordEvent(t, f, actor, fmt.Sprintf("event.%d", i))
	}

	entries := f.Recent(actor, 10)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Type != "event.4" {
		t.Errorf("Expected newest entry first, got %s", entries[0].Type)
	}
	if entries[2].Type != "event.2" {
		t.Errorf("Expected oldest surviving entry last, got %s", entries[2].Type)
	}
}

// TestFeedRecentHonorsConfiguredCapacity tests that a feed sized above the
// default can return its full window
func TestFeedRecentHonorsConfiguredCapacity(t *testing.T) {
	f := NewFeed(DefaultCapacity + 100)
	actor := types.NewID()

	for i := 0; i < DefaultCapacity+50; i++ {
		recordEvent(t, f, actor, fmt.Sprintf("event.%d", i))
	}

	entries := f.Recent(actor, 0)
	if len(entries) != DefaultCapacity+50 {
		t.Fatalf("Expected %d entries, got %d", DefaultCapacity+50, len(entries))
	}

	entries = f.Recent(actor, DefaultCapacity+10)
	if len(entries) != DefaultCapacity+10 {
		t.Errorf("Expected %d entries, got %d", DefaultCapacity+10, len(entries))
	}
}

// TestFeedRecordKeepsTimestamp tests that the event timestamp is preserved
func TestFeedRecordKeepsTimestamp(t *testing.T) {
	f := NewFeed(10)
	actor := types.NewID()

	event := events.NewEvent("medication.created", "medication", nil)
	event.ActorID = actor
	event.Timestamp = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	if err := f.Record(context.Background(), event); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entries := f.Recent(actor, 1)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Timestamp != "2026-03-15T10:30:00Z" {
		t.Errorf("Expected preserved timestamp, got %s", entries[0].Timestamp)
	}
}
