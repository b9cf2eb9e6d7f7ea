package activity

import (
	"context"
	"sync"

	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/events"
	"github.com/AfshanNavazdeen/LifeLogAI/internal/shared/types"
)

// DefaultCapacity is how many recent events the feed retains
const DefaultCapacity = 200

// Entry is one item in the activity feed
type Entry struct {
	EventID   string   `json:"eventId"`
	Type      string   `json:"type"`
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp"`
	ActorID   types.ID `json:"actorId,omitempty"`
	Data      any      `json:"data,omitempty"`
}

// Feed keeps a bounded in-memory window of recent domain events per actor.
// It fills from the event bus; on restart the window starts empty.
type Feed struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

// NewFeed creates a feed retaining up to capacity entries
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity}
}

// Start subscribes the feed to all domain events on the bus
func (f *Feed) Start(ctx context.Context, bus *events.Bus) error {
	return bus.Subscribe(ctx, "*", f.Record)
}

// Record appends an event to the feed, evicting the oldest entry when full
func (f *Feed) Record(ctx context.Context, event events.Event) error {
	entry := Entry{
		EventID:   event.ID,
		Type:      event.Type,
		Source:    event.Source,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ActorID:   event.ActorID,
		Data:      event.Data,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, entry)
	if len(f.entries) > f.capacity {
		f.entries = f.entries[len(f.entries)-f.capacity:]
	}

	return nil
}

// Recent returns up to limit entries for the actor, newest first
func (f *Feed) Recent(actorID types.ID, limit int) []Entry {
	if limit <= 0 || limit > f.capacity {
		limit = f.capacity
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []Entry{}
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].ActorID == actorID {
			out = append(out, f.entries[i])
		}
	}
	return out
}
