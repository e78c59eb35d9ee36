// Package event owns the user's calendar events: an in-memory list kept
// in sync with a durable slot. The store is the single owner of the list;
// views render from copies handed out by List.
package event

import (
	"encoding/json"

	appLog "studycal/internal/log"
	"studycal/internal/model"
	"studycal/internal/slot"
)

// SlotKey is the durable slot the event list is serialized into.
const SlotKey = "mycalendar.events.v1"

// Store holds the event list in insertion order. Every mutation is
// followed by a full-list write to the slot; a failed write is logged and
// swallowed, so the in-memory list stays correct for the session even
// when durability is temporarily unavailable.
type Store struct {
	slots  slot.Store
	events []model.Event
}

// NewStore creates an empty store backed by the given slot store.
// Call Load before first use.
func NewStore(slots slot.Store) *Store {
	return &Store{slots: slots, events: []model.Event{}}
}

// Load initializes the list from the durable slot. Missing or malformed
// data is treated as "no events"; it never fails.
func (s *Store) Load() {
	s.events = []model.Event{}

	data, ok, err := s.slots.Read(SlotKey)
	if err != nil {
		appLog.Error("failed to read events slot", err, "key", SlotKey)
		return
	}
	if !ok {
		return
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		appLog.Error("malformed events slot, starting empty", err, "key", SlotKey)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	s.events = events
}

// List returns the current events in insertion order. The returned slice
// is a copy; mutating it does not affect the store.
func (s *Store) List() []model.Event {
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (model.Event, bool) {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Add appends ev and persists the list.
func (s *Store) Add(ev model.Event) {
	s.events = append(s.events, ev)
	s.persist()
}

// Update replaces the fields of the event matching id, keeping its
// position and its id. Unknown ids are a no-op.
func (s *Store) Update(id string, ev model.Event) {
	for i := range s.events {
		if s.events[i].ID == id {
			ev.ID = id
			s.events[i] = ev
			s.persist()
			return
		}
	}
}

// Remove deletes the event matching id. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.persist()
			return
		}
	}
}

// persist serializes the full list into the slot. Failures are logged and
// swallowed per the durability contract.
func (s *Store) persist() {
	data, err := json.Marshal(s.events)
	if err != nil {
		appLog.Error("failed to serialize events", err, "count", len(s.events))
		return
	}
	if err := s.slots.Write(SlotKey, data); err != nil {
		appLog.Error("failed to write events slot", err, "key", SlotKey, "count", len(s.events))
	}
}
