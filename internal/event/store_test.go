package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studycal/internal/model"
	"studycal/internal/slot"
)

// failingSlots wraps a Store and fails every write.
type failingSlots struct {
	slot.Store
}

func (f failingSlots) Write(string, []byte) error {
	return errors.New("disk full")
}

func exam(id string) model.Event {
	return model.Event{
		ID:     id,
		Title:  "Exam",
		Start:  "2025-03-10T12:00",
		End:    "2025-03-10T13:00",
		AllDay: false,
	}
}

func TestStore_LoadEmptySlot(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	assert.Empty(t, s.List())
}

func TestStore_LoadMalformedSlot(t *testing.T) {
	slots := slot.NewMemory()
	require.NoError(t, slots.Write(SlotKey, []byte("{not json")))

	s := NewStore(slots)
	s.Load()
	assert.Empty(t, s.List(), "malformed data is treated as no data")
}

func TestStore_RoundTripThroughSlot(t *testing.T) {
	slots := slot.NewMemory()

	s := NewStore(slots)
	s.Load()
	s.Add(exam("a"))
	s.Add(exam("b"))
	s.Update("a", model.Event{Title: "Final Exam", Start: "2025-03-12", AllDay: true})
	s.Remove("b")

	// A fresh store over the same slot sees the same list.
	reloaded := NewStore(slots)
	reloaded.Load()
	assert.Equal(t, s.List(), reloaded.List())

	got := reloaded.List()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Final Exam", got[0].Title)
	assert.True(t, got[0].AllDay)
}

func TestStore_ListPreservesInsertionOrder(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	s.Add(exam("first"))
	s.Add(exam("second"))
	s.Add(exam("third"))

	got := s.List()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	s.Add(exam("a"))

	list := s.List()
	list[0].Title = "mutated"

	fresh, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Exam", fresh.Title)
}

func TestStore_UpdateKeepsID(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	s.Add(exam("a"))

	// Even a patch carrying a different id cannot change it.
	s.Update("a", model.Event{ID: "evil", Title: "Renamed", Start: "2025-03-10T12:00"})

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Title)

	_, ok = s.Get("evil")
	assert.False(t, ok)
}

func TestStore_UpdateUnknownIDIsNoop(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	s.Add(exam("a"))

	before := s.List()
	s.Update("missing", model.Event{Title: "nope"})
	assert.Equal(t, before, s.List())
}

func TestStore_RemoveUnknownIDIsNoop(t *testing.T) {
	s := NewStore(slot.NewMemory())
	s.Load()
	s.Add(exam("a"))

	before := s.List()
	s.Remove("missing")
	assert.Equal(t, before, s.List())
}

func TestStore_WriteFailureKeepsMemoryState(t *testing.T) {
	s := NewStore(failingSlots{slot.NewMemory()})
	s.Load()

	// Mutations must not panic or error out; memory state stays correct.
	s.Add(exam("a"))
	s.Update("a", model.Event{Title: "Renamed", Start: "2025-03-10T12:00"})

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.Title)
}
