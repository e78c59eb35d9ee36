// Package grid defines the contract between the application and whatever
// renders the calendar grid. The grid itself is not implemented here: an
// embedder supplies a Surface, pushes clicks into the app, and receives
// the entry list to draw after every change.
package grid

import (
	"hash/fnv"

	"studycal/internal/model"
)

// Entry is one cell-renderable item: a user event or a read-only feed
// occurrence.
type Entry struct {
	ID          string
	Title       string
	Description string

	// Start/End are wall-clock strings in the event layouts.
	Start string
	End   string

	AllDay bool

	// Color is a stable hex color: user events share one color, each
	// feed source gets its own.
	Color string

	// ReadOnly marks feed occurrences; clicking them opens nothing.
	ReadOnly bool
}

// Surface is implemented by the rendering layer. SetEntries replaces the
// full list; the grid holds no other copy of the data.
type Surface interface {
	SetEntries(entries []Entry)
}

// UserColor is the color for the user's own events.
const UserColor = "#3788d8"

// palette for feed sources, assigned stably by source id.
var palette = []string{
	"#e67c73", "#f4b400", "#0b8043", "#8e24aa",
	"#e4690d", "#33b679", "#7986cb", "#616161",
}

// SourceColor returns a stable color for a feed source id.
func SourceColor(sourceID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sourceID))
	return palette[h.Sum32()%uint32(len(palette))]
}

// EventEntry converts a user event.
func EventEntry(ev model.Event) Entry {
	return Entry{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Start:       ev.Start,
		End:         ev.End,
		AllDay:      ev.AllDay,
		Color:       UserColor,
	}
}

// OccurrenceEntry converts a feed occurrence into a read-only entry.
func OccurrenceEntry(occ model.Occurrence) Entry {
	return Entry{
		ID:          occ.SourceID + "/" + occ.UID + "/" + occ.InstanceKey,
		Title:       occ.Title,
		Description: occ.Description,
		Start:       model.FormatWallClock(occ.Start, occ.AllDay),
		End:         model.FormatWallClock(occ.End, occ.AllDay),
		AllDay:      occ.AllDay,
		Color:       SourceColor(occ.SourceID),
		ReadOnly:    true,
	}
}
