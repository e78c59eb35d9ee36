// Package editor drives the event modal: a small state machine sitting
// between the grid's click callbacks, the form the user types into, and
// the event store.
package editor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "studycal/internal/log"
	"studycal/internal/event"
	"studycal/internal/model"
)

// Mode is the modal's current state.
type Mode int

const (
	// ModeClosed: no modal visible.
	ModeClosed Mode = iota
	// ModeCreating: the form will produce a new event on submit.
	ModeCreating
	// ModeEditing: the form was pre-populated from an existing event.
	ModeEditing
)

// defaultStartClock is used when a timed event is submitted without an
// explicit time of day.
const defaultStartClock = "12:00"

// ValidationError is returned when a required field is missing. The modal
// stays open so the user can correct the form.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return string(e.Field) + " is required"
}

// Machine owns the modal's transient state. It is not persisted; cancel,
// submit and delete all reset it to closed.
type Machine struct {
	events *event.Store
	loc    *time.Location

	mode      Mode
	editingID string
	form      Form

	now      func() time.Time
	newToken func() string
}

// NewMachine creates a closed machine operating in loc (nil means the
// system zone).
func NewMachine(events *event.Store, loc *time.Location) *Machine {
	if loc == nil {
		loc = time.Local
	}
	return &Machine{
		events:   events,
		loc:      loc,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Mode returns the modal's current state.
func (m *Machine) Mode() Mode { return m.mode }

// Visible reports whether the modal should render.
func (m *Machine) Visible() bool { return m.mode != ModeClosed }

// EditingID returns the id of the event under edit, or "" when creating.
func (m *Machine) EditingID() string { return m.editingID }

// Form returns the current form values.
func (m *Machine) Form() Form { return m.form }

// SetField records a single field change while the modal is open.
func (m *Machine) SetField(field Field, value string) {
	if m.mode == ModeClosed {
		return
	}
	m.form = Apply(m.form, field, value)
}

// OpenForDate opens the modal to create an event on the clicked date.
// dateStr may carry a time-of-day component (week/day grid cells do);
// allDay comes from the clicked cell.
func (m *Machine) OpenForDate(dateStr string, allDay bool) {
	date, clock := model.SplitWallClock(dateStr)
	m.mode = ModeCreating
	m.editingID = ""
	m.form = Form{Date: date, StartClock: clock, AllDay: allDay}
}

// OpenNew opens the modal from the explicit "add event" action: today's
// date, timed rather than all-day.
func (m *Machine) OpenNew() {
	m.mode = ModeCreating
	m.editingID = ""
	m.form = Form{Date: m.now().In(m.loc).Format(model.LayoutDate)}
}

// OpenForEvent opens the modal pre-populated from the clicked event.
// Unknown ids leave the machine untouched.
func (m *Machine) OpenForEvent(id string) bool {
	ev, ok := m.events.Get(id)
	if !ok {
		appLog.Warn("event click for unknown id", "id", id)
		return false
	}
	m.mode = ModeEditing
	m.editingID = ev.ID
	m.form = formFromEvent(ev)
	return true
}

// Cancel discards the form without touching the store.
func (m *Machine) Cancel() {
	m.reset()
}

// Submit validates the form and either adds a new event or updates the
// one under edit, then closes the modal. On a validation error the modal
// stays open.
func (m *Machine) Submit() error {
	if m.mode == ModeClosed {
		return nil
	}
	if strings.TrimSpace(m.form.Title) == "" {
		return &ValidationError{Field: FieldTitle}
	}

	ev := m.buildEvent()

	switch m.mode {
	case ModeCreating:
		ev.ID = newEventID(ev.Title, ev.Start, m.newToken())
		m.events.Add(ev)
	case ModeEditing:
		m.events.Update(m.editingID, ev)
	}

	m.reset()
	return nil
}

// Delete removes the event under edit. confirm is consulted first; a nil
// confirm means pre-confirmed. Declining keeps the modal open. The return
// value reports whether a delete happened.
func (m *Machine) Delete(confirm func() bool) bool {
	if m.mode != ModeEditing {
		return false
	}
	if confirm != nil && !confirm() {
		return false
	}
	m.events.Remove(m.editingID)
	m.reset()
	return true
}

// buildEvent computes the event fields from the form. All date math uses
// the machine's location so that the +1h end default rolls over midnight
// on the local wall clock.
func (m *Machine) buildEvent() model.Event {
	ev := model.Event{
		Title:       strings.TrimSpace(m.form.Title),
		Description: m.form.Description,
		AllDay:      m.form.AllDay,
	}

	if m.form.AllDay {
		ev.Start = m.form.Date
		ev.End = m.form.EndDate
		return ev
	}

	clock := m.form.StartClock
	if clock == "" {
		clock = defaultStartClock
	}
	ev.Start = model.JoinWallClock(m.form.Date, clock)

	switch {
	case m.form.EndClock != "":
		endDate := m.form.EndDate
		if endDate == "" {
			endDate = m.form.Date
		}
		ev.End = model.JoinWallClock(endDate, m.form.EndClock)
	case m.form.EndDate != "":
		// End date without a clock: reuse the start clock.
		ev.End = model.JoinWallClock(m.form.EndDate, clock)
	default:
		ev.End = m.defaultEnd(ev.Start)
	}

	return ev
}

// defaultEnd returns start + 1 hour for timed events without an explicit
// end.
func (m *Machine) defaultEnd(start string) string {
	t, _, err := model.ParseWallClock(start, m.loc)
	if err != nil {
		appLog.Error("unparseable start, skipping end default", err, "start", start)
		return ""
	}
	return t.Add(time.Hour).In(m.loc).Format(model.LayoutDateTime)
}

func (m *Machine) reset() {
	m.mode = ModeClosed
	m.editingID = ""
	m.form = Form{}
}

// newEventID builds an id that stays readable in storage while being
// collision-resistant within a session: title slug, start value, random
// token.
func newEventID(title, start, token string) string {
	return slugify(title) + "-" + start + "-" + token
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "event"
	}
	return out
}
