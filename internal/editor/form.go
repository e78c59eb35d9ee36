package editor

import "studycal/internal/model"

// Field names the form inputs a user can change while the modal is open.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldDate        Field = "date"
	FieldStartClock  Field = "start_clock"
	FieldEndDate     Field = "end_date"
	FieldEndClock    Field = "end_clock"
	FieldAllDay      Field = "all_day"
)

// Form holds the modal's field values. Dates are LayoutDate strings,
// clocks are "15:04" strings. Clock fields are ignored while AllDay is
// true but keep their last value, so toggling all-day off restores
// whatever the user had entered.
type Form struct {
	Title       string
	Description string
	Date        string
	StartClock  string
	EndDate     string
	EndClock    string
	AllDay      bool
}

// Apply returns a copy of f with a single field changed. It is a pure
// function; the caller owns deciding when a change is allowed.
func Apply(f Form, field Field, value string) Form {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldDate:
		f.Date = value
	case FieldStartClock:
		f.StartClock = value
	case FieldEndDate:
		f.EndDate = value
	case FieldEndClock:
		f.EndClock = value
	case FieldAllDay:
		f.AllDay = value == "true"
	}
	return f
}

// formFromEvent pre-populates a form from an existing event, splitting
// start/end into date and time-of-day components.
func formFromEvent(ev model.Event) Form {
	date, clock := model.SplitWallClock(ev.Start)
	f := Form{
		Title:       ev.Title,
		Description: ev.Description,
		Date:        date,
		StartClock:  clock,
		AllDay:      ev.AllDay,
	}
	if ev.End != "" {
		f.EndDate, f.EndClock = model.SplitWallClock(ev.End)
	}
	return f
}
