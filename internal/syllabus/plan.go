package syllabus

import (
	"strings"

	"github.com/google/uuid"

	"studycal/internal/model"
)

// PlanEvents converts a processed syllabus into calendar events: one
// all-day event per important date, one timed event per exam. IDs are
// prefixed with the syllabus id so a re-import is recognizable.
func PlanEvents(res *Result) []model.Event {
	if res == nil {
		return nil
	}

	events := make([]model.Event, 0, len(res.ImportantDates)+len(res.Exams))

	for _, d := range res.ImportantDates {
		date := isoDate(d.Date)
		if d.Title == "" || date == "" {
			continue
		}
		title := d.Title
		if res.CourseName != "" {
			title = res.CourseName + ": " + title
		}
		events = append(events, model.Event{
			ID:          planEventID(res.ID),
			Title:       title,
			Description: d.Description,
			Start:       date,
			AllDay:      true,
		})
	}

	for _, e := range res.Exams {
		start := isoDateTime(e.DateTime)
		if e.Title == "" || start == "" {
			continue
		}
		title := e.Title
		if res.CourseName != "" {
			title = res.CourseName + ": " + title
		}
		events = append(events, model.Event{
			ID:          planEventID(res.ID),
			Title:       title,
			Description: strings.TrimSpace("Exam" + locationSuffix(e.Location)),
			Start:       start,
			AllDay:      false,
		})
	}

	return events
}

func planEventID(syllabusID string) string {
	if syllabusID == "" {
		syllabusID = "syllabus"
	}
	return "syllabus-" + syllabusID + "-" + uuid.NewString()
}

// isoDate reduces an ISO local date-time ("2025-03-10T09:00:00") to its
// date component.
func isoDate(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(model.LayoutDate) {
		return ""
	}
	return v[:len(model.LayoutDate)]
}

// isoDateTime reduces an ISO local date-time to minute precision, the
// wall-clock form events use. A date-only value stays date-only.
func isoDateTime(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(model.LayoutDate) {
		return ""
	}
	if len(v) >= len(model.LayoutDateTime) && v[10] == 'T' {
		return v[:len(model.LayoutDateTime)]
	}
	return v[:len(model.LayoutDate)]
}

func locationSuffix(loc string) string {
	if loc == "" {
		return ""
	}
	return " at " + loc
}
