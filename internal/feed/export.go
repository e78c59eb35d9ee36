package feed

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"studycal/internal/model"
)

// Export renders the user's events as an iCalendar document so other
// calendar applications can import them. Wall-clock values are resolved
// in loc (nil means time.Local) before conversion to the UTC timestamps
// the serializer emits.
func Export(events []model.Event, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range events {
		start, _, err := model.ParseWallClock(ev.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("feed: event %s has unparseable start %q: %w", ev.ID, ev.Start, err)
		}

		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(time.Now())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}

		if ev.AllDay {
			ve.SetAllDayStartAt(start)
			end := start.AddDate(0, 0, 1)
			if ev.End != "" {
				t, _, err := model.ParseWallClock(ev.End, loc)
				if err != nil {
					return nil, fmt.Errorf("feed: event %s has unparseable end %q: %w", ev.ID, ev.End, err)
				}
				// DTEND is exclusive for all-day events.
				end = t.AddDate(0, 0, 1)
			}
			ve.SetAllDayEndAt(end)
			continue
		}

		ve.SetStartAt(start)
		end := start.Add(time.Hour)
		if ev.End != "" {
			t, _, err := model.ParseWallClock(ev.End, loc)
			if err != nil {
				return nil, fmt.Errorf("feed: event %s has unparseable end %q: %w", ev.ID, ev.End, err)
			}
			end = t
		}
		ve.SetEndAt(end)
	}

	return []byte(cal.Serialize()), nil
}
