package feed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studycal/internal/model"
)

func TestExport_RoundTripsThroughParser(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	events := []model.Event{
		{
			ID:          "study-session-1",
			Title:       "Study session",
			Description: "Chapter 4 review",
			Start:       "2025-03-10T12:00",
			End:         "2025-03-10T13:30",
		},
		{
			ID:     "reading-day-1",
			Title:  "Reading day",
			Start:  "2025-03-15",
			AllDay: true,
		},
	}

	data, err := Export(events, loc)
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 2)

	timed := cal.Events()[0]
	assert.Equal(t, "study-session-1", timed.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Study session", timed.GetProperty(ical.ComponentPropertySummary).Value)
	start, err := timed.GetStartAt()
	require.NoError(t, err)
	// 12:00 KST is 03:00 UTC
	assert.True(t, start.Equal(time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)))

	allDay := cal.Events()[1]
	dtstart := allDay.GetProperty(ical.ComponentPropertyDtStart)
	require.NotNil(t, dtstart)
	assert.NotContains(t, dtstart.Value, "T")
	assert.True(t, strings.HasPrefix(dtstart.Value, "20250315"))
}

func TestExport_TimedEventWithoutEndGetsAnHour(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Quick sync", Start: "2025-03-10T09:00"},
	}

	data, err := Export(events, time.UTC)
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	start, err := cal.Events()[0].GetStartAt()
	require.NoError(t, err)
	end, err := cal.Events()[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, end.Sub(start))
}

func TestExport_AllDayEndIsExclusive(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Break", Start: "2025-03-15", End: "2025-03-16", AllDay: true},
	}

	data, err := Export(events, time.UTC)
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	dtend := cal.Events()[0].GetProperty(ical.ComponentPropertyDtEnd)
	require.NotNil(t, dtend)
	assert.True(t, strings.HasPrefix(dtend.Value, "20250317"))
}

func TestExport_UnparseableStart(t *testing.T) {
	_, err := Export([]model.Event{{ID: "e1", Start: "not-a-date"}}, time.UTC)
	assert.Error(t, err)
}

func TestExport_EmptyList(t *testing.T) {
	data, err := Export(nil, time.UTC)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Contains(t, string(data), "METHOD:PUBLISH")
}
