package syllabus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanEvents(t *testing.T) {
	res := &Result{
		ID:         "s1",
		CourseName: "CS101",
		ImportantDates: []ImportantDate{
			{Title: "Drop deadline", Description: "Last day to drop", Date: "2025-09-12T00:00:00"},
			{Title: "", Date: "2025-09-13"}, // no title, skipped
			{Title: "Spring break", Date: "bad"},
		},
		Exams: []Exam{
			{Title: "Midterm", DateTime: "2025-10-20T14:00:00", Location: "Room 12"},
			{Title: "Final", DateTime: "2025-12-15"},
		},
	}

	events := PlanEvents(res)
	require.Len(t, events, 3)

	assert.Equal(t, "CS101: Drop deadline", events[0].Title)
	assert.Equal(t, "2025-09-12", events[0].Start)
	assert.True(t, events[0].AllDay)
	assert.Equal(t, "Last day to drop", events[0].Description)

	assert.Equal(t, "CS101: Midterm", events[1].Title)
	assert.Equal(t, "2025-10-20T14:00", events[1].Start)
	assert.False(t, events[1].AllDay)
	assert.Equal(t, "Exam at Room 12", events[1].Description)

	// Date-only exam stays date-only.
	assert.Equal(t, "2025-12-15", events[2].Start)
	assert.Equal(t, "Exam", events[2].Description)
}

func TestPlanEvents_IDsPrefixedAndUnique(t *testing.T) {
	res := &Result{
		ID: "abc",
		ImportantDates: []ImportantDate{
			{Title: "A", Date: "2025-01-01"},
			{Title: "B", Date: "2025-01-02"},
		},
	}

	events := PlanEvents(res)
	require.Len(t, events, 2)
	assert.True(t, strings.HasPrefix(events[0].ID, "syllabus-abc-"))
	assert.NotEqual(t, events[0].ID, events[1].ID)

	// Without a course name the title is used as-is.
	assert.Equal(t, "A", events[0].Title)
}

func TestPlanEvents_Nil(t *testing.T) {
	assert.Nil(t, PlanEvents(nil))
}
