package horizon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-19 is a Monday
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestExamDays_DefaultRuleSkipsWeekends(t *testing.T) {
	days, err := ExamDays(monday, "", 6)
	require.NoError(t, err)
	require.Len(t, days, 6)

	labels := make([]string, len(days))
	for i, day := range days {
		labels[i] = day.Format("2006-01-02")
	}
	assert.Equal(t, []string{"2026-10-19", "2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23", "2026-10-26"}, labels)
}

func TestExamDays_StartTimeIsIgnored(t *testing.T) {
	days, err := ExamDays(monday.Add(15*time.Hour), "FREQ=DAILY", 1)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, monday, days[0])
}

func TestExamDays_RuleCountCapsDays(t *testing.T) {
	days, err := ExamDays(monday, "FREQ=DAILY;COUNT=2", 5)
	require.NoError(t, err)
	assert.Len(t, days, 2)
}

func TestExamDays_InvalidRule(t *testing.T) {
	_, err := ExamDays(monday, "NOT_A_RULE", 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse day rule")
}

func TestBuild_Defaults(t *testing.T) {
	h, err := Build(Input{StartDate: monday, DayCount: 3})
	require.NoError(t, err)

	assert.Len(t, h.Days, 3)
	assert.Equal(t, DefaultTimeSlots, h.TimeSlots)
	assert.Equal(t, 9, h.Size())
	assert.Equal(t, "2026-10-21", h.DayLabel(2))
}

func TestBuild_AutoSizesFromCourses(t *testing.T) {
	h, err := Build(Input{StartDate: monday, Courses: 7, TimeSlots: []string{"AM", "PM"}})
	require.NoError(t, err)

	assert.Len(t, h.Days, 4)
	assert.Equal(t, []string{"AM", "PM"}, h.TimeSlots)
}

func TestBuild_NegativeDayCount(t *testing.T) {
	_, err := Build(Input{StartDate: monday, DayCount: -1})
	assert.Error(t, err)
}

func TestSuggestDayCount(t *testing.T) {
	assert.Equal(t, 1, SuggestDayCount(0, 3))
	assert.Equal(t, 1, SuggestDayCount(3, 3))
	assert.Equal(t, 2, SuggestDayCount(4, 3))
	assert.Equal(t, 1, SuggestDayCount(5, 0))
}
