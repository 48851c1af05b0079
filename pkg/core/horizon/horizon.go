package horizon

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

const (
	// DefaultDayRule schedules exams on weekdays only
	DefaultDayRule = "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR"

	// DefaultDayCount is the number of exam days when none is configured
	DefaultDayCount = 10
)

// DefaultTimeSlots are the three exam sittings of a day
var DefaultTimeSlots = []string{"09:00-12:00", "13:00-16:00", "17:00-20:00"}

// Input describes the scheduling universe to build
type Input struct {
	// StartDate is the first candidate exam day (time of day is ignored)
	StartDate time.Time

	// DayCount is the number of exam days. Zero sizes the horizon so every course
	// can get its own (day, slot) pair.
	DayCount int

	// DayRule is an RRULE selecting exam days from StartDate onwards
	DayRule string

	// TimeSlots are the ordered slot labels of each day
	TimeSlots []string

	// Courses is the number of courses to schedule, used when DayCount is zero
	Courses int
}

// Build expands the input into the ordered exam days and time slots
func Build(input Input) (model.Horizon, error) {
	slots := input.TimeSlots
	if len(slots) == 0 {
		slots = DefaultTimeSlots
	}

	dayCount := input.DayCount
	if dayCount < 0 {
		return model.Horizon{}, fmt.Errorf("day count must not be negative, got %d", dayCount)
	}
	if dayCount == 0 {
		dayCount = SuggestDayCount(input.Courses, len(slots))
	}

	days, err := ExamDays(input.StartDate, input.DayRule, dayCount)
	if err != nil {
		return model.Horizon{}, err
	}

	return model.Horizon{
		Days:      days,
		TimeSlots: append([]string(nil), slots...),
	}, nil
}

// ExamDays returns up to count dates matching the rule, starting at start
func ExamDays(start time.Time, rule string, count int) ([]time.Time, error) {
	if rule == "" {
		rule = DefaultDayRule
	}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse day rule %q: %w", rule, err)
	}

	option.Dtstart = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if option.Count == 0 || option.Count > count {
		option.Count = count
	}

	r, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, fmt.Errorf("failed to build day rule %q: %w", rule, err)
	}

	days := r.All()
	if len(days) == 0 {
		return nil, fmt.Errorf("day rule %q yields no exam days from %s", rule, option.Dtstart.Format("2006-01-02"))
	}
	return days, nil
}

// SuggestDayCount returns the fewest days giving every course its own (day, slot) pair
func SuggestDayCount(courses, slotsPerDay int) int {
	if slotsPerDay <= 0 || courses <= 0 {
		return 1
	}
	return (courses + slotsPerDay - 1) / slotsPerDay
}
