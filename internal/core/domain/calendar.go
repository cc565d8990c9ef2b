package domain

import "strings"

// CalendarMode selects which weekdays count as working days.
type CalendarMode string

const (
	// BusinessDays treats Monday to Friday as working days.
	BusinessDays CalendarMode = "business_days"
	// RunningDays treats every day as a working day.
	RunningDays CalendarMode = "running_days"
)

// DefaultWorkHoursPerDay is used when a calendar does not specify its working hours.
const DefaultWorkHoursPerDay = 8

// ParseCalendarMode maps the stored calendar type to a CalendarMode.
// Unknown or empty values fall back to BusinessDays.
func ParseCalendarMode(s string) CalendarMode {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case string(RunningDays), "running":
		return RunningDays
	default:
		return BusinessDays
	}
}

// Holiday is a non-working date. Recurring holidays repeat on the same
// month and day every year.
type Holiday struct {
	Date      Date
	Recurring bool
}

// Calendar is the working-day configuration of a project.
type Calendar struct {
	Mode            CalendarMode
	WorkHoursPerDay float64
	Holidays        []Holiday
}

// DefaultCalendar returns a business-day calendar without holidays.
func DefaultCalendar() Calendar {
	return Calendar{
		Mode:            BusinessDays,
		WorkHoursPerDay: DefaultWorkHoursPerDay,
	}
}
