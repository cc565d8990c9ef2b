package calendar_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/engine/calendar"
)

func d(s string) domain.Date {
	return domain.MustParseDate(s)
}

func businessDays(holidays ...domain.Holiday) *calendar.Engine {
	return calendar.New(domain.Calendar{Mode: domain.BusinessDays, Holidays: holidays})
}

func TestEngine_IsWorkingDay(t *testing.T) {
	tests := []struct {
		name     string
		cal      domain.Calendar
		date     string
		expected bool
	}{
		{
			name:     "business days weekday",
			cal:      domain.Calendar{Mode: domain.BusinessDays},
			date:     "2024-01-03",
			expected: true,
		},
		{
			name:     "business days saturday",
			cal:      domain.Calendar{Mode: domain.BusinessDays},
			date:     "2024-01-06",
			expected: false,
		},
		{
			name:     "business days sunday",
			cal:      domain.Calendar{Mode: domain.BusinessDays},
			date:     "2024-01-07",
			expected: false,
		},
		{
			name:     "running days saturday",
			cal:      domain.Calendar{Mode: domain.RunningDays},
			date:     "2024-01-06",
			expected: true,
		},
		{
			name: "running days exact holiday",
			cal: domain.Calendar{
				Mode:     domain.RunningDays,
				Holidays: []domain.Holiday{{Date: d("2024-01-06")}},
			},
			date:     "2024-01-06",
			expected: false,
		},
		{
			name: "exact holiday does not repeat",
			cal: domain.Calendar{
				Mode:     domain.BusinessDays,
				Holidays: []domain.Holiday{{Date: d("2023-05-01")}},
			},
			date:     "2024-05-01",
			expected: true,
		},
		{
			name:     "empty mode defaults to business days",
			cal:      domain.Calendar{},
			date:     "2024-01-06",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := calendar.New(tt.cal)
			assert.Equal(t, tt.expected, e.IsWorkingDay(d(tt.date)))
		})
	}
}

func TestEngine_RecurringHoliday(t *testing.T) {
	e := calendar.New(domain.Calendar{
		Mode:     domain.RunningDays,
		Holidays: []domain.Holiday{{Date: d("2019-12-25"), Recurring: true}},
	})

	for _, year := range []int{2019, 2020, 2023, 2024, 2100} {
		christmas := domain.NewDate(year, time.December, 25)
		assert.False(t, e.IsWorkingDay(christmas), "Dec 25 %d should be a holiday", year)
		assert.True(t, e.IsWorkingDay(christmas.AddDays(1)), "Dec 26 %d should be working", year)
	}
}

func TestEngine_RecurringLeapDayHoliday(t *testing.T) {
	e := calendar.New(domain.Calendar{
		Mode:     domain.RunningDays,
		Holidays: []domain.Holiday{{Date: d("2024-02-29"), Recurring: true}},
	})

	assert.False(t, e.IsWorkingDay(d("2028-02-29")))
	// Non-leap years have no Feb 29; neither neighbour may be swallowed.
	assert.True(t, e.IsWorkingDay(d("2023-02-28")))
	assert.True(t, e.IsWorkingDay(d("2023-03-01")))
}

func TestSameMonthDay(t *testing.T) {
	assert.True(t, calendar.SameMonthDay(d("2020-12-25"), d("2031-12-25")))
	assert.False(t, calendar.SameMonthDay(d("2020-12-25"), d("2020-12-26")))
	assert.False(t, calendar.SameMonthDay(d("2024-02-29"), d("2023-03-01")))
}

func TestEngine_NormalizeStart(t *testing.T) {
	e := businessDays(domain.Holiday{Date: d("2024-01-08")})

	assert.Equal(t, d("2024-01-03"), e.NormalizeStart(d("2024-01-03")), "working day is a no-op")
	assert.Equal(t, d("2024-01-09"), e.NormalizeStart(d("2024-01-06")), "skips weekend and holiday")
}

func TestEngine_AddWorkingDays(t *testing.T) {
	e := businessDays()

	tests := []struct {
		name     string
		from     string
		n        int
		expected string
	}{
		{name: "zero returns input", from: "2024-01-06", n: 0, expected: "2024-01-06"},
		{name: "forward within week", from: "2024-01-01", n: 2, expected: "2024-01-03"},
		{name: "forward over weekend", from: "2024-01-05", n: 1, expected: "2024-01-08"},
		{name: "backward over weekend", from: "2024-01-08", n: -1, expected: "2024-01-05"},
		{name: "from weekend forward", from: "2024-01-06", n: 1, expected: "2024-01-08"},
		{name: "backward several", from: "2024-01-10", n: -5, expected: "2024-01-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, d(tt.expected), e.AddWorkingDays(d(tt.from), tt.n))
		})
	}
}

func TestEngine_AddWorkingDaysIsCapped(t *testing.T) {
	e := calendar.New(domain.Calendar{Mode: domain.RunningDays})

	assert.Equal(t, 7320, calendar.MaxShiftDays)
	assert.Equal(t, d("2044-01-16"), e.AddWorkingDays(d("2024-01-01"), 1_000_000_000_000))
	assert.Equal(t, d("2003-12-17"), e.AddWorkingDays(d("2024-01-01"), -1_000_000_000_000))
	assert.Equal(t, d("2044-01-16"), e.AddWorkingDays(d("2024-01-01"), math.MaxInt))
	assert.Equal(t, d("2003-12-17"), e.AddWorkingDays(d("2024-01-01"), math.MinInt))
}

func TestEngine_CalculateEndDate(t *testing.T) {
	tests := []struct {
		name     string
		engine   *calendar.Engine
		start    string
		duration float64
		expected string
	}{
		{name: "monday plus five is friday", engine: businessDays(), start: "2024-01-01", duration: 5, expected: "2024-01-05"},
		{name: "duration one ends on start", engine: businessDays(), start: "2024-01-02", duration: 1, expected: "2024-01-02"},
		{name: "weekend start moves to monday", engine: businessDays(), start: "2024-01-06", duration: 1, expected: "2024-01-08"},
		{name: "spans weekend", engine: businessDays(), start: "2024-01-04", duration: 3, expected: "2024-01-08"},
		{name: "fraction rounds up", engine: businessDays(), start: "2024-01-01", duration: 1.5, expected: "2024-01-02"},
		{name: "zero duration is a milestone", engine: businessDays(), start: "2024-01-06", duration: 0, expected: "2024-01-06"},
		{
			name:     "skips holiday",
			engine:   businessDays(domain.Holiday{Date: d("2024-01-02")}),
			start:    "2024-01-01",
			duration: 2,
			expected: "2024-01-03",
		},
		{
			name:     "running days count weekends",
			engine:   calendar.New(domain.Calendar{Mode: domain.RunningDays}),
			start:    "2024-01-05",
			duration: 3,
			expected: "2024-01-07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, d(tt.expected), tt.engine.CalculateEndDate(d(tt.start), tt.duration))
		})
	}
}

func TestEngine_CalculateDuration(t *testing.T) {
	e := businessDays(domain.Holiday{Date: d("2024-01-03")})

	assert.Equal(t, 1, e.CalculateDuration(d("2024-01-01"), d("2024-01-01")))
	assert.Equal(t, 4, e.CalculateDuration(d("2024-01-01"), d("2024-01-05")))
	assert.Equal(t, 5, e.CalculateDuration(d("2024-01-01"), d("2024-01-08")))
	assert.Equal(t, 0, e.CalculateDuration(d("2024-01-06"), d("2024-01-07")), "weekend only")
	assert.Equal(t, 0, e.CalculateDuration(d("2024-01-05"), d("2024-01-01")), "reversed range")
}

func TestEngine_EndDateDurationInverse(t *testing.T) {
	e := businessDays(domain.Holiday{Date: d("2024-12-25"), Recurring: true})
	start := d("2024-12-20")

	for duration := 1; duration <= 15; duration++ {
		end := e.CalculateEndDate(start, float64(duration))
		assert.Equal(t, duration, e.CalculateDuration(start, end), "duration %d", duration)
		assert.False(t, end.Before(start))
	}
}

func TestEngine_NoWorkingDayTerminates(t *testing.T) {
	holidays := make([]domain.Holiday, 0, 366)
	for day := d("2024-01-01"); day.Year() == 2024; day = day.AddDays(1) {
		holidays = append(holidays, domain.Holiday{Date: day, Recurring: true})
	}
	e := calendar.New(domain.Calendar{Mode: domain.RunningDays, Holidays: holidays})

	start := d("2025-03-01")
	assert.False(t, e.IsWorkingDay(start))
	assert.Equal(t, start.AddDays(calendar.MaxScanDays), e.NormalizeStart(start))
	assert.Equal(t, start.AddDays(calendar.MaxScanDays), e.AddWorkingDays(start, 3))
}
