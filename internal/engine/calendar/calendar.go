// Package calendar implements working-day classification and date arithmetic
// under a project calendar.
package calendar

import (
	"math"
	"time"

	"go.trai.ch/tempo/internal/core/domain"
)

// MaxShiftDays bounds the working days a single AddWorkingDays call moves.
// It covers a maximal lag followed by a maximal duration.
const MaxShiftDays = 2 * domain.MaxSpanDays

// MaxScanDays bounds every run of consecutive non-working days a scan skips. A calendar without any working
// day would otherwise never terminate; four years covers every recurring
// holiday pattern including Feb 29.
const MaxScanDays = 366 * 4

type monthDay struct {
	month time.Month
	day   int
}

type yearMonthDay struct {
	year int
	monthDay
}

// Engine answers calendar questions for one calendar configuration.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	mode      domain.CalendarMode
	exact     map[yearMonthDay]struct{}
	recurring map[monthDay]struct{}
}

// New indexes the calendar's holidays and returns an Engine.
func New(cal domain.Calendar) *Engine {
	e := &Engine{
		mode:      cal.Mode,
		exact:     make(map[yearMonthDay]struct{}, len(cal.Holidays)),
		recurring: make(map[monthDay]struct{}),
	}
	if e.mode == "" {
		e.mode = domain.BusinessDays
	}
	for _, h := range cal.Holidays {
		if h.Date.IsZero() {
			continue
		}
		if h.Recurring {
			e.recurring[monthDayOf(h.Date)] = struct{}{}
			continue
		}
		e.exact[yearMonthDay{year: h.Date.Year(), monthDay: monthDayOf(h.Date)}] = struct{}{}
	}
	return e
}

func monthDayOf(d domain.Date) monthDay {
	return monthDay{month: d.Month(), day: d.Day()}
}

// SameMonthDay reports whether a and b fall on the same month and day,
// ignoring the year. A Feb 29 holiday therefore only matches in leap years.
func SameMonthDay(a, b domain.Date) bool {
	return a.Month() == b.Month() && a.Day() == b.Day()
}

// IsHoliday reports whether d matches an exact or a recurring holiday.
func (e *Engine) IsHoliday(d domain.Date) bool {
	md := monthDayOf(d)
	if _, ok := e.exact[yearMonthDay{year: d.Year(), monthDay: md}]; ok {
		return true
	}
	_, ok := e.recurring[md]
	return ok
}

// IsWorkingDay reports whether d is a working day.
func (e *Engine) IsWorkingDay(d domain.Date) bool {
	if e.mode == domain.BusinessDays {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	return !e.IsHoliday(d)
}

// NormalizeStart returns the first working day on or after d.
func (e *Engine) NormalizeStart(d domain.Date) domain.Date {
	for i := 0; i < MaxScanDays && !e.IsWorkingDay(d); i++ {
		d = d.AddDays(1)
	}
	return d
}

// AddWorkingDays moves d by n working days, forward for n > 0 and backward
// for n < 0. Only steps that land on a working day are counted. n == 0
// returns d unchanged, even when d is not a working day. |n| is capped at
// MaxShiftDays.
func (e *Engine) AddWorkingDays(d domain.Date, n int) domain.Date {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	if n < 0 || n > MaxShiftDays {
		// -MinInt stays negative.
		n = MaxShiftDays
	}
	for scanned := 0; n > 0 && scanned < MaxScanDays; scanned++ {
		d = d.AddDays(step)
		if e.IsWorkingDay(d) {
			n--
			scanned = 0
		}
	}
	return d
}

// CalculateEndDate returns the last day of a task that starts on start and
// spans durationDays working days, start inclusive. A non-working start is
// first moved to the next working day. Fractional durations round up and a
// duration of zero or less returns start unchanged.
func (e *Engine) CalculateEndDate(start domain.Date, durationDays float64) domain.Date {
	if math.IsNaN(durationDays) || durationDays <= 0 {
		return start
	}
	if math.IsInf(durationDays, 1) {
		durationDays = 1
	}
	durationDays = min(durationDays, domain.MaxSpanDays)
	current := e.NormalizeStart(start)
	return e.AddWorkingDays(current, int(math.Ceil(durationDays))-1)
}

// CalculateDuration counts the working days between start and end, both
// inclusive. A reversed range yields 0.
func (e *Engine) CalculateDuration(start, end domain.Date) int {
	if start.After(end) {
		return 0
	}
	n := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if e.IsWorkingDay(d) {
			n++
		}
	}
	return n
}
