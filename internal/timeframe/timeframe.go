// Package timeframe decides when a queued post may be published: how long to
// wait after the last publication and on which weekdays and hours of the
// site's local civil time.
package timeframe

import (
	"time"

	"github.com/maheshrc27/postqueue/internal/models"
)

// DefaultInterval applies when no interval is configured.
const DefaultInterval = 24 * time.Hour

type Frame struct {
	interval      time.Duration
	loc           *time.Location
	days          [7]bool
	hours         [24]bool
	restrictDays  bool
	restrictHours bool
}

// New builds a Frame from settings. A nil location means UTC.
func New(s models.QueueSettings, loc *time.Location) *Frame {
	if loc == nil {
		loc = time.UTC
	}
	f := &Frame{
		interval: Interval(s.Interval),
		loc:      loc,
	}

	days := DaysFrom(s.Days)
	f.restrictDays = len(days) > 0 && len(days) < 7
	for i := range f.days {
		f.days[i] = !f.restrictDays
	}
	for _, d := range days {
		f.days[d] = true
	}

	hours := HoursFrom(s.Hours)
	f.restrictHours = len(hours) > 0 && len(hours) < 24
	for i := range f.hours {
		f.hours[i] = !f.restrictHours
	}
	for _, h := range hours {
		f.hours[h] = true
	}

	return f
}

// Interval converts configured minutes to a duration.
func Interval(minutes uint) time.Duration {
	if minutes == 0 {
		return DefaultInterval
	}
	return time.Duration(minutes) * time.Minute
}

// HoursFrom expands a start/end range into the allowed hours of the day.
// An end of 0 means midnight at the end of the day. An invalid range yields nil.
func HoursFrom(r *models.HoursRange) []int {
	if r == nil || !validHour(r.Start) || !validHour(r.End) || r.Start == r.End {
		return nil
	}
	start, end := r.Start, r.End
	if end == 0 {
		end = 24
	}

	var hours []int
	if start < end {
		for h := start; h < end; h++ {
			hours = append(hours, h)
		}
		return hours
	}
	for h := 0; h < end; h++ {
		hours = append(hours, h)
	}
	for h := start; h < 24; h++ {
		hours = append(hours, h)
	}
	return hours
}

// DaysFrom returns the unique weekdays in 0..6 found in days, sorted.
func DaysFrom(days []int) []int {
	var seen [7]bool
	for _, d := range days {
		if d >= 0 && d <= 6 {
			seen[d] = true
		}
	}
	var out []int
	for d, ok := range seen {
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

func (f *Frame) Interval() time.Duration { return f.interval }

func (f *Frame) Location() *time.Location { return f.loc }

// WithInterval returns a copy of f using d as the publishing interval.
func (f *Frame) WithInterval(d time.Duration) *Frame {
	c := *f
	if d > 0 {
		c.interval = d
	}
	return &c
}

// Restricted reports whether any day or hour restriction is active.
func (f *Frame) Restricted() bool { return f.restrictDays || f.restrictHours }

// Days returns the allowed weekdays, 0 being Sunday.
func (f *Frame) Days() []int {
	var out []int
	for d, ok := range f.days {
		if ok {
			out = append(out, d)
		}
	}
	return out
}

// Hours returns the allowed hours of the day.
func (f *Frame) Hours() []int {
	var out []int
	for h, ok := range f.hours {
		if ok {
			out = append(out, h)
		}
	}
	return out
}

// DayAllowed reports whether t falls on an allowed local weekday.
func (f *Frame) DayAllowed(t time.Time) bool {
	return f.days[t.In(f.loc).Weekday()]
}

// HourAllowed reports whether t falls in an allowed local hour.
func (f *Frame) HourAllowed(t time.Time) bool {
	return f.hours[t.In(f.loc).Hour()]
}

// IntervalElapsed reports whether at least one interval separates
// lastPublished from now.
func (f *Frame) IntervalElapsed(now, lastPublished time.Time) bool {
	return !now.Before(lastPublished.Add(f.interval))
}

// InTimeFrame reports whether a post may be published at now.
func (f *Frame) InTimeFrame(now, lastPublished time.Time) bool {
	return f.IntervalElapsed(now, lastPublished) && f.DayAllowed(now) && f.HourAllowed(now)
}

// Next returns the earliest instant not before t whose local weekday and hour
// are both allowed. If t qualifies it is returned unchanged; otherwise the
// result is the top of the first qualifying hour.
func (f *Frame) Next(t time.Time) time.Time {
	if f.DayAllowed(t) && f.HourAllowed(t) {
		return t
	}

	local := t.In(f.loc)
	y, m, d := local.Date()
	// Two weeks: a slot lost to a DST gap recurs a week later, and gaps are
	// never a week apart.
	for day := 0; day <= 14; day++ {
		// Noon always exists, so it is safe to read the weekday from it.
		if !f.days[time.Date(y, m, d+day, 12, 0, 0, 0, f.loc).Weekday()] {
			continue
		}
		for h := 0; h < 24; h++ {
			if !f.hours[h] {
				continue
			}
			c := time.Date(y, m, d+day, h, 0, 0, 0, f.loc)
			// Skip hours that do not exist on a DST transition day.
			if c.Hour() != h || !c.After(t) {
				continue
			}
			return c
		}
	}
	return t
}

// NextRun returns when the next post should go out given the time of the
// last publication. Runs are never placed in the past relative to now.
func (f *Frame) NextRun(lastPublished, now time.Time) time.Time {
	next := lastPublished.Add(f.interval)
	if next.Before(now) {
		next = now
	}
	if f.Restricted() {
		next = f.Next(next)
	}
	return next
}
