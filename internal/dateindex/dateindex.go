// Package dateindex maps calendar dates to the dense day numbers used to
// name per-day files and to index signals.
package dateindex

import (
	"fmt"
	"strings"
	"time"
)

// Invalid is the index of a date that does not parse or falls outside
// the epoch.
const Invalid = -1

// InvalidDate is the text form of an index outside the epoch.
const InvalidDate = "INVALID DATE"

const isoLayout = "2006-01-02"

var layouts = []string{
	isoLayout,
	"2006-1-2",
	"2006-Jan-02",
	"2006-Jan-2",
	"20060102",
}

// Epoch is the inclusive date range [start, end] covered by a data set.
// Day 0 is start.
type Epoch struct {
	start time.Time
	end   time.Time
	last  int
}

// NewEpoch parses both bounds. end must not precede start.
func NewEpoch(start, end string) (*Epoch, error) {
	s, ok := parse(start)
	if !ok {
		return nil, fmt.Errorf("invalid epoch start: %q", start)
	}
	e, ok := parse(end)
	if !ok {
		return nil, fmt.Errorf("invalid epoch end: %q", end)
	}
	if e.Before(s) {
		return nil, fmt.Errorf("epoch end %s precedes start %s", end, start)
	}
	return &Epoch{start: s, end: e, last: daysBetween(s, e)}, nil
}

// FromString returns the day number of an ISO (or abbreviated month)
// date, or Invalid.
func (ep *Epoch) FromString(s string) int {
	t, ok := parse(s)
	if !ok {
		return Invalid
	}
	return ep.FromTime(t)
}

// FromTime returns the day number of the calendar date of t, or Invalid.
func (ep *Epoch) FromTime(t time.Time) int {
	d := daysBetween(ep.start, truncate(t))
	if !ep.Valid(d) {
		return Invalid
	}
	return d
}

// ToString renders a day number as an ISO date.
func (ep *Epoch) ToString(day int) string {
	if !ep.Valid(day) {
		return InvalidDate
	}
	return ep.Time(day).Format(isoLayout)
}

// Time returns midnight UTC of day. The result is meaningful only for
// valid days.
func (ep *Epoch) Time(day int) time.Time {
	return ep.start.AddDate(0, 0, day)
}

// Valid reports whether day lies in [First, Last].
func (ep *Epoch) Valid(day int) bool {
	return day >= 0 && day <= ep.last
}

func (ep *Epoch) First() int    { return 0 }
func (ep *Epoch) Last() int     { return ep.last }
func (ep *Epoch) Interval() int { return ep.last + 1 }

func (ep *Epoch) String() string {
	return ep.start.Format(isoLayout) + ".." + ep.end.Format(isoLayout)
}

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days using the proleptic Gregorian day
// number so that results never depend on time zones or leap seconds.
func daysBetween(from, to time.Time) int {
	return dayNumber(to) - dayNumber(from)
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	a := (14 - int(m)) / 12
	yy := y + 4800 - a
	mm := int(m) + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}
