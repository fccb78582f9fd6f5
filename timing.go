// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import "time"

// JobKind tags the shape of timing a Job was scheduled with.
type JobKind int

const (
	// Interval fires on a fixed duration cadence.
	Interval JobKind = iota
	// Minutely fires once a minute at one or more :SS.sss marks.
	Minutely
	// Hourly fires once an hour at one or more MM:SS marks.
	Hourly
	// Daily fires once a day at one or more HH:MM:SS marks.
	Daily
	// Weekly fires on one or more (Weekday, time-of-day) pairs.
	Weekly
)

func (k JobKind) String() string {
	switch k {
	case Interval:
		return "INTERVAL"
	case Minutely:
		return "MINUTELY"
	case Hourly:
		return "HOURLY"
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	default:
		return "UNKNOWN"
	}
}

// Timing is the per-JobKind payload a Job is constructed with: a single
// time.Duration for Interval, a []time.Time for Minutely/Hourly/Daily, or
// a []WeekdayTime for Weekly. It is intentionally an empty interface (the
// Python original uses a runtime type-checked union); validity is
// enforced by normalizeTiming below rather than by the type system, so
// that factory call sites can pass either a bare element or a slice.
type Timing interface{}

// timingElement is one normalized entry of a Job's timing list, as stored
// on each JobTimer.
type timingElement struct {
	duration time.Duration // Interval only
	clock    time.Time     // Minutely/Hourly/Daily
	weekday  WeekdayTime   // Weekly only
}

// normalizeTiming validates that timing matches kind's expected shape,
// wraps a bare element into a one-element list, clears the irrelevant
// wall-clock sub-fields for Minutely/Hourly, and returns the normalized
// per-timer elements plus an error per spec §4.2/§4.3.
func normalizeTiming(kind JobKind, timing Timing) ([]timingElement, error) {
	switch kind {
	case Interval:
		d, ok := timing.(time.Duration)
		if !ok {
			return nil, newErr(ErrBadTiming, "Interval requires exactly one time.Duration")
		}
		return []timingElement{{duration: d}}, nil

	case Minutely, Hourly, Daily:
		times, err := toTimeList(timing)
		if err != nil {
			return nil, newErr(ErrBadTiming, kind.String()+" requires a time.Time or []time.Time")
		}
		var keyFn func(time.Time) clockKey
		switch kind {
		case Minutely:
			keyFn = minutelyKey
		case Hourly:
			keyFn = hourlyKey
		default:
			keyFn = dailyKey
		}
		if !timesUnique(times, keyFn) {
			return nil, newErr(ErrDuplicateTiming, "")
		}
		elems := make([]timingElement, len(times))
		for i, t := range times {
			elems[i] = timingElement{clock: standardizeClock(kind, t)}
		}
		return elems, nil

	case Weekly:
		entries, err := toWeekdayList(timing)
		if err != nil {
			return nil, newErr(ErrBadTiming, "Weekly requires a WeekdayTime or []WeekdayTime")
		}
		for _, e := range entries {
			if !e.Weekday.valid() {
				return nil, newErr(ErrWeekdayRange, "")
			}
		}
		if !weekdayTimesUnique(entries) {
			return nil, newErr(ErrDuplicateTiming, "")
		}
		elems := make([]timingElement, len(entries))
		for i, e := range entries {
			elems[i] = timingElement{weekday: e}
		}
		return elems, nil

	default:
		return nil, newErr(ErrBadTiming, "unknown JobKind")
	}
}

// standardizeClock zeroes out the wall-clock sub-fields that are
// irrelevant for kind: hour+minute for Minutely, hour for Hourly.
func standardizeClock(kind JobKind, t time.Time) time.Time {
	switch kind {
	case Minutely:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, t.Second(), t.Nanosecond(), t.Location())
	case Hourly:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	default:
		return t
	}
}

func toTimeList(timing Timing) ([]time.Time, error) {
	switch v := timing.(type) {
	case time.Time:
		return []time.Time{v}, nil
	case []time.Time:
		if len(v) == 0 {
			return nil, newErr(ErrBadTiming, "empty timing list")
		}
		return v, nil
	default:
		return nil, newErr(ErrBadTiming, "unexpected timing type")
	}
}

func toWeekdayList(timing Timing) ([]WeekdayTime, error) {
	switch v := timing.(type) {
	case WeekdayTime:
		return []WeekdayTime{v}, nil
	case []WeekdayTime:
		if len(v) == 0 {
			return nil, newErr(ErrBadTiming, "empty timing list")
		}
		return v, nil
	default:
		return nil, newErr(ErrBadTiming, "unexpected timing type")
	}
}

// checkTimingTimezone enforces that timing and the engine's tz are both
// aware or both naive; mixing is always an error (spec §3 invariant,
// §4.2).
func checkTimingTimezone(kind JobKind, elems []timingElement, loc *time.Location) error {
	engineAware := loc != nil
	for _, e := range elems {
		var t time.Time
		switch kind {
		case Interval:
			continue
		case Weekly:
			if e.weekday.Time.IsZero() {
				// A zero-value embedded time ("just midnight") carries no
				// location intent of its own; it's compatible either way.
				continue
			}
			t = e.weekday.Time
		default:
			t = e.clock
		}
		if isAwareLocation(t.Location()) != engineAware {
			return newErr(ErrTimezoneMismatch, "")
		}
	}
	return nil
}

// isAwareLocation reports whether loc should be treated as an explicit,
// caller-supplied timezone rather than the naive default. Go's time.Time
// always carries a *time.Location, so "naive" is modeled as "uses
// time.Local, the zone you get implicitly from time.Now() or time.Date
// without naming one" — an explicit zone (time.UTC, or one returned by
// time.LoadLocation) marks a Job/engine as tz-aware.
func isAwareLocation(loc *time.Location) bool {
	return loc != nil && loc != time.Local
}
