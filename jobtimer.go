// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"sync"
	"time"
)

// jobTimer is the per-timing-element "next fire" state holder described
// in spec §4.3. A Job owns one jobTimer per element of its timing list.
// Mutation is serialized by the owning Job's lock, but jobTimer carries
// its own mutex too so it can be read concurrently (e.g. from a table
// renderer) without reaching back into the Job.
type jobTimer struct {
	mu sync.Mutex

	kind       JobKind
	elem       timingElement
	nextExec   time.Time
	skipMissed bool
}

// newJobTimer builds a timer initialized with nextExec = start, then
// immediately advances it once so the stored instant is the first true
// firing (spec §3, JobTimer lifecycle).
func newJobTimer(kind JobKind, elem timingElement, start time.Time, skipMissed bool) *jobTimer {
	jt := &jobTimer{kind: kind, elem: elem, nextExec: start, skipMissed: skipMissed}
	jt.advance(nil)
	return jt
}

// advance computes the next firing instant per spec §4.3. ref, when
// non-nil, is the reference instant used by the skip-missed resync logic.
func (jt *jobTimer) advance(ref *time.Time) {
	jt.mu.Lock()
	defer jt.mu.Unlock()
	jt.advanceLocked(ref)
}

func (jt *jobTimer) advanceLocked(ref *time.Time) {
	switch jt.kind {
	case Interval:
		if jt.skipMissed && ref != nil {
			jt.nextExec = *ref
		}
		jt.nextExec = jt.nextExec.Add(jt.elem.duration)
		return

	case Weekly:
		wd := jt.elem.weekday
		if loc := wd.Time.Location(); !wd.Time.IsZero() && isAwareLocation(loc) {
			jt.nextExec = jt.nextExec.In(loc)
		}
		next, err := nextWeekdayTime(jt.nextExec, wd.Weekday, wd.Time)
		if err == nil {
			jt.nextExec = next
		}

	default: // Minutely, Hourly, Daily
		t := jt.elem.clock
		if isAwareLocation(t.Location()) {
			jt.nextExec = jt.nextExec.In(t.Location())
		}
		switch jt.kind {
		case Minutely:
			jt.nextExec = nextMinutely(jt.nextExec, t)
		case Hourly:
			jt.nextExec = nextHourly(jt.nextExec, t)
		case Daily:
			jt.nextExec = nextDaily(jt.nextExec, t)
		}
	}

	if jt.skipMissed && ref != nil && jt.nextExec.Before(*ref) {
		jt.nextExec = *ref
		jt.advanceLocked(ref)
	}
}

// datetime returns the currently planned execution instant.
func (jt *jobTimer) datetime() time.Time {
	jt.mu.Lock()
	defer jt.mu.Unlock()
	return jt.nextExec
}

// timedelta returns nextExec - ref.
func (jt *jobTimer) timedelta(ref time.Time) time.Duration {
	jt.mu.Lock()
	defer jt.mu.Unlock()
	return jt.nextExec.Sub(ref)
}
