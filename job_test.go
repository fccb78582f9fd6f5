// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{ calls int }

func (l *nopLogger) logPanic(j *Job, r interface{}) { l.calls++ }

func TestNewJobBuildsPendingFromEarliestTimer(t *testing.T) {
	start := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	j, err := newJob(Minutely,
		[]time.Time{
			time.Date(0, 1, 1, 0, 0, 5, 0, time.UTC),
			time.Date(0, 1, 1, 0, 0, 50, 0, time.UTC),
		},
		func(args ...interface{}) {}, time.UTC, WithStart(start))
	assert.NoError(t, err)

	// property 1: pending equals the min of every timer's nextExec.
	min := j.timers[0].datetime()
	for _, timer := range j.timers[1:] {
		if timer.datetime().Before(min) {
			min = timer.datetime()
		}
	}
	assert.Equal(t, min, j.pending.datetime())
}

func TestJobExecuteIncrementsAttempts(t *testing.T) {
	j, err := newJob(Interval, time.Hour, func(args ...interface{}) {}, nil)
	assert.NoError(t, err)

	logger := &nopLogger{}
	for i := 1; i <= 3; i++ {
		j.execute(logger)
		assert.Equal(t, i, j.Attempts())
	}
	assert.Equal(t, 0, logger.calls)
}

func TestJobExecutePanicIsCaughtAndLogged(t *testing.T) {
	j, err := newJob(Interval, time.Hour, func(args ...interface{}) { panic("boom") }, nil)
	assert.NoError(t, err)

	logger := &nopLogger{}
	assert.NotPanics(t, func() { j.execute(logger) })
	assert.Equal(t, 1, logger.calls)
	assert.Equal(t, 1, j.FailedAttempts())
	assert.Equal(t, 0, j.Attempts())
}

func TestJobMaxAttemptsRetirement(t *testing.T) {
	j, err := newJob(Interval, time.Millisecond, func(args ...interface{}) {}, nil, WithMaxAttempts(2))
	assert.NoError(t, err)
	assert.True(t, j.hasAttemptsRemaining())

	logger := &nopLogger{}
	j.execute(logger)
	assert.True(t, j.hasAttemptsRemaining())
	j.execute(logger)
	assert.False(t, j.hasAttemptsRemaining())
}

func TestJobCalcNextRetiresPastStop(t *testing.T) {
	start := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	stop := start.Add(10 * time.Second)
	j, err := newJob(Interval, 5*time.Second, func(args ...interface{}) {}, time.UTC, WithStart(start), WithStop(stop))
	assert.NoError(t, err)
	assert.True(t, j.hasAttemptsRemaining())

	j.calcNext(start.Add(5 * time.Second))
	assert.True(t, j.hasAttemptsRemaining())

	j.calcNext(start.Add(10 * time.Second))
	assert.False(t, j.hasAttemptsRemaining())
}

func TestJobStartStopInvariant(t *testing.T) {
	start := time.Date(2021, time.May, 26, 4, 0, 0, 0, time.UTC)
	stop := start
	_, err := newJob(Interval, time.Second, func(args ...interface{}) {}, time.UTC, WithStart(start), WithStop(stop))
	assert.Error(t, err)
	var serr *SchedulerError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrStartStop, serr.Kind)
}

func TestJobOnceTimedelta(t *testing.T) {
	// S5: once(dt=04:55:00) scheduled from 03:55:00 has a 1h timedelta
	// immediately, delay=false so nextFireAt is exactly Start.
	start := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	when := time.Date(2021, time.May, 26, 4, 55, 0, 0, time.UTC)
	j, err := newJob(Interval, time.Duration(0), func(args ...interface{}) {}, time.UTC,
		WithStart(when), WithDelay(false), WithMaxAttempts(1))
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, j.Timedelta(start))

	logger := &nopLogger{}
	j.execute(logger)
	j.calcNext(when)
	assert.False(t, j.hasAttemptsRemaining())
}

func TestJobTagsAreCopiedNotAliased(t *testing.T) {
	j, err := newJob(Interval, time.Hour, func(args ...interface{}) {}, nil, WithTags("a", "b"))
	assert.NoError(t, err)
	tags := j.Tags()
	delete(tags, "a")
	assert.Contains(t, j.Tags(), "a")
}

func TestJobBeforeOrdering(t *testing.T) {
	start := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	earlier, _ := newJob(Interval, time.Second, func(args ...interface{}) {}, time.UTC, WithStart(start))
	later, _ := newJob(Interval, time.Hour, func(args ...interface{}) {}, time.UTC, WithStart(start))
	assert.True(t, earlier.before(later))
	assert.False(t, later.before(earlier))
}
