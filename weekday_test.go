// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysTo(t *testing.T) {
	for _, wd := range []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday} {
		d, err := daysTo(wd, wd)
		assert.NoError(t, err)
		assert.Equal(t, 7, d)
	}

	d, err := daysTo(Monday, Wednesday)
	assert.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = daysTo(Friday, Monday)
	assert.NoError(t, err)
	assert.Equal(t, 3, d)

	for s := Monday; s <= Sunday; s++ {
		for dst := Monday; dst <= Sunday; dst++ {
			if s == dst {
				continue
			}
			got, err := daysTo(s, dst)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 6)
		}
	}
}

func TestDaysToInvalidWeekday(t *testing.T) {
	_, err := daysTo(Weekday(7), Monday)
	assert.Error(t, err)
	var serr *SchedulerError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrWeekdayRange, serr.Kind)
}

func TestFromTime(t *testing.T) {
	assert.Equal(t, Sunday, fromTime(time.Sunday))
	assert.Equal(t, Monday, fromTime(time.Monday))
	assert.Equal(t, Saturday, fromTime(time.Saturday))
}

func TestNextTime(t *testing.T) {
	now := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	got := nextTime(now, now)
	assert.True(t, got.After(now))
	assert.Equal(t, now.Add(24*time.Hour), got)

	target := time.Date(0, 1, 1, 4, 0, 0, 0, time.UTC)
	got = nextTime(now, target)
	assert.Equal(t, time.Date(2021, time.May, 26, 4, 0, 0, 0, time.UTC), got)
}

func TestNextWeekday(t *testing.T) {
	wed := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC) // a Wednesday
	assert.Equal(t, Wednesday, fromTime(wed.Weekday()))

	fri, err := nextWeekday(wed, Friday)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.May, 28, 0, 0, 0, 0, time.UTC), fri)

	nextWed, err := nextWeekday(wed, Wednesday)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.June, 2, 0, 0, 0, 0, time.UTC), nextWed)
}

func TestTimesUnique(t *testing.T) {
	base := time.Date(0, 1, 1, 0, 5, 0, 0, time.UTC)
	dup := time.Date(0, 1, 1, 1, 5, 0, 0, time.UTC) // differs only in hour
	assert.False(t, timesUnique([]time.Time{base, dup}, minutelyKey))
	assert.False(t, timesUnique([]time.Time{base, dup}, hourlyKey))
}

func TestWeekdayTimesUnique(t *testing.T) {
	mondayUTC := At(Monday, time.Date(0, 1, 1, 23, 0, 0, 0, time.UTC))
	neg := time.FixedZone("UTC-23:30", -((23 * 3600) + 30*60))
	sundayShifted := At(Sunday, time.Date(0, 1, 1, 23, 30, 0, 0, neg))

	assert.False(t, weekdayTimesUnique([]WeekdayTime{mondayUTC, sundayShifted}))

	distinct := At(Tuesday, time.Date(0, 1, 1, 23, 0, 0, 0, time.UTC))
	assert.True(t, weekdayTimesUnique([]WeekdayTime{mondayUTC, distinct}))
}
