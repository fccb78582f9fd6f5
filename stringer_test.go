// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrCutoff(t *testing.T) {
	assert.Equal(t, "short", strCutoff("short", 16))
	got := strCutoff("a-very-long-handle-name-indeed", 10)
	assert.Len(t, []rune(got), 10)
	assert.True(t, strings.HasSuffix(got, "#"))
}

func TestPrettifyDuration(t *testing.T) {
	assert.Equal(t, "1:00:00", prettifyDuration(time.Hour))
	assert.Equal(t, "-1:00:00", prettifyDuration(-time.Hour))
	assert.Equal(t, "2 days", prettifyDuration(48*time.Hour))
	assert.Equal(t, "1 day", prettifyDuration(24*time.Hour))
}

func TestAttemptsDenominatorAndDisplayKind(t *testing.T) {
	assert.Equal(t, "inf", attemptsDenominator(0))
	assert.Equal(t, "5", attemptsDenominator(5))
	assert.Equal(t, "ONCE", displayKind(Interval, 1))
	assert.Equal(t, "INTERVAL", displayKind(Interval, 0))
}

func TestDispatcherStringIncludesWeightColumn(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Interval(time.Hour, func(args ...interface{}) {}, WithAlias("demo"))
	assert.NoError(t, err)

	out := d.String()
	assert.Contains(t, out, "weight")
	assert.Contains(t, out, "demo")
}

func TestSupervisorStringOmitsWeightColumn(t *testing.T) {
	s := NewSupervisor()
	_, err := s.Interval(time.Hour, func(args ...interface{}) {}, WithAlias("demo"))
	assert.NoError(t, err)

	out := s.String()
	assert.NotContains(t, out, "weight")
	assert.Contains(t, out, "demo")
}
