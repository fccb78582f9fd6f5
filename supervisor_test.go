// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSupervisorMaxAttemptsSelfRetires(t *testing.T) {
	// S3: interval(10ms) with maxAttempts=3; after three cooperative
	// wakeups the registry is empty and attempts == 3.
	s := NewSupervisor()
	var counter int32
	j, err := s.Interval(10*time.Millisecond, func(args ...interface{}) {
		atomic.AddInt32(&counter, 1)
	}, WithMaxAttempts(3))
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&counter) == 3
	}, time.Second, time.Millisecond)

	assert.Eventually(t, func() bool {
		return len(s.Jobs()) == 0
	}, time.Second, time.Millisecond)

	assert.Equal(t, 3, j.Attempts())
}

func TestSupervisorDeleteJobCancelsTask(t *testing.T) {
	s := NewSupervisor()
	var counter int32
	j, err := s.Interval(time.Hour, func(args ...interface{}) {
		atomic.AddInt32(&counter, 1)
	})
	assert.NoError(t, err)
	assert.Len(t, s.Jobs(), 1)

	err = s.DeleteJob(j)
	assert.NoError(t, err)
	assert.Len(t, s.Jobs(), 0)
	assert.EqualValues(t, 0, atomic.LoadInt32(&counter))
}

func TestSupervisorDeleteJobNotScheduled(t *testing.T) {
	s := NewSupervisor()
	other := NewSupervisor()
	j, err := other.Interval(time.Hour, func(args ...interface{}) {})
	assert.NoError(t, err)

	err = s.DeleteJob(j)
	assert.Error(t, err)
	var serr *SchedulerError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, ErrNotScheduled, serr.Kind)
}

func TestSupervisorTagDeletion(t *testing.T) {
	s := NewSupervisor()
	_, err := s.Interval(time.Hour, func(args ...interface{}) {}, WithTags("x"))
	assert.NoError(t, err)
	_, err = s.Interval(time.Hour, func(args ...interface{}) {}, WithTags("y"))
	assert.NoError(t, err)

	n := s.DeleteJobs(map[string]struct{}{"x": {}}, false)
	assert.Equal(t, 1, n)
	assert.Len(t, s.Jobs(), 1)
}
