// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newWeightedJob(t *testing.T, weight float64) *Job {
	j, err := newJob(Interval, time.Hour, func(args ...interface{}) {}, nil, WithWeight(weight))
	assert.NoError(t, err)
	return j
}

func TestLinearPriority(t *testing.T) {
	j := newWeightedJob(t, 2)
	assert.Equal(t, float64(0), LinearPriority(-1, j, 0, 1))
	assert.Equal(t, float64(6), LinearPriority(2, j, 0, 1)) // (2+1)*2
}

func TestConstantPriority(t *testing.T) {
	j := newWeightedJob(t, 3)
	assert.Equal(t, float64(0), ConstantPriority(-0.5, j, 0, 1))
	assert.Equal(t, float64(3), ConstantPriority(0, j, 0, 1))
	assert.Equal(t, float64(3), ConstantPriority(100, j, 0, 1))
}

func TestRandomPriorityBounds(t *testing.T) {
	j0 := newWeightedJob(t, 0)
	j1 := newWeightedJob(t, 1)

	assert.Equal(t, float64(0), RandomPriority(-1, j0, 0, 1))
	for i := 0; i < 20; i++ {
		assert.Equal(t, float64(0), RandomPriority(1, j0, 0, 1))
		assert.Equal(t, float64(1), RandomPriority(1, j1, 0, 1))
	}
}

func TestOverdueSeconds(t *testing.T) {
	due := time.Date(2021, time.May, 26, 3, 55, 0, 0, time.UTC)
	ref := due.Add(5 * time.Second)
	assert.Equal(t, float64(5), overdueSeconds(due, ref))

	ref = due.Add(-5 * time.Second)
	assert.Equal(t, float64(-5), overdueSeconds(due, ref))
}
