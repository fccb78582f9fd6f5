// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"math/rand"
	"time"
)

// PriorityFunc computes a Job's execution priority for one Dispatcher
// tick. overdueSeconds is how many seconds job's next firing is in the
// past relative to the tick's reference instant (negative when the
// firing is still in the future); maxExec and jobCount are the
// Dispatcher's configured cap and current registry size, passed through
// so weight functions can adapt to contention. Higher return values run
// first; the Dispatcher treats 0 as "do not run this tick".
type PriorityFunc func(overdueSeconds float64, job *Job, maxExec int, jobCount int) float64

// LinearPriority grows priority proportionally to how overdue the Job
// is, scaled by its weight: (overdueSeconds+1)*job.Weight() once
// overdue, 0 otherwise. This is the Dispatcher's default, matching
// prioritization.py's linear_priority_function: long-pending jobs win
// over recently-pending ones of equal weight, which approximates
// starvation-free fairness under a tight maxExec budget.
func LinearPriority(overdueSeconds float64, job *Job, maxExec int, jobCount int) float64 {
	if overdueSeconds < 0 {
		return 0
	}
	return (overdueSeconds + 1) * job.Weight()
}

// ConstantPriority ignores how overdue a Job is: any non-negative
// overdueSeconds yields exactly job.Weight(), letting ties resolve by
// the stable sort rather than by lateness.
func ConstantPriority(overdueSeconds float64, job *Job, maxExec int, jobCount int) float64 {
	if overdueSeconds < 0 {
		return 0
	}
	return job.Weight()
}

// RandomPriority treats weight as a probability in [0, 1]: a due Job
// gets priority 1 with probability job.Weight() and 0 otherwise. Uses
// math/rand, not crypto/rand — this selects execution order, it is not
// a security primitive.
func RandomPriority(overdueSeconds float64, job *Job, maxExec int, jobCount int) float64 {
	if overdueSeconds < 0 {
		return 0
	}
	if rand.Float64() < job.Weight() {
		return 1
	}
	return 0
}

// overdueSeconds returns the number of seconds ref is past due, i.e.
// ref.Sub(due).Seconds(), which is negative when due is still ahead of
// ref.
func overdueSeconds(due, ref time.Time) float64 {
	return ref.Sub(due).Seconds()
}
