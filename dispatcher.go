// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher is the synchronous, host-ticked engine (C5). Unlike the
// teacher's Scheduler, which runs its own goroutine and timer
// (scheduler.go's run loop), a Dispatcher does no work between calls to
// Tick: the host decides when time has passed.
type Dispatcher struct {
	mu sync.RWMutex

	jobs map[uuid.UUID]*Job

	tz         *time.Location
	maxExec    int
	priorityFn PriorityFunc
	nWorkers   int
	logger     eventLogger
}

// DispatcherOption configures a Dispatcher at construction time.
type DispatcherOption func(*dispatcherConfig)

type dispatcherConfig struct {
	tz          *time.Location
	maxExec     int
	priorityFn  PriorityFunc
	nWorkers    int
	rawLogger   *zerolog.Logger
	initialJobs []*Job
}

// WithDispatcherTZ sets the Dispatcher's timezone; every Job it
// schedules must agree with this setting (both aware or both naive).
func WithDispatcherTZ(tz *time.Location) DispatcherOption {
	return func(c *dispatcherConfig) { c.tz = tz }
}

// WithMaxExec caps the number of jobs run per Tick; 0 (default) means
// unbounded.
func WithMaxExec(n int) DispatcherOption {
	return func(c *dispatcherConfig) { c.maxExec = n }
}

// WithPriorityFunc overrides the Dispatcher's selection function.
// Defaults to LinearPriority.
func WithPriorityFunc(fn PriorityFunc) DispatcherOption {
	return func(c *dispatcherConfig) { c.priorityFn = fn }
}

// WithWorkers sets how many worker goroutines fan out a single Tick; 0
// (default) means one worker per eligible job that tick.
func WithWorkers(n int) DispatcherOption {
	return func(c *dispatcherConfig) { c.nWorkers = n }
}

// WithDispatcherLogger overrides the zerolog.Logger used to report
// panicking handles.
func WithDispatcherLogger(log zerolog.Logger) DispatcherOption {
	return func(c *dispatcherConfig) { c.rawLogger = &log }
}

// WithInitialJobs seeds the Dispatcher's registry with already
// constructed Jobs, e.g. ones built against another engine's factories.
func WithInitialJobs(jobs ...*Job) DispatcherOption {
	return func(c *dispatcherConfig) { c.initialJobs = jobs }
}

// NewDispatcher builds a Dispatcher per spec §4.5/§6.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	cfg := &dispatcherConfig{priorityFn: LinearPriority}
	for _, opt := range opts {
		opt(cfg)
	}

	log := newDefaultLogger()
	if cfg.rawLogger != nil {
		log = *cfg.rawLogger
	}

	d := &Dispatcher{
		jobs:       make(map[uuid.UUID]*Job),
		tz:         cfg.tz,
		maxExec:    cfg.maxExec,
		priorityFn: cfg.priorityFn,
		nWorkers:   cfg.nWorkers,
		logger:     newEventLogger(log),
	}
	for _, j := range cfg.initialJobs {
		d.insert(j)
	}
	return d
}

func (d *Dispatcher) insert(j *Job) {
	if !j.hasAttemptsRemaining() {
		return
	}
	d.mu.Lock()
	d.jobs[j.id] = j
	d.mu.Unlock()
}

// Interval schedules a Job that fires every dur.
func (d *Dispatcher) Interval(dur time.Duration, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Interval, dur, h, d.tz, opts...)
	if err != nil {
		return nil, err
	}
	d.insert(j)
	return j, nil
}

// Minutely schedules a Job firing once a minute at one or more
// seconds-of-minute marks.
func (d *Dispatcher) Minutely(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Minutely, times, h, d.tz, opts...)
	if err != nil {
		return nil, err
	}
	d.insert(j)
	return j, nil
}

// Hourly schedules a Job firing once an hour at one or more
// minute:second marks.
func (d *Dispatcher) Hourly(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Hourly, times, h, d.tz, opts...)
	if err != nil {
		return nil, err
	}
	d.insert(j)
	return j, nil
}

// Daily schedules a Job firing once a day at one or more wall-clock
// marks.
func (d *Dispatcher) Daily(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Daily, times, h, d.tz, opts...)
	if err != nil {
		return nil, err
	}
	d.insert(j)
	return j, nil
}

// Weekly schedules a Job firing on one or more (Weekday, time) pairs.
func (d *Dispatcher) Weekly(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Weekly, times, h, d.tz, opts...)
	if err != nil {
		return nil, err
	}
	d.insert(j)
	return j, nil
}

// Once schedules a Job that fires exactly one time. when may be a
// time.Time (an absolute instant), a time.Duration (delay from now, run
// as an Interval job) or a WeekdayTime (run as a Weekly job). A
// time.Time is always taken as an absolute instant; there is no form
// that schedules a one-off daily wall-clock mark.
func (d *Dispatcher) Once(when interface{}, h Handle, opts ...JobOption) (*Job, error) {
	opts = append(opts, WithMaxAttempts(1))
	switch v := when.(type) {
	case time.Time:
		opts = append(opts, WithStart(v), WithDelay(false))
		j, err := newJob(Interval, time.Duration(0), h, d.tz, opts...)
		if err != nil {
			return nil, err
		}
		d.insert(j)
		return j, nil
	case time.Duration:
		j, err := newJob(Interval, v, h, d.tz, opts...)
		if err != nil {
			return nil, err
		}
		d.insert(j)
		return j, nil
	case WeekdayTime:
		j, err := newJob(Weekly, v, h, d.tz, opts...)
		if err != nil {
			return nil, err
		}
		d.insert(j)
		return j, nil
	default:
		return nil, newErr(ErrBadTiming, "once requires a time.Time, time.Duration, or WeekdayTime")
	}
}

// Jobs returns every Job currently registered.
func (d *Dispatcher) Jobs() []*Job {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Job, 0, len(d.jobs))
	for _, j := range d.jobs {
		out = append(out, j)
	}
	return out
}

// GetJobs returns the registered Jobs matching the tag selection
// described in spec §4.5.
func (d *Dispatcher) GetJobs(tags map[string]struct{}, anyTag bool) []*Job {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Job
	for _, j := range d.jobs {
		if tagMatch(j, tags, anyTag) {
			out = append(out, j)
		}
	}
	return out
}

// DeleteJob removes j from the registry, returning ErrNotScheduled if it
// is not present.
func (d *Dispatcher) DeleteJob(j *Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.jobs[j.id]; !ok {
		return newErr(ErrNotScheduled, "")
	}
	delete(d.jobs, j.id)
	return nil
}

// DeleteJobs removes every registered Job matching the tag selection
// and returns how many were removed. A nil or empty tags set deletes
// everything.
func (d *Dispatcher) DeleteJobs(tags map[string]struct{}, anyTag bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for id, j := range d.jobs {
		if tagMatch(j, tags, anyTag) {
			delete(d.jobs, id)
			n++
		}
	}
	return n
}

// tagMatch implements spec §4.5's selection predicate: empty/absent tags
// matches everything; otherwise anyTag requires a nonempty intersection
// and !anyTag requires tags to be a subset of job's tags.
func tagMatch(j *Job, tags map[string]struct{}, anyTag bool) bool {
	if len(tags) == 0 {
		return true
	}
	jobTags := j.Tags()
	if anyTag {
		for t := range tags {
			if _, ok := jobTags[t]; ok {
				return true
			}
		}
		return false
	}
	for t := range tags {
		if _, ok := jobTags[t]; !ok {
			return false
		}
	}
	return true
}

func (d *Dispatcher) now() time.Time {
	return nowIn(d.tz)
}

// Tick runs one selection-and-execute cycle per spec §4.5. When
// forceAll is true, priority scoring is skipped and every registered Job
// executes regardless of its due time. It returns the number of Jobs
// executed.
func (d *Dispatcher) Tick(forceAll bool) int {
	ref := d.now()

	d.mu.RLock()
	candidates := make([]*Job, 0, len(d.jobs))
	for _, j := range d.jobs {
		candidates = append(candidates, j)
	}
	jobCount := len(d.jobs)
	maxExec := d.maxExec
	priorityFn := d.priorityFn
	nWorkers := d.nWorkers
	logger := d.logger
	d.mu.RUnlock()

	var kept []*Job
	if forceAll {
		kept = candidates
	} else {
		type scored struct {
			job      *Job
			priority float64
		}
		scoredJobs := make([]scored, 0, len(candidates))
		for _, j := range candidates {
			overdue := overdueSeconds(j.nextFireAt(), ref)
			p := priorityFn(overdue, j, maxExec, jobCount)
			if p > 0 {
				scoredJobs = append(scoredJobs, scored{job: j, priority: p})
			}
		}
		sort.SliceStable(scoredJobs, func(i, k int) bool {
			return scoredJobs[i].priority > scoredJobs[k].priority
		})
		if maxExec > 0 && len(scoredJobs) > maxExec {
			scoredJobs = scoredJobs[:maxExec]
		}
		kept = make([]*Job, len(scoredJobs))
		for i, s := range scoredJobs {
			kept[i] = s.job
		}
	}

	if len(kept) == 0 {
		return 0
	}

	workers := nWorkers
	if workers <= 0 || workers > len(kept) {
		workers = len(kept)
	}

	queue := make(chan *Job, len(kept))
	for _, j := range kept {
		queue <- j
	}
	close(queue)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range queue {
				j.execute(logger)
			}
		}()
	}
	wg.Wait()

	d.mu.Lock()
	for _, j := range kept {
		j.calcNext(ref)
		if !j.hasAttemptsRemaining() {
			delete(d.jobs, j.id)
		}
	}
	d.mu.Unlock()

	return len(kept)
}
