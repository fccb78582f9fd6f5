// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Supervisor is the cooperative engine (C6): every registered Job is
// driven by its own goroutine that sleeps until the Job's next firing,
// runs it, advances, and self-retires. This generalizes the teacher's
// ind.go goroutine-per-job + context.CancelFunc pattern (IndSchedule in
// particular) from a single always-running func() to a full Job with
// attempt accounting and tag-based lookup.
type Supervisor struct {
	mu sync.Mutex

	jobs map[uuid.UUID]*supervisedJob

	tz     *time.Location
	logger eventLogger
}

type supervisedJob struct {
	job    *Job
	cancel context.CancelFunc
	done   chan struct{}
}

// SupervisorOption configures a Supervisor at construction time.
type SupervisorOption func(*supervisorConfig)

type supervisorConfig struct {
	tz        *time.Location
	rawLogger *zerolog.Logger
}

// WithSupervisorTZ sets the Supervisor's timezone.
func WithSupervisorTZ(tz *time.Location) SupervisorOption {
	return func(c *supervisorConfig) { c.tz = tz }
}

// WithSupervisorLogger overrides the zerolog.Logger used to report
// panicking handles.
func WithSupervisorLogger(log zerolog.Logger) SupervisorOption {
	return func(c *supervisorConfig) { c.rawLogger = &log }
}

// NewSupervisor builds a Supervisor per spec §4.6/§6.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	cfg := &supervisorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	log := newDefaultLogger()
	if cfg.rawLogger != nil {
		log = *cfg.rawLogger
	}
	return &Supervisor{
		jobs:   make(map[uuid.UUID]*supervisedJob),
		tz:     cfg.tz,
		logger: newEventLogger(log),
	}
}

func (s *Supervisor) now() time.Time {
	return nowIn(s.tz)
}

func (s *Supervisor) insert(j *Job) {
	if !j.hasAttemptsRemaining() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sj := &supervisedJob{job: j, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.jobs[j.id] = sj
	s.mu.Unlock()

	go s.supervise(ctx, sj)
}

// supervise implements spec §4.6's per-job loop, grounded on
// asyncio/scheduler.py's __supervise_job: sleep until due, execute,
// advance, repeat until attempts are exhausted; cancellation during the
// sleep ends the loop without running a final execution.
func (s *Supervisor) supervise(ctx context.Context, sj *supervisedJob) {
	defer close(sj.done)
	j := sj.job
	for j.hasAttemptsRemaining() {
		d := j.Timedelta(s.now())
		if d < 0 {
			d = 0
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.retire(j.id)
			return
		case <-timer.C:
		}

		j.executeAsync(ctx, s.logger)
		j.calcNext(s.now())
	}
	s.retire(j.id)
}

func (s *Supervisor) retire(id uuid.UUID) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

// Interval schedules a Job that fires every d.
func (s *Supervisor) Interval(d time.Duration, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Interval, d, h, s.tz, opts...)
	if err != nil {
		return nil, err
	}
	s.insert(j)
	return j, nil
}

// Minutely schedules a Job firing once a minute at one or more
// seconds-of-minute marks.
func (s *Supervisor) Minutely(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Minutely, times, h, s.tz, opts...)
	if err != nil {
		return nil, err
	}
	s.insert(j)
	return j, nil
}

// Hourly schedules a Job firing once an hour at one or more
// minute:second marks.
func (s *Supervisor) Hourly(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Hourly, times, h, s.tz, opts...)
	if err != nil {
		return nil, err
	}
	s.insert(j)
	return j, nil
}

// Daily schedules a Job firing once a day at one or more wall-clock
// marks.
func (s *Supervisor) Daily(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Daily, times, h, s.tz, opts...)
	if err != nil {
		return nil, err
	}
	s.insert(j)
	return j, nil
}

// Weekly schedules a Job firing on one or more (Weekday, time) pairs.
func (s *Supervisor) Weekly(times Timing, h Handle, opts ...JobOption) (*Job, error) {
	j, err := newJob(Weekly, times, h, s.tz, opts...)
	if err != nil {
		return nil, err
	}
	s.insert(j)
	return j, nil
}

// Once schedules a Job that fires exactly one time, accepting the same
// forms of when as Dispatcher.Once: a time.Time (always an absolute
// instant, never a daily wall-clock mark), a time.Duration, or a
// WeekdayTime.
func (s *Supervisor) Once(when interface{}, h Handle, opts ...JobOption) (*Job, error) {
	opts = append(opts, WithMaxAttempts(1))
	switch v := when.(type) {
	case time.Time:
		opts = append(opts, WithStart(v), WithDelay(false))
		j, err := newJob(Interval, time.Duration(0), h, s.tz, opts...)
		if err != nil {
			return nil, err
		}
		s.insert(j)
		return j, nil
	case time.Duration:
		j, err := newJob(Interval, v, h, s.tz, opts...)
		if err != nil {
			return nil, err
		}
		s.insert(j)
		return j, nil
	case WeekdayTime:
		j, err := newJob(Weekly, v, h, s.tz, opts...)
		if err != nil {
			return nil, err
		}
		s.insert(j)
		return j, nil
	default:
		return nil, newErr(ErrBadTiming, "once requires a time.Time, time.Duration, or WeekdayTime")
	}
}

// Jobs returns every Job currently registered.
func (s *Supervisor) Jobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, sj := range s.jobs {
		out = append(out, sj.job)
	}
	return out
}

// GetJobs returns the registered Jobs matching the tag selection
// described in spec §4.5 (shared verbatim with Dispatcher).
func (s *Supervisor) GetJobs(tags map[string]struct{}, anyTag bool) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Job
	for _, sj := range s.jobs {
		if tagMatch(sj.job, tags, anyTag) {
			out = append(out, sj.job)
		}
	}
	return out
}

// DeleteJob cancels j's supervising task and removes it from the
// registry. Per spec §4.6, cancellation is the signal that terminates
// the task without running its retirement branch a second time.
func (s *Supervisor) DeleteJob(j *Job) error {
	s.mu.Lock()
	sj, ok := s.jobs[j.id]
	s.mu.Unlock()
	if !ok {
		return newErr(ErrNotScheduled, "")
	}
	sj.cancel()
	<-sj.done
	return nil
}

// DeleteJobs cancels every registered Job matching the tag selection
// and returns how many were removed.
func (s *Supervisor) DeleteJobs(tags map[string]struct{}, anyTag bool) int {
	s.mu.Lock()
	var matched []*supervisedJob
	for _, sj := range s.jobs {
		if tagMatch(sj.job, tags, anyTag) {
			matched = append(matched, sj)
		}
	}
	s.mu.Unlock()

	for _, sj := range matched {
		sj.cancel()
		<-sj.done
	}
	return len(matched)
}
