// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is the opaque, nullary, effectful callback a Job invokes when it
// fires. The core never inspects it beyond calling it; argument binding
// happens ahead of time via JobOption (args/kwArgs), matching spec §9's
// "duck-typed handle, compared only by Job identity" note.
type Handle func(args ...interface{})

// Job bundles one or more jobTimers with a handle, its bound arguments,
// bookkeeping (tags, attempts, alias, weight) and the start/stop window
// described in spec §3/§4.4.
type Job struct {
	id uuid.UUID

	mu sync.RWMutex

	kind        JobKind
	handle      Handle
	args        []interface{}
	kwArgs      map[string]interface{}
	tags        map[string]struct{}
	alias       string
	weight      float64
	maxAttempts int
	delay       bool
	start       time.Time
	stop        *time.Time
	skipMissed  bool
	tz          *time.Location

	timers  []*jobTimer
	pending *jobTimer

	markDeleted    bool
	attempts       int
	failedAttempts int
}

// JobOption configures a Job at construction time. Mirrors the teacher's
// functional-option pattern (options.go) rather than a growing parameter
// list.
type JobOption func(*jobConfig)

// jobConfig accumulates JobOption values before a Job is built; kept
// separate from Job itself so partially-applied options never touch a
// live, registered Job.
type jobConfig struct {
	args        []interface{}
	kwArgs      map[string]interface{}
	tags        map[string]struct{}
	alias       string
	weight      float64
	maxAttempts int
	delay       bool
	start       *time.Time
	stop        *time.Time
	skipMissing bool
}

func newJobConfig() *jobConfig {
	return &jobConfig{weight: 1, delay: true}
}

// WithArgs binds positional arguments passed to the handle on every
// firing.
func WithArgs(args ...interface{}) JobOption {
	return func(c *jobConfig) { c.args = args }
}

// WithKwArgs binds named arguments passed to the handle on every firing.
func WithKwArgs(kwArgs map[string]interface{}) JobOption {
	return func(c *jobConfig) { c.kwArgs = kwArgs }
}

// WithTags attaches tags used by tag-based selection and deletion.
func WithTags(tags ...string) JobOption {
	return func(c *jobConfig) {
		c.tags = make(map[string]struct{}, len(tags))
		for _, t := range tags {
			c.tags[t] = struct{}{}
		}
	}
}

// WithWeight sets the Job's relative weight against other Jobs (default 1).
func WithWeight(weight float64) JobOption {
	return func(c *jobConfig) { c.weight = weight }
}

// WithDelay, when false, makes the first firing equal Start instead of
// the first advanced timer instant; deprecated upstream but retained
// here as an explicit option (spec §9 Design Note).
func WithDelay(delay bool) JobOption {
	return func(c *jobConfig) { c.delay = delay }
}

// WithStart sets the reference instant future executions are calculated
// from. Defaults to "now" in the engine's timezone.
func WithStart(start time.Time) JobOption {
	return func(c *jobConfig) { c.start = &start }
}

// WithStop sets the instant after which the Job retires instead of
// scheduling another firing.
func WithStop(stop time.Time) JobOption {
	return func(c *jobConfig) { c.stop = &stop }
}

// WithSkipMissing enables the skip-missed policy (spec §4.3): after a
// long pause, only the newest planned firing is kept instead of each
// individually missed one.
func WithSkipMissing(skip bool) JobOption {
	return func(c *jobConfig) { c.skipMissing = skip }
}

// WithMaxAttempts caps the number of firings; 0 (the default) means
// unbounded.
func WithMaxAttempts(n int) JobOption {
	return func(c *jobConfig) { c.maxAttempts = n }
}

// WithAlias overrides the handle's display name in table/string output.
func WithAlias(alias string) JobOption {
	return func(c *jobConfig) { c.alias = alias }
}

// newJob constructs a Job per spec §4.4: normalize timing, resolve
// start/stop, build one jobTimer per timing element, select pending, and
// mark for deletion if stop is already exceeded.
func newJob(kind JobKind, timing Timing, handle Handle, tz *time.Location, opts ...JobOption) (*Job, error) {
	cfg := newJobConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	elems, err := normalizeTiming(kind, timing)
	if err != nil {
		return nil, err
	}
	if err := checkTimingTimezone(kind, elems, tz); err != nil {
		return nil, err
	}

	start, err := resolveStart(cfg.start, tz)
	if err != nil {
		return nil, err
	}
	if cfg.stop != nil {
		if isAwareLocation(cfg.stop.Location()) != (tz != nil) {
			return nil, newErr(ErrTimezoneMismatch, "stop")
		}
		if !start.Before(*cfg.stop) {
			return nil, newErr(ErrStartStop, "")
		}
	}

	j := &Job{
		id:          uuid.New(),
		kind:        kind,
		handle:      handle,
		args:        cfg.args,
		kwArgs:      cfg.kwArgs,
		tags:        cfg.tags,
		alias:       cfg.alias,
		weight:      cfg.weight,
		maxAttempts: cfg.maxAttempts,
		delay:       cfg.delay,
		start:       start,
		stop:        cfg.stop,
		skipMissed:  cfg.skipMissing,
		tz:          tz,
	}
	if j.tags == nil {
		j.tags = make(map[string]struct{})
	}

	j.timers = make([]*jobTimer, len(elems))
	for i, e := range elems {
		j.timers[i] = newJobTimer(kind, e, start, cfg.skipMissing)
	}
	j.pending = earliestTimer(j.timers)
	if j.stop != nil && j.pending.datetime().After(*j.stop) {
		j.markDeleted = true
	}

	return j, nil
}

func resolveStart(start *time.Time, tz *time.Location) (time.Time, error) {
	if start == nil {
		return nowIn(tz), nil
	}
	if isAwareLocation(start.Location()) != (tz != nil) {
		return time.Time{}, newErr(ErrTimezoneMismatch, "start")
	}
	return *start, nil
}

func nowIn(tz *time.Location) time.Time {
	if tz == nil {
		return time.Now()
	}
	return time.Now().In(tz)
}

func earliestTimer(timers []*jobTimer) *jobTimer {
	best := timers[0]
	for _, t := range timers[1:] {
		if t.datetime().Before(best.datetime()) {
			best = t
		}
	}
	return best
}

// ID returns the Job's stable identity, assigned at construction.
// Supplements the original's reliance on object identity (see
// SPEC_FULL.md "Supplemented features").
func (j *Job) ID() uuid.UUID { return j.id }

// Kind returns the JobKind the Job was scheduled with.
func (j *Job) Kind() JobKind {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.kind
}

// Alias returns the display alias, if any.
func (j *Job) Alias() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.alias
}

// Tags returns a copy of the Job's tag set.
func (j *Job) Tags() map[string]struct{} {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make(map[string]struct{}, len(j.tags))
	for t := range j.tags {
		out[t] = struct{}{}
	}
	return out
}

// Weight returns the Job's relative weight.
func (j *Job) Weight() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.weight
}

// Attempts returns the number of successful executions so far.
func (j *Job) Attempts() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.attempts
}

// FailedAttempts returns the number of executions whose handle panicked.
func (j *Job) FailedAttempts() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.failedAttempts
}

// MaxAttempts returns the configured attempt cap, 0 meaning unbounded.
func (j *Job) MaxAttempts() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.maxAttempts
}

// hasAttemptsRemaining reports whether the Job should still be
// considered for future firings (spec §3 invariant).
func (j *Job) hasAttemptsRemaining() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.hasAttemptsRemainingLocked()
}

func (j *Job) hasAttemptsRemainingLocked() bool {
	if j.markDeleted {
		return false
	}
	if j.maxAttempts == 0 {
		return true
	}
	return j.attempts < j.maxAttempts
}

// nextFireAt returns Start when delay is false and the Job has not fired
// yet, else the pending timer's instant (spec §3).
func (j *Job) nextFireAt() time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.nextFireAtLocked()
}

func (j *Job) nextFireAtLocked() time.Time {
	if !j.delay && j.attempts == 0 {
		return j.start
	}
	return j.pending.datetime()
}

// Timedelta returns the duration until the Job's next firing, relative to
// ref. If ref is the zero value, "now in the Job's timezone" is used.
func (j *Job) Timedelta(ref time.Time) time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if ref.IsZero() {
		ref = nowIn(j.tz)
	}
	if !j.delay && j.attempts == 0 {
		return j.start.Sub(ref)
	}
	return j.pending.timedelta(ref)
}

// execute invokes the handle synchronously, accounting attempts/failures
// and logging (never propagating) a panic, per spec §4.4. The handle
// itself runs without j's lock held — spec §5 is explicit that handles
// "run without the registry lock" so a slow or blocking handle never
// stalls a concurrent Attempts()/Row() read of the same Job.
func (j *Job) execute(logger eventLogger) {
	args := buildCallArgs(j.args, j.kwArgs)

	defer func() {
		if r := recover(); r != nil {
			j.mu.Lock()
			j.failedAttempts++
			j.mu.Unlock()
			logger.logPanic(j, r)
		}
	}()

	j.handle(args...)

	j.mu.Lock()
	j.attempts++
	j.mu.Unlock()
}

// executeAsync is the Supervisor-flavored counterpart of execute. Go has
// no intrinsic async/sync handle distinction the way the Python original
// does (awaitable vs. plain callables), so executeAsync just runs execute
// on its own goroutine and returns once it completes. A ctx canceled
// mid-flight does not cut the handle short: executeAsync still waits for
// it to finish, and the supervise loop sees the cancellation afterwards.
func (j *Job) executeAsync(ctx context.Context, logger eventLogger) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.execute(logger)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		<-done
	}
}

func buildCallArgs(args []interface{}, kwArgs map[string]interface{}) []interface{} {
	if len(kwArgs) == 0 {
		return args
	}
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, args...)
	out = append(out, kwArgs)
	return out
}

// calcNext advances the Job's timers past ref and reselects pending, per
// spec §4.4.
func (j *Job) calcNext(ref time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.skipMissed {
		for _, t := range j.timers {
			if !t.datetime().After(ref) {
				t.advance(&ref)
			}
		}
	} else {
		j.pending.advance(&ref)
	}
	j.pending = earliestTimer(j.timers)
	if j.stop != nil && j.pending.datetime().After(*j.stop) {
		j.markDeleted = true
	}
}

// markForDeletion flags the Job as retired without waiting for its next
// calcNext. Neither engine's DeleteJob calls it; they remove the Job from
// their registry instead.
func (j *Job) markForDeletion() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.markDeleted = true
}

// before implements the ordering used to sort Jobs by next firing time
// (spec §4.4 "a < b iff a.nextFireAt() < b.nextFireAt()").
func (j *Job) before(other *Job) bool {
	return j.nextFireAt().Before(other.nextFireAt())
}

// eventLogger is the minimal logging surface Job needs; satisfied by
// log.go's zerolog-backed adapter, kept as an interface so tests can
// assert on panic logging without pulling in zerolog.
type eventLogger interface {
	logPanic(j *Job, r interface{})
}
