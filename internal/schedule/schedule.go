// Package schedule provides session-owned timers driven by an explicit clock.
//
// A Scheduler never reads wall time. Its owner calls Advance with the elapsed
// duration (a frame tick in the UI, an arbitrary step in tests) and due tasks
// run synchronously on the caller's goroutine in deadline order.
package schedule

import "time"

type task struct {
	id       uint64
	at       time.Duration
	interval time.Duration
	fn       func()
}

// Scheduler holds pending tasks against a monotonic virtual clock.
type Scheduler struct {
	now    time.Duration
	nextID uint64
	tasks  map[uint64]*task
}

// Handle refers to a scheduled task. The zero Handle is valid and cancels nothing.
type Handle struct {
	s  *Scheduler
	id uint64
}

// New returns an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{tasks: map[uint64]*task{}}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After runs fn once, d after the current virtual time.
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	return s.add(d, 0, fn)
}

// Every runs fn each d, first firing d from now. d must be positive.
func (s *Scheduler) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic("schedule: non-positive interval")
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	s.nextID++
	t := &task{id: s.nextID, at: s.now + d, interval: interval, fn: fn}
	s.tasks[t.id] = t
	return Handle{s: s, id: t.id}
}

// Cancel removes the task. It reports whether the task was still pending.
func (h Handle) Cancel() bool {
	if h.s == nil {
		return false
	}
	if _, ok := h.s.tasks[h.id]; !ok {
		return false
	}
	delete(h.s.tasks, h.id)
	return true
}

// Active reports whether the task is still pending.
func (h Handle) Active() bool {
	if h.s == nil {
		return false
	}
	_, ok := h.s.tasks[h.id]
	return ok
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	clear(s.tasks)
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Advance moves the clock forward by d, running every task that falls due.
// Tasks scheduled or cancelled by a running callback are honored within the
// same call. It returns the number of callbacks run.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	fired := 0
	for {
		next := s.earliest(target)
		if next == nil {
			break
		}
		s.now = next.at
		if next.interval > 0 {
			next.at += next.interval
		} else {
			delete(s.tasks, next.id)
		}
		next.fn()
		fired++
	}
	s.now = target
	return fired
}

func (s *Scheduler) earliest(limit time.Duration) *task {
	var best *task
	for _, t := range s.tasks {
		if t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.id < best.id) {
			best = t
		}
	}
	return best
}
