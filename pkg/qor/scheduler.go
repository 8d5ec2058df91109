package qor

import (
	"sync"
	"time"
)

// Config holds scheduler construction options.
type Config struct {
	// SleepingFallback preserves the original scheduler's documented
	// quirk: when no thread is Active, fall back to the highest-priority
	// Sleeping thread rather than Idle. Left true matches the source
	// firmware's observed behavior; an implementer may legitimately set
	// it false to pick Idle instead. Exposed as a flag so tests can flip
	// it without forking the scheduler.
	SleepingFallback bool
}

// Scheduler selects exactly one current thread at a time from a fixed
// set of TCBs created before Start, and arms a single-shot timer at the
// earliest pending sleep deadline. Grounded on qor_init/qor_create_thread/
// qor_start's usage in original_source/software/system/main.c; the
// reschedule algorithm follows the four steps below exactly.
type Scheduler struct {
	mu   sync.Mutex
	cond *sync.Cond

	threads *TCB
	idle    *TCB
	current *TCB

	sleepingFallback bool
	timer            *time.Timer

	minWaitCap time.Duration
}

// New constructs a Scheduler. Call CreateThread for every worker thread,
// then Start to bring up the idle thread and begin scheduling.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		sleepingFallback: cfg.SleepingFallback,
		minWaitCap:       60 * time.Second,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// CreateThread registers a new thread at the given priority (0 is
// reserved for Idle; see Start) and spawns its goroutine, which blocks
// until the scheduler names it current for the first time. entry
// receives a Thread handle for Sleep/Yield/mailbox calls.
func (s *Scheduler) CreateThread(name string, priority uint8, entry func(*Thread)) *TCB {
	tcb := &TCB{Name: name, Priority: priority, state: Active, entry: entry}
	s.mu.Lock()
	tcb.next = s.threads
	s.threads = tcb
	s.mu.Unlock()

	go func() {
		s.waitTurn(tcb)
		entry(&Thread{tcb: tcb, sched: s})
	}()
	return tcb
}

// Start creates the distinguished Idle thread (priority 0), runs the
// first reschedule to pick an initial current thread, and launches
// idleEntry's goroutine. Grounded on qor_start(&idle, IdleTaskFunction).
func (s *Scheduler) Start(idleEntry func(*Thread)) {
	idle := &TCB{Name: "idle", Priority: 0, state: Active}

	s.mu.Lock()
	idle.next = s.threads
	s.threads = idle
	s.idle = idle
	s.reschedule()
	s.mu.Unlock()

	go func() {
		s.waitTurn(idle)
		if idleEntry != nil {
			idleEntry(&Thread{tcb: idle, sched: s})
		}
	}()
}

// Current returns the thread the scheduler most recently selected.
func (s *Scheduler) Current() *TCB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// waitTurn blocks the calling goroutine until the scheduler names tcb
// current and tcb is no longer Sleeping — the Go-native substitute for
// the hardware trampoline restoring tcb's saved stack pointer. A Sleeping
// thread picked by the sleeping fallback stays parked until its deadline
// passes or a notify wakes it.
func (s *Scheduler) waitTurn(tcb *TCB) {
	s.mu.Lock()
	for s.current != tcb || tcb.state == Sleeping {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// reschedule implements the scheduler's four-step algorithm. Callers
// must hold s.mu.
//
//  1. Read the current time.
//  2. Walk the thread list once: clear sleep on threads whose deadline
//     has passed, and track the highest-priority Active thread
//     (bestActive) and the highest-priority still-Sleeping thread
//     (bestSleeping), plus the minimum remaining wait, capped.
//  3. Select current = bestActive, else bestSleeping (only if
//     sleepingFallback is set), else Idle.
//  4. Arm the timer at the computed minimum wait.
func (s *Scheduler) reschedule() {
	now := time.Now()
	var bestActive, bestSleeping *TCB
	minWait := s.minWaitCap

	for t := s.threads; t != nil; t = t.next {
		if t.state == Sleeping {
			if !now.Before(t.wakeDeadline) {
				t.state = Active
				if t.waitingOn != nil {
					t.waitingOn.removeWaiterLocked(t)
					t.waitingOn = nil
				}
			} else {
				if wait := t.wakeDeadline.Sub(now); wait < minWait {
					minWait = wait
				}
				if bestSleeping == nil || t.Priority > bestSleeping.Priority {
					bestSleeping = t
				}
				continue
			}
		}
		if t == s.idle {
			continue
		}
		if bestActive == nil || t.Priority > bestActive.Priority {
			bestActive = t
		}
	}

	next := bestActive
	if next == nil && s.sleepingFallback {
		next = bestSleeping
	}
	if next == nil {
		next = s.idle
	}

	s.current = next
	s.armTimer(minWait)
	s.cond.Broadcast()
}

// armTimer schedules the next reschedule pass at wait from now,
// standing in for the original firmware's single-shot hardware alarm:
// the timer fires once at the computed minimum wait, and re-arming
// happens inside the scheduler after each pass.
func (s *Scheduler) armTimer(wait time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(wait, func() {
		s.mu.Lock()
		s.reschedule()
		s.mu.Unlock()
	})
}
