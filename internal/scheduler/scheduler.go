// Package scheduler decides whether a proposed notification may be shown.
//
// A Scheduler owns the cooldown ledger, the interaction score, the on-screen
// notification and a FIFO queue of delayed candidates. It is driven by a
// single event loop and is not safe for concurrent use; timer callbacks are
// delivered through the injected clock, which the loop wraps so they run on
// the loop goroutine.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/profilejoteam/profilejo-website-sub000/internal/clock"
)

// Hooks observe scheduler transitions. Nil hooks are skipped.
type Hooks struct {
	Admitted func(Displayed)
	Expired  func(Displayed)
	Rejected func(Candidate, Reason)
	// Dropped is called for queued candidates removed without being shown.
	Dropped func(Candidate, Reason)
}

// Options configure a Scheduler.
type Options struct {
	Clock  clock.Clock
	Ledger Ledger
	Hooks  Hooks
	Logger *slog.Logger
	// Context bounds ledger I/O. Defaults to context.Background.
	Context context.Context
}

type queued struct {
	c        Candidate
	earliest time.Time
}

// Scheduler gates notifications for one session.
type Scheduler struct {
	cfg    Config
	clock  clock.Clock
	ledger Ledger
	hooks  Hooks
	logger *slog.Logger
	ctx    context.Context

	state     State
	displayed *Displayed
	timer     clock.Timer
	seq       uint64
	score     InteractionScore

	queue      []queued
	queueTimer clock.Timer
	queueSeq   uint64
}

// New creates a Scheduler.
func New(cfg Config, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Ledger == nil {
		opts.Ledger = NewMemoryLedger()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Scheduler{
		cfg:    cfg,
		clock:  opts.Clock,
		ledger: opts.Ledger,
		hooks:  opts.Hooks,
		logger: opts.Logger,
		ctx:    opts.Context,
		score:  newInteractionScore(cfg.MaxScore, cfg.DecayInterval, opts.Clock.Now()),
	}
}

// Check returns why c would be rejected at now, or ReasonAdmitted.
func (s *Scheduler) Check(c Candidate, now time.Time) Reason {
	if s.displayed != nil {
		return ReasonBusy
	}
	if s.state == StateChatOpen {
		return ReasonChatOpen
	}
	p := ClampPriority(c.Priority)
	if last, ok := s.ledger.LastAdmitted(s.ctx, c.ID); ok && now.Sub(last) < s.cfg.Cooldowns.For(p) {
		return ReasonCooldown
	}
	if s.score.Value() > s.cfg.EngagedThreshold && p < PriorityMedium {
		return ReasonEngaged
	}
	return ReasonAdmitted
}

// Admit reports whether c may be shown at now. It has no side effects.
func (s *Scheduler) Admit(c Candidate, now time.Time) bool {
	return s.Check(c, now) == ReasonAdmitted
}

// RecordAdmission stamps c's type in the cooldown ledger.
func (s *Scheduler) RecordAdmission(c Candidate, now time.Time) {
	s.ledger.Record(s.ctx, c.ID, now)
}

// Offer runs the admission test for c and, when it passes, records the
// admission and shows c until its display lifetime ends.
func (s *Scheduler) Offer(c Candidate) bool {
	now := s.clock.Now()
	if reason := s.Check(c, now); reason != ReasonAdmitted {
		s.logger.Debug("scheduler: candidate rejected", "id", c.ID, "priority", c.Priority, "reason", string(reason))
		if s.hooks.Rejected != nil {
			s.hooks.Rejected(c, reason)
		}
		return false
	}
	s.RecordAdmission(c, now)
	s.show(c, now)
	return true
}

func (s *Scheduler) show(c Candidate, now time.Time) {
	c.Priority = ClampPriority(c.Priority)
	lifetime := s.cfg.Display.For(c.Priority)

	s.seq++
	seq := s.seq
	d := &Displayed{Candidate: c, ShownAt: now, ExpiresAt: now.Add(lifetime), seq: seq}
	s.displayed = d
	s.state = StateVisible
	s.timer = s.clock.AfterFunc(lifetime, func() { s.expire(seq) })

	s.logger.Debug("scheduler: notification shown", "id", c.ID, "lifetime", lifetime)
	if s.hooks.Admitted != nil {
		s.hooks.Admitted(*d)
	}
}

// expire ends a display whose lifetime ran out. Callbacks from a display
// that was already replaced or cleared carry a stale seq and are ignored.
func (s *Scheduler) expire(seq uint64) {
	if s.displayed == nil || s.displayed.seq != seq {
		return
	}
	d := *s.displayed
	s.clear()
	s.state = StateIdle
	if s.hooks.Expired != nil {
		s.hooks.Expired(d)
	}
	s.pump()
}

func (s *Scheduler) clear() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.displayed = nil
}

// Current returns the notification on screen, if any.
func (s *Scheduler) Current() (Displayed, bool) {
	if s.displayed == nil {
		return Displayed{}, false
	}
	return *s.displayed, true
}

// State returns the surface state.
func (s *Scheduler) State() State { return s.state }

// Interact handles the user engaging with the visible notification: the
// display timer is cancelled and the chat surface opens. An empty id matches
// whatever is on screen.
func (s *Scheduler) Interact(id string) (Displayed, bool) {
	if s.displayed == nil || (id != "" && s.displayed.ID != id) {
		return Displayed{}, false
	}
	d := *s.displayed
	s.clear()
	s.state = StateChatOpen
	return d, true
}

// Dismiss closes the visible notification without opening chat.
func (s *Scheduler) Dismiss(id string) bool {
	if s.displayed == nil || (id != "" && s.displayed.ID != id) {
		return false
	}
	s.clear()
	s.state = StateIdle
	s.pump()
	return true
}

// OpenChat opens the chat surface, cancelling any pending auto-dismiss.
func (s *Scheduler) OpenChat() {
	s.clear()
	s.state = StateChatOpen
}

// CloseChat returns to idle and resumes the queue.
func (s *Scheduler) CloseChat() {
	if s.state != StateChatOpen {
		return
	}
	s.state = StateIdle
	s.pump()
}

// BumpInteraction records one qualifying UI event.
func (s *Scheduler) BumpInteraction() { s.score.Bump() }

// DecayInteraction applies elapsed decay intervals and prunes ledger entries
// older than the longest cooldown.
func (s *Scheduler) DecayInteraction(now time.Time) {
	s.score.Decay(now)
	s.ledger.Prune(s.ctx, now.Add(-s.cfg.Cooldowns.Longest()))
}

// Score returns the interaction score.
func (s *Scheduler) Score() int { return s.score.Value() }

// Enqueue appends c to the emission queue. It is offered no earlier than
// delay from now and only after every candidate ahead of it was handled.
func (s *Scheduler) Enqueue(c Candidate, delay time.Duration) {
	s.queue = append(s.queue, queued{c: c, earliest: s.clock.Now().Add(delay)})
	s.pump()
}

// Withdraw removes every queued candidate with the given source and
// returns how many were removed.
func (s *Scheduler) Withdraw(source string) int {
	kept := make([]queued, 0, len(s.queue))
	for _, q := range s.queue {
		if q.c.Source != source {
			kept = append(kept, q)
		}
	}
	n := len(s.queue) - len(kept)
	if n > 0 {
		s.queue = kept
		s.pump()
	}
	return n
}

// Queued returns the number of candidates waiting in the queue.
func (s *Scheduler) Queued() int { return len(s.queue) }

// pump offers the queue head once it is due and the surface is idle. A
// head rejected for cooldown or engagement is dropped and the next one is
// tried; while the surface is busy the queue waits.
func (s *Scheduler) pump() {
	if s.queueTimer != nil {
		s.queueTimer.Stop()
		s.queueTimer = nil
	}
	for len(s.queue) > 0 {
		if s.displayed != nil || s.state == StateChatOpen {
			return
		}
		head := s.queue[0]
		now := s.clock.Now()
		if wait := head.earliest.Sub(now); wait > 0 {
			s.queueSeq++
			seq := s.queueSeq
			s.queueTimer = s.clock.AfterFunc(wait, func() {
				if seq == s.queueSeq {
					s.queueTimer = nil
					s.pump()
				}
			})
			return
		}
		s.queue = s.queue[1:]
		reason := s.Check(head.c, now)
		if reason == ReasonAdmitted {
			s.RecordAdmission(head.c, now)
			s.show(head.c, now)
			return
		}
		s.logger.Debug("scheduler: queued candidate dropped", "id", head.c.ID, "reason", string(reason))
		if s.hooks.Dropped != nil {
			s.hooks.Dropped(head.c, reason)
		}
	}
}

// Reset cancels every timer and empties the queue. The ledger is kept.
func (s *Scheduler) Reset() {
	s.clear()
	if s.queueTimer != nil {
		s.queueTimer.Stop()
		s.queueTimer = nil
	}
	s.queueSeq++
	s.queue = nil
	s.state = StateIdle
}
