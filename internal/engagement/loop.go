package engagement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/profilejoteam/profilejo-website-sub000/internal/clock"
)

// ErrStopped is returned when posting to a stopped Loop.
var ErrStopped = errors.New("engagement: loop stopped")

const defaultLoopBuffer = 64

// Loop runs every engine handler on a single goroutine. Timer callbacks and
// reasoning completions are posted back onto it, so the Engine never sees
// concurrent calls.
type Loop struct {
	ctx   context.Context
	base  clock.Clock
	decay time.Duration

	tasks chan func()
	quit  chan struct{}
	done  chan struct{}

	engine    *Engine
	closing   bool // loop goroutine only
	inflight  sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLoop creates a Loop. ctx is handed to reasoning calls; cancelling it
// aborts in-flight calls but does not stop the loop. A non-positive decay
// disables the decay ticker.
func NewLoop(ctx context.Context, base clock.Clock, decay time.Duration) *Loop {
	if base == nil {
		base = clock.Real()
	}
	return &Loop{
		ctx:   ctx,
		base:  base,
		decay: decay,
		tasks: make(chan func(), defaultLoopBuffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Clock returns a clock whose timer callbacks run on the loop.
func (l *Loop) Clock() clock.Clock { return loopClock{l: l} }

type loopClock struct{ l *Loop }

func (c loopClock) Now() time.Time { return c.l.base.Now() }

func (c loopClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return c.l.base.AfterFunc(d, func() { c.l.Post(f) })
}

// Start runs the loop for e. Subsequent calls are no-ops.
func (l *Loop) Start(e *Engine) {
	l.startOnce.Do(func() {
		l.engine = e
		go l.run()
	})
}

func (l *Loop) run() {
	defer close(l.done)

	var tick <-chan time.Time
	if l.decay > 0 {
		t := time.NewTicker(l.decay)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case f := <-l.tasks:
			f()
		case <-tick:
			l.engine.Tick(l.base.Now())
		case <-l.quit:
			return
		}
	}
}

// Post schedules f on the loop. It reports false once the loop is stopped.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs f on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, f func(e *Engine)) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f(l.engine)
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// SendMessage handles a chat message without blocking the loop: the user
// turn is recorded on the loop, the reasoning call runs on its own
// goroutine, and the reply is recorded back on the loop. The call is bound
// to the loop context, not to the caller, so it completes even if the chat
// closes or the HTTP request goes away.
func (l *Loop) SendMessage(text string) error {
	if !l.Post(func() {
		if l.closing {
			return
		}
		p, ok := l.engine.PrepareMessage(text)
		if !ok {
			return
		}
		l.inflight.Add(1)
		go func() {
			defer l.inflight.Done()
			out := l.engine.Ask(l.ctx, p)
			l.Post(func() { l.engine.CompleteMessage(p, out) })
		}()
	}) {
		return ErrStopped
	}
	return nil
}

// Stop waits for in-flight replies to be recorded, stops the loop and
// cancels the engine's timers. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		if l.engine == nil {
			close(l.quit)
			return
		}
		_ = l.Do(context.Background(), func(*Engine) { l.closing = true })
		l.inflight.Wait()
		_ = l.Do(context.Background(), func(*Engine) {})
		close(l.quit)
		<-l.done
		l.engine.Close()
	})
}
