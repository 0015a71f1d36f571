// Package engagement drives the in-app assistant for one form session. The
// Engine turns UI events into notification candidates and chat turns; the
// Loop serialises every event onto one goroutine.
package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/clock"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/events"
	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
	"github.com/profilejoteam/profilejo-website-sub000/internal/metrics"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
	"github.com/profilejoteam/profilejo-website-sub000/internal/scheduler"
)

// Activity kinds that count toward the interaction score.
const (
	ActivityClick       = "click"
	ActivityKeypress    = "keypress"
	ActivityPointerMove = "pointer_move"
	ActivityScroll      = "scroll"
)

// Publisher receives engagement events. It may be nil.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Config tunes the engine.
type Config struct {
	Scheduler       scheduler.Config
	NudgeDelay      time.Duration
	StepHelpDelay   time.Duration
	SuggestionFloor float64
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		Scheduler:       scheduler.DefaultConfig(),
		NudgeDelay:      3 * time.Second,
		StepHelpDelay:   2 * time.Second,
		SuggestionFloor: 0.5,
	}
}

// Deps are the collaborators of an Engine.
type Deps struct {
	SessionID string
	UserID    string
	Clock     clock.Clock
	Ledger    scheduler.Ledger
	Store     *contextstore.Store
	Reasoner  reasoning.Asker
	Presenter Presenter
	Publisher Publisher
	Logger    *slog.Logger
	// Context bounds store, ledger and publisher I/O.
	Context context.Context
}

type blurState struct {
	value string
	empty bool
}

// Engine is the engagement orchestrator of one session. It is not safe for
// concurrent use: every method except Ask must run on the session loop.
type Engine struct {
	cfg       Config
	sessionID string
	userID    string
	clock     clock.Clock
	sched     *scheduler.Scheduler
	store     *contextstore.Store
	reasoner  reasoning.Asker
	presenter Presenter
	publisher Publisher
	logger    *slog.Logger
	ctx       context.Context

	snapshot profile.FormSnapshot
	analysis classifier.ProfileAnalysis
	observed bool
	bucket   classifier.CompletionBucket
	step     int
	blurred  map[string]blurState
	prefs    contextstore.Preferences
}

// New creates an Engine.
func New(cfg Config, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Presenter == nil {
		deps.Presenter = NewOutbox(0)
	}
	if deps.Store == nil {
		deps.Store = contextstore.NewStore(deps.UserID, nil, contextstore.DefaultMaxRecords, deps.Logger)
	}
	logger := deps.Logger.With("session_id", deps.SessionID)

	e := &Engine{
		cfg:       cfg,
		sessionID: deps.SessionID,
		userID:    deps.UserID,
		clock:     deps.Clock,
		store:     deps.Store,
		reasoner:  deps.Reasoner,
		presenter: deps.Presenter,
		publisher: deps.Publisher,
		logger:    logger,
		ctx:       deps.Context,
		blurred:   make(map[string]blurState),
		analysis:  classifier.Classify(profile.FormSnapshot{}),
	}
	e.sched = scheduler.New(cfg.Scheduler, scheduler.Options{
		Clock:   deps.Clock,
		Ledger:  deps.Ledger,
		Logger:  logger,
		Context: deps.Context,
		Hooks: scheduler.Hooks{
			Admitted: e.onAdmitted,
			Expired:  e.onExpired,
			Rejected: func(_ scheduler.Candidate, r scheduler.Reason) {
				metrics.NotificationsTotal.WithLabelValues("rejected", string(r)).Inc()
			},
			Dropped: func(_ scheduler.Candidate, r scheduler.Reason) {
				metrics.NotificationsTotal.WithLabelValues("dropped", string(r)).Inc()
			},
		},
	})
	e.prefs = e.store.Preferences(deps.Context)
	return e
}

func (e *Engine) onAdmitted(d scheduler.Displayed) {
	metrics.NotificationsTotal.WithLabelValues("admitted", "").Inc()
	e.presenter.ShowNotification(d)
	e.publish(events.Event{Type: events.TypeNotificationAdmitted, NotificationID: d.ID, Priority: d.Priority})
}

func (e *Engine) onExpired(d scheduler.Displayed) {
	metrics.NotificationsTotal.WithLabelValues("expired", "").Inc()
	e.presenter.DismissNotification(d.ID, DismissTimeout)
	e.publish(events.Event{Type: events.TypeNotificationExpired, NotificationID: d.ID, Priority: d.Priority})
}

func (e *Engine) publish(ev events.Event) {
	if e.publisher == nil {
		return
	}
	ev.SessionID = e.sessionID
	ev.UserID = e.userID
	ev.Timestamp = e.clock.Now()
	if err := e.publisher.Publish(e.ctx, ev); err != nil {
		e.logger.Warn("engagement: publishing event failed", "type", ev.Type, "error", err)
	}
}

// tipsAllowed applies the user's proactive-tips preference.
func (e *Engine) tipsAllowed(c scheduler.Candidate) bool {
	if e.prefs.ProactiveTips || c.Priority >= scheduler.PriorityCritical {
		return true
	}
	e.logger.Debug("engagement: candidate suppressed by preferences", "id", c.ID)
	return false
}

func (e *Engine) offer(c scheduler.Candidate) bool {
	if !e.tipsAllowed(c) {
		return false
	}
	return e.sched.Offer(c)
}

func (e *Engine) enqueue(kind string, c scheduler.Candidate, delay time.Duration) {
	if !e.tipsAllowed(c) {
		return
	}
	metrics.NudgesEnqueuedTotal.WithLabelValues(kind).Inc()
	e.publish(events.Event{
		Type:           events.TypeNudgeEnqueued,
		NotificationID: c.ID,
		Priority:       c.Priority,
		Attrs:          map[string]string{"kind": kind},
	})
	e.sched.Enqueue(c, delay)
}

// OnFieldFocus offers the coaching hint for a field.
func (e *Engine) OnFieldFocus(field string) {
	info, ok := lexicon.Field(field)
	if !ok {
		return
	}
	e.offer(scheduler.Candidate{
		ID:       "field_tip_" + field,
		Text:     info.Hint,
		Priority: info.Tier.Priority(),
		Source:   field,
	})
}

// OnFieldBlur remembers the value a field was left with. It never notifies.
func (e *Engine) OnFieldBlur(field, value string) {
	e.blurred[field] = blurState{value: value, empty: strings.TrimSpace(value) == ""}
}

// OnFormSnapshotChanged re-classifies the form. Completion bucket changes
// and step changes relative to the previous snapshot enqueue nudges; the
// first snapshot only establishes the baseline.
func (e *Engine) OnFormSnapshotChanged(s profile.FormSnapshot) {
	e.snapshot = s
	e.analysis = classifier.Classify(s)

	first := !e.observed
	e.observed = true
	e.observeCompletion(e.analysis.CompletionPercent, first)

	if first {
		e.step = s.CurrentStep
		return
	}
	if s.CurrentStep != e.step {
		e.step = s.CurrentStep
		e.onStepChanged(s)
	}
}

// observeCompletion enqueues one nudge per bucket crossing. A nudge still
// waiting in the queue is replaced by the newer one.
func (e *Engine) observeCompletion(percent int, first bool) {
	bucket := classifier.BucketFor(percent)
	if first || bucket == e.bucket {
		e.bucket = bucket
		return
	}
	e.bucket = bucket
	if n := e.sched.Withdraw("completion"); n > 0 {
		e.logger.Debug("engagement: stale completion nudge withdrawn", "count", n)
	}
	e.enqueue("completion", scheduler.Candidate{
		ID:       "completion_" + bucket.String(),
		Text:     fmt.Sprintf(lexicon.CompletionNudges[bucket.String()], percent),
		Priority: scheduler.PriorityMedium,
		Source:   "completion",
	}, e.cfg.NudgeDelay)
}

func (e *Engine) onStepChanged(s profile.FormSnapshot) {
	if hint, ok := lexicon.StepHints[s.CurrentStep]; ok {
		e.enqueue("step_help", scheduler.Candidate{
			ID:       "step_help_" + strconv.Itoa(s.CurrentStep),
			Text:     hint,
			Priority: scheduler.PriorityLow,
			Source:   "step",
		}, e.cfg.StepHelpDelay)
	}

	for _, name := range lexicon.RequiredFields {
		st, ok := e.blurred[name]
		if !ok || !st.empty {
			continue
		}
		info, _ := lexicon.Field(name)
		if info.Tier != lexicon.TierCritical || classifier.FieldValue(s, name) != "" {
			continue
		}
		e.enqueue("empty_field", scheduler.Candidate{
			ID:       "empty_field_" + name,
			Text:     info.Hint,
			Priority: scheduler.PriorityMedium,
			Source:   name,
		}, 0)
	}
}

// OnActivity bumps the interaction score for qualifying UI events.
func (e *Engine) OnActivity(kind string) {
	switch kind {
	case ActivityClick, ActivityKeypress, ActivityPointerMove, ActivityScroll:
		e.sched.BumpInteraction()
	}
}

// Interact handles a click on the visible notification: its timer is
// cancelled, its text joins the conversation and the chat opens. An empty
// id matches whatever is shown.
func (e *Engine) Interact(id string) bool {
	d, ok := e.sched.Interact(id)
	if !ok {
		return false
	}
	metrics.NotificationsTotal.WithLabelValues("interacted", "").Inc()
	e.presenter.DismissNotification(d.ID, DismissInteracted)
	e.presenter.OpenChat()

	rec := e.store.NewRecord(contextstore.SenderAssistant, contextstore.KindNotification, d.Text)
	e.store.Append(e.ctx, rec)
	e.presenter.ShowMessage(rec)
	e.publish(events.Event{Type: events.TypeNotificationInteracted, NotificationID: d.ID, Priority: d.Priority})
	return true
}

// Dismiss closes the visible notification. An empty id matches whatever is shown.
func (e *Engine) Dismiss(id string) bool {
	d, ok := e.sched.Current()
	if !ok || (id != "" && d.ID != id) {
		return false
	}
	metrics.NotificationsTotal.WithLabelValues("dismissed", "").Inc()
	e.presenter.DismissNotification(d.ID, DismissUser)
	e.publish(events.Event{Type: events.TypeNotificationDismissed, NotificationID: d.ID, Priority: d.Priority})
	e.sched.Dismiss(d.ID)
	return true
}

// OpenChat opens the chat surface. Admissions are suppressed until CloseChat.
func (e *Engine) OpenChat() {
	if d, ok := e.sched.Current(); ok {
		e.presenter.DismissNotification(d.ID, DismissChatOpened)
	}
	e.sched.OpenChat()
	e.presenter.OpenChat()
}

// CloseChat closes the chat surface.
func (e *Engine) CloseChat() {
	e.sched.CloseChat()
}

// SetPreferences stores new user preferences.
func (e *Engine) SetPreferences(p contextstore.Preferences) {
	e.prefs = p
	e.store.SetPreferences(e.ctx, p)
}

// Tick applies interaction decay.
func (e *Engine) Tick(now time.Time) {
	e.sched.DecayInteraction(now)
}

// Close cancels pending timers and the queue.
func (e *Engine) Close() {
	e.sched.Reset()
}

// Analysis returns the latest classification.
func (e *Engine) Analysis() classifier.ProfileAnalysis { return e.analysis }

// Snapshot returns the latest form snapshot.
func (e *Engine) Snapshot() profile.FormSnapshot { return e.snapshot }

// Status summarises the engine for diagnostics.
type Status struct {
	State            string                     `json:"state"`
	InteractionScore int                        `json:"interaction_score"`
	Queued           int                        `json:"queued"`
	Analysis         classifier.ProfileAnalysis `json:"analysis"`
	Current          *scheduler.Displayed       `json:"current,omitempty"`
	Preferences      contextstore.Preferences   `json:"preferences"`
	Degraded         bool                       `json:"context_degraded"`
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	st := Status{
		State:            e.sched.State().String(),
		InteractionScore: e.sched.Score(),
		Queued:           e.sched.Queued(),
		Analysis:         e.analysis,
		Preferences:      e.prefs,
		Degraded:         e.store.Degraded(),
	}
	if d, ok := e.sched.Current(); ok {
		st.Current = &d
	}
	return st
}
