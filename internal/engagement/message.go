package engagement

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/events"
	"github.com/profilejoteam/profilejo-website-sub000/internal/metrics"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
)

// ErrNoReasoner is the Ask error when no reasoning service is configured.
var ErrNoReasoner = errors.New("engagement: no reasoning service configured")

// PendingMessage is a user message waiting for its reply.
type PendingMessage struct {
	Request  reasoning.Request
	Analysis classifier.ProfileAnalysis
	User     contextstore.Record
}

// Outcome is the result of a reasoning call.
type Outcome struct {
	Response reasoning.Response
	Err      error
	Elapsed  time.Duration
}

// PrepareMessage records the user's turn and builds the reasoning request
// from the analysis, the recent history and the derived context.
func (e *Engine) PrepareMessage(text string) (PendingMessage, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PendingMessage{}, false
	}

	history := e.store.Recent(e.ctx, reasoning.MaxHistory)
	user := e.store.NewRecord(contextstore.SenderUser, contextstore.KindMessage, text)
	e.store.Append(e.ctx, user)
	e.presenter.ShowMessage(user)
	derived := e.store.Context(e.ctx)

	return PendingMessage{
		Request: reasoning.Request{
			Message: text,
			Context: reasoning.RequestContext{
				FormSnapshot:        e.snapshot,
				ConversationHistory: history,
				DerivedPreferences: reasoning.DerivedPreferences{
					Interests: derived.UserInterests,
					Language:  e.prefs.Language,
				},
				ProfileAnalysis: e.analysis,
				Topics:          derived.Topics,
			},
		},
		Analysis: e.analysis,
		User:     user,
	}, true
}

// Ask calls the reasoning service. It reads only immutable engine fields and
// is safe to call off the session loop.
func (e *Engine) Ask(ctx context.Context, p PendingMessage) Outcome {
	if e.reasoner == nil {
		return Outcome{Err: ErrNoReasoner}
	}
	start := time.Now()
	resp, err := e.reasoner.Ask(ctx, p.Request)
	elapsed := time.Since(start)
	metrics.ReasoningDuration.Observe(elapsed.Seconds())
	return Outcome{Response: resp, Err: err, Elapsed: elapsed}
}

// CompleteMessage records the assistant turn. A failed call is replaced by
// the deterministic local reply, so the user always gets an answer.
func (e *Engine) CompleteMessage(p PendingMessage, out Outcome) contextstore.Record {
	resp := out.Response
	kind := contextstore.KindMessage
	source := "remote"

	if out.Err != nil {
		cause := reasoning.Cause(out.Err)
		if errors.Is(out.Err, ErrNoReasoner) {
			cause = "disabled"
		} else {
			e.logger.Warn("engagement: reasoning failed, using fallback", "cause", cause, "error", out.Err)
		}
		metrics.ReasoningFallbacksTotal.WithLabelValues(cause).Inc()
		resp = reasoning.Fallback(p.Analysis, p.Request.Message)
		kind = contextstore.KindFallback
		source = "fallback"
	}
	metrics.ReasoningRequestsTotal.WithLabelValues(source).Inc()

	rec := e.store.NewRecord(contextstore.SenderAssistant, kind, resp.Text)
	e.store.Append(e.ctx, rec)
	e.presenter.ShowMessage(rec)
	e.publish(events.Event{Type: events.TypeChatTurn, Attrs: map[string]string{"source": source}})

	if s := resp.Suggestion; s != nil && s.Confidence >= e.cfg.SuggestionFloor {
		metrics.SuggestionsOfferedTotal.Inc()
		e.presenter.OfferSuggestion(*s)
		e.publish(events.Event{Type: events.TypeSuggestionOffered, Attrs: map[string]string{"source": s.Source}})
	}
	return rec
}

// OnUserMessage handles a chat message synchronously. The Loop splits the
// same steps so the reasoning call does not block other events.
func (e *Engine) OnUserMessage(ctx context.Context, text string) (contextstore.Record, bool) {
	p, ok := e.PrepareMessage(text)
	if !ok {
		return contextstore.Record{}, false
	}
	return e.CompleteMessage(p, e.Ask(ctx, p)), true
}
