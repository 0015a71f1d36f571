package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilejoteam/profilejo-website-sub000/internal/clock"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/events"
	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
)

var t0 = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type stubAsker struct {
	resp reasoning.Response
	err  error
	got  []reasoning.Request
}

func (s *stubAsker) Ask(_ context.Context, req reasoning.Request) (reasoning.Response, error) {
	s.got = append(s.got, req)
	return s.resp, s.err
}

type recordingPublisher struct{ types []string }

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.types = append(p.types, ev.Type)
	return nil
}

type harness struct {
	engine *Engine
	clock  *clock.Fake
	outbox *Outbox
	store  *contextstore.Store
	pub    *recordingPublisher
}

func newHarness(t *testing.T, asker reasoning.Asker) *harness {
	t.Helper()
	clk := clock.NewFake(t0)
	out := NewOutbox(0)
	store := contextstore.NewStore("user-1", contextstore.NewMemoryBackend(contextstore.DefaultMaxRecords), 0, nil)
	pub := &recordingPublisher{}
	deps := Deps{
		SessionID: "sess-1",
		UserID:    "user-1",
		Clock:     clk,
		Store:     store,
		Presenter: out,
		Publisher: pub,
	}
	if asker != nil {
		deps.Reasoner = asker
	}
	return &harness{engine: New(DefaultConfig(), deps), clock: clk, outbox: out, store: store, pub: pub}
}

func commandTypes(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Type + ":" + c.ID
	}
	return out
}

func shownIDs(cmds []Command) []string {
	var out []string
	for _, c := range cmds {
		if c.Type == CommandShowNotification {
			out = append(out, c.ID)
		}
	}
	return out
}

func TestOnFieldFocus_OffersHint(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFieldFocus(lexicon.FieldEmail)

	cmds := h.outbox.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, CommandShowNotification, cmds[0].Type)
	require.NotNil(t, cmds[0].Notification)
	assert.Equal(t, "field_tip_email", cmds[0].Notification.ID)
	assert.Equal(t, 3, cmds[0].Notification.Priority)

	f, _ := lexicon.Field(lexicon.FieldEmail)
	assert.Equal(t, f.Hint, cmds[0].Notification.Text)
}

func TestOnFieldFocus_PriorityFromTier(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFieldFocus(lexicon.FieldCity)
	cmds := h.outbox.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, 1, cmds[0].Notification.Priority)
}

func TestOnFieldFocus_UnknownField(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFieldFocus("favourite_colour")
	assert.Zero(t, h.outbox.Len())
}

func TestFocus_CooldownAndExpiry(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.OnFieldFocus(lexicon.FieldEmail)
	h.clock.Advance(8 * time.Second)
	assert.Equal(t, []string{
		"show_notification:field_tip_email",
		"dismiss_notification:field_tip_email",
	}, commandTypes(h.outbox.Drain()))

	h.engine.OnFieldFocus(lexicon.FieldEmail)
	assert.Zero(t, h.outbox.Len(), "still cooling down")

	h.clock.Advance(7 * time.Second)
	h.engine.OnFieldFocus(lexicon.FieldEmail)
	assert.Equal(t, []string{"field_tip_email"}, shownIDs(h.outbox.Drain()))
}

func TestChatOpen_SuppressesAdmissions(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OpenChat()
	h.outbox.Drain()

	h.engine.OnFieldFocus(lexicon.FieldEmail)
	assert.Zero(t, h.outbox.Len())

	h.engine.CloseChat()
	h.engine.OnFieldFocus(lexicon.FieldEmail)
	assert.Equal(t, []string{"field_tip_email"}, shownIDs(h.outbox.Drain()))
}

func TestCompletionNudge_EdgeTriggered(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.observeCompletion(40, true)
	h.engine.observeCompletion(55, false)
	h.engine.observeCompletion(58, false)
	assert.Equal(t, 1, h.engine.sched.Queued())

	h.clock.Advance(DefaultConfig().NudgeDelay)
	cmds := h.outbox.Drain()
	require.Equal(t, []string{"completion_medium"}, shownIDs(cmds))
	assert.Contains(t, cmds[0].Notification.Text, "55")
}

func TestCompletionNudge_ReplacesPendingOne(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.observeCompletion(40, true)
	h.engine.observeCompletion(55, false)
	h.engine.observeCompletion(30, false)
	assert.Equal(t, 1, h.engine.sched.Queued())

	h.clock.Advance(DefaultConfig().NudgeDelay)
	cmds := h.outbox.Drain()
	require.Equal(t, []string{"completion_low"}, shownIDs(cmds))
	assert.Contains(t, cmds[0].Notification.Text, "30")
}

func TestCompletionNudge_FromSnapshots(t *testing.T) {
	h := newHarness(t, nil)

	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{})
	assert.Zero(t, h.engine.sched.Queued(), "first snapshot is the baseline")

	half := profile.FormSnapshot{PersonalInfo: profile.PersonalInfo{
		FullName: "Sara", Email: "s@example.com", Phone: "123",
	}}
	h.engine.OnFormSnapshotChanged(half)
	h.engine.OnFormSnapshotChanged(half)
	assert.Equal(t, 50, h.engine.Analysis().CompletionPercent)

	h.clock.Advance(time.Minute)
	assert.Equal(t, []string{"completion_medium"}, shownIDs(h.outbox.Drain()))
}

func TestFirstSnapshot_Silent(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{
		PersonalInfo: profile.PersonalInfo{FullName: "a", Email: "b", Phone: "c"},
		JobTitle:     "d",
		Major:        "e",
		Education:    []profile.Education{{Institution: "f"}},
		CurrentStep:  3,
	})
	h.clock.Advance(time.Minute)
	assert.Zero(t, h.outbox.Len())
}

func TestStepChange_HelpThenEmptyFields(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{CurrentStep: 0})

	h.engine.OnFieldBlur(lexicon.FieldFullName, "Sara")
	h.engine.OnFieldBlur(lexicon.FieldEmail, "")
	h.engine.OnFieldBlur(lexicon.FieldPhone, "  ")
	h.engine.OnFieldBlur(lexicon.FieldJobTitle, "") // important, not critical

	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{
		PersonalInfo: profile.PersonalInfo{FullName: "Sara", Phone: "079"},
		CurrentStep:  1,
	})
	assert.Equal(t, 2, h.engine.sched.Queued())

	h.clock.Advance(DefaultConfig().StepHelpDelay)
	cmds := h.outbox.Drain()
	require.Equal(t, []string{"step_help_1"}, shownIDs(cmds))
	assert.Equal(t, lexicon.StepHints[1], cmds[0].Notification.Text)

	h.clock.Advance(4 * time.Second)
	assert.Equal(t, []string{"empty_field_email"}, shownIDs(h.outbox.Drain()))
}

func TestInteract_OpensChatAndRecordsNotification(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFieldFocus(lexicon.FieldPhone)
	h.outbox.Drain()

	require.True(t, h.engine.Interact("field_tip_phone"))
	assert.Equal(t, []string{
		"dismiss_notification:field_tip_phone",
		"open_chat:",
	}, commandTypes(h.outbox.Drain())[:2])

	recs := h.store.Load(context.Background())
	require.Len(t, recs, 1)
	assert.Equal(t, contextstore.KindNotification, recs[0].Kind)

	h.clock.Advance(time.Minute)
	assert.Equal(t, "chat_open", h.engine.Status().State)
	assert.False(t, h.engine.Interact("field_tip_phone"))
}

func TestDismiss(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFieldFocus(lexicon.FieldEmail)
	h.outbox.Drain()

	assert.False(t, h.engine.Dismiss("other"))
	require.True(t, h.engine.Dismiss("field_tip_email"))
	cmds := h.outbox.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, DismissUser, cmds[0].Reason)
	assert.Equal(t, "idle", h.engine.Status().State)
}

func TestOnActivity(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < 11; i++ {
		h.engine.OnActivity(ActivityClick)
	}
	h.engine.OnActivity("hover")
	assert.Equal(t, 11, h.engine.Status().InteractionScore)

	// Highly engaged users only get medium and critical tips.
	h.engine.OnFieldFocus(lexicon.FieldCity)
	assert.Zero(t, h.outbox.Len())
	h.engine.OnFieldFocus(lexicon.FieldJobTitle)
	assert.Equal(t, 1, h.outbox.Len())

	h.engine.Tick(t0.Add(30 * time.Second))
	assert.Equal(t, 10, h.engine.Status().InteractionScore)
}

func TestPreferences_TipsDisabled(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.SetPreferences(contextstore.Preferences{Language: "ar", ProactiveTips: false})

	h.engine.OnFieldFocus(lexicon.FieldJobTitle)
	assert.Zero(t, h.outbox.Len())

	h.engine.OnFieldFocus(lexicon.FieldEmail)
	assert.Equal(t, []string{"field_tip_email"}, shownIDs(h.outbox.Drain()))
	assert.False(t, h.store.Preferences(context.Background()).ProactiveTips)
}

func TestOnUserMessage_FallbackWithoutReasoner(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{Major: "هندسة حاسوب"})

	rec, ok := h.engine.OnUserMessage(context.Background(), "ما هي المهارات المطلوبة؟")
	require.True(t, ok)
	assert.NotEmpty(t, rec.Content)
	assert.Equal(t, contextstore.KindFallback, rec.Kind)

	want := reasoning.Fallback(h.engine.Analysis(), "ما هي المهارات المطلوبة؟").Text
	assert.Equal(t, want, rec.Content)

	recs := h.store.Load(context.Background())
	require.Len(t, recs, 2)
	assert.Equal(t, contextstore.SenderUser, recs[0].Sender)
	assert.Equal(t, contextstore.SenderAssistant, recs[1].Sender)
}

func TestOnUserMessage_FallbackOnError(t *testing.T) {
	asker := &stubAsker{err: &reasoning.StatusError{Status: 503}}
	h := newHarness(t, asker)

	rec, ok := h.engine.OnUserMessage(context.Background(), "hello")
	require.True(t, ok)
	assert.Equal(t, lexicon.GenericReply, rec.Content)
	assert.Len(t, h.store.Load(context.Background()), 2)
	assert.Len(t, asker.got, 1)
}

func TestOnUserMessage_Remote(t *testing.T) {
	asker := &stubAsker{resp: reasoning.Response{
		Text: "أضف مشاريعك",
		Suggestion: &reasoning.Suggestion{
			Fields:     map[string]any{"job_title": "Backend Developer"},
			Confidence: 0.8,
			Source:     "model",
		},
	}}
	h := newHarness(t, asker)
	h.engine.OnFormSnapshotChanged(profile.FormSnapshot{JobTitle: "Developer"})

	_, ok := h.engine.OnUserMessage(context.Background(), "first")
	require.True(t, ok)
	_, ok = h.engine.OnUserMessage(context.Background(), "second question about salary")
	require.True(t, ok)

	require.Len(t, asker.got, 2)
	req := asker.got[1]
	assert.Equal(t, "second question about salary", req.Message)
	require.Len(t, req.Context.ConversationHistory, 2, "history excludes the message being asked")
	assert.Equal(t, "first", req.Context.ConversationHistory[0].Content)
	assert.Equal(t, lexicon.DomainSoftware, req.Context.ProfileAnalysis.EstimatedField)
	assert.Contains(t, req.Context.Topics, lexicon.TopicSalary)
	assert.Equal(t, "ar", req.Context.DerivedPreferences.Language)

	var suggestions int
	for _, c := range h.outbox.Drain() {
		if c.Type == CommandApplySuggestion {
			suggestions++
			assert.Equal(t, "Backend Developer", c.Suggestion.Fields["job_title"])
		}
	}
	assert.Equal(t, 2, suggestions)
	assert.Contains(t, h.pub.types, "chat_turn")
}

func TestOnUserMessage_LowConfidenceSuggestionNotOffered(t *testing.T) {
	asker := &stubAsker{resp: reasoning.Response{
		Text:       "ok",
		Suggestion: &reasoning.Suggestion{Fields: map[string]any{"major": "x"}, Confidence: 0.3},
	}}
	h := newHarness(t, asker)
	_, ok := h.engine.OnUserMessage(context.Background(), "hi")
	require.True(t, ok)
	for _, c := range h.outbox.Drain() {
		assert.NotEqual(t, CommandApplySuggestion, c.Type)
	}
}

func TestOnUserMessage_Empty(t *testing.T) {
	h := newHarness(t, nil)
	_, ok := h.engine.OnUserMessage(context.Background(), "   ")
	assert.False(t, ok)
	assert.Empty(t, h.store.Load(context.Background()))
}

func TestPublishErrorsAreSwallowed(t *testing.T) {
	clk := clock.NewFake(t0)
	e := New(DefaultConfig(), Deps{Clock: clk, Publisher: failingPublisher{}})
	e.OnFieldFocus(lexicon.FieldEmail)
	assert.Equal(t, "visible", e.Status().State)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error {
	return errors.New("nats down")
}
