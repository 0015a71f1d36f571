package engagement

import (
	"sync"
	"time"

	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
	"github.com/profilejoteam/profilejo-website-sub000/internal/scheduler"
)

// Presenter renders engine decisions. Implementations must not call back
// into the Engine.
type Presenter interface {
	ShowNotification(d scheduler.Displayed)
	DismissNotification(id, reason string)
	OpenChat()
	ShowMessage(rec contextstore.Record)
	// OfferSuggestion hands proposed form values to the form owner, who
	// decides whether to apply them.
	OfferSuggestion(s reasoning.Suggestion)
}

// Dismiss reasons.
const (
	DismissTimeout    = "timeout"
	DismissInteracted = "interacted"
	DismissUser       = "dismissed"
	DismissChatOpened = "chat_opened"
)

// Command types.
const (
	CommandShowNotification    = "show_notification"
	CommandDismissNotification = "dismiss_notification"
	CommandOpenChat            = "open_chat"
	CommandShowMessage         = "show_message"
	CommandApplySuggestion     = "apply_suggestion"
)

// Command is one rendering instruction queued for the browser.
type Command struct {
	Seq          uint64                `json:"seq"`
	Type         string                `json:"type"`
	At           time.Time             `json:"at"`
	Notification *scheduler.Displayed  `json:"notification,omitempty"`
	ID           string                `json:"id,omitempty"`
	Reason       string                `json:"reason,omitempty"`
	Message      *contextstore.Record  `json:"message,omitempty"`
	Suggestion   *reasoning.Suggestion `json:"suggestion,omitempty"`
}

// DefaultOutboxSize bounds the number of undelivered commands.
const DefaultOutboxSize = 100

// Outbox is a Presenter that buffers commands until the browser polls.
// It is safe for concurrent use; the oldest commands are dropped when full.
type Outbox struct {
	mu       sync.Mutex
	now      func() time.Time
	size     int
	seq      uint64
	commands []Command
}

// NewOutbox creates an Outbox holding at most size commands.
func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{size: size, now: time.Now}
}

func (o *Outbox) push(c Command) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	c.Seq = o.seq
	c.At = o.now()
	o.commands = append(o.commands, c)
	if n := len(o.commands) - o.size; n > 0 {
		o.commands = append([]Command(nil), o.commands[n:]...)
	}
}

// Drain returns and removes all pending commands, oldest first.
func (o *Outbox) Drain() []Command {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.commands
	o.commands = nil
	if out == nil {
		out = []Command{}
	}
	return out
}

// Len returns the number of pending commands.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.commands)
}

func (o *Outbox) ShowNotification(d scheduler.Displayed) {
	o.push(Command{Type: CommandShowNotification, Notification: &d, ID: d.ID})
}

func (o *Outbox) DismissNotification(id, reason string) {
	o.push(Command{Type: CommandDismissNotification, ID: id, Reason: reason})
}

func (o *Outbox) OpenChat() {
	o.push(Command{Type: CommandOpenChat})
}

func (o *Outbox) ShowMessage(rec contextstore.Record) {
	o.push(Command{Type: CommandShowMessage, Message: &rec, ID: rec.ID})
}

func (o *Outbox) OfferSuggestion(s reasoning.Suggestion) {
	o.push(Command{Type: CommandApplySuggestion, Suggestion: &s})
}
