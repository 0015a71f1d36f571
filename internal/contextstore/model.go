package contextstore

import "time"

// Sender identifies who produced a conversation turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Record kinds.
const (
	KindMessage      = "message"
	KindNotification = "notification"
	KindSuggestion   = "suggestion"
	KindFallback     = "fallback"
)

// Record is one persisted conversation turn.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
}

// Interests summarise how the user talks to the assistant.
type Interests struct {
	TechnicalLevel     string `json:"technical_level,omitempty"`
	CareerFocus        string `json:"career_focus,omitempty"`
	CommunicationStyle string `json:"communication_style,omitempty"`
}

// Context is derived from the conversation history and cached alongside it.
type Context struct {
	LastInteractionAt time.Time `json:"last_interaction_at"`
	Topics            []string  `json:"topics"`
	UserInterests     Interests `json:"user_interests"`
}

// Empty reports whether nothing has been derived yet.
func (c Context) Empty() bool {
	return c.LastInteractionAt.IsZero() && len(c.Topics) == 0 && c.UserInterests == (Interests{})
}

// Preferences are user settings for the assistant.
type Preferences struct {
	Language      string `json:"language"`
	ProactiveTips bool   `json:"proactive_tips"`
}

// DefaultPreferences returns the settings used before the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{Language: "ar", ProactiveTips: true}
}
