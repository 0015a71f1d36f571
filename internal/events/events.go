package events

import "time"

// Stream names.
const (
	StreamEvents = "ENGAGE_EVENTS"
)

// Subject constants.
const (
	SubjectPrefix       = "engage.events"
	SubjectNotification = "engage.events.notification"
	SubjectNudge        = "engage.events.nudge"
	SubjectChat         = "engage.events.chat"
	SubjectSession      = "engage.events.session"
)

// Event types.
const (
	TypeNotificationAdmitted   = "notification_admitted"
	TypeNotificationExpired    = "notification_expired"
	TypeNotificationInteracted = "notification_interacted"
	TypeNotificationDismissed  = "notification_dismissed"
	TypeNudgeEnqueued          = "nudge_enqueued"
	TypeChatTurn               = "chat_turn"
	TypeSuggestionOffered      = "suggestion_offered"
	TypeSessionStarted         = "session_started"
	TypeSessionEnded           = "session_ended"
)

// Event is one engagement fact published for analytics.
type Event struct {
	Type           string            `json:"type"`
	SessionID      string            `json:"session_id"`
	UserID         string            `json:"user_id,omitempty"`
	NotificationID string            `json:"notification_id,omitempty"`
	Priority       int               `json:"priority,omitempty"`
	Attrs          map[string]string `json:"attrs,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Subject returns the subject an event type is published on.
func Subject(eventType string) string {
	switch eventType {
	case TypeNotificationAdmitted, TypeNotificationExpired, TypeNotificationInteracted, TypeNotificationDismissed:
		return SubjectNotification
	case TypeNudgeEnqueued:
		return SubjectNudge
	case TypeChatTurn, TypeSuggestionOffered:
		return SubjectChat
	default:
		return SubjectSession
	}
}
