package reasoning

import (
	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
)

// MaxHistory is the number of recent turns sent with a request.
const MaxHistory = 5

// Request is the body posted to the reasoning service.
type Request struct {
	Message string         `json:"message"`
	Context RequestContext `json:"context"`
}

// RequestContext carries everything the service may use to ground a reply.
type RequestContext struct {
	FormSnapshot        profile.FormSnapshot       `json:"formSnapshot"`
	ConversationHistory []contextstore.Record      `json:"conversationHistory"`
	DerivedPreferences  DerivedPreferences         `json:"derivedPreferences"`
	ProfileAnalysis     classifier.ProfileAnalysis `json:"profileAnalysis"`
	Topics              []string                   `json:"topics"`
}

// DerivedPreferences merges stored preferences with interests derived from
// the conversation.
type DerivedPreferences struct {
	contextstore.Interests
	Language string `json:"language,omitempty"`
}

// Response is the service reply.
type Response struct {
	Text       string      `json:"text"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// Suggestion proposes form values. The engine only forwards it; applying
// it is up to the form owner.
type Suggestion struct {
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source"`
}
