package reasoning

import (
	"github.com/profilejoteam/profilejo-website-sub000/internal/classifier"
	"github.com/profilejoteam/profilejo-website-sub000/internal/contextstore"
	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
)

// Fallback builds the local reply used when the service is unavailable. The
// reply depends only on the estimated field and the message text.
func Fallback(analysis classifier.ProfileAnalysis, message string) Response {
	text, ok := lexicon.DomainReplies[analysis.EstimatedField]
	if !ok {
		text = lexicon.GenericReply
	}
	for _, topic := range contextstore.Topics(message) {
		if extra, ok := lexicon.TopicReplies[topic]; ok {
			text += " " + extra
			break
		}
	}
	return Response{Text: text}
}
