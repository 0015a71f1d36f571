package contextstore

import (
	"strings"
	"unicode/utf8"

	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
)

// Derived interest values.
const (
	StyleDetailed = "detailed"
	StyleConcise  = "concise"

	LevelAdvanced = "advanced"
	LevelBeginner = "beginner"

	FocusTechnical = "technical"
	FocusGeneral   = "general"
)

// detailedThreshold is the average user-turn length, in runes, above which
// the user is considered to write in detail.
const detailedThreshold = 100

// DeriveContext summarises a history. Only user turns feed topics and
// interests; a history without user turns yields an empty Context.
func DeriveContext(records []Record) Context {
	var (
		turns     int
		runes     int
		technical bool
		hit       = make(map[string]bool, len(lexicon.TopicBuckets))
		c         Context
	)

	for _, r := range records {
		if r.Sender != SenderUser {
			continue
		}
		turns++
		runes += utf8.RuneCountInString(r.Content)

		text := strings.ToLower(r.Content)
		for _, b := range lexicon.TopicBuckets {
			if !hit[b.Topic] && containsAny(text, b.Keywords) {
				hit[b.Topic] = true
			}
		}
		if !technical && containsAny(text, lexicon.TechnicalKeywords) {
			technical = true
		}
	}

	if turns == 0 {
		return Context{}
	}

	for _, r := range records {
		if r.Timestamp.After(c.LastInteractionAt) {
			c.LastInteractionAt = r.Timestamp
		}
	}

	c.Topics = make([]string, 0, len(hit))
	for _, b := range lexicon.TopicBuckets {
		if hit[b.Topic] {
			c.Topics = append(c.Topics, b.Topic)
		}
	}

	c.UserInterests.CommunicationStyle = StyleConcise
	if float64(runes)/float64(turns) > detailedThreshold {
		c.UserInterests.CommunicationStyle = StyleDetailed
	}
	c.UserInterests.TechnicalLevel = LevelBeginner
	c.UserInterests.CareerFocus = FocusGeneral
	if technical {
		c.UserInterests.TechnicalLevel = LevelAdvanced
		c.UserInterests.CareerFocus = FocusTechnical
	}
	return c
}

// Topics returns the topic buckets hit by text, in bucket order.
func Topics(text string) []string {
	text = strings.ToLower(text)
	var out []string
	for _, b := range lexicon.TopicBuckets {
		if containsAny(text, b.Keywords) {
			out = append(out, b.Topic)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
