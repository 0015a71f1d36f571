// Package classifier infers a user's professional domain, experience tier and
// profile completeness from the form content. It is pure and never fails.
package classifier

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/profilejoteam/profilejo-website-sub000/internal/lexicon"
	"github.com/profilejoteam/profilejo-website-sub000/internal/profile"
)

// ExperienceTier is a coarse seniority estimate.
type ExperienceTier string

const (
	TierBeginner     ExperienceTier = "beginner"
	TierIntermediate ExperienceTier = "intermediate"
	TierAdvanced     ExperienceTier = "advanced"
)

// Tier thresholds, in runes of responsibilities + achievements text.
const (
	intermediateThreshold = 100
	advancedThreshold     = 300
)

// ProfileAnalysis is the classifier output. It is derived on demand and
// never stored on its own.
type ProfileAnalysis struct {
	EstimatedField    string         `json:"estimated_field"`
	ExperienceTier    ExperienceTier `json:"experience_tier"`
	CompletionPercent int            `json:"completion_percent"`
	ActiveSection     string         `json:"active_section"`
}

// Classify analyses a form snapshot. Identical input yields identical output.
func Classify(s profile.FormSnapshot) ProfileAnalysis {
	return ProfileAnalysis{
		EstimatedField:    EstimateField(s),
		ExperienceTier:    EstimateTier(s),
		CompletionPercent: Completion(s),
		ActiveSection:     lexicon.SectionLabel(s.CurrentStep),
	}
}

// EstimateField returns the first domain group whose trigger appears in the
// identity text. Without a match it falls back to the declared majors and
// job title, then lexicon.Unspecified.
func EstimateField(s profile.FormSnapshot) string {
	text := identityText(s)
	if label, ok := MatchDomain(text); ok {
		return label
	}

	for _, e := range s.Education {
		if v := strings.TrimSpace(e.Major); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(s.Major); v != "" {
		return v
	}
	if v := strings.TrimSpace(s.JobTitle); v != "" {
		return v
	}
	return lexicon.Unspecified
}

// MatchDomain scans lower-cased text against the ordered domain groups.
func MatchDomain(text string) (string, bool) {
	for _, g := range lexicon.DomainGroups {
		for _, trig := range g.Triggers {
			if strings.Contains(text, trig) {
				return g.Label, true
			}
		}
	}
	return "", false
}

func identityText(s profile.FormSnapshot) string {
	parts := make([]string, 0, 4+len(s.Education)+3*len(s.Experience)+len(s.Skills))
	parts = append(parts, s.Major)
	for _, e := range s.Education {
		parts = append(parts, e.Major)
	}
	parts = append(parts, s.JobTitle)
	for _, x := range s.Experience {
		parts = append(parts, x.Title)
	}
	for _, x := range s.Experience {
		parts = append(parts, x.Responsibilities, x.Achievements)
	}
	parts = append(parts, s.Skills...)
	return strings.ToLower(strings.Join(parts, " "))
}

// EstimateTier buckets the amount of written experience.
func EstimateTier(s profile.FormSnapshot) ExperienceTier {
	n := 0
	for _, x := range s.Experience {
		n += utf8.RuneCountInString(strings.TrimSpace(x.Responsibilities))
		n += utf8.RuneCountInString(strings.TrimSpace(x.Achievements))
	}
	switch {
	case n < intermediateThreshold:
		return TierBeginner
	case n < advancedThreshold:
		return TierIntermediate
	default:
		return TierAdvanced
	}
}

// Completion returns the populated share of lexicon.RequiredFields, 0-100.
func Completion(s profile.FormSnapshot) int {
	filled := 0
	for _, name := range lexicon.RequiredFields {
		if FieldValue(s, name) != "" {
			filled++
		}
	}
	return int(math.Round(float64(filled) * 100 / float64(len(lexicon.RequiredFields))))
}

// FieldValue returns the trimmed value of a named form field. Array-backed
// fields resolve to their first non-empty entry.
func FieldValue(s profile.FormSnapshot, name string) string {
	switch name {
	case lexicon.FieldFullName:
		return strings.TrimSpace(s.PersonalInfo.FullName)
	case lexicon.FieldEmail:
		return strings.TrimSpace(s.PersonalInfo.Email)
	case lexicon.FieldPhone:
		return strings.TrimSpace(s.PersonalInfo.Phone)
	case lexicon.FieldCity:
		return strings.TrimSpace(s.PersonalInfo.City)
	case lexicon.FieldLinkedIn:
		return strings.TrimSpace(s.PersonalInfo.LinkedIn)
	case lexicon.FieldJobTitle:
		return strings.TrimSpace(s.JobTitle)
	case lexicon.FieldMajor:
		if v := strings.TrimSpace(s.Major); v != "" {
			return v
		}
		return firstEducation(s, func(e profile.Education) string { return e.Major })
	case lexicon.FieldInstitution:
		return firstEducation(s, func(e profile.Education) string { return e.Institution })
	case lexicon.FieldDegree:
		return firstEducation(s, func(e profile.Education) string { return e.Degree })
	case lexicon.FieldGraduationYear:
		return firstEducation(s, func(e profile.Education) string { return e.GraduationYear })
	case lexicon.FieldResponsibilities:
		return firstExperience(s, func(x profile.Experience) string { return x.Responsibilities })
	case lexicon.FieldAchievements:
		return firstExperience(s, func(x profile.Experience) string { return x.Achievements })
	case lexicon.FieldSkills:
		for _, sk := range s.Skills {
			if v := strings.TrimSpace(sk); v != "" {
				return v
			}
		}
		return ""
	case lexicon.FieldSummary:
		return strings.TrimSpace(s.Summary)
	case lexicon.FieldCareerGoals:
		return strings.TrimSpace(s.CareerGoals)
	}
	return ""
}

func firstEducation(s profile.FormSnapshot, get func(profile.Education) string) string {
	for _, e := range s.Education {
		if v := strings.TrimSpace(get(e)); v != "" {
			return v
		}
	}
	return ""
}

func firstExperience(s profile.FormSnapshot, get func(profile.Experience) string) string {
	for _, x := range s.Experience {
		if v := strings.TrimSpace(get(x)); v != "" {
			return v
		}
	}
	return ""
}
