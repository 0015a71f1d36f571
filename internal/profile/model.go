package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FormSnapshot is the live content of the multi-step profile form.
// It is consumed read-only; the engine never writes it back.
type FormSnapshot struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	JobTitle     string       `json:"job_title"`
	Major        string       `json:"major"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Skills       []string     `json:"skills"`
	Summary      string       `json:"summary"`
	CareerGoals  string       `json:"career_goals"`
	CurrentStep  int          `json:"current_step"`
}

// PersonalInfo holds the contact section of the form.
type PersonalInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	LinkedIn string `json:"linkedin"`
}

// Education is one entry of the education step.
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	GraduationYear string `json:"graduation_year"`
}

// Experience is one entry of the experience step.
type Experience struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	Responsibilities string `json:"responsibilities"`
	Achievements     string `json:"achievements"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
}

// Draft is a row in the profile_drafts table.
type Draft struct {
	UserID    uuid.UUID       `json:"user_id"`
	Step      int             `json:"step"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ParseSnapshot decodes draft data into a FormSnapshot.
// Returns an empty snapshot on nil or invalid input.
func ParseSnapshot(data []byte) FormSnapshot {
	var s FormSnapshot
	if len(data) == 0 {
		return s
	}
	_ = json.Unmarshal(data, &s)
	return s
}
