package scheduler

import "time"

// Notification priorities.
const (
	PriorityLow      = 1
	PriorityMedium   = 2
	PriorityCritical = 3
)

// ClampPriority forces p into [PriorityLow, PriorityCritical].
func ClampPriority(p int) int {
	if p < PriorityLow {
		return PriorityLow
	}
	if p > PriorityCritical {
		return PriorityCritical
	}
	return p
}

// Candidate is a proposed notification. Its ID names the logical cause
// (empty_field_email, step_help_3) and doubles as the cooldown type key.
type Candidate struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Priority int    `json:"priority"`
	Source   string `json:"source"`
}

// Displayed is an admitted candidate currently on screen.
type Displayed struct {
	Candidate
	ShownAt   time.Time `json:"shown_at"`
	ExpiresAt time.Time `json:"expires_at"`

	seq uint64
}

// State is the bubble surface state.
type State int

const (
	StateIdle State = iota
	StateVisible
	StateChatOpen
)

func (s State) String() string {
	switch s {
	case StateVisible:
		return "visible"
	case StateChatOpen:
		return "chat_open"
	default:
		return "idle"
	}
}

// Reason explains an admission decision.
type Reason string

const (
	ReasonAdmitted Reason = ""
	ReasonBusy     Reason = "busy"
	ReasonChatOpen Reason = "chat_open"
	ReasonCooldown Reason = "cooldown"
	ReasonEngaged  Reason = "engaged"
)

// PriorityDurations holds one duration per priority level.
type PriorityDurations struct {
	Low      time.Duration `koanf:"low"`
	Medium   time.Duration `koanf:"medium"`
	Critical time.Duration `koanf:"critical"`
}

// For returns the duration for a priority, clamping out-of-range values.
func (d PriorityDurations) For(priority int) time.Duration {
	switch ClampPriority(priority) {
	case PriorityCritical:
		return d.Critical
	case PriorityMedium:
		return d.Medium
	default:
		return d.Low
	}
}

// Longest returns the largest of the three durations.
func (d PriorityDurations) Longest() time.Duration {
	m := d.Low
	if d.Medium > m {
		m = d.Medium
	}
	if d.Critical > m {
		m = d.Critical
	}
	return m
}

// Config tunes admission and display.
type Config struct {
	Cooldowns        PriorityDurations
	Display          PriorityDurations
	DecayInterval    time.Duration
	EngagedThreshold int
	MaxScore         int
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		Cooldowns: PriorityDurations{
			Low:      60 * time.Second,
			Medium:   30 * time.Second,
			Critical: 15 * time.Second,
		},
		Display: PriorityDurations{
			Low:      4 * time.Second,
			Medium:   6 * time.Second,
			Critical: 8 * time.Second,
		},
		DecayInterval:    30 * time.Second,
		EngagedThreshold: 10,
		MaxScore:         20,
	}
}
