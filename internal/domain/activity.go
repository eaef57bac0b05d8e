package domain

import (
	"fmt"
	"strings"
	"time"
)

// ─── Activity Records ───────────────────────────────────────────────────────

// ApplicationStatus is the pipeline stage of a job application.
type ApplicationStatus string

const (
	StatusSaved     ApplicationStatus = "Saved"
	StatusApplied   ApplicationStatus = "Applied"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusAccepted  ApplicationStatus = "Accepted"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusWithdrawn ApplicationStatus = "Withdrawn"
)

// ParseApplicationStatus matches a status case-insensitively.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range []ApplicationStatus{
		StatusSaved, StatusApplied, StatusInterview, StatusOffer,
		StatusAccepted, StatusRejected, StatusWithdrawn,
	} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown application status %q", ErrInvalidInput, s)
}

// IsTerminal reports whether no further pipeline movement is expected.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Application is a job the user saved or applied to.
type Application struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Company     string            `json:"company"`
	Role        string            `json:"role"`
	Status      ApplicationStatus `json:"status"`
	DateApplied *time.Time        `json:"date_applied,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RecordID implements Record.
func (a Application) RecordID() string { return a.ID }

// OccurredAt implements Record. Applications count where they were
// submitted, not where they were saved.
func (a Application) OccurredAt() time.Time { return a.AppliedAt() }

// AppliedAt returns the application date, falling back to creation time.
func (a Application) AppliedAt() time.Time {
	if a.DateApplied != nil && !a.DateApplied.IsZero() {
		return *a.DateApplied
	}
	return a.CreatedAt
}

// EventType categorizes calendar events.
type EventType string

const (
	EventInterview  EventType = "interview"
	EventNetworking EventType = "networking"
	EventDeadline   EventType = "deadline"
	EventOther      EventType = "other"
)

// ParseEventType validates an event type, defaulting empty input to "other".
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "":
		return EventOther, nil
	case EventInterview, EventNetworking, EventDeadline, EventOther:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, s)
}

// Event is a scheduled interview, meetup or deadline.
type Event struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id,omitempty"`
	Type          EventType `json:"type"`
	Title         string    `json:"title"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordID implements Record.
func (e Event) RecordID() string { return e.ID }

// OccurredAt implements Record. Events count in the window they happen in.
func (e Event) OccurredAt() time.Time { return e.ScheduledAt }

// Contact is a networking interaction.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordID implements Record.
func (c Contact) RecordID() string { return c.ID }

// OccurredAt implements Record.
func (c Contact) OccurredAt() time.Time { return c.CreatedAt }

// Skill is a learning goal with logged hours.
type Skill struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	HoursLogged int       `json:"hours_logged"`
	TargetHours int       `json:"target_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivitySnapshot bundles the activity records of one user.
type ActivitySnapshot struct {
	Applications []Application `json:"applications"`
	Events       []Event       `json:"events"`
	Contacts     []Contact     `json:"contacts"`
	Skills       []Skill       `json:"skills"`
}

// ─── Derived Progress ───────────────────────────────────────────────────────

// WeeklyProgress counts this week's activity against the weekly targets.
type WeeklyProgress struct {
	WeekStart              time.Time `json:"week_start"`
	WeekEnd                time.Time `json:"week_end"`
	Applications           int       `json:"applications"`
	Interviews             int       `json:"interviews"`
	Networking             int       `json:"networking"`
	ApplicationsLastWeek   int       `json:"applications_last_week"`
	InterviewsLastWeek     int       `json:"interviews_last_week"`
	NetworkingLastWeek     int       `json:"networking_last_week"`
	ApplicationTarget      int       `json:"application_target"`
	NetworkingTarget       int       `json:"networking_target"`
	ApplicationProgressPct float64   `json:"application_progress_pct"`
	NetworkingProgressPct  float64   `json:"networking_progress_pct"`
}

// MonthlyProgress counts this month's activity.
type MonthlyProgress struct {
	MonthStart            time.Time `json:"month_start"`
	MonthEnd              time.Time `json:"month_end"`
	Applications          int       `json:"applications"`
	Interviews            int       `json:"interviews"`
	Networking            int       `json:"networking"`
	ApplicationsLastMonth int       `json:"applications_last_month"`
}
