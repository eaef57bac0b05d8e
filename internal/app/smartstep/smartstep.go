// Package smartstep derives prioritized next-step suggestions from the
// current applications and events. Suggestions are recomputed on every call.
package smartstep

import (
	"fmt"
	"sort"
	"time"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// MaxSuggestions caps the list returned by Recommend.
const MaxSuggestions = 3

// Day thresholds for the rules.
const (
	prepareWindowDays    = 3
	followUpMinDays      = 3
	followUpUrgentDays   = 7
	followUpMaxDays      = 14
	checkInStaleDays     = 5
	savedStaleDays       = 3
	recentActivityDays   = 7
	maxActiveForOptimize = 3
)

// Recommend returns at most MaxSuggestions suggestions sorted by priority.
// With no applications at all it returns a single onboarding suggestion.
func Recommend(apps []domain.Application, events []domain.Event, now time.Time) []domain.Suggestion {
	if len(apps) == 0 {
		return []domain.Suggestion{{
			Type:     domain.SuggestApply,
			Priority: 1,
			Title:    "Add your first application",
		}}
	}

	var out []domain.Suggestion
	out = append(out, prepareForInterviews(events, now)...)
	out = append(out, followUps(apps, now)...)
	out = append(out, checkIns(apps, events, now)...)
	out = append(out, applyToSaved(apps, now)...)
	if s, ok := optimizeResume(apps); ok {
		out = append(out, s)
	}
	if s, ok := network(apps, now); ok {
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// interviews within the next 0–3 days
func prepareForInterviews(events []domain.Event, now time.Time) []domain.Suggestion {
	var out []domain.Suggestion
	for _, e := range events {
		if e.Type != domain.EventInterview {
			continue
		}
		days := daysBetween(now, e.ScheduledAt)
		if days < 0 || days > prepareWindowDays {
			continue
		}
		out = append(out, domain.Suggestion{
			Type:          domain.SuggestPrepare,
			Priority:      1,
			Title:         fmt.Sprintf("Prepare for %s", label(e.Title, "your interview")),
			ApplicationID: e.ApplicationID,
			EventID:       e.ID,
			DaysElapsed:   days,
		})
	}
	return out
}

// Applied for 3–14 days: priority 2 from day 7, else 3.
func followUps(apps []domain.Application, now time.Time) []domain.Suggestion {
	var out []domain.Suggestion
	for _, a := range apps {
		if a.Status != domain.StatusApplied {
			continue
		}
		days := daysBetween(a.AppliedAt(), now)
		if days < followUpMinDays || days > followUpMaxDays {
			continue
		}
		priority := 3
		if days >= followUpUrgentDays {
			priority = 2
		}
		out = append(out, domain.Suggestion{
			Type:          domain.SuggestFollowUp,
			Priority:      priority,
			Title:         fmt.Sprintf("Follow up with %s", label(a.Company, "the employer")),
			ApplicationID: a.ID,
			DaysElapsed:   days,
		})
	}
	return out
}

// Interview status, no update for 5+ days, nothing scheduled ahead.
func checkIns(apps []domain.Application, events []domain.Event, now time.Time) []domain.Suggestion {
	upcoming := make(map[string]bool)
	for _, e := range events {
		if e.ApplicationID != "" && e.ScheduledAt.After(now) {
			upcoming[e.ApplicationID] = true
		}
	}

	var out []domain.Suggestion
	for _, a := range apps {
		if a.Status != domain.StatusInterview || upcoming[a.ID] {
			continue
		}
		days := daysBetween(lastTouched(a), now)
		if days < checkInStaleDays {
			continue
		}
		out = append(out, domain.Suggestion{
			Type:          domain.SuggestCheckIn,
			Priority:      3,
			Title:         fmt.Sprintf("Check in with %s", label(a.Company, "the employer")),
			ApplicationID: a.ID,
			DaysElapsed:   days,
		})
	}
	return out
}

// Saved for 3+ days without movement.
func applyToSaved(apps []domain.Application, now time.Time) []domain.Suggestion {
	var out []domain.Suggestion
	for _, a := range apps {
		if a.Status != domain.StatusSaved {
			continue
		}
		days := daysBetween(lastTouched(a), now)
		if days < savedStaleDays {
			continue
		}
		out = append(out, domain.Suggestion{
			Type:          domain.SuggestApply,
			Priority:      4,
			Title:         fmt.Sprintf("Apply to %s", label(a.Company, "a saved job")),
			ApplicationID: a.ID,
			DaysElapsed:   days,
		})
	}
	return out
}

// 1–3 applications still in flight.
func optimizeResume(apps []domain.Application) (domain.Suggestion, bool) {
	active := 0
	for _, a := range apps {
		if !a.Status.IsTerminal() {
			active++
		}
	}
	if active < 1 || active > maxActiveForOptimize {
		return domain.Suggestion{}, false
	}
	return domain.Suggestion{
		Type:     domain.SuggestOptimizeResume,
		Priority: 5,
		Title:    "Tailor your resume to widen the pipeline",
	}, true
}

// Nothing created in the last 7 days.
func network(apps []domain.Application, now time.Time) (domain.Suggestion, bool) {
	cutoff := now.AddDate(0, 0, -recentActivityDays)
	for _, a := range apps {
		if a.CreatedAt.After(cutoff) {
			return domain.Suggestion{}, false
		}
	}
	return domain.Suggestion{
		Type:     domain.SuggestNetwork,
		Priority: 6,
		Title:    "Reach out to your network for leads",
	}, true
}

func lastTouched(a domain.Application) time.Time {
	if a.UpdatedAt.After(a.CreatedAt) {
		return a.UpdatedAt
	}
	return a.CreatedAt
}

// daysBetween counts calendar days from a to b in a's location.
func daysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bl := b.In(a.Location())
	to := time.Date(bl.Year(), bl.Month(), bl.Day(), 0, 0, 0, 0, a.Location())
	hours := to.Sub(from).Hours()
	if hours < 0 {
		return -int(-hours/24 + 0.5)
	}
	return int(hours/24 + 0.5)
}

func label(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
