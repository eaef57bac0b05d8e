package progression

import (
	"fmt"
	"time"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// Record is any activity record with an identity and a timestamp.
type Record interface {
	RecordID() string
	OccurredAt() time.Time
}

// Filter returns the records inside w that satisfy pred (nil matches all).
// A record without a timestamp is a data-layer error and stops the scan.
func Filter[T Record](records []T, w Window, pred func(T) bool) ([]T, error) {
	var out []T
	for _, r := range records {
		ts := r.OccurredAt()
		if ts.IsZero() {
			return nil, fmt.Errorf("%w: record %q", domain.ErrMalformedTimestamp, r.RecordID())
		}
		if !w.Contains(ts) {
			continue
		}
		if pred != nil && !pred(r) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Count returns how many records inside w satisfy pred.
func Count[T Record](records []T, w Window, pred func(T) bool) (int, error) {
	matched, err := Filter(records, w, pred)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func isInterview(e domain.Event) bool  { return e.Type == domain.EventInterview }
func isNetworking(e domain.Event) bool { return e.Type == domain.EventNetworking }

func isSubmitted(a domain.Application) bool { return a.Status != domain.StatusSaved }

// windowCounts is the activity tally of one window.
type windowCounts struct {
	applications int
	interviews   int
	networking   int
}

func countWindow(snap domain.ActivitySnapshot, w Window) (windowCounts, error) {
	var c windowCounts
	var err error
	if c.applications, err = Count(snap.Applications, w, isSubmitted); err != nil {
		return c, err
	}
	if c.interviews, err = Count(snap.Events, w, isInterview); err != nil {
		return c, err
	}
	contacts, err := Count(snap.Contacts, w, nil)
	if err != nil {
		return c, err
	}
	meetups, err := Count(snap.Events, w, isNetworking)
	if err != nil {
		return c, err
	}
	c.networking = contacts + meetups
	return c, nil
}

// Weekly computes this week's counters and last week's for comparison.
func Weekly(now time.Time, snap domain.ActivitySnapshot, targets domain.Targets) (domain.WeeklyProgress, error) {
	week := WeekWindow(now)
	targets = targets.Normalize()

	cur, err := countWindow(snap, week)
	if err != nil {
		return domain.WeeklyProgress{}, err
	}
	prev, err := countWindow(snap, week.Previous())
	if err != nil {
		return domain.WeeklyProgress{}, err
	}

	return domain.WeeklyProgress{
		WeekStart:              week.Start,
		WeekEnd:                week.End,
		Applications:           cur.applications,
		Interviews:             cur.interviews,
		Networking:             cur.networking,
		ApplicationsLastWeek:   prev.applications,
		InterviewsLastWeek:     prev.interviews,
		NetworkingLastWeek:     prev.networking,
		ApplicationTarget:      targets.Applications,
		NetworkingTarget:       targets.Networking,
		ApplicationProgressPct: pct(cur.applications, targets.Applications),
		NetworkingProgressPct:  pct(cur.networking, targets.Networking),
	}, nil
}

// Monthly computes this month's counters.
func Monthly(now time.Time, snap domain.ActivitySnapshot) (domain.MonthlyProgress, error) {
	month := MonthWindow(now)

	cur, err := countWindow(snap, month)
	if err != nil {
		return domain.MonthlyProgress{}, err
	}
	prev, err := Count(snap.Applications, month.Previous(), isSubmitted)
	if err != nil {
		return domain.MonthlyProgress{}, err
	}

	return domain.MonthlyProgress{
		MonthStart:            month.Start,
		MonthEnd:              month.End,
		Applications:          cur.applications,
		Interviews:            cur.interviews,
		Networking:            cur.networking,
		ApplicationsLastMonth: prev,
	}, nil
}

func pct(n, target int) float64 {
	if target <= 0 {
		return 100.0
	}
	p := float64(n) / float64(target) * 100.0
	if p > 100.0 {
		p = 100.0
	}
	return p
}
