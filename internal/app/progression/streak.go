package progression

import (
	"time"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// RecordActivityDay folds one day of activity into the streak.
// Same day (or an earlier day) is a no-op. The day after the last activity
// extends the streak; any gap restarts it at 1, counting today.
// LongestStreak only ever grows.
func RecordActivityDay(g domain.UserGoals, at time.Time) domain.UserGoals {
	day := startOfDay(at)

	if g.LastActivityDate == nil || g.LastActivityDate.IsZero() {
		g.CurrentStreak = 1
	} else {
		last := startOfDay(g.LastActivityDate.In(at.Location()))
		switch gap := calendarDays(last, day); {
		case gap <= 0:
			return g
		case gap == 1:
			g.CurrentStreak++
		default:
			g.CurrentStreak = 1
		}
	}

	if g.CurrentStreak > g.LongestStreak {
		g.LongestStreak = g.CurrentStreak
	}
	g.LastActivityDate = &day
	return g
}

// EffectiveStreak is the streak as seen at now: 0 once a full day has been
// missed, even though the stored counter is only reset by the next activity.
func EffectiveStreak(g domain.UserGoals, now time.Time) int {
	if g.LastActivityDate == nil || g.LastActivityDate.IsZero() {
		return 0
	}
	if calendarDays(g.LastActivityDate.In(now.Location()), now) > 1 {
		return 0
	}
	return g.CurrentStreak
}
