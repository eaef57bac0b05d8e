package progression

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/infra/metrics"
)

// Notifier records progression notifications subject to a policy:
//   - at most MaxPerDay per user per calendar day
//   - nothing between QuietStart and QuietEnd
//
// Suppressed notifications are dropped, not queued.
type Notifier struct {
	store  domain.NotificationStore
	policy domain.NotificationPolicy
	log    *zap.Logger
}

// NewNotifier creates a notifier with the default policy.
func NewNotifier(store domain.NotificationStore, log *zap.Logger) *Notifier {
	return NewNotifierWithPolicy(store, domain.DefaultNotificationPolicy(), log)
}

// NewNotifierWithPolicy creates a notifier with a custom policy.
func NewNotifierWithPolicy(store domain.NotificationStore, policy domain.NotificationPolicy, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{store: store, policy: policy, log: log}
}

// Policy returns the current notification policy.
func (n *Notifier) Policy() domain.NotificationPolicy {
	return n.policy
}

// Notify stores notif if the policy allows it at now.
// It reports whether the notification was stored.
func (n *Notifier) Notify(ctx context.Context, notif domain.Notification, now time.Time) (bool, error) {
	if n.isQuietHour(now) {
		metrics.NotificationsSuppressed.WithLabelValues("quiet_hours").Inc()
		n.log.Debug("notification suppressed", zap.String("reason", "quiet_hours"),
			zap.String("user_id", notif.UserID), zap.String("type", string(notif.Type)))
		return false, nil
	}

	count, err := n.store.NotificationCountSince(ctx, notif.UserID, startOfDay(now))
	if err != nil {
		return false, &domain.StorageError{Op: "count notifications", Err: err}
	}
	if n.policy.MaxPerDay > 0 && count >= n.policy.MaxPerDay {
		metrics.NotificationsSuppressed.WithLabelValues("daily_cap").Inc()
		n.log.Debug("notification suppressed", zap.String("reason", "daily_cap"),
			zap.String("user_id", notif.UserID), zap.String("type", string(notif.Type)))
		return false, nil
	}

	notif.ID = uuid.NewString()
	notif.CreatedAt = now
	notif.Shown = false
	if err := n.store.InsertNotification(ctx, notif); err != nil {
		return false, &domain.StorageError{Op: "insert notification", Err: err}
	}
	return true, nil
}

// NotifyOutcome turns an outcome's level-up, quest and achievement events
// into notifications, in that order of importance.
func (n *Notifier) NotifyOutcome(ctx context.Context, userID string, out Outcome, now time.Time) error {
	var notifs []domain.Notification
	if out.LeveledUp {
		notifs = append(notifs, domain.Notification{
			UserID: userID,
			Type:   domain.NotifyLevelUp,
			Title:  fmt.Sprintf("Level %d reached", out.Goals.CurrentLevel),
			Body:   out.LevelTitle,
		})
	}
	for _, a := range out.Unlocked {
		notifs = append(notifs, domain.Notification{
			UserID: userID,
			Type:   domain.NotifyAchievement,
			Title:  "Achievement unlocked",
			Body:   fmt.Sprintf("%s (%s)", a.AchievementID, a.Tier),
		})
	}
	for _, q := range out.Completed {
		notifs = append(notifs, domain.Notification{
			UserID: userID,
			Type:   domain.NotifyQuestComplete,
			Title:  "Quest complete",
			Body:   q.Title,
		})
	}

	for _, notif := range notifs {
		if _, err := n.Notify(ctx, notif, now); err != nil {
			return err
		}
	}
	return nil
}

// isQuietHour returns true if t falls within quiet hours.
func (n *Notifier) isQuietHour(t time.Time) bool {
	if n.policy.QuietStart == "" || n.policy.QuietStart == n.policy.QuietEnd {
		return false
	}
	startHour, startMin := parseHHMM(n.policy.QuietStart)
	endHour, endMin := parseHHMM(n.policy.QuietEnd)

	minutes := t.Hour()*60 + t.Minute()
	start := startHour*60 + startMin
	end := endHour*60 + endMin

	if start > end {
		// Wraps midnight: e.g., 22:00 – 08:00
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
