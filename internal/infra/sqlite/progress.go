package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// ─── User Goals ─────────────────────────────────────────────────────────────

// SaveGoals inserts or replaces a user's ledger snapshot.
func (d *DB) SaveGoals(ctx context.Context, g domain.UserGoals) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_goals (user_id, mode, total_xp, current_level, current_streak, longest_streak,
			last_activity_date, weekly_application_target, weekly_networking_target, weekly_skill_hours,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			mode=excluded.mode, total_xp=excluded.total_xp, current_level=excluded.current_level,
			current_streak=excluded.current_streak, longest_streak=excluded.longest_streak,
			last_activity_date=excluded.last_activity_date,
			weekly_application_target=excluded.weekly_application_target,
			weekly_networking_target=excluded.weekly_networking_target,
			weekly_skill_hours=excluded.weekly_skill_hours, updated_at=excluded.updated_at`,
		g.UserID, string(g.Mode), g.TotalXP, g.CurrentLevel, g.CurrentStreak, g.LongestStreak,
		nullableUnix(g.LastActivityDate), g.WeeklyApplicationTarget, g.WeeklyNetworkingTarget,
		g.WeeklySkillHours, toUnix(g.CreatedAt), toUnix(g.UpdatedAt),
	)
	return err
}

// GetGoals returns a user's ledger, or nil if the user has none.
func (d *DB) GetGoals(ctx context.Context, userID string) (*domain.UserGoals, error) {
	var g domain.UserGoals
	var lastActivity sql.NullInt64
	var createdAt, updatedAt int64

	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, mode, total_xp, current_level, current_streak, longest_streak,
			last_activity_date, weekly_application_target, weekly_networking_target, weekly_skill_hours,
			created_at, updated_at
		 FROM user_goals WHERE user_id = ?`, userID,
	).Scan(&g.UserID, &g.Mode, &g.TotalXP, &g.CurrentLevel, &g.CurrentStreak, &g.LongestStreak,
		&lastActivity, &g.WeeklyApplicationTarget, &g.WeeklyNetworkingTarget, &g.WeeklySkillHours,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g.LastActivityDate = timePtr(lastActivity)
	g.CreatedAt = fromUnix(createdAt)
	g.UpdatedAt = fromUnix(updatedAt)
	return &g, nil
}

// ─── Quests ─────────────────────────────────────────────────────────────────

const questColumns = `id, user_id, template_key, title, description, type, category, target,
	current_progress, xp_reward, is_completed, completed_at, starts_at, expires_at`

// InsertQuests creates quests in one transaction.
func (d *DB) InsertQuests(ctx context.Context, quests []domain.Quest) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quests (`+questColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, q := range quests {
		if _, err := stmt.ExecContext(ctx,
			q.ID, q.UserID, q.TemplateKey, q.Title, q.Description, string(q.Type), string(q.Category),
			q.Target, q.CurrentProgress, q.XPReward, q.IsCompleted, nullableUnix(q.CompletedAt),
			toUnix(q.StartsAt), toUnix(q.ExpiresAt),
		); err != nil {
			return fmt.Errorf("insert quest %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}

// GetQuest retrieves one of the user's quests, or nil if absent.
func (d *DB) GetQuest(ctx context.Context, userID, id string) (*domain.Quest, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+questColumns+` FROM quests WHERE id = ? AND user_id = ?`, id, userID)
	return scanQuest(row)
}

// ListQuests returns all of the user's quests, soonest expiry first.
func (d *DB) ListQuests(ctx context.Context, userID string) ([]domain.Quest, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+questColumns+` FROM quests WHERE user_id = ? ORDER BY expires_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []domain.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// UpdateQuest stores quest progress. Progress and completion never move
// backwards and completed_at keeps its first value.
func (d *DB) UpdateQuest(ctx context.Context, q domain.Quest) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE quests SET
			current_progress = MAX(current_progress, ?),
			is_completed = MAX(is_completed, ?),
			completed_at = COALESCE(completed_at, ?)
		 WHERE id = ? AND user_id = ?`,
		q.CurrentProgress, q.IsCompleted, nullableUnix(q.CompletedAt), q.ID, q.UserID,
	)
	return err
}

// DeleteQuests removes the given quests of one user.
func (d *DB) DeleteQuests(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM quests WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}

// DeleteExpiredQuests removes incomplete, non-epic quests that expired
// before the given time.
func (d *DB) DeleteExpiredQuests(ctx context.Context, userID string, before time.Time) (int64, error) {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM quests
		 WHERE user_id = ? AND expires_at <= ? AND is_completed = 0 AND type != ?`,
		userID, before.Unix(), string(domain.QuestEpic),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UpsertAchievements inserts or updates tier rows. Progress never drops,
// unlocked never reverts and unlocked_at keeps its first value.
func (d *DB) UpsertAchievements(ctx context.Context, rows []domain.Achievement) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO achievements (user_id, achievement_id, tier, trigger_name, current_progress, target, unlocked, unlocked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, achievement_id, tier) DO UPDATE SET
			trigger_name = excluded.trigger_name,
			target = excluded.target,
			current_progress = MAX(current_progress, excluded.current_progress),
			unlocked = MAX(unlocked, excluded.unlocked),
			unlocked_at = COALESCE(unlocked_at, excluded.unlocked_at)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range rows {
		if _, err := stmt.ExecContext(ctx,
			a.UserID, a.AchievementID, string(a.Tier), string(a.Trigger),
			a.CurrentProgress, a.Target, a.Unlocked, nullableUnix(a.UnlockedAt),
		); err != nil {
			return fmt.Errorf("upsert achievement %s: %w", a.Key(), err)
		}
	}
	return tx.Commit()
}

// ListAchievements returns the user's tier rows grouped by achievement.
func (d *DB) ListAchievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT user_id, achievement_id, tier, trigger_name, current_progress, target, unlocked, unlocked_at
		 FROM achievements WHERE user_id = ? ORDER BY achievement_id, target`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		var unlockedAt sql.NullInt64
		if err := rows.Scan(&a.UserID, &a.AchievementID, &a.Tier, &a.Trigger,
			&a.CurrentProgress, &a.Target, &a.Unlocked, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = timePtr(unlockedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAchievements removes rows by Achievement.Key ("id:tier").
// Unlocked rows are never deleted.
func (d *DB) DeleteAchievements(ctx context.Context, userID string, keys []string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		id, tier, ok := strings.Cut(key, ":")
		if !ok {
			return fmt.Errorf("malformed achievement key %q", key)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM achievements WHERE user_id = ? AND achievement_id = ? AND tier = ? AND unlocked = 0`,
			userID, id, tier,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification stores a notification.
func (d *DB) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, toUnix(n.CreatedAt), n.Shown,
	)
	return err
}

// NotificationCountSince counts the user's notifications created at or after since.
func (d *DB) NotificationCountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND created_at >= ?`,
		userID, since.Unix(),
	).Scan(&count)
	return count, err
}

// ListPendingNotifications returns unshown notifications, newest first.
func (d *DB) ListPendingNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, type, title, body, created_at, shown
		 FROM notifications WHERE user_id = ? AND shown = 0
		 ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &createdAt, &n.Shown); err != nil {
			return nil, err
		}
		n.CreatedAt = fromUnix(createdAt)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(ctx context.Context, userID, id string) error {
	result, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET shown = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// ─── Quest Scanner ──────────────────────────────────────────────────────────

func scanQuest(s scanner) (*domain.Quest, error) {
	var q domain.Quest
	var completedAt sql.NullInt64
	var startsAt, expiresAt int64
	err := s.Scan(&q.ID, &q.UserID, &q.TemplateKey, &q.Title, &q.Description, &q.Type, &q.Category,
		&q.Target, &q.CurrentProgress, &q.XPReward, &q.IsCompleted, &completedAt, &startsAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.CompletedAt = timePtr(completedAt)
	q.StartsAt = fromUnix(startsAt)
	q.ExpiresAt = fromUnix(expiresAt)
	return &q, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
