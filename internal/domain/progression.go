// Package domain holds the jobtrail data model.
// Progression types: modes, goals, quests, achievements and notifications.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ─── Mode ───────────────────────────────────────────────────────────────────

// Mode is the user-selected persona that picks quest, achievement and
// level-title tables.
type Mode string

const (
	ModeActiveSeeker    Mode = "active_seeker"
	ModeCareerGrowth    Mode = "career_growth"
	ModeStealthSeeker   Mode = "stealth_seeker"
	ModeCareerInsurance Mode = "career_insurance"
)

// AllModes lists every mode in display order.
func AllModes() []Mode {
	return []Mode{ModeActiveSeeker, ModeCareerGrowth, ModeStealthSeeker, ModeCareerInsurance}
}

// ParseMode accepts canonical names and the short aliases
// ("crush", "climb", "stealth", "insurance").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active_seeker", "crush":
		return ModeActiveSeeker, nil
	case "career_growth", "climb":
		return ModeCareerGrowth, nil
	case "stealth_seeker", "stealth":
		return ModeStealthSeeker, nil
	case "career_insurance", "insurance":
		return ModeCareerInsurance, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid reports whether m is one of the canonical modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeActiveSeeker, ModeCareerGrowth, ModeStealthSeeker, ModeCareerInsurance:
		return true
	}
	return false
}

// ─── User Goals ─────────────────────────────────────────────────────────────

// XPPerLevel is the flat amount of XP between two consecutive levels.
const XPPerLevel = 500

// Default weekly targets for a first-time user.
const (
	DefaultWeeklyApplications = 10
	DefaultWeeklyNetworking   = 5
	DefaultWeeklySkillHours   = 5
)

// UserGoals is the persisted progression ledger state of one user.
type UserGoals struct {
	UserID                  string     `json:"user_id"`
	Mode                    Mode       `json:"mode"`
	TotalXP                 int        `json:"total_xp"`
	CurrentLevel            int        `json:"current_level"`
	CurrentStreak           int        `json:"current_streak"`
	LongestStreak           int        `json:"longest_streak"`
	LastActivityDate        *time.Time `json:"last_activity_date,omitempty"`
	WeeklyApplicationTarget int        `json:"weekly_application_target"`
	WeeklyNetworkingTarget  int        `json:"weekly_networking_target"`
	WeeklySkillHours        int        `json:"weekly_skill_hours"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// DefaultUserGoals returns the ledger used when a user has no row yet.
func DefaultUserGoals(userID string, now time.Time) UserGoals {
	return UserGoals{
		UserID:                  userID,
		Mode:                    ModeActiveSeeker,
		TotalXP:                 0,
		CurrentLevel:            1,
		WeeklyApplicationTarget: DefaultWeeklyApplications,
		WeeklyNetworkingTarget:  DefaultWeeklyNetworking,
		WeeklySkillHours:        DefaultWeeklySkillHours,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Targets returns the weekly targets that parameterize quest generation.
func (g UserGoals) Targets() Targets {
	return Targets{
		Applications: g.WeeklyApplicationTarget,
		Networking:   g.WeeklyNetworkingTarget,
		SkillHours:   g.WeeklySkillHours,
	}
}

// Targets are the weekly goals a user commits to.
type Targets struct {
	Applications int `json:"weekly_application_target"`
	Networking   int `json:"weekly_networking_target"`
	SkillHours   int `json:"weekly_skill_hours"`
}

// Normalize replaces non-positive targets with the defaults.
func (t Targets) Normalize() Targets {
	if t.Applications <= 0 {
		t.Applications = DefaultWeeklyApplications
	}
	if t.Networking <= 0 {
		t.Networking = DefaultWeeklyNetworking
	}
	if t.SkillHours <= 0 {
		t.SkillHours = DefaultWeeklySkillHours
	}
	return t
}

// ─── Quest Types ────────────────────────────────────────────────────────────

// QuestType is the cadence of a quest.
type QuestType string

const (
	QuestDaily   QuestType = "daily"
	QuestWeekly  QuestType = "weekly"
	QuestMonthly QuestType = "monthly"
	QuestEpic    QuestType = "epic"
)

// QuestCategory is the kind of activity that advances a quest.
type QuestCategory string

const (
	CategoryApplication QuestCategory = "application"
	CategoryNetworking  QuestCategory = "networking"
	CategoryInterview   QuestCategory = "interview"
	CategorySkill       QuestCategory = "skill"
	CategoryResearch    QuestCategory = "research"
	CategoryOffer       QuestCategory = "offer"
)

// ParseQuestCategory validates a category name.
func ParseQuestCategory(s string) (QuestCategory, error) {
	c := QuestCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryApplication, CategoryNetworking, CategoryInterview,
		CategorySkill, CategoryResearch, CategoryOffer:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

// Quest is a time-boxed objective with a numeric target and XP reward.
type Quest struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	TemplateKey     string        `json:"template_key"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Type            QuestType     `json:"type"`
	Category        QuestCategory `json:"category"`
	Target          int           `json:"target"`
	CurrentProgress int           `json:"current_progress"`
	XPReward        int           `json:"xp_reward"`
	IsCompleted     bool          `json:"is_completed"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	StartsAt        time.Time     `json:"starts_at"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// IsExpiredAt reports whether the quest deadline has passed at now.
func (q Quest) IsExpiredAt(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// ProgressPct returns completion percentage (0-100).
func (q Quest) ProgressPct() float64 {
	if q.Target <= 0 {
		return 100.0
	}
	pct := float64(q.CurrentProgress) / float64(q.Target) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// QuestTemplate is one row of a mode's quest table after parameterization.
type QuestTemplate struct {
	Key         string        `json:"key"`
	Type        QuestType     `json:"type"`
	Category    QuestCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	XPReward    int           `json:"xp_reward"`
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementTier is a graduated threshold of one achievement.
type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
)

// Tiers lists tiers in ascending order.
func Tiers() []AchievementTier {
	return []AchievementTier{TierBronze, TierSilver, TierGold, TierPlatinum}
}

// AchievementTrigger names the statistic that drives an achievement.
type AchievementTrigger string

const (
	TriggerApplications    AchievementTrigger = "applications"
	TriggerInterviews      AchievementTrigger = "interviews"
	TriggerNetworking      AchievementTrigger = "networking"
	TriggerStreak          AchievementTrigger = "streak"
	TriggerQuestsCompleted AchievementTrigger = "quests_completed"
	TriggerLevel           AchievementTrigger = "level"
	TriggerSkillHours      AchievementTrigger = "skill_hours"
)

// AchievementDef defines one achievement and its four tier targets.
type AchievementDef struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Trigger AchievementTrigger `json:"trigger"`
	Targets [4]int             `json:"targets"` // bronze, silver, gold, platinum
}

// Achievement is the per-user progress row of one achievement tier.
type Achievement struct {
	UserID          string             `json:"user_id"`
	AchievementID   string             `json:"achievement_id"`
	Trigger         AchievementTrigger `json:"trigger"`
	Tier            AchievementTier    `json:"tier"`
	CurrentProgress int                `json:"current_progress"`
	Target          int                `json:"target"`
	Unlocked        bool               `json:"unlocked"`
	UnlockedAt      *time.Time         `json:"unlocked_at,omitempty"`
}

// Key identifies a row within one user's achievements.
func (a Achievement) Key() string {
	return a.AchievementID + ":" + string(a.Tier)
}

// AchievementStats is the statistic snapshot fed to achievement evaluation.
type AchievementStats map[AchievementTrigger]int

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyAchievement   NotificationType = "achievement"
	NotifyLevelUp       NotificationType = "level_up"
	NotifyQuestComplete NotificationType = "quest_complete"
)

// Notification is a user-facing progression event.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy governs how often notifications are recorded.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day"`
	QuietStart string `json:"quiet_start"` // "HH:MM"
	QuietEnd   string `json:"quiet_end"`
}

// DefaultNotificationPolicy allows a handful per day outside the night hours.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  5,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}
