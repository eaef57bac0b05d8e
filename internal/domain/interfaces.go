package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// Infrastructure implements them; the progression service depends on them.
// Getters return (nil, nil) when no row exists.

// GoalsStore persists the progression ledger snapshot.
type GoalsStore interface {
	GetGoals(ctx context.Context, userID string) (*UserGoals, error)
	SaveGoals(ctx context.Context, g UserGoals) error
}

// QuestStore persists quests.
type QuestStore interface {
	ListQuests(ctx context.Context, userID string) ([]Quest, error)
	GetQuest(ctx context.Context, userID, id string) (*Quest, error)
	InsertQuests(ctx context.Context, quests []Quest) error
	UpdateQuest(ctx context.Context, q Quest) error
	DeleteQuests(ctx context.Context, userID string, ids []string) error
	DeleteExpiredQuests(ctx context.Context, userID string, before time.Time) (int64, error)
}

// AchievementStore persists achievement tier rows.
type AchievementStore interface {
	ListAchievements(ctx context.Context, userID string) ([]Achievement, error)
	UpsertAchievements(ctx context.Context, rows []Achievement) error
	DeleteAchievements(ctx context.Context, userID string, keys []string) error
}

// ActivityStore persists applications, events, contacts and skills.
type ActivityStore interface {
	InsertApplication(ctx context.Context, a Application) error
	GetApplication(ctx context.Context, userID, id string) (*Application, error)
	UpdateApplication(ctx context.Context, a Application) error
	ListApplications(ctx context.Context, userID string) ([]Application, error)
	InsertEvent(ctx context.Context, e Event) error
	ListEvents(ctx context.Context, userID string) ([]Event, error)
	InsertContact(ctx context.Context, c Contact) error
	ListContacts(ctx context.Context, userID string) ([]Contact, error)
	UpsertSkill(ctx context.Context, s Skill) error
	GetSkill(ctx context.Context, userID, id string) (*Skill, error)
	ListSkills(ctx context.Context, userID string) ([]Skill, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n Notification) error
	NotificationCountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListPendingNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkNotificationShown(ctx context.Context, userID, id string) error
}

// ProgressStore is everything the progression service needs.
type ProgressStore interface {
	GoalsStore
	QuestStore
	AchievementStore
	ActivityStore
	NotificationStore
}
