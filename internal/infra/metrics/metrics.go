// Package metrics provides Prometheus metrics for jobtrail.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Progression ────────────────────────────────────────────────────────────

// XPAwarded tracks total experience points granted.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded for completed quests.",
})

// LevelUps tracks level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// QuestsCompleted tracks completed quests by cadence.
var QuestsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "quests_completed_total",
	Help:      "Total completed quests.",
}, []string{"type"})

// QuestsGenerated tracks quests created by mode setup or refresh.
var QuestsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "quests_generated_total",
	Help:      "Total quests generated.",
}, []string{"type"})

// AchievementsUnlocked tracks unlocked achievement tiers.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievement tiers unlocked.",
}, []string{"tier"})

// ModeChanges tracks mode selections by target mode.
var ModeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "mode_changes_total",
	Help:      "Total mode setups and changes.",
}, []string{"mode"})

// ─── Activity ───────────────────────────────────────────────────────────────

// ActivityRecorded tracks recorded activity by quest category.
var ActivityRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "activity_recorded_total",
	Help:      "Total activity records folded into progression.",
}, []string{"category"})

// NotificationsSuppressed tracks notifications dropped by policy.
var NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "notifications_suppressed_total",
	Help:      "Notifications dropped by the delivery policy.",
}, []string{"reason"})

// ─── Matching ───────────────────────────────────────────────────────────────

// MatchScores tracks the distribution of total match scores.
var MatchScores = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "jobtrail",
	Name:      "match_score",
	Help:      "Distribution of job match scores.",
	Buckets:   []float64{40, 50, 60, 70, 75, 80, 90, 100},
})

// ─── Storage ────────────────────────────────────────────────────────────────

// StoreErrors tracks failed persistence calls by operation.
var StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "store_errors_total",
	Help:      "Total persistence failures.",
}, []string{"op"})

// CacheLookups tracks snapshot cache hits and misses.
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobtrail",
	Name:      "cache_lookups_total",
	Help:      "Goals snapshot cache lookups.",
}, []string{"result"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "jobtrail",
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})
