package progression_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobtrail/jobtrail/internal/app/progression"
	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testClock is a settable time source.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newService(t *testing.T) (*progression.Service, *sqlite.DB, *testClock) {
	t.Helper()
	db := testDB(t)
	clock := &testClock{now: wed}
	svc := progression.NewService(db, nil)
	svc.SetClock(clock.Now)
	svc.SetLocation(time.UTC)
	return svc, db, clock
}

func questByKey(t *testing.T, quests []domain.Quest, key string) domain.Quest {
	t.Helper()
	for _, q := range quests {
		if q.TemplateKey == key {
			return q
		}
	}
	t.Fatalf("no quest with key %q", key)
	return domain.Quest{}
}

// openQuest returns the quest for key whose period contains now.
func openQuest(t *testing.T, quests []domain.Quest, key string, now time.Time) domain.Quest {
	t.Helper()
	for _, q := range quests {
		if q.TemplateKey == key && !q.IsExpiredAt(now) {
			return q
		}
	}
	t.Fatalf("no open quest with key %q at %v", key, now)
	return domain.Quest{}
}

// ═══════════════════════════════════════════════════════════════════════════
// Setup
// ═══════════════════════════════════════════════════════════════════════════

func TestService_FirstTimeUser(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Persisted || sum.Goals.Mode != domain.ModeActiveSeeker || sum.LevelTitle != "Explorer" {
		t.Errorf("summary = %+v", sum)
	}

	created, err := svc.RefreshQuests(ctx, "u1")
	if err != nil {
		t.Fatalf("RefreshQuests: %v", err)
	}
	if len(created) != 8 {
		t.Errorf("created = %d quests, want 8", len(created))
	}
	g, _ := db.GetGoals(ctx, "u1")
	if g == nil || g.Mode != domain.ModeActiveSeeker {
		t.Errorf("goals after setup = %+v", g)
	}

	again, _ := svc.RefreshQuests(ctx, "u1")
	if len(again) != 0 {
		t.Errorf("second refresh created %d quests, want 0", len(again))
	}
}

func TestService_SetModeValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.SetMode(ctx, "u1", "nomad", nil); !errors.Is(err, domain.ErrInvalidMode) {
		t.Errorf("unknown mode err = %v, want ErrInvalidMode", err)
	}
	_, err := svc.SetMode(ctx, "u1", domain.ModeCareerGrowth, &domain.Targets{SkillHours: -2})
	if !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("negative target err = %v, want ErrInvalidTarget", err)
	}
}

func TestService_SetModeReplacesQuests(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Quests(ctx, "u1"); err != nil {
		t.Fatalf("Quests: %v", err)
	}
	change, err := svc.SetMode(ctx, "u1", domain.ModeCareerInsurance, &domain.Targets{Networking: 8})
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if change.Deleted != 7 {
		t.Errorf("Deleted = %d, want 7 (every non-epic quest)", change.Deleted)
	}
	if change.Summary.Goals.WeeklyNetworkingTarget != 8 {
		t.Errorf("WeeklyNetworkingTarget = %d, want 8", change.Summary.Goals.WeeklyNetworkingTarget)
	}

	quests, _ := svc.Quests(ctx, "u1")
	for _, q := range quests {
		if q.Type == domain.QuestDaily {
			t.Errorf("career_insurance kept daily quest %s", q.TemplateKey)
		}
	}
	// The active_seeker epic survives as history.
	questByKey(t, quests, "epic_offer")
}

func TestService_SetSameModeKeepsProgress(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	svc.Quests(ctx, "u1")
	if _, _, err := svc.AddContact(ctx, "u1", domain.Contact{Name: "Ada"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	before, _ := svc.Quests(ctx, "u1")
	weekly := questByKey(t, before, "weekly_network")

	change, err := svc.SetMode(ctx, "u1", domain.ModeActiveSeeker, nil)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if change.Deleted != 0 || len(change.Created) != 0 {
		t.Errorf("same mode deleted %d, created %d; want 0, 0", change.Deleted, len(change.Created))
	}

	after, _ := svc.Quests(ctx, "u1")
	if len(after) != len(before) {
		t.Errorf("quests = %d, want %d", len(after), len(before))
	}
	got := questByKey(t, after, "weekly_network")
	if got.ID != weekly.ID || got.CurrentProgress != 1 {
		t.Errorf("weekly_network = %s at %d, want %s at 1", got.ID, got.CurrentProgress, weekly.ID)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quest Completion
// ═══════════════════════════════════════════════════════════════════════════

func TestService_QuestXPAwardedOnce(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	quests, _ := svc.Quests(ctx, "u1")
	q := questByKey(t, quests, "weekly_interview")

	out, err := svc.UpdateQuestProgress(ctx, "u1", q.ID, 1)
	if err != nil {
		t.Fatalf("UpdateQuestProgress: %v", err)
	}
	if out.XPAwarded != 100 || out.Goals.TotalXP != 100 {
		t.Errorf("XPAwarded = %d, TotalXP = %d; want 100, 100", out.XPAwarded, out.Goals.TotalXP)
	}

	out, err = svc.UpdateQuestProgress(ctx, "u1", q.ID, 5)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if out.XPAwarded != 0 || out.Goals.TotalXP != 100 {
		t.Errorf("repeat XPAwarded = %d, TotalXP = %d; want 0, 100", out.XPAwarded, out.Goals.TotalXP)
	}
}

func TestService_NoOpProgressKeepsStreak(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	quests, _ := svc.Quests(ctx, "u1")
	q := questByKey(t, quests, "weekly_interview")
	if _, err := svc.UpdateQuestProgress(ctx, "u1", q.ID, 1); err != nil {
		t.Fatalf("UpdateQuestProgress: %v", err)
	}

	clock.advanceDays(1)
	out, err := svc.UpdateQuestProgress(ctx, "u1", q.ID, 1)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if out.Goals.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", out.Goals.CurrentStreak)
	}
	last := out.Goals.LastActivityDate
	if last == nil || !last.Equal(day(2026, 3, 4)) {
		t.Errorf("LastActivityDate = %v, want 2026-03-04", last)
	}
}

func TestService_QuestErrors(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	if _, err := svc.UpdateQuestProgress(ctx, "u1", "nope", 1); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("missing quest err = %v, want ErrQuestNotFound", err)
	}

	quests, _ := svc.Quests(ctx, "u1")
	daily := questByKey(t, quests, "daily_network")

	if _, err := svc.UpdateQuestProgress(ctx, "other", daily.ID, 1); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("other user's quest err = %v, want ErrQuestNotFound", err)
	}

	clock.advanceDays(1)
	if _, err := svc.UpdateQuestProgress(ctx, "u1", daily.ID, 1); !errors.Is(err, domain.ErrQuestExpired) {
		t.Errorf("expired quest err = %v, want ErrQuestExpired", err)
	}

	n, err := svc.CleanupExpired(ctx, "u1")
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("cleaned up %d quests, want 2 dailies", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Activity
// ═══════════════════════════════════════════════════════════════════════════

func TestService_ApplicationsAdvanceQuests(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	_, out, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Acme", Status: domain.StatusApplied})
	if err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	if out.XPAwarded != 0 {
		t.Errorf("first application XP = %d, want 0", out.XPAwarded)
	}

	_, out, _ = svc.AddApplication(ctx, "u1", domain.Application{Company: "Globex", Status: domain.StatusApplied})
	if out.XPAwarded != 25 {
		t.Errorf("second application XP = %d, want 25 (daily_apply)", out.XPAwarded)
	}

	quests, _ := db.ListQuests(ctx, "u1")
	if got := questByKey(t, quests, "weekly_apply").CurrentProgress; got != 2 {
		t.Errorf("weekly_apply progress = %d, want 2", got)
	}
	if out.Goals.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", out.Goals.CurrentStreak)
	}
}

func TestService_SavedApplicationCountsOnSubmit(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	app, _, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Acme", Role: "SRE"})
	if err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	if app.Status != domain.StatusSaved || app.DateApplied != nil {
		t.Errorf("saved application = %+v", app)
	}

	app, _, err = svc.UpdateApplicationStatus(ctx, "u1", app.ID, "applied")
	if err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}
	if app.DateApplied == nil {
		t.Error("DateApplied not set on submit")
	}

	quests, _ := db.ListQuests(ctx, "u1")
	if got := questByKey(t, quests, "weekly_apply").CurrentProgress; got != 1 {
		t.Errorf("weekly_apply progress = %d, want 1", got)
	}

	if _, _, err := svc.UpdateApplicationStatus(ctx, "u1", app.ID, "ghosted"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad status err = %v, want ErrInvalidInput", err)
	}
	if _, _, err := svc.UpdateApplicationStatus(ctx, "u1", "missing", "Offer"); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("missing app err = %v, want ErrApplicationNotFound", err)
	}
}

func TestService_ResubmitCountsOnce(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()

	app, _, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Acme", Status: domain.StatusApplied})
	if err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	first := *app.DateApplied
	for _, st := range []string{"saved", "applied"} {
		if app, _, err = svc.UpdateApplicationStatus(ctx, "u1", app.ID, st); err != nil {
			t.Fatalf("UpdateApplicationStatus(%s): %v", st, err)
		}
	}
	if app.DateApplied == nil || !app.DateApplied.Equal(first) {
		t.Errorf("DateApplied = %v, want %v", app.DateApplied, first)
	}

	quests, _ := db.ListQuests(ctx, "u1")
	if got := questByKey(t, quests, "weekly_apply").CurrentProgress; got != 1 {
		t.Errorf("weekly_apply progress = %d, want 1", got)
	}
}

func TestService_SubmissionCountsInWeekApplied(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	app, _, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Acme", Role: "SRE"})
	if err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	clock.advanceDays(7)
	if _, _, err := svc.UpdateApplicationStatus(ctx, "u1", app.ID, "applied"); err != nil {
		t.Fatalf("UpdateApplicationStatus: %v", err)
	}

	w, err := svc.WeeklyProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("WeeklyProgress: %v", err)
	}
	if w.Applications != 1 || w.ApplicationsLastWeek != 0 {
		t.Errorf("applications = %d (last week %d), want 1 (0)", w.Applications, w.ApplicationsLastWeek)
	}
}

func TestService_ActivityFillsNewPeriods(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	if _, err := svc.Quests(ctx, "u1"); err != nil {
		t.Fatalf("Quests: %v", err)
	}

	clock.advanceDays(1)
	if _, _, err := svc.AddContact(ctx, "u1", domain.Contact{Name: "Ada"}); err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	quests, _ := svc.Quests(ctx, "u1")
	if got := openQuest(t, quests, "daily_network", clock.now).CurrentProgress; got != 1 {
		t.Errorf("today's daily_network progress = %d, want 1", got)
	}

	// Thursday to the following Monday.
	clock.advanceDays(4)
	if _, _, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Acme", Status: domain.StatusApplied}); err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	quests, _ = svc.Quests(ctx, "u1")
	weekly := openQuest(t, quests, "weekly_apply", clock.now)
	if weekly.CurrentProgress != 1 {
		t.Errorf("new week's weekly_apply progress = %d, want 1", weekly.CurrentProgress)
	}
	if weekly.ExpiresAt.Before(day(2026, 3, 16)) {
		t.Errorf("weekly_apply expires at %v, want the week of 2026-03-09", weekly.ExpiresAt)
	}
}

func TestService_OfferLevelsUp(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, out, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Initech", Status: domain.StatusOffer})
	if err != nil {
		t.Fatalf("AddApplication: %v", err)
	}
	if out.XPAwarded != 1000 {
		t.Errorf("XPAwarded = %d, want 1000 (epic_offer)", out.XPAwarded)
	}
	if !out.LeveledUp || out.Goals.CurrentLevel != 3 {
		t.Errorf("LeveledUp = %v, level = %d; want true, 3", out.LeveledUp, out.Goals.CurrentLevel)
	}
}

func TestService_StreakAcrossDays(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	record := func() progression.Outcome {
		t.Helper()
		out, err := svc.RecordActivity(ctx, "u1", domain.CategoryResearch, 1)
		if err != nil {
			t.Fatalf("RecordActivity: %v", err)
		}
		return out
	}

	record()
	clock.advanceDays(1)
	out := record()
	if out.Goals.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", out.Goals.CurrentStreak)
	}

	clock.advanceDays(2)
	out = record()
	if out.Goals.CurrentStreak != 1 || out.Goals.LongestStreak != 2 {
		t.Errorf("streak = %d/%d, want 1/2", out.Goals.CurrentStreak, out.Goals.LongestStreak)
	}

	clock.advanceDays(2)
	sum, _ := svc.Summary(ctx, "u1")
	if sum.EffectiveStreak != 0 {
		t.Errorf("EffectiveStreak = %d, want 0", sum.EffectiveStreak)
	}

	if _, err := svc.RecordActivity(ctx, "u1", domain.CategoryResearch, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero amount err = %v, want ErrInvalidInput", err)
	}
}

func TestService_Skills(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.SetMode(ctx, "u1", domain.ModeCareerGrowth, nil); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	sk, err := svc.AddSkill(ctx, "u1", domain.Skill{Name: "Rust", TargetHours: 20})
	if err != nil {
		t.Fatalf("AddSkill: %v", err)
	}
	sk, out, err := svc.LogSkillHours(ctx, "u1", sk.ID, 2)
	if err != nil {
		t.Fatalf("LogSkillHours: %v", err)
	}
	if sk.HoursLogged != 2 {
		t.Errorf("HoursLogged = %d, want 2", sk.HoursLogged)
	}
	if out.XPAwarded != 20 {
		t.Errorf("XPAwarded = %d, want 20 (daily_skill)", out.XPAwarded)
	}

	if _, _, err := svc.LogSkillHours(ctx, "u1", "nope", 1); !errors.Is(err, domain.ErrSkillNotFound) {
		t.Errorf("unknown skill err = %v, want ErrSkillNotFound", err)
	}
	if _, _, err := svc.LogSkillHours(ctx, "u1", sk.ID, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero hours err = %v, want ErrInvalidInput", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievements & Notifications
// ═══════════════════════════════════════════════════════════════════════════

func TestService_UnlockedAchievementSurvivesModeChange(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, out, err := svc.AddEvent(ctx, "u1", domain.Event{Type: domain.EventInterview, Title: "Phone screen", ScheduledAt: wed.Add(time.Hour)})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if len(out.Unlocked) != 1 || out.Unlocked[0].Key() != "interviews_landed:bronze" {
		t.Fatalf("Unlocked = %+v, want interviews_landed:bronze", out.Unlocked)
	}

	if _, err := svc.SetMode(ctx, "u1", domain.ModeCareerGrowth, nil); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	rows, _ := svc.Achievements(ctx, "u1")
	keys := make(map[string]domain.Achievement, len(rows))
	for _, a := range rows {
		keys[a.Key()] = a
	}
	if a, ok := keys["interviews_landed:bronze"]; !ok || !a.Unlocked {
		t.Error("unlocked interviews_landed:bronze was removed")
	}
	if _, ok := keys["interviews_landed:silver"]; ok {
		t.Error("locked interviews_landed:silver should be removed")
	}
	if _, ok := keys["skill_builder:bronze"]; !ok {
		t.Error("career_growth achievements not created")
	}
}

func TestService_EventRequiresKnownApplication(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, _, err := svc.AddEvent(ctx, "u1", domain.Event{ApplicationID: "ghost", Type: domain.EventInterview, ScheduledAt: wed})
	if !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("err = %v, want ErrApplicationNotFound", err)
	}
	_, _, err = svc.AddEvent(ctx, "u1", domain.Event{Type: domain.EventInterview})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing time err = %v, want ErrInvalidInput", err)
	}
}

func TestService_NotificationsRecorded(t *testing.T) {
	svc, db, _ := newService(t)
	svc.SetNotifier(progression.NewNotifier(db, nil))
	ctx := context.Background()

	if _, _, err := svc.AddApplication(ctx, "u1", domain.Application{Company: "Initech", Status: domain.StatusOffer}); err != nil {
		t.Fatalf("AddApplication: %v", err)
	}

	notifs, err := svc.Notifications(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	types := make(map[domain.NotificationType]int)
	for _, n := range notifs {
		types[n.Type]++
	}
	if types[domain.NotifyLevelUp] != 1 || types[domain.NotifyQuestComplete] != 1 {
		t.Errorf("notification types = %v", types)
	}

	if err := svc.MarkNotificationShown(ctx, "u1", notifs[0].ID); err != nil {
		t.Fatalf("MarkNotificationShown: %v", err)
	}
	if err := svc.MarkNotificationShown(ctx, "u1", "nope"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestService_StorageFailure(t *testing.T) {
	svc, db, _ := newService(t)
	db.Close()

	_, err := svc.Summary(context.Background(), "u1")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	var se *domain.StorageError
	if !errors.As(err, &se) || se.Op != "get_goals" {
		t.Errorf("StorageError = %+v, want op get_goals", se)
	}
}

func TestService_DerivedViews(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	steps, err := svc.SmartSteps(ctx, "u1")
	if err != nil || len(steps) != 1 || steps[0].Type != domain.SuggestApply {
		t.Errorf("SmartSteps = %+v, %v", steps, err)
	}

	svc.AddContact(ctx, "u1", domain.Contact{Name: "Ada"})
	w, err := svc.WeeklyProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("WeeklyProgress: %v", err)
	}
	if w.Networking != 1 {
		t.Errorf("weekly Networking = %d, want 1", w.Networking)
	}
	m, err := svc.MonthlyProgress(ctx, "u1")
	if err != nil || m.Networking != 1 {
		t.Errorf("MonthlyProgress = %+v, %v", m, err)
	}
}
