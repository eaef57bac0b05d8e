package progression_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jobtrail/jobtrail/internal/app/progression"
	"github.com/jobtrail/jobtrail/internal/domain"
)

// Wednesday.
var wed = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════════════════════
// Window Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestWeekWindow_StartsMonday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday", day(2026, 3, 2)},
		{"wednesday", wed},
		{"sunday night", time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := progression.WeekWindow(tt.now)
			if !w.Start.Equal(day(2026, 3, 2)) {
				t.Errorf("Start = %v, want 2026-03-02", w.Start)
			}
			if !w.End.Equal(day(2026, 3, 9)) {
				t.Errorf("End = %v, want 2026-03-09", w.End)
			}
		})
	}
}

func TestWindow_HalfOpen(t *testing.T) {
	w := progression.DayWindow(wed)
	if !w.Contains(day(2026, 3, 4)) {
		t.Error("window should contain its start")
	}
	if w.Contains(day(2026, 3, 5)) {
		t.Error("window should not contain its end")
	}
}

func TestMonthWindow_Previous(t *testing.T) {
	w := progression.MonthWindow(wed)
	if !w.Start.Equal(day(2026, 3, 1)) || !w.End.Equal(day(2026, 4, 1)) {
		t.Errorf("month = [%v, %v)", w.Start, w.End)
	}
	prev := w.Previous()
	if !prev.Start.Equal(day(2026, 2, 1)) || !prev.End.Equal(day(2026, 3, 1)) {
		t.Errorf("previous month = [%v, %v)", prev.Start, prev.End)
	}
}

func TestDayWindow_NonUTCLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	now := time.Date(2026, 3, 4, 20, 0, 0, 0, loc) // 04:00 UTC on the 5th
	w := progression.DayWindow(now)
	if w.Start.Day() != 4 || w.Start.Hour() != 0 {
		t.Errorf("Start = %v, want local midnight on the 4th", w.Start)
	}
}

func TestWeekWindow_ContainsEveryWeekday(t *testing.T) {
	locs := []*time.Location{time.UTC, time.FixedZone("UTC+9", 9*3600), time.FixedZone("UTC-5", -5*3600)}
	for _, loc := range locs {
		monday := time.Date(2026, 3, 2, 12, 0, 0, 0, loc)
		for i := 0; i < 7; i++ {
			now := monday.AddDate(0, 0, i)
			w := progression.WeekWindow(now)
			if !w.Contains(now) {
				t.Errorf("%s %s: [%v, %v) does not contain now", loc, now.Weekday(), w.Start, w.End)
			}
			if w.Start.Weekday() != time.Monday || w.Start.Hour() != 0 || w.Start.Location() != loc {
				t.Errorf("%s %s: Start = %v, want local Monday midnight", loc, now.Weekday(), w.Start)
			}
			if !w.End.Equal(w.Start.AddDate(0, 0, 7)) {
				t.Errorf("%s %s: End = %v, want Start+7d", loc, now.Weekday(), w.End)
			}
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{1250, 3},
		{-10, 1},
	}
	for _, tt := range tests {
		if got := progression.LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	if got := progression.XPToNextLevel(1250); got != 250 {
		t.Errorf("XPToNextLevel(1250) = %d, want 250", got)
	}
	if got := progression.LevelProgressPct(1250); got != 50 {
		t.Errorf("LevelProgressPct(1250) = %.1f, want 50", got)
	}
}

func TestAwardXP(t *testing.T) {
	res, err := progression.AwardXP(450, 100)
	if err != nil {
		t.Fatalf("AwardXP: %v", err)
	}
	if res.TotalXP != 550 || res.Level != 2 || !res.LeveledUp {
		t.Errorf("AwardXP(450, 100) = %+v", res)
	}

	res, _ = progression.AwardXP(550, 0)
	if res.LeveledUp {
		t.Error("zero award should not level up")
	}

	if _, err := progression.AwardXP(0, -1); !errors.Is(err, domain.ErrInvalidXP) {
		t.Errorf("negative award err = %v, want ErrInvalidXP", err)
	}
}

func TestLevelTitle(t *testing.T) {
	tests := []struct {
		mode  domain.Mode
		level int
		want  string
	}{
		{domain.ModeActiveSeeker, 1, "Explorer"},
		{domain.ModeActiveSeeker, 6, "Applicant"},
		{domain.ModeActiveSeeker, 100, "Closer"},
		{domain.ModeStealthSeeker, 11, "Strategist"},
	}
	for _, tt := range tests {
		got, err := progression.LevelTitle(tt.mode, tt.level)
		if err != nil || got != tt.want {
			t.Errorf("LevelTitle(%s, %d) = %q, %v; want %q", tt.mode, tt.level, got, err, tt.want)
		}
	}
	if _, err := progression.LevelTitle("nomad", 1); !errors.Is(err, domain.ErrInvalidMode) {
		t.Errorf("unknown mode err = %v, want ErrInvalidMode", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestRecordActivityDay(t *testing.T) {
	g := domain.DefaultUserGoals("u1", wed)

	g = progression.RecordActivityDay(g, wed)
	if g.CurrentStreak != 1 || g.LongestStreak != 1 {
		t.Fatalf("first day streak = %d/%d, want 1/1", g.CurrentStreak, g.LongestStreak)
	}

	g = progression.RecordActivityDay(g, wed.Add(3*time.Hour))
	if g.CurrentStreak != 1 {
		t.Errorf("same day streak = %d, want 1", g.CurrentStreak)
	}

	g = progression.RecordActivityDay(g, wed.AddDate(0, 0, 1))
	if g.CurrentStreak != 2 {
		t.Errorf("next day streak = %d, want 2", g.CurrentStreak)
	}

	g = progression.RecordActivityDay(g, wed.AddDate(0, 0, 4))
	if g.CurrentStreak != 1 {
		t.Errorf("after gap streak = %d, want 1", g.CurrentStreak)
	}
	if g.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", g.LongestStreak)
	}
}

func TestRecordActivityDay_EarlierDayIgnored(t *testing.T) {
	g := progression.RecordActivityDay(domain.DefaultUserGoals("u1", wed), wed)
	g = progression.RecordActivityDay(g, wed.AddDate(0, 0, -2))
	if g.CurrentStreak != 1 || !g.LastActivityDate.Equal(day(2026, 3, 4)) {
		t.Errorf("backdated activity changed the streak: %+v", g)
	}
}

func TestEffectiveStreak(t *testing.T) {
	g := progression.RecordActivityDay(domain.DefaultUserGoals("u1", wed), wed)
	g = progression.RecordActivityDay(g, wed.AddDate(0, 0, 1))

	if got := progression.EffectiveStreak(g, wed.AddDate(0, 0, 2)); got != 2 {
		t.Errorf("EffectiveStreak next day = %d, want 2", got)
	}
	if got := progression.EffectiveStreak(g, wed.AddDate(0, 0, 3)); got != 0 {
		t.Errorf("EffectiveStreak after a missed day = %d, want 0", got)
	}
	if got := progression.EffectiveStreak(domain.DefaultUserGoals("u2", wed), wed); got != 0 {
		t.Errorf("EffectiveStreak without activity = %d, want 0", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quest Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestGenerateTemplates(t *testing.T) {
	for _, mode := range domain.AllModes() {
		tmpls, err := progression.GenerateTemplates(mode, domain.Targets{})
		if err != nil {
			t.Fatalf("GenerateTemplates(%s): %v", mode, err)
		}
		if len(tmpls) == 0 {
			t.Errorf("%s has no quests", mode)
		}
		for _, q := range tmpls {
			if q.Target < 1 || q.XPReward <= 0 {
				t.Errorf("%s/%s target=%d xp=%d", mode, q.Key, q.Target, q.XPReward)
			}
			if mode == domain.ModeCareerInsurance && q.Type == domain.QuestDaily {
				t.Errorf("career_insurance got daily quest %s", q.Key)
			}
		}
	}

	if _, err := progression.GenerateTemplates("nomad", domain.Targets{}); !errors.Is(err, domain.ErrInvalidMode) {
		t.Errorf("err = %v, want ErrInvalidMode", err)
	}
}

func TestGenerateTemplates_UsesTargets(t *testing.T) {
	tmpls, _ := progression.GenerateTemplates(domain.ModeActiveSeeker, domain.Targets{Applications: 20})
	for _, q := range tmpls {
		switch q.Key {
		case "daily_apply":
			if q.Target != 4 {
				t.Errorf("daily_apply target = %d, want 4", q.Target)
			}
		case "weekly_apply":
			if q.Target != 20 {
				t.Errorf("weekly_apply target = %d, want 20", q.Target)
			}
		}
	}
}

func TestQuestExpiry(t *testing.T) {
	tests := []struct {
		typ  domain.QuestType
		want time.Time
	}{
		{domain.QuestDaily, day(2026, 3, 5)},
		{domain.QuestWeekly, day(2026, 3, 9)},
		{domain.QuestMonthly, day(2026, 4, 1)},
		{domain.QuestEpic, wed.AddDate(0, 3, 0)},
	}
	for _, tt := range tests {
		got, err := progression.QuestExpiry(tt.typ, wed)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("QuestExpiry(%s) = %v, %v; want %v", tt.typ, got, err, tt.want)
		}
	}
	if _, err := progression.QuestExpiry("hourly", wed); err == nil {
		t.Error("unknown quest type should fail")
	}
}

func TestPlanModeChange_KeepsEpicAndCompleted(t *testing.T) {
	existing := []domain.Quest{
		{ID: "open", TemplateKey: "weekly_network", Type: domain.QuestWeekly, ExpiresAt: day(2026, 3, 9)},
		{ID: "done", TemplateKey: "weekly_apply", Type: domain.QuestWeekly, IsCompleted: true, ExpiresAt: day(2026, 3, 9)},
		{ID: "epic", TemplateKey: "epic_offer", Type: domain.QuestEpic, ExpiresAt: day(2026, 6, 1)},
	}

	plan, err := progression.PlanModeChange("u1", existing, domain.ModeActiveSeeker, domain.Targets{}, wed)
	if err != nil {
		t.Fatalf("PlanModeChange: %v", err)
	}
	if len(plan.Delete) != 1 || plan.Delete[0] != "open" {
		t.Errorf("Delete = %v, want [open]", plan.Delete)
	}
	if len(plan.Create) != 6 {
		t.Errorf("Create = %d quests, want 6", len(plan.Create))
	}
	for _, q := range plan.Create {
		if q.TemplateKey == "weekly_apply" || q.TemplateKey == "epic_offer" {
			t.Errorf("created %s while a kept quest holds the window", q.TemplateKey)
		}
		if q.UserID != "u1" || q.ID == "" {
			t.Errorf("created quest missing identity: %+v", q)
		}
	}
}

func TestPlanRefresh_NewDay(t *testing.T) {
	first, err := progression.PlanRefresh("u1", nil, domain.ModeActiveSeeker, domain.Targets{}, wed)
	if err != nil {
		t.Fatalf("PlanRefresh: %v", err)
	}
	if len(first) != 8 {
		t.Fatalf("initial quests = %d, want 8", len(first))
	}

	again, _ := progression.PlanRefresh("u1", first, domain.ModeActiveSeeker, domain.Targets{}, wed)
	if len(again) != 0 {
		t.Errorf("same-day refresh created %d quests, want 0", len(again))
	}

	next, _ := progression.PlanRefresh("u1", first, domain.ModeActiveSeeker, domain.Targets{}, wed.AddDate(0, 0, 1))
	if len(next) != 2 {
		t.Errorf("next-day refresh created %d quests, want 2 dailies", len(next))
	}
	for _, q := range next {
		if q.Type != domain.QuestDaily {
			t.Errorf("next-day refresh created %s quest %s", q.Type, q.TemplateKey)
		}
	}
}

func TestApplyProgress(t *testing.T) {
	q := domain.Quest{ID: "q1", Target: 3, XPReward: 50, ExpiresAt: day(2026, 3, 9)}

	q, done, err := progression.ApplyProgress(q, 2, wed)
	if err != nil || done || q.CurrentProgress != 2 {
		t.Fatalf("progress 2: %+v done=%v err=%v", q, done, err)
	}

	q, done, _ = progression.ApplyProgress(q, 1, wed)
	if done || q.CurrentProgress != 2 {
		t.Errorf("progress went backwards to %d", q.CurrentProgress)
	}

	q, done, _ = progression.ApplyProgress(q, 10, wed)
	if !done || q.CurrentProgress != 3 || !q.IsCompleted || q.CompletedAt == nil {
		t.Errorf("completion: %+v done=%v", q, done)
	}

	_, done, _ = progression.ApplyProgress(q, 3, wed)
	if done {
		t.Error("completed quest reported completion twice")
	}
}

func TestApplyProgress_Errors(t *testing.T) {
	q := domain.Quest{ID: "q1", Target: 3, ExpiresAt: day(2026, 3, 5)}

	if _, _, err := progression.ApplyProgress(q, -1, wed); !errors.Is(err, domain.ErrInvalidProgress) {
		t.Errorf("negative progress err = %v, want ErrInvalidProgress", err)
	}
	if _, _, err := progression.ApplyProgress(q, 1, day(2026, 3, 5)); !errors.Is(err, domain.ErrQuestExpired) {
		t.Errorf("expired err = %v, want ErrQuestExpired", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestInitAchievements(t *testing.T) {
	changes, err := progression.InitAchievements("u1", domain.ModeActiveSeeker, nil)
	if err != nil {
		t.Fatalf("InitAchievements: %v", err)
	}
	if len(changes.Create) != 16 || len(changes.Remove) != 0 {
		t.Fatalf("create=%d remove=%d, want 16/0", len(changes.Create), len(changes.Remove))
	}

	rows := changes.Create
	for i := range rows {
		if rows[i].Key() == "applications_sent:bronze" {
			rows[i].Unlocked = true
		}
	}

	changes, _ = progression.InitAchievements("u1", domain.ModeCareerGrowth, rows)
	if len(changes.Create) != 12 {
		t.Errorf("Create = %d, want 12", len(changes.Create))
	}
	if len(changes.Remove) != 11 {
		t.Errorf("Remove = %d, want 11", len(changes.Remove))
	}
	for _, key := range changes.Remove {
		if key == "applications_sent:bronze" {
			t.Error("unlocked row scheduled for removal")
		}
		if key == "streak_keeper:bronze" {
			t.Error("row shared by both modes scheduled for removal")
		}
	}
}

func TestEvaluateAchievements(t *testing.T) {
	changes, _ := progression.InitAchievements("u1", domain.ModeActiveSeeker, nil)
	var rows []domain.Achievement
	for _, r := range changes.Create {
		if r.AchievementID == "streak_keeper" {
			rows = append(rows, r)
		}
	}

	changed, unlocked := progression.EvaluateAchievements(rows, domain.AchievementStats{domain.TriggerStreak: 7}, wed)
	if len(changed) != 4 {
		t.Errorf("changed = %d, want 4", len(changed))
	}
	if len(unlocked) != 2 {
		t.Fatalf("unlocked = %d, want 2 (bronze, silver)", len(unlocked))
	}
	for _, a := range unlocked {
		if a.UnlockedAt == nil || !a.UnlockedAt.Equal(wed) {
			t.Errorf("%s UnlockedAt = %v", a.Key(), a.UnlockedAt)
		}
	}

	changed, unlocked = progression.EvaluateAchievements(changed, domain.AchievementStats{domain.TriggerStreak: 2}, wed.AddDate(0, 0, 1))
	if len(changed) != 0 || len(unlocked) != 0 {
		t.Errorf("lower stat changed %d rows, unlocked %d", len(changed), len(unlocked))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Aggregation Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestWeekly(t *testing.T) {
	lastWeek := wed.AddDate(0, 0, -7)
	snap := domain.ActivitySnapshot{
		Applications: []domain.Application{
			{ID: "a1", Status: domain.StatusApplied, CreatedAt: wed},
			{ID: "a2", Status: domain.StatusSaved, CreatedAt: wed},
			{ID: "a3", Status: domain.StatusRejected, CreatedAt: lastWeek},
		},
		Events: []domain.Event{
			{ID: "e1", Type: domain.EventInterview, ScheduledAt: wed.AddDate(0, 0, 1)},
			{ID: "e2", Type: domain.EventNetworking, ScheduledAt: wed},
			{ID: "e3", Type: domain.EventInterview, ScheduledAt: wed.AddDate(0, 0, 7)},
		},
		Contacts: []domain.Contact{{ID: "c1", CreatedAt: wed}},
	}

	p, err := progression.Weekly(wed, snap, domain.Targets{})
	if err != nil {
		t.Fatalf("Weekly: %v", err)
	}
	if p.Applications != 1 || p.ApplicationsLastWeek != 1 {
		t.Errorf("applications = %d (last week %d), want 1 (1)", p.Applications, p.ApplicationsLastWeek)
	}
	if p.Interviews != 1 {
		t.Errorf("Interviews = %d, want 1", p.Interviews)
	}
	if p.Networking != 2 {
		t.Errorf("Networking = %d, want 2", p.Networking)
	}
	if p.ApplicationProgressPct != 10 || p.NetworkingProgressPct != 40 {
		t.Errorf("pct = %.0f/%.0f, want 10/40", p.ApplicationProgressPct, p.NetworkingProgressPct)
	}
}

func TestWeekly_MalformedTimestamp(t *testing.T) {
	snap := domain.ActivitySnapshot{Applications: []domain.Application{{ID: "bad", Status: domain.StatusApplied}}}
	if _, err := progression.Weekly(wed, snap, domain.Targets{}); !errors.Is(err, domain.ErrMalformedTimestamp) {
		t.Errorf("err = %v, want ErrMalformedTimestamp", err)
	}
}

func TestCount_Empty(t *testing.T) {
	w := progression.WeekWindow(wed)
	n, err := progression.Count[domain.Contact](nil, w, nil)
	if err != nil || n != 0 {
		t.Errorf("Count(nil) = %d, %v; want 0, nil", n, err)
	}
	n, err = progression.Count([]domain.Application{}, w, func(domain.Application) bool { return true })
	if err != nil || n != 0 {
		t.Errorf("Count(empty) = %d, %v; want 0, nil", n, err)
	}
}

func TestMonthly(t *testing.T) {
	snap := domain.ActivitySnapshot{
		Applications: []domain.Application{
			{ID: "a1", Status: domain.StatusApplied, CreatedAt: day(2026, 3, 1)},
			{ID: "a2", Status: domain.StatusApplied, CreatedAt: day(2026, 2, 28)},
			{ID: "a3", Status: domain.StatusApplied, CreatedAt: day(2026, 2, 1)},
		},
	}
	p, err := progression.Monthly(wed, snap)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if p.Applications != 1 || p.ApplicationsLastMonth != 2 {
		t.Errorf("applications = %d (last month %d), want 1 (2)", p.Applications, p.ApplicationsLastMonth)
	}
}
