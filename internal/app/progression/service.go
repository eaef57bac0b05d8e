package progression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/app/smartstep"
	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/infra/metrics"
)

// Service feeds store snapshots to the progression rules and persists the
// snapshots they return. It holds no per-user state between calls.
type Service struct {
	store    domain.ProgressStore
	notifier *Notifier
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

// NewService creates a progression service over store.
func NewService(store domain.ProgressStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: time.Now, loc: time.Local}
}

// SetClock replaces the time source (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetLocation sets the timezone that defines calendar days and weeks.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// SetNotifier enables progression notifications.
func (s *Service) SetNotifier(n *Notifier) { s.notifier = n }

// Outcome is the result of a mutation: the new ledger snapshot plus the
// events it produced.
type Outcome struct {
	Goals      domain.UserGoals     `json:"goals"`
	LevelTitle string               `json:"level_title"`
	XPAwarded  int                  `json:"xp_awarded"`
	LeveledUp  bool                 `json:"leveled_up"`
	Completed  []domain.Quest       `json:"completed_quests,omitempty"`
	Unlocked   []domain.Achievement `json:"unlocked_achievements,omitempty"`
}

// Summary is the read view of a user's ledger.
type Summary struct {
	Goals            domain.UserGoals `json:"goals"`
	LevelTitle       string           `json:"level_title"`
	XPToNextLevel    int              `json:"xp_to_next_level"`
	LevelProgressPct float64          `json:"level_progress_pct"`
	EffectiveStreak  int              `json:"effective_streak"`
	Persisted        bool             `json:"persisted"`
}

// ModeChange reports what a mode setup or switch did.
type ModeChange struct {
	Summary  Summary              `json:"summary"`
	Created  []domain.Quest       `json:"created_quests"`
	Deleted  int                  `json:"deleted_quests"`
	Unlocked []domain.Achievement `json:"unlocked_achievements,omitempty"`
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Summary returns the user's ledger; first-time users get the defaults.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	goals, exists, err := s.loadGoals(ctx, userID, s.clock())
	if err != nil {
		return Summary{}, err
	}
	sum, err := s.summarize(goals)
	sum.Persisted = exists
	return sum, err
}

// SetMode selects mode for the user, optionally updating weekly targets
// (zero fields keep the current value). Incomplete non-epic quests are
// replaced by the new mode's set and achievement rows are reinitialized.
// Repeating the stored mode and targets keeps the current quests.
func (s *Service) SetMode(ctx context.Context, userID string, mode domain.Mode, targets *domain.Targets) (ModeChange, error) {
	if !mode.Valid() {
		return ModeChange{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	if targets != nil && (targets.Applications < 0 || targets.Networking < 0 || targets.SkillHours < 0) {
		return ModeChange{}, domain.ErrInvalidTarget
	}

	now := s.clock()
	goals, exists, err := s.loadGoals(ctx, userID, now)
	if err != nil {
		return ModeChange{}, err
	}
	before := goals

	goals.Mode = mode
	if targets != nil {
		if targets.Applications > 0 {
			goals.WeeklyApplicationTarget = targets.Applications
		}
		if targets.Networking > 0 {
			goals.WeeklyNetworkingTarget = targets.Networking
		}
		if targets.SkillHours > 0 {
			goals.WeeklySkillHours = targets.SkillHours
		}
	}
	if exists && goals.Mode == before.Mode && goals.Targets() == before.Targets() {
		return s.keepMode(ctx, goals, now)
	}
	return s.applyMode(ctx, goals, now)
}

// keepMode leaves quests and achievements alone when nothing changed, only
// filling in quests for periods that have none yet.
func (s *Service) keepMode(ctx context.Context, goals domain.UserGoals, now time.Time) (ModeChange, error) {
	created, err := s.fillPeriods(ctx, goals, now)
	if err != nil {
		return ModeChange{}, err
	}
	sum, err := s.summarize(goals)
	if err != nil {
		return ModeChange{}, err
	}
	sum.Persisted = true
	return ModeChange{Summary: sum, Created: created}, nil
}

func (s *Service) applyMode(ctx context.Context, goals domain.UserGoals, now time.Time) (ModeChange, error) {
	userID := goals.UserID
	goals.UpdatedAt = now
	if err := s.store.SaveGoals(ctx, goals); err != nil {
		return ModeChange{}, s.storeErr("save_goals", err)
	}

	existing, err := s.store.ListQuests(ctx, userID)
	if err != nil {
		return ModeChange{}, s.storeErr("list_quests", err)
	}
	plan, err := PlanModeChange(userID, existing, goals.Mode, goals.Targets(), now)
	if err != nil {
		return ModeChange{}, err
	}
	if len(plan.Delete) > 0 {
		if err := s.store.DeleteQuests(ctx, userID, plan.Delete); err != nil {
			return ModeChange{}, s.storeErr("delete_quests", err)
		}
	}
	if len(plan.Create) > 0 {
		if err := s.store.InsertQuests(ctx, plan.Create); err != nil {
			return ModeChange{}, s.storeErr("insert_quests", err)
		}
	}
	for _, q := range plan.Create {
		metrics.QuestsGenerated.WithLabelValues(string(q.Type)).Inc()
	}

	unlocked, err := s.syncAchievements(ctx, goals, now)
	if err != nil {
		return ModeChange{}, err
	}

	metrics.ModeChanges.WithLabelValues(string(goals.Mode)).Inc()
	s.log.Info("mode applied",
		zap.String("user_id", userID),
		zap.String("mode", string(goals.Mode)),
		zap.Int("quests_created", len(plan.Create)),
		zap.Int("quests_deleted", len(plan.Delete)),
	)

	sum, err := s.summarize(goals)
	if err != nil {
		return ModeChange{}, err
	}
	sum.Persisted = true
	s.notify(ctx, Outcome{Goals: goals, Unlocked: unlocked}, now)
	return ModeChange{Summary: sum, Created: plan.Create, Deleted: len(plan.Delete), Unlocked: unlocked}, nil
}

// ─── Quests ─────────────────────────────────────────────────────────────────

// Quests returns the user's quests after the current periods are filled in.
func (s *Service) Quests(ctx context.Context, userID string) ([]domain.Quest, error) {
	_, created, err := s.setup(ctx, userID, s.clock())
	if err != nil {
		return nil, err
	}
	quests, err := s.store.ListQuests(ctx, userID)
	if err != nil {
		return nil, s.storeErr("list_quests", err)
	}
	s.log.Debug("quests listed", zap.String("user_id", userID), zap.Int("created", len(created)))
	return quests, nil
}

// RefreshQuests creates any periodic quest missing for the current day,
// week or month and returns only the new ones. A first-time user is set up
// with the default mode.
func (s *Service) RefreshQuests(ctx context.Context, userID string) ([]domain.Quest, error) {
	_, created, err := s.setup(ctx, userID, s.clock())
	return created, err
}

// fillPeriods inserts quests for every template with no quest open at now.
func (s *Service) fillPeriods(ctx context.Context, goals domain.UserGoals, now time.Time) ([]domain.Quest, error) {
	existing, err := s.store.ListQuests(ctx, goals.UserID)
	if err != nil {
		return nil, s.storeErr("list_quests", err)
	}
	created, err := PlanRefresh(goals.UserID, existing, goals.Mode, goals.Targets(), now)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, nil
	}
	if err := s.store.InsertQuests(ctx, created); err != nil {
		return nil, s.storeErr("insert_quests", err)
	}
	for _, q := range created {
		metrics.QuestsGenerated.WithLabelValues(string(q.Type)).Inc()
	}
	return created, nil
}

// UpdateQuestProgress sets a quest's progress. XP is awarded only on the
// call that completes the quest.
func (s *Service) UpdateQuestProgress(ctx context.Context, userID, questID string, progress int) (Outcome, error) {
	now := s.clock()
	q, err := s.store.GetQuest(ctx, userID, questID)
	if err != nil {
		return Outcome{}, s.storeErr("get_quest", err)
	}
	if q == nil {
		return Outcome{}, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}

	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	goals, moved, err := s.advance(ctx, goals, *q, progress, now, &out)
	if err != nil {
		return Outcome{}, err
	}
	if !moved {
		return s.outcome(goals)
	}
	goals = RecordActivityDay(goals, now)
	return s.commit(ctx, goals, out, now)
}

// CleanupExpired deletes expired, incomplete, non-epic quests.
func (s *Service) CleanupExpired(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteExpiredQuests(ctx, userID, s.clock())
	if err != nil {
		return 0, s.storeErr("delete_expired_quests", err)
	}
	return n, nil
}

// advance applies progress to one quest and awards XP on completion.
// moved reports whether the quest changed.
func (s *Service) advance(ctx context.Context, goals domain.UserGoals, q domain.Quest, progress int, now time.Time, out *Outcome) (_ domain.UserGoals, moved bool, err error) {
	updated, completed, err := ApplyProgress(q, progress, now)
	if err != nil {
		return goals, false, err
	}
	if updated.CurrentProgress == q.CurrentProgress && !completed {
		return goals, false, nil
	}
	if err := s.store.UpdateQuest(ctx, updated); err != nil {
		return goals, false, s.storeErr("update_quest", err)
	}
	if !completed {
		return goals, true, nil
	}

	goals, res, err := applyXP(goals, updated.XPReward)
	if err != nil {
		return goals, false, err
	}
	out.Completed = append(out.Completed, updated)
	out.XPAwarded += updated.XPReward
	out.LeveledUp = out.LeveledUp || res.LeveledUp

	metrics.QuestsCompleted.WithLabelValues(string(updated.Type)).Inc()
	metrics.XPAwarded.Add(float64(updated.XPReward))
	if res.LeveledUp {
		metrics.LevelUps.Inc()
	}
	s.log.Info("quest completed",
		zap.String("user_id", goals.UserID),
		zap.String("quest_id", updated.ID),
		zap.Int("xp", updated.XPReward),
		zap.Int("level", res.Level),
	)
	return goals, true, nil
}

// ─── Activity ───────────────────────────────────────────────────────────────

// RecordActivity advances every open quest of category by amount.
func (s *Service) RecordActivity(ctx context.Context, userID string, category domain.QuestCategory, amount int) (Outcome, error) {
	if amount <= 0 {
		return Outcome{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseQuestCategory(string(category)); err != nil {
		return Outcome{}, err
	}
	now := s.clock()
	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if goals, err = s.progress(ctx, goals, category, amount, now, &out); err != nil {
		return Outcome{}, err
	}
	goals = RecordActivityDay(goals, now)
	return s.commit(ctx, goals, out, now)
}

// AddApplication stores a new application. Anything past Saved counts as a
// submitted application.
func (s *Service) AddApplication(ctx context.Context, userID string, app domain.Application) (domain.Application, Outcome, error) {
	if strings.TrimSpace(app.Company) == "" && strings.TrimSpace(app.Role) == "" {
		return domain.Application{}, Outcome{}, fmt.Errorf("%w: company or role is required", domain.ErrInvalidInput)
	}
	status := domain.StatusSaved
	if app.Status != "" {
		st, err := domain.ParseApplicationStatus(string(app.Status))
		if err != nil {
			return domain.Application{}, Outcome{}, err
		}
		status = st
	}

	now := s.clock()
	app.ID = uuid.NewString()
	app.UserID = userID
	app.Status = status
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	switch {
	case status == domain.StatusSaved:
		// DateApplied marks the one submission that counts.
		app.DateApplied = nil
	case app.DateApplied == nil:
		applied := now
		app.DateApplied = &applied
	}

	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return domain.Application{}, Outcome{}, err
	}
	if err := s.store.InsertApplication(ctx, app); err != nil {
		return domain.Application{}, Outcome{}, s.storeErr("insert_application", err)
	}

	var out Outcome
	if status != domain.StatusSaved {
		if goals, err = s.progress(ctx, goals, domain.CategoryApplication, 1, now, &out); err != nil {
			return domain.Application{}, Outcome{}, err
		}
	}
	if isOffer(status) {
		if goals, err = s.progress(ctx, goals, domain.CategoryOffer, 1, now, &out); err != nil {
			return domain.Application{}, Outcome{}, err
		}
	}
	goals = RecordActivityDay(goals, now)
	out, err = s.commit(ctx, goals, out, now)
	return app, out, err
}

// UpdateApplicationStatus moves an application through the pipeline.
func (s *Service) UpdateApplicationStatus(ctx context.Context, userID, appID, status string) (domain.Application, Outcome, error) {
	st, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return domain.Application{}, Outcome{}, err
	}
	app, err := s.store.GetApplication(ctx, userID, appID)
	if err != nil {
		return domain.Application{}, Outcome{}, s.storeErr("get_application", err)
	}
	if app == nil {
		return domain.Application{}, Outcome{}, fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, appID)
	}

	now := s.clock()
	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return domain.Application{}, Outcome{}, err
	}
	if app.Status == st {
		out, err := s.outcome(goals)
		return *app, out, err
	}

	prev := app.Status
	app.Status = st
	app.UpdatedAt = now
	submitted := st != domain.StatusSaved && app.DateApplied == nil
	if submitted {
		applied := now
		app.DateApplied = &applied
	}
	if err := s.store.UpdateApplication(ctx, *app); err != nil {
		return domain.Application{}, Outcome{}, s.storeErr("update_application", err)
	}

	var out Outcome
	if submitted {
		if goals, err = s.progress(ctx, goals, domain.CategoryApplication, 1, now, &out); err != nil {
			return domain.Application{}, Outcome{}, err
		}
	}
	if isOffer(st) && !isOffer(prev) {
		if goals, err = s.progress(ctx, goals, domain.CategoryOffer, 1, now, &out); err != nil {
			return domain.Application{}, Outcome{}, err
		}
	}
	goals = RecordActivityDay(goals, now)
	out, err = s.commit(ctx, goals, out, now)
	return *app, out, err
}

// AddEvent stores an event. Interviews and networking events advance the
// matching quests.
func (s *Service) AddEvent(ctx context.Context, userID string, e domain.Event) (domain.Event, Outcome, error) {
	if e.ScheduledAt.IsZero() {
		return domain.Event{}, Outcome{}, fmt.Errorf("%w: scheduled_at is required", domain.ErrInvalidInput)
	}
	typ, err := domain.ParseEventType(string(e.Type))
	if err != nil {
		return domain.Event{}, Outcome{}, err
	}
	if e.ApplicationID != "" {
		app, err := s.store.GetApplication(ctx, userID, e.ApplicationID)
		if err != nil {
			return domain.Event{}, Outcome{}, s.storeErr("get_application", err)
		}
		if app == nil {
			return domain.Event{}, Outcome{}, fmt.Errorf("%w: %s", domain.ErrApplicationNotFound, e.ApplicationID)
		}
	}

	now := s.clock()
	e.ID = uuid.NewString()
	e.UserID = userID
	e.Type = typ
	e.CreatedAt = now

	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return domain.Event{}, Outcome{}, err
	}
	if err := s.store.InsertEvent(ctx, e); err != nil {
		return domain.Event{}, Outcome{}, s.storeErr("insert_event", err)
	}

	var out Outcome
	switch typ {
	case domain.EventInterview:
		goals, err = s.progress(ctx, goals, domain.CategoryInterview, 1, now, &out)
	case domain.EventNetworking:
		goals, err = s.progress(ctx, goals, domain.CategoryNetworking, 1, now, &out)
	}
	if err != nil {
		return domain.Event{}, Outcome{}, err
	}
	goals = RecordActivityDay(goals, now)
	out, err = s.commit(ctx, goals, out, now)
	return e, out, err
}

// AddContact stores a networking contact.
func (s *Service) AddContact(ctx context.Context, userID string, c domain.Contact) (domain.Contact, Outcome, error) {
	if strings.TrimSpace(c.Name) == "" {
		return domain.Contact{}, Outcome{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	now := s.clock()
	c.ID = uuid.NewString()
	c.UserID = userID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}

	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return domain.Contact{}, Outcome{}, err
	}
	if err := s.store.InsertContact(ctx, c); err != nil {
		return domain.Contact{}, Outcome{}, s.storeErr("insert_contact", err)
	}

	var out Outcome
	if goals, err = s.progress(ctx, goals, domain.CategoryNetworking, 1, now, &out); err != nil {
		return domain.Contact{}, Outcome{}, err
	}
	goals = RecordActivityDay(goals, now)
	out, err = s.commit(ctx, goals, out, now)
	return c, out, err
}

// AddSkill creates a skill to log hours against.
func (s *Service) AddSkill(ctx context.Context, userID string, sk domain.Skill) (domain.Skill, error) {
	if strings.TrimSpace(sk.Name) == "" {
		return domain.Skill{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if sk.TargetHours < 0 {
		return domain.Skill{}, fmt.Errorf("%w: target_hours must not be negative", domain.ErrInvalidInput)
	}

	now := s.clock()
	sk.ID = uuid.NewString()
	sk.UserID = userID
	sk.HoursLogged = 0
	sk.CreatedAt = now
	sk.UpdatedAt = now
	if err := s.store.UpsertSkill(ctx, sk); err != nil {
		return domain.Skill{}, s.storeErr("upsert_skill", err)
	}
	return sk, nil
}

// Skills lists the user's skills.
func (s *Service) Skills(ctx context.Context, userID string) ([]domain.Skill, error) {
	skills, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, s.storeErr("list_skills", err)
	}
	return skills, nil
}

// LogSkillHours adds hours to an existing skill. Unknown skills fail with
// ErrSkillNotFound.
func (s *Service) LogSkillHours(ctx context.Context, userID, skillID string, hours int) (domain.Skill, Outcome, error) {
	if hours <= 0 {
		return domain.Skill{}, Outcome{}, fmt.Errorf("%w: hours must be positive", domain.ErrInvalidInput)
	}
	sk, err := s.store.GetSkill(ctx, userID, skillID)
	if err != nil {
		return domain.Skill{}, Outcome{}, s.storeErr("get_skill", err)
	}
	if sk == nil {
		return domain.Skill{}, Outcome{}, fmt.Errorf("%w: %s", domain.ErrSkillNotFound, skillID)
	}

	now := s.clock()
	goals, err := s.ensureSetup(ctx, userID, now)
	if err != nil {
		return domain.Skill{}, Outcome{}, err
	}

	sk.HoursLogged += hours
	sk.UpdatedAt = now
	if err := s.store.UpsertSkill(ctx, *sk); err != nil {
		return domain.Skill{}, Outcome{}, s.storeErr("upsert_skill", err)
	}

	var out Outcome
	if goals, err = s.progress(ctx, goals, domain.CategorySkill, hours, now, &out); err != nil {
		return domain.Skill{}, Outcome{}, err
	}
	goals = RecordActivityDay(goals, now)
	out, err = s.commit(ctx, goals, out, now)
	return *sk, out, err
}

// progress advances every open quest of category by amount.
func (s *Service) progress(ctx context.Context, goals domain.UserGoals, category domain.QuestCategory, amount int, now time.Time, out *Outcome) (domain.UserGoals, error) {
	metrics.ActivityRecorded.WithLabelValues(string(category)).Inc()

	quests, err := s.store.ListQuests(ctx, goals.UserID)
	if err != nil {
		return goals, s.storeErr("list_quests", err)
	}
	for _, q := range quests {
		if q.Category != category || q.IsCompleted || q.IsExpiredAt(now) {
			continue
		}
		if goals, _, err = s.advance(ctx, goals, q, q.CurrentProgress+amount, now, out); err != nil {
			return goals, err
		}
	}
	return goals, nil
}

// ─── Derived Views ──────────────────────────────────────────────────────────

// WeeklyProgress counts this week's activity against the weekly targets.
func (s *Service) WeeklyProgress(ctx context.Context, userID string) (domain.WeeklyProgress, error) {
	now := s.clock()
	goals, _, err := s.loadGoals(ctx, userID, now)
	if err != nil {
		return domain.WeeklyProgress{}, err
	}
	snap, err := s.activity(ctx, userID)
	if err != nil {
		return domain.WeeklyProgress{}, err
	}
	return Weekly(now, snap, goals.Targets())
}

// MonthlyProgress counts this month's activity.
func (s *Service) MonthlyProgress(ctx context.Context, userID string) (domain.MonthlyProgress, error) {
	snap, err := s.activity(ctx, userID)
	if err != nil {
		return domain.MonthlyProgress{}, err
	}
	return Monthly(s.clock(), snap)
}

// SmartSteps recommends the next actions from current applications and events.
func (s *Service) SmartSteps(ctx context.Context, userID string) ([]domain.Suggestion, error) {
	snap, err := s.activity(ctx, userID)
	if err != nil {
		return nil, err
	}
	return smartstep.Recommend(snap.Applications, snap.Events, s.clock()), nil
}

// Achievements lists the user's achievement rows.
func (s *Service) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	rows, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, s.storeErr("list_achievements", err)
	}
	return rows, nil
}

// Notifications lists unshown notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	notifs, err := s.store.ListPendingNotifications(ctx, userID, limit)
	if err != nil {
		return nil, s.storeErr("list_notifications", err)
	}
	return notifs, nil
}

// MarkNotificationShown marks one notification as shown.
func (s *Service) MarkNotificationShown(ctx context.Context, userID, id string) error {
	err := s.store.MarkNotificationShown(ctx, userID, id)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return err
	}
	if err != nil {
		return s.storeErr("mark_notification_shown", err)
	}
	return nil
}

// ─── Internals ──────────────────────────────────────────────────────────────

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

// loadGoals returns the stored ledger or the first-time defaults.
func (s *Service) loadGoals(ctx context.Context, userID string, now time.Time) (domain.UserGoals, bool, error) {
	g, err := s.store.GetGoals(ctx, userID)
	if err != nil {
		return domain.UserGoals{}, false, s.storeErr("get_goals", err)
	}
	if g == nil {
		return domain.DefaultUserGoals(userID, now), false, nil
	}
	return *g, true, nil
}

// ensureSetup readies the user for a mutation at now: a first-time user
// gets the default mode, and every user gets quests for the current day,
// week and month before any activity is counted.
func (s *Service) ensureSetup(ctx context.Context, userID string, now time.Time) (domain.UserGoals, error) {
	goals, _, err := s.setup(ctx, userID, now)
	return goals, err
}

func (s *Service) setup(ctx context.Context, userID string, now time.Time) (domain.UserGoals, []domain.Quest, error) {
	goals, exists, err := s.loadGoals(ctx, userID, now)
	if err != nil {
		return domain.UserGoals{}, nil, err
	}
	if !exists {
		change, err := s.applyMode(ctx, goals, now)
		if err != nil {
			return domain.UserGoals{}, nil, err
		}
		return goals, change.Created, nil
	}
	created, err := s.fillPeriods(ctx, goals, now)
	if err != nil {
		return domain.UserGoals{}, nil, err
	}
	return goals, created, nil
}

// commit persists goals, evaluates achievements and emits notifications.
func (s *Service) commit(ctx context.Context, goals domain.UserGoals, out Outcome, now time.Time) (Outcome, error) {
	goals.UpdatedAt = now
	if err := s.store.SaveGoals(ctx, goals); err != nil {
		return Outcome{}, s.storeErr("save_goals", err)
	}

	unlocked, err := s.evaluate(ctx, goals, now)
	if err != nil {
		return Outcome{}, err
	}
	out.Unlocked = unlocked
	out.Goals = goals
	if out.LevelTitle, err = LevelTitle(goals.Mode, goals.CurrentLevel); err != nil {
		return Outcome{}, err
	}

	s.notify(ctx, out, now)
	return out, nil
}

func (s *Service) outcome(goals domain.UserGoals) (Outcome, error) {
	title, err := LevelTitle(goals.Mode, goals.CurrentLevel)
	return Outcome{Goals: goals, LevelTitle: title}, err
}

func (s *Service) notify(ctx context.Context, out Outcome, now time.Time) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOutcome(ctx, out.Goals.UserID, out, now); err != nil {
		s.log.Warn("notification failed", zap.String("user_id", out.Goals.UserID), zap.Error(err))
	}
}

func (s *Service) summarize(goals domain.UserGoals) (Summary, error) {
	title, err := LevelTitle(goals.Mode, goals.CurrentLevel)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Goals:            goals,
		LevelTitle:       title,
		XPToNextLevel:    XPToNextLevel(goals.TotalXP),
		LevelProgressPct: LevelProgressPct(goals.TotalXP),
		EffectiveStreak:  EffectiveStreak(goals, s.clock()),
	}, nil
}

// syncAchievements reinitializes rows for the goals' mode, then evaluates.
func (s *Service) syncAchievements(ctx context.Context, goals domain.UserGoals, now time.Time) ([]domain.Achievement, error) {
	rows, err := s.store.ListAchievements(ctx, goals.UserID)
	if err != nil {
		return nil, s.storeErr("list_achievements", err)
	}
	changes, err := InitAchievements(goals.UserID, goals.Mode, rows)
	if err != nil {
		return nil, err
	}
	if len(changes.Remove) > 0 {
		if err := s.store.DeleteAchievements(ctx, goals.UserID, changes.Remove); err != nil {
			return nil, s.storeErr("delete_achievements", err)
		}
	}
	if len(changes.Create) > 0 {
		if err := s.store.UpsertAchievements(ctx, changes.Create); err != nil {
			return nil, s.storeErr("upsert_achievements", err)
		}
	}
	return s.evaluate(ctx, goals, now)
}

// evaluate raises achievement rows to the user's current stats.
func (s *Service) evaluate(ctx context.Context, goals domain.UserGoals, now time.Time) ([]domain.Achievement, error) {
	rows, err := s.store.ListAchievements(ctx, goals.UserID)
	if err != nil {
		return nil, s.storeErr("list_achievements", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	stats, err := s.stats(ctx, goals)
	if err != nil {
		return nil, err
	}

	changed, unlocked := EvaluateAchievements(rows, stats, now)
	if len(changed) > 0 {
		if err := s.store.UpsertAchievements(ctx, changed); err != nil {
			return nil, s.storeErr("upsert_achievements", err)
		}
	}
	for _, a := range unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(string(a.Tier)).Inc()
		s.log.Info("achievement unlocked",
			zap.String("user_id", goals.UserID),
			zap.String("achievement", a.AchievementID),
			zap.String("tier", string(a.Tier)),
		)
	}
	return unlocked, nil
}

// stats derives achievement trigger values from the stored records.
func (s *Service) stats(ctx context.Context, goals domain.UserGoals) (domain.AchievementStats, error) {
	snap, err := s.activity(ctx, goals.UserID)
	if err != nil {
		return nil, err
	}
	quests, err := s.store.ListQuests(ctx, goals.UserID)
	if err != nil {
		return nil, s.storeErr("list_quests", err)
	}

	stats := domain.AchievementStats{
		domain.TriggerStreak: goals.LongestStreak,
		domain.TriggerLevel:  goals.CurrentLevel,
	}
	for _, a := range snap.Applications {
		if isSubmitted(a) {
			stats[domain.TriggerApplications]++
		}
	}
	for _, e := range snap.Events {
		switch e.Type {
		case domain.EventInterview:
			stats[domain.TriggerInterviews]++
		case domain.EventNetworking:
			stats[domain.TriggerNetworking]++
		}
	}
	stats[domain.TriggerNetworking] += len(snap.Contacts)
	for _, q := range quests {
		if q.IsCompleted {
			stats[domain.TriggerQuestsCompleted]++
		}
	}
	for _, sk := range snap.Skills {
		stats[domain.TriggerSkillHours] += sk.HoursLogged
	}
	return stats, nil
}

// activity loads the user's activity records.
func (s *Service) activity(ctx context.Context, userID string) (domain.ActivitySnapshot, error) {
	var snap domain.ActivitySnapshot
	var err error
	if snap.Applications, err = s.store.ListApplications(ctx, userID); err != nil {
		return snap, s.storeErr("list_applications", err)
	}
	if snap.Events, err = s.store.ListEvents(ctx, userID); err != nil {
		return snap, s.storeErr("list_events", err)
	}
	if snap.Contacts, err = s.store.ListContacts(ctx, userID); err != nil {
		return snap, s.storeErr("list_contacts", err)
	}
	if snap.Skills, err = s.store.ListSkills(ctx, userID); err != nil {
		return snap, s.storeErr("list_skills", err)
	}
	return snap, nil
}

func (s *Service) storeErr(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	s.log.Error("store call failed", zap.String("op", op), zap.Error(err))
	return &domain.StorageError{Op: op, Err: err}
}

func isOffer(st domain.ApplicationStatus) bool {
	return st == domain.StatusOffer || st == domain.StatusAccepted
}
