package progression

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// epicHorizon is how long an epic quest stays open.
const epicHorizon = 3 // months

// GenerateTemplates returns the quest table for mode, parameterized by the
// user's weekly targets. career_insurance never receives daily quests.
func GenerateTemplates(mode domain.Mode, targets domain.Targets) ([]domain.QuestTemplate, error) {
	t := targets.Normalize()

	var table []domain.QuestTemplate
	switch mode {
	case domain.ModeActiveSeeker:
		table = activeSeekerQuests(t)
	case domain.ModeCareerGrowth:
		table = careerGrowthQuests(t)
	case domain.ModeStealthSeeker:
		table = stealthSeekerQuests(t)
	case domain.ModeCareerInsurance:
		table = careerInsuranceQuests(t)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	return filterCadence(mode, table), nil
}

// filterCadence drops daily quests for career_insurance.
func filterCadence(mode domain.Mode, table []domain.QuestTemplate) []domain.QuestTemplate {
	if mode != domain.ModeCareerInsurance {
		return table
	}
	out := make([]domain.QuestTemplate, 0, len(table))
	for _, tmpl := range table {
		if tmpl.Type == domain.QuestDaily {
			continue
		}
		out = append(out, tmpl)
	}
	return out
}

// ─── Mode Tables ────────────────────────────────────────────────────────────

func activeSeekerQuests(t domain.Targets) []domain.QuestTemplate {
	daily := perDay(t.Applications)
	return []domain.QuestTemplate{
		tmpl("daily_apply", domain.QuestDaily, domain.CategoryApplication, daily, 25, "Submit %d applications"),
		tmpl("daily_network", domain.QuestDaily, domain.CategoryNetworking, 1, 15, "Reach out to %d contact"),
		tmpl("weekly_apply", domain.QuestWeekly, domain.CategoryApplication, t.Applications, 100, "Submit %d applications this week"),
		tmpl("weekly_network", domain.QuestWeekly, domain.CategoryNetworking, t.Networking, 75, "Connect with %d people this week"),
		tmpl("weekly_interview", domain.QuestWeekly, domain.CategoryInterview, 1, 100, "Schedule %d interview this week"),
		tmpl("monthly_apply", domain.QuestMonthly, domain.CategoryApplication, t.Applications*4, 300, "Submit %d applications this month"),
		tmpl("monthly_interview", domain.QuestMonthly, domain.CategoryInterview, 3, 250, "Land %d interviews this month"),
		tmpl("epic_offer", domain.QuestEpic, domain.CategoryOffer, 1, 1000, "Receive %d offer"),
	}
}

func careerGrowthQuests(t domain.Targets) []domain.QuestTemplate {
	return []domain.QuestTemplate{
		tmpl("daily_skill", domain.QuestDaily, domain.CategorySkill, 1, 20, "Practice a skill for %d hour"),
		tmpl("weekly_skill", domain.QuestWeekly, domain.CategorySkill, t.SkillHours, 100, "Log %d skill hours this week"),
		tmpl("weekly_network", domain.QuestWeekly, domain.CategoryNetworking, t.Networking, 75, "Connect with %d people this week"),
		tmpl("monthly_skill", domain.QuestMonthly, domain.CategorySkill, t.SkillHours*4, 300, "Log %d skill hours this month"),
		tmpl("monthly_network", domain.QuestMonthly, domain.CategoryNetworking, t.Networking*4, 250, "Connect with %d people this month"),
		tmpl("epic_skill", domain.QuestEpic, domain.CategorySkill, 100, 1000, "Log %d skill hours"),
	}
}

func stealthSeekerQuests(t domain.Targets) []domain.QuestTemplate {
	apps := max(1, t.Applications/2)
	return []domain.QuestTemplate{
		tmpl("daily_research", domain.QuestDaily, domain.CategoryResearch, 1, 15, "Research %d company"),
		tmpl("weekly_apply", domain.QuestWeekly, domain.CategoryApplication, apps, 75, "Submit %d applications this week"),
		tmpl("weekly_network", domain.QuestWeekly, domain.CategoryNetworking, max(1, t.Networking/2), 60, "Connect with %d people this week"),
		tmpl("monthly_apply", domain.QuestMonthly, domain.CategoryApplication, apps*4, 200, "Submit %d applications this month"),
		tmpl("epic_offer", domain.QuestEpic, domain.CategoryOffer, 1, 1000, "Receive %d offer"),
	}
}

func careerInsuranceQuests(t domain.Targets) []domain.QuestTemplate {
	return []domain.QuestTemplate{
		tmpl("daily_research", domain.QuestDaily, domain.CategoryResearch, 1, 10, "Read up on %d industry topic"),
		tmpl("weekly_network", domain.QuestWeekly, domain.CategoryNetworking, max(1, t.Networking/2), 50, "Connect with %d people this week"),
		tmpl("weekly_skill", domain.QuestWeekly, domain.CategorySkill, t.SkillHours, 50, "Log %d skill hours this week"),
		tmpl("monthly_network", domain.QuestMonthly, domain.CategoryNetworking, t.Networking*2, 150, "Connect with %d people this month"),
		tmpl("monthly_skill", domain.QuestMonthly, domain.CategorySkill, t.SkillHours*4, 200, "Log %d skill hours this month"),
		tmpl("epic_network", domain.QuestEpic, domain.CategoryNetworking, 50, 750, "Grow your network by %d contacts"),
	}
}

func tmpl(key string, typ domain.QuestType, cat domain.QuestCategory, target, xp int, title string) domain.QuestTemplate {
	target = max(target, 1)
	return domain.QuestTemplate{
		Key:      key,
		Type:     typ,
		Category: cat,
		Title:    fmt.Sprintf(title, target),
		Target:   target,
		XPReward: xp,
	}
}

// perDay spreads a weekly target over five working days.
func perDay(weekly int) int {
	return max(1, (weekly+4)/5)
}

// ─── Expiry ─────────────────────────────────────────────────────────────────

// QuestExpiry maps a quest type to its deadline: end of day, end of the
// Monday-start week, end of the calendar month, or the epic horizon.
func QuestExpiry(typ domain.QuestType, now time.Time) (time.Time, error) {
	switch typ {
	case domain.QuestDaily:
		return DayWindow(now).End, nil
	case domain.QuestWeekly:
		return WeekWindow(now).End, nil
	case domain.QuestMonthly:
		return MonthWindow(now).End, nil
	case domain.QuestEpic:
		return now.AddDate(0, epicHorizon, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: unknown quest type %q", domain.ErrInvalidInput, typ)
}

// NewQuests instantiates templates for userID with expiry computed from now.
func NewQuests(userID string, templates []domain.QuestTemplate, now time.Time) ([]domain.Quest, error) {
	quests := make([]domain.Quest, 0, len(templates))
	for _, t := range templates {
		expiry, err := QuestExpiry(t.Type, now)
		if err != nil {
			return nil, err
		}
		quests = append(quests, domain.Quest{
			ID:          uuid.NewString(),
			UserID:      userID,
			TemplateKey: t.Key,
			Title:       t.Title,
			Description: t.Description,
			Type:        t.Type,
			Category:    t.Category,
			Target:      t.Target,
			XPReward:    t.XPReward,
			StartsAt:    now,
			ExpiresAt:   expiry,
		})
	}
	return quests, nil
}

// ─── Regeneration ───────────────────────────────────────────────────────────

// QuestPlan is the set of store mutations that brings a user's quests in
// line with their mode.
type QuestPlan struct {
	Delete []string       `json:"delete"`
	Create []domain.Quest `json:"create"`
}

// PlanModeChange deletes every incomplete non-epic quest and generates the
// new mode's quests. Epic and completed quests are kept as history; a kept
// quest still inside its window blocks a new quest with the same key.
func PlanModeChange(userID string, existing []domain.Quest, mode domain.Mode, targets domain.Targets, now time.Time) (QuestPlan, error) {
	var plan QuestPlan
	var kept []domain.Quest
	for _, q := range existing {
		if !q.IsCompleted && q.Type != domain.QuestEpic {
			plan.Delete = append(plan.Delete, q.ID)
			continue
		}
		kept = append(kept, q)
	}

	create, err := PlanRefresh(userID, kept, mode, targets, now)
	if err != nil {
		return QuestPlan{}, err
	}
	plan.Create = create
	return plan, nil
}

// PlanRefresh returns quests for every template of mode that has no quest
// open in the current window.
func PlanRefresh(userID string, existing []domain.Quest, mode domain.Mode, targets domain.Targets, now time.Time) ([]domain.Quest, error) {
	templates, err := GenerateTemplates(mode, targets)
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool, len(existing))
	for _, q := range existing {
		if q.TemplateKey != "" && !q.IsExpiredAt(now) {
			held[q.TemplateKey] = true
		}
	}

	missing := make([]domain.QuestTemplate, 0, len(templates))
	for _, t := range templates {
		if !held[t.Key] {
			missing = append(missing, t)
		}
	}
	return NewQuests(userID, missing, now)
}

// ─── Progress ───────────────────────────────────────────────────────────────

// ApplyProgress moves a quest to progress (capped at target, never
// backwards). The bool is true only on the call that completes the quest;
// updates to an already-completed quest are no-ops.
func ApplyProgress(q domain.Quest, progress int, now time.Time) (domain.Quest, bool, error) {
	if progress < 0 {
		return q, false, fmt.Errorf("%w: got %d", domain.ErrInvalidProgress, progress)
	}
	if q.IsCompleted {
		return q, false, nil
	}
	if q.IsExpiredAt(now) {
		return q, false, fmt.Errorf("%w: %s", domain.ErrQuestExpired, q.ID)
	}

	progress = min(progress, q.Target)
	if progress > q.CurrentProgress {
		q.CurrentProgress = progress
	}

	if q.CurrentProgress >= q.Target {
		q.IsCompleted = true
		completedAt := now
		q.CompletedAt = &completedAt
		return q, true, nil
	}
	return q, false, nil
}

// AdvanceQuest adds delta to the quest's current progress.
func AdvanceQuest(q domain.Quest, delta int, now time.Time) (domain.Quest, bool, error) {
	return ApplyProgress(q, q.CurrentProgress+max(delta, 0), now)
}
