package progression

import (
	"fmt"
	"time"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// ─── Achievement Catalog ────────────────────────────────────────────────────
// Targets are bronze, silver, gold, platinum and strictly ascending.

var (
	achApplicationsSent = domain.AchievementDef{ID: "applications_sent", Name: "Applications Sent", Trigger: domain.TriggerApplications, Targets: [4]int{10, 50, 100, 250}}
	achQuietApplicant   = domain.AchievementDef{ID: "quiet_applicant", Name: "Quiet Applicant", Trigger: domain.TriggerApplications, Targets: [4]int{5, 20, 50, 100}}
	achInterviewsLanded = domain.AchievementDef{ID: "interviews_landed", Name: "Interviews Landed", Trigger: domain.TriggerInterviews, Targets: [4]int{1, 5, 15, 30}}
	achNetworkBuilder   = domain.AchievementDef{ID: "network_builder", Name: "Network Builder", Trigger: domain.TriggerNetworking, Targets: [4]int{5, 25, 75, 150}}
	achStreakKeeper     = domain.AchievementDef{ID: "streak_keeper", Name: "Streak Keeper", Trigger: domain.TriggerStreak, Targets: [4]int{3, 7, 30, 90}}
	achQuestFinisher    = domain.AchievementDef{ID: "quest_finisher", Name: "Quest Finisher", Trigger: domain.TriggerQuestsCompleted, Targets: [4]int{5, 25, 100, 250}}
	achLevelClimber     = domain.AchievementDef{ID: "level_climber", Name: "Level Climber", Trigger: domain.TriggerLevel, Targets: [4]int{5, 10, 20, 40}}
	achSkillBuilder     = domain.AchievementDef{ID: "skill_builder", Name: "Skill Builder", Trigger: domain.TriggerSkillHours, Targets: [4]int{10, 50, 150, 500}}
)

// AchievementDefs returns the achievements tracked in mode.
func AchievementDefs(mode domain.Mode) ([]domain.AchievementDef, error) {
	switch mode {
	case domain.ModeActiveSeeker:
		return []domain.AchievementDef{achApplicationsSent, achInterviewsLanded, achStreakKeeper, achQuestFinisher}, nil
	case domain.ModeCareerGrowth:
		return []domain.AchievementDef{achSkillBuilder, achNetworkBuilder, achStreakKeeper, achLevelClimber}, nil
	case domain.ModeStealthSeeker:
		return []domain.AchievementDef{achQuietApplicant, achInterviewsLanded, achNetworkBuilder, achQuestFinisher}, nil
	case domain.ModeCareerInsurance:
		return []domain.AchievementDef{achNetworkBuilder, achSkillBuilder, achLevelClimber, achQuestFinisher}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
}

// AchievementChanges are the row mutations produced by a mode change.
type AchievementChanges struct {
	Create []domain.Achievement `json:"create"`
	Remove []string             `json:"remove"` // Achievement.Key values
}

// InitAchievements creates the missing tier rows for mode and removes locked
// rows that no longer belong to it. Unlocked rows are always kept.
func InitAchievements(userID string, mode domain.Mode, existing []domain.Achievement) (AchievementChanges, error) {
	defs, err := AchievementDefs(mode)
	if err != nil {
		return AchievementChanges{}, err
	}

	have := make(map[string]bool, len(existing))
	for _, a := range existing {
		have[a.Key()] = true
	}

	var changes AchievementChanges
	want := make(map[string]bool)
	for _, def := range defs {
		for i, tier := range domain.Tiers() {
			row := domain.Achievement{
				UserID:        userID,
				AchievementID: def.ID,
				Trigger:       def.Trigger,
				Tier:          tier,
				Target:        def.Targets[i],
			}
			want[row.Key()] = true
			if !have[row.Key()] {
				changes.Create = append(changes.Create, row)
			}
		}
	}

	for _, a := range existing {
		if !a.Unlocked && !want[a.Key()] {
			changes.Remove = append(changes.Remove, a.Key())
		}
	}
	return changes, nil
}

// EvaluateAchievements raises row progress to the current stats and unlocks
// tiers whose target is reached. Progress never decreases; rows already
// unlocked keep their original UnlockedAt. It returns the rows that changed
// and, separately, the rows unlocked by this call.
func EvaluateAchievements(rows []domain.Achievement, stats domain.AchievementStats, now time.Time) (changed, unlocked []domain.Achievement) {
	for _, row := range rows {
		value, ok := stats[row.Trigger]
		if !ok {
			continue
		}

		dirty := false
		if value > row.CurrentProgress {
			row.CurrentProgress = value
			dirty = true
		}
		if !row.Unlocked && row.CurrentProgress >= row.Target {
			row.Unlocked = true
			at := now
			row.UnlockedAt = &at
			unlocked = append(unlocked, row)
			dirty = true
		}
		if dirty {
			changed = append(changed, row)
		}
	}
	return changed, unlocked
}
