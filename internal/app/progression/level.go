package progression

import (
	"fmt"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// XPResult is the ledger state after an award.
type XPResult struct {
	TotalXP   int  `json:"total_xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// LevelForXP returns floor(xp / XPPerLevel) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/domain.XPPerLevel + 1
}

// XPForLevel returns the cumulative XP at which level starts.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * domain.XPPerLevel
}

// XPToNextLevel returns XP remaining until the next level.
func XPToNextLevel(xp int) int {
	return XPForLevel(LevelForXP(xp)+1) - max(xp, 0)
}

// LevelProgressPct returns progress toward the next level (0.0–100.0).
func LevelProgressPct(xp int) float64 {
	into := max(xp, 0) - XPForLevel(LevelForXP(xp))
	return float64(into) / float64(domain.XPPerLevel) * 100.0
}

// AwardXP adds amount to totalXP and derives the new level.
// Callers award once per quest completion transition.
func AwardXP(totalXP, amount int) (XPResult, error) {
	if amount < 0 {
		return XPResult{}, fmt.Errorf("%w: got %d", domain.ErrInvalidXP, amount)
	}
	totalXP = max(totalXP, 0)
	newTotal := totalXP + amount
	newLevel := LevelForXP(newTotal)
	return XPResult{
		TotalXP:   newTotal,
		Level:     newLevel,
		LeveledUp: newLevel > LevelForXP(totalXP),
	}, nil
}

// applyXP awards amount to the goals snapshot.
func applyXP(g domain.UserGoals, amount int) (domain.UserGoals, XPResult, error) {
	res, err := AwardXP(g.TotalXP, amount)
	if err != nil {
		return g, res, err
	}
	g.TotalXP = res.TotalXP
	g.CurrentLevel = res.Level
	return g, res, nil
}

// ─── Level Titles ───────────────────────────────────────────────────────────

// levelsPerTitle is how many levels share one title.
const levelsPerTitle = 5

// LevelTitle returns the mode-specific title for level.
func LevelTitle(mode domain.Mode, level int) (string, error) {
	var titles []string
	switch mode {
	case domain.ModeActiveSeeker:
		titles = []string{"Explorer", "Applicant", "Contender", "Finalist", "Closer"}
	case domain.ModeCareerGrowth:
		titles = []string{"Learner", "Practitioner", "Specialist", "Expert", "Leader"}
	case domain.ModeStealthSeeker:
		titles = []string{"Observer", "Scout", "Strategist", "Operator", "Insider"}
	case domain.ModeCareerInsurance:
		titles = []string{"Prepared", "Connected", "Resilient", "Sought After", "Indispensable"}
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	idx := (max(level, 1) - 1) / levelsPerTitle
	if idx >= len(titles) {
		idx = len(titles) - 1
	}
	return titles[idx], nil
}
