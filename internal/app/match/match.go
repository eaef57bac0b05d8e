// Package match scores a job record against a user's job preferences.
//
// Each of five factors gets a 0–100 sub-score from a fixed rule table and a
// weight. The total is the weighted mean, rounded and clamped to [40, 100].
// Missing preference data scores a neutral 75 so a score can always be shown.
package match

import (
	"math"
	"strings"

	"github.com/jobtrail/jobtrail/internal/domain"
)

const (
	neutralScore = 75
	minTotal     = 40
	maxTotal     = 100
)

// DefaultWeights apply when preferences carry no weights, per factor.
var DefaultWeights = domain.MatchWeights{
	Location:  25,
	Salary:    25,
	RoleType:  20,
	Industry:  15,
	WorkStyle: 15,
}

// Score compares job against prefs. A nil prefs scores 75 on every factor.
func Score(job domain.Job, prefs *domain.JobPreferences) domain.MatchResult {
	w := weightsFor(prefs)
	breakdown := []domain.FactorScore{
		{Factor: domain.FactorLocation, Score: locationScore(job, prefs), Weight: w.Location},
		{Factor: domain.FactorSalary, Score: salaryScore(job, prefs), Weight: w.Salary},
		{Factor: domain.FactorRoleType, Score: roleTypeScore(job, prefs), Weight: w.RoleType},
		{Factor: domain.FactorIndustry, Score: industryScore(job, prefs), Weight: w.Industry},
		{Factor: domain.FactorWorkStyle, Score: workStyleScore(job, prefs), Weight: w.WorkStyle},
	}

	var sum, weights float64
	for _, f := range breakdown {
		sum += float64(f.Score) * f.Weight
		weights += f.Weight
	}

	total := neutralScore
	if weights > 0 {
		total = int(math.Round(sum / weights))
	}
	total = min(max(total, minTotal), maxTotal)

	return domain.MatchResult{Breakdown: breakdown, TotalScore: total}
}

// weightsFor fills non-positive or missing weights from DefaultWeights.
func weightsFor(prefs *domain.JobPreferences) domain.MatchWeights {
	if prefs == nil || prefs.Weights == nil {
		return DefaultWeights
	}
	w := *prefs.Weights
	pick := func(v, def float64) float64 {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v
		}
		return def
	}
	return domain.MatchWeights{
		Location:  pick(w.Location, DefaultWeights.Location),
		Salary:    pick(w.Salary, DefaultWeights.Salary),
		RoleType:  pick(w.RoleType, DefaultWeights.RoleType),
		Industry:  pick(w.Industry, DefaultWeights.Industry),
		WorkStyle: pick(w.WorkStyle, DefaultWeights.WorkStyle),
	}
}

// ─── Factor Rules ───────────────────────────────────────────────────────────

func locationScore(job domain.Job, prefs *domain.JobPreferences) int {
	if prefs == nil {
		return neutralScore
	}
	locations := normalized(prefs.Locations)
	if len(locations) == 0 {
		return neutralScore
	}

	remote := isRemoteJob(job)
	jobLoc := strings.ToLower(strings.TrimSpace(job.Location))
	for _, p := range locations {
		switch {
		case p == "anywhere":
			return 100
		case p == "remote" && remote:
			return 100
		case jobLoc != "" && strings.Contains(jobLoc, p):
			return 100
		}
	}

	if remote && workStyle(prefs.RemotePreference) == "flexible" {
		return 80
	}
	return 40
}

func salaryScore(job domain.Job, prefs *domain.JobPreferences) int {
	if prefs == nil || (prefs.SalaryMin == nil && prefs.SalaryMax == nil) {
		return neutralScore
	}

	var salary int
	switch {
	case job.SalaryMax != nil:
		salary = *job.SalaryMax
	case job.SalaryMin != nil:
		salary = *job.SalaryMin
	default:
		return neutralScore
	}

	lo := 0.0
	if prefs.SalaryMin != nil {
		lo = float64(*prefs.SalaryMin)
	}
	hi := math.Inf(1)
	if prefs.SalaryMax != nil {
		hi = float64(*prefs.SalaryMax)
	}

	s := float64(salary)
	switch {
	case s >= lo && s <= hi:
		return 100
	case s >= 0.9*lo:
		return 80
	case s >= 0.8*lo:
		return 60
	}
	return 40
}

func roleTypeScore(job domain.Job, prefs *domain.JobPreferences) int {
	if prefs == nil {
		return neutralScore
	}
	return listScore(job.RoleType, prefs.RoleTypes, prefs.CustomRoleTypes)
}

func industryScore(job domain.Job, prefs *domain.JobPreferences) int {
	if prefs == nil {
		return neutralScore
	}
	return listScore(job.Industry, prefs.Industries, prefs.CustomIndustries)
}

// listScore matches value against the union of the lists by
// case-insensitive substring in either direction.
func listScore(value string, lists ...[]string) int {
	var prefs []string
	for _, l := range lists {
		prefs = append(prefs, normalized(l)...)
	}
	if len(prefs) == 0 {
		return neutralScore
	}

	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 50
	}
	for _, p := range prefs {
		if strings.Contains(v, p) || strings.Contains(p, v) {
			return 100
		}
	}
	return 50
}

func workStyleScore(job domain.Job, prefs *domain.JobPreferences) int {
	if prefs == nil {
		return neutralScore
	}
	pref := workStyle(prefs.RemotePreference)
	switch pref {
	case "":
		return neutralScore
	case "flexible":
		return 100
	}

	js := workStyle(job.WorkStyle)
	if js == "" && job.IsRemote {
		js = "remote"
	}
	if js == pref {
		return 100
	}
	return 50
}

// workStyle canonicalizes remote / hybrid / onsite / flexible spellings.
func workStyle(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote", "fully remote", "remote-only":
		return "remote"
	case "hybrid":
		return "hybrid"
	case "onsite", "on-site", "on site", "in-office", "office":
		return "onsite"
	case "flexible", "any":
		return "flexible"
	case "":
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func isRemoteJob(job domain.Job) bool {
	return job.IsRemote ||
		workStyle(job.WorkStyle) == "remote" ||
		strings.Contains(strings.ToLower(job.Location), "remote")
}

func normalized(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
