package domain

// ─── Match Scoring Types ────────────────────────────────────────────────────

// Job is the subset of a job record the match scorer reads.
type Job struct {
	Title     string `json:"title" yaml:"title"`
	Company   string `json:"company,omitempty" yaml:"company,omitempty"`
	Location  string `json:"location" yaml:"location"`
	SalaryMin *int   `json:"salary_min,omitempty" yaml:"salary_min,omitempty"`
	SalaryMax *int   `json:"salary_max,omitempty" yaml:"salary_max,omitempty"`
	RoleType  string `json:"role_type" yaml:"role_type"`
	Industry  string `json:"industry" yaml:"industry"`
	WorkStyle string `json:"work_style" yaml:"work_style"` // remote, hybrid, onsite
	IsRemote  bool   `json:"is_remote" yaml:"is_remote"`
}

// MatchWeights are per-factor weights; they need not sum to 100.
type MatchWeights struct {
	Location  float64 `json:"location" yaml:"location"`
	Salary    float64 `json:"salary" yaml:"salary"`
	RoleType  float64 `json:"role_type" yaml:"role_type"`
	Industry  float64 `json:"industry" yaml:"industry"`
	WorkStyle float64 `json:"work_style" yaml:"work_style"`
}

// JobPreferences are the user's stated job criteria.
type JobPreferences struct {
	Locations        []string      `json:"locations" yaml:"locations"`
	SalaryMin        *int          `json:"salary_min,omitempty" yaml:"salary_min,omitempty"`
	SalaryMax        *int          `json:"salary_max,omitempty" yaml:"salary_max,omitempty"`
	RoleTypes        []string      `json:"role_types" yaml:"role_types"`
	CustomRoleTypes  []string      `json:"custom_role_types" yaml:"custom_role_types"`
	Industries       []string      `json:"industries" yaml:"industries"`
	CustomIndustries []string      `json:"custom_industries" yaml:"custom_industries"`
	RemotePreference string        `json:"remote_preference" yaml:"remote_preference"` // remote, hybrid, on-site, flexible
	Weights          *MatchWeights `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// MatchFactor names one scoring dimension.
type MatchFactor string

const (
	FactorLocation  MatchFactor = "location"
	FactorSalary    MatchFactor = "salary"
	FactorRoleType  MatchFactor = "roleType"
	FactorIndustry  MatchFactor = "industry"
	FactorWorkStyle MatchFactor = "workStyle"
)

// FactorScore is one row of the match breakdown.
type FactorScore struct {
	Factor MatchFactor `json:"factor"`
	Score  int         `json:"score"`
	Weight float64     `json:"weight"`
}

// MatchResult is the outcome of scoring a job against preferences.
type MatchResult struct {
	Breakdown  []FactorScore `json:"breakdown"`
	TotalScore int           `json:"total_score"`
}
