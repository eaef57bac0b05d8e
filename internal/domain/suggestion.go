package domain

// SuggestionType is the action a smart step proposes.
type SuggestionType string

const (
	SuggestPrepare        SuggestionType = "prepare"
	SuggestFollowUp       SuggestionType = "follow_up"
	SuggestCheckIn        SuggestionType = "check_in"
	SuggestApply          SuggestionType = "apply"
	SuggestOptimizeResume SuggestionType = "optimize_resume"
	SuggestNetwork        SuggestionType = "network"
)

// Suggestion is one prioritized smart step. Lower priority shows first.
type Suggestion struct {
	Type          SuggestionType `json:"type"`
	Priority      int            `json:"priority"`
	Title         string         `json:"title"`
	ApplicationID string         `json:"application_id,omitempty"`
	EventID       string         `json:"event_id,omitempty"`
	DaysElapsed   int            `json:"days_elapsed,omitempty"`
}
