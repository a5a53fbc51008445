// internal/dating/dto.go
package dating

import (
	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

// DTOs for API requests/responses

// DiscoverRequest is parsed from the /discover query string.
type DiscoverRequest struct {
	MinAge       int      `json:"min_age" validate:"omitempty,gte=18,lte=100"`
	MaxAge       int      `json:"max_age" validate:"omitempty,gte=18,lte=100"`
	MaxDistance  float64  `json:"max_distance" validate:"omitempty,gt=0"`
	Intention    string   `json:"intention" validate:"omitempty,oneof=casual dating relationship serious marriage"`
	Dealbreakers []string `json:"dealbreakers" validate:"omitempty,dive,oneof=no-smoking no-kids kids-alignment attachment-style"`
	Limit        int      `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type InteractionRequestDTO struct {
	TargetID string `json:"target_id" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=like pass super_like message match"`
	Source   string `json:"source,omitempty" validate:"omitempty,oneof=discover hotpicks profile chat"`
}

type GetHotpicksParams struct {
	Limit         int  `json:"limit"`
	ExcludeViewed bool `json:"exclude_viewed"`
}

type CandidateFilters struct {
	ExcludeInteracted bool `json:"exclude_interacted"`
	Limit             int  `json:"limit"`
}

type DiscoverResult struct {
	Matches  []matching.WeightedMatch `json:"matches"`
	Featured *matching.WeightedMatch  `json:"featured,omitempty"`
	Total    int                      `json:"total"`
}

type CompatibilityResult struct {
	Match              matching.WeightedMatch     `json:"match"`
	Intention          matching.IntentionAnalysis `json:"intention"`
	SuccessProbability float64                    `json:"success_probability"`
}

type GenerateHotpicksResult struct {
	Created int `json:"created"`
}

type MatchingStats struct {
	Interactions map[string]int64 `json:"interactions_last_30_days"`
	Tracker      patterns.Stats   `json:"tracker"`
}
