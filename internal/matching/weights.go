// internal/matching/weights.go

package matching

import (
	"sort"
	"strings"
)

type Dimension string

const (
	DimensionInterests   Dimension = "interests"
	DimensionPersonality Dimension = "personality"
	DimensionIntention   Dimension = "intention"
	DimensionLocation    Dimension = "location"
	DimensionLifestyle   Dimension = "lifestyle"
	DimensionAttachment  Dimension = "attachment"
)

// Dimensions lists every scored dimension in a fixed order.
var Dimensions = []Dimension{
	DimensionInterests,
	DimensionPersonality,
	DimensionIntention,
	DimensionLocation,
	DimensionLifestyle,
	DimensionAttachment,
}

// WeightVector is an immutable set of dimension weights. All operations
// return a new vector; the zero value has no weights.
type WeightVector struct {
	weights map[Dimension]float64
}

// DefaultWeights is the canonical weight table:
//
//	interests 0.25, personality 0.25, intention 0.15,
//	location 0.10, lifestyle 0.15, attachment 0.10
//
// A fresh vector is built on every call.
func DefaultWeights() WeightVector {
	return NewWeightVector(map[Dimension]float64{
		DimensionInterests:   0.25,
		DimensionPersonality: 0.25,
		DimensionIntention:   0.15,
		DimensionLocation:    0.10,
		DimensionLifestyle:   0.15,
		DimensionAttachment:  0.10,
	})
}

// NewWeightVector copies the given weights. Negative weights are treated
// as zero.
func NewWeightVector(weights map[Dimension]float64) WeightVector {
	w := make(map[Dimension]float64, len(weights))
	for d, v := range weights {
		if v < 0 {
			v = 0
		}
		w[d] = v
	}
	return WeightVector{weights: w}
}

func (w WeightVector) Get(d Dimension) float64 {
	return w.weights[d]
}

// With returns a copy of the vector with one weight replaced.
func (w WeightVector) With(d Dimension, v float64) WeightVector {
	m := w.Map()
	m[d] = v
	return NewWeightVector(m)
}

// Map returns a copy of the underlying weights.
func (w WeightVector) Map() map[Dimension]float64 {
	m := make(map[Dimension]float64, len(w.weights))
	for d, v := range w.weights {
		m[d] = v
	}
	return m
}

func (w WeightVector) Sum() float64 {
	var sum float64
	for _, v := range w.weights {
		sum += v
	}
	return sum
}

// Normalized keeps only the available dimensions and rescales their weights
// to sum to 1. If nothing is left the result is empty.
func (w WeightVector) Normalized(available map[Dimension]bool) WeightVector {
	kept := make(map[Dimension]float64, len(available))
	var sum float64
	for d, v := range w.weights {
		if !available[d] || v <= 0 {
			continue
		}
		kept[d] = v
		sum += v
	}
	if sum == 0 {
		return WeightVector{weights: map[Dimension]float64{}}
	}
	for d := range kept {
		kept[d] /= sum
	}
	return WeightVector{weights: kept}
}

// Aggregate combines [0,1] dimension scores with the weights after dropping
// unavailable dimensions, and returns a 0-100 integer. With no available
// dimension the neutral 50 is returned.
func Aggregate(scores map[Dimension]float64, available map[Dimension]bool, weights WeightVector) int {
	norm := weights.Normalized(available)
	if len(norm.weights) == 0 {
		return percent(neutralScore)
	}

	var total float64
	for _, d := range Dimensions {
		total += scores[d] * norm.weights[d]
	}
	return percent(total)
}

// Dealbreaker labels understood by the rule table.
const (
	DealbreakerNoSmoking       = "no-smoking"
	DealbreakerNoKids          = "no-kids"
	DealbreakerKidsAlignment   = "kids-alignment"
	DealbreakerAttachmentStyle = "attachment-style"
)

// attachmentDealbreakerThreshold is the attachment compatibility below which
// the attachment-style dealbreaker fires.
const attachmentDealbreakerThreshold = 0.4

// CheckDealbreakers returns the sorted labels from dealbreakers that the
// candidate violates. Unknown labels never fire.
func CheckDealbreakers(dealbreakers []string, user, candidate *Profile) []string {
	var violated []string
	seen := make(map[string]bool, len(dealbreakers))
	for _, raw := range dealbreakers {
		label := strings.ToLower(strings.TrimSpace(raw))
		if seen[label] {
			continue
		}
		seen[label] = true
		if violatesDealbreaker(label, user, candidate) {
			violated = append(violated, label)
		}
	}
	sort.Strings(violated)
	return violated
}

func violatesDealbreaker(label string, user, candidate *Profile) bool {
	switch label {
	case DealbreakerNoSmoking:
		v, ok := candidate.Lifestyle.Get("smoking")
		return ok && v != "never" && v != "no"
	case DealbreakerNoKids:
		if kidsMismatch(user, candidate) {
			return true
		}
		v, ok := candidate.Lifestyle.Get("kids")
		if !ok {
			return false
		}
		wants, known := wantsKids(v)
		return (known && wants) || v == "have" || v == "have_kids"
	case DealbreakerKidsAlignment:
		return kidsMismatch(user, candidate)
	case DealbreakerAttachmentStyle:
		s, ok := attachmentScore(user.AttachmentStyle, candidate.AttachmentStyle)
		return ok && s < attachmentDealbreakerThreshold
	}
	return false
}

func kidsMismatch(user, candidate *Profile) bool {
	v1, ok1 := user.Lifestyle.Get("kids")
	v2, ok2 := candidate.Lifestyle.Get("kids")
	if !ok1 || !ok2 {
		return false
	}
	w1, known1 := wantsKids(v1)
	w2, known2 := wantsKids(v2)
	return known1 && known2 && w1 != w2
}

func wantsKids(v string) (wants bool, known bool) {
	switch v {
	case "want", "wants", "yes", "true", "have_and_want_more":
		return true, true
	case "dont_want", "don't_want", "dont-want", "no", "false", "never":
		return false, true
	}
	return false, false
}

// DealbreakerPenaltyPercent is the share of the score removed for the given
// number of violations: 40% for one, 60% for two, 70% for three or more.
func DealbreakerPenaltyPercent(violations int) int {
	switch {
	case violations <= 0:
		return 0
	case violations == 1:
		return 40
	case violations == 2:
		return 60
	}
	return 70
}

// ApplyDealbreakerPenalty removes round(score * penalty%) from score,
// flooring at 0.
func ApplyDealbreakerPenalty(score, violations int) int {
	pct := DealbreakerPenaltyPercent(violations)
	if pct == 0 {
		return score
	}
	penalty := (score*pct + 50) / 100
	return clampInt(score-penalty, 0, 100)
}
