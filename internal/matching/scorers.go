// internal/matching/scorers.go

package matching

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// neutralScore is returned by every scorer when it has nothing to compare.
const neutralScore = 0.5

// DefaultMaxPreferredDistance is the preferred search radius in miles used
// when the caller does not supply one.
const DefaultMaxPreferredDistance = 50.0

var complementaryTraits = map[string]bool{
	"extroversion": true,
	"openness":     true,
	"risk-taking":  true,
}

type lifestyleFactor struct {
	name   string
	weight float64
}

var lifestyleFactors = []lifestyleFactor{
	{name: "drinking", weight: 1},
	{name: "smoking", weight: 2},
	{name: "exercise", weight: 1},
	{name: "diet", weight: 1},
	{name: "kids", weight: 2},
}

// adjacentLifestyle lists value pairs that are close enough to earn partial
// credit. Each pair is stored in both directions.
var adjacentLifestyle = map[string]map[string]bool{
	"drinking": pairs("never", "rarely", "rarely", "occasionally", "occasionally", "socially", "socially", "regularly"),
	"smoking":  pairs("never", "rarely", "rarely", "occasionally", "occasionally", "socially"),
	"exercise": pairs("never", "rarely", "rarely", "sometimes", "sometimes", "regularly", "regularly", "daily"),
	"diet":     pairs("omnivore", "flexitarian", "flexitarian", "vegetarian", "vegetarian", "pescatarian", "vegetarian", "vegan"),
	"kids":     pairs("want", "open", "dont_want", "open", "want", "have_and_want_more"),
}

// attachmentMatrix is indexed [requester][candidate].
var attachmentMatrix = map[AttachmentStyle]map[AttachmentStyle]float64{
	AttachmentSecure:   {AttachmentSecure: 1.0, AttachmentAnxious: 0.7, AttachmentAvoidant: 0.7, AttachmentFearful: 0.5},
	AttachmentAnxious:  {AttachmentSecure: 0.8, AttachmentAnxious: 0.4, AttachmentAvoidant: 0.3, AttachmentFearful: 0.2},
	AttachmentAvoidant: {AttachmentSecure: 0.8, AttachmentAnxious: 0.3, AttachmentAvoidant: 0.5, AttachmentFearful: 0.3},
	AttachmentFearful:  {AttachmentSecure: 0.7, AttachmentAnxious: 0.3, AttachmentAvoidant: 0.3, AttachmentFearful: 0.2},
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

func pairs(values ...string) map[string]bool {
	out := make(map[string]bool, len(values))
	for i := 0; i+1 < len(values); i += 2 {
		out[values[i]+"|"+values[i+1]] = true
		out[values[i+1]+"|"+values[i]] = true
	}
	return out
}

// InterestScore is the share of the requester's interests that the candidate
// also lists. The denominator only counts the requester's interests, so the
// score is not symmetric.
func InterestScore(userInterests, matchInterests []string) float64 {
	user := interestSet(userInterests)
	match := interestSet(matchInterests)
	if len(user) == 0 || len(match) == 0 {
		return neutralScore
	}

	shared := 0
	for interest := range user {
		if match[interest] {
			shared++
		}
	}
	return float64(shared) / math.Max(1, float64(len(user)))
}

// NormalizeInterest is the comparison key for an interest label.
func NormalizeInterest(interest string) string {
	return strings.ToLower(strings.TrimSpace(interest))
}

func interestSet(interests []string) map[string]bool {
	set := make(map[string]bool, len(interests))
	for _, interest := range interests {
		key := NormalizeInterest(interest)
		if key != "" {
			set[key] = true
		}
	}
	return set
}

// TraitScore compares personality traits by name. Complementary traits score
// best at a 50 point gap, all others reward similarity. Requester importance
// ratings weight the mean; traits missing on either side are skipped.
func TraitScore(userTraits, matchTraits []PersonalityTrait) float64 {
	score, _ := traitScore(userTraits, matchTraits)
	return score
}

func traitScore(userTraits, matchTraits []PersonalityTrait) (float64, int) {
	byName := make(map[string]PersonalityTrait, len(matchTraits))
	for _, t := range matchTraits {
		byName[TraitKey(t.Name)] = t
	}

	var weighted, totalWeight float64
	compared := 0
	for _, ut := range userTraits {
		key := TraitKey(ut.Name)
		mt, ok := byName[key]
		if !ok || key == "" {
			continue
		}

		diff := math.Abs(clampFloat(ut.Value, 0, 100) - clampFloat(mt.Value, 0, 100))
		var s float64
		if complementaryTraits[key] {
			s = 1 - math.Abs(diff-50)/50
		} else {
			s = 1 - diff/100
		}

		w := traitWeight(ut.Importance)
		weighted += clampFloat(s, 0, 1) * w
		totalWeight += w
		compared++
	}

	if compared == 0 || totalWeight == 0 {
		return neutralScore, 0
	}
	return clampFloat(weighted/totalWeight, 0, 1), compared
}

// TraitKey normalizes a trait name so that case, underscores and spaces do
// not matter.
func TraitKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	return key
}

// traitWeight turns a 1-5 importance rating into a weight. Ratings above 5
// are allowed up to a 2x weight.
func traitWeight(importance int) float64 {
	if importance <= 0 {
		return 1
	}
	return clampFloat(float64(importance)/5, 0, 2)
}

// IntentionScore compares two intentions on the 0-100 spectrum and adds a
// 0.3 bonus for an exact label match.
func IntentionScore(a, b Intention) float64 {
	v1, ok1 := a.Value()
	v2, ok2 := b.Value()
	if !ok1 || !ok2 {
		return neutralScore
	}

	score := 1 - math.Abs(v1-v2)/100
	if a == b {
		score += 0.3
	}
	return math.Min(1, score)
}

// ParseDistance extracts the leading integer from text like "5 miles away".
func ParseDistance(text string) (float64, bool) {
	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	d, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return float64(d), true
}

// DistanceScore scores a free-text distance against the preferred radius.
func DistanceScore(distance string, maxPreferred float64) float64 {
	d, ok := ParseDistance(distance)
	if !ok {
		return neutralScore
	}
	return distanceMilesScore(d, maxPreferred)
}

func distanceMilesScore(miles, maxPreferred float64) float64 {
	if maxPreferred <= 0 {
		maxPreferred = DefaultMaxPreferredDistance
	}
	if miles < 0 {
		return neutralScore
	}
	base := math.Max(0, 1-miles/(2*maxPreferred))
	return math.Pow(base, 1.5)
}

// LifestyleScore compares drinking, smoking, exercise, diet and kids.
// Smoking and kids count double.
func LifestyleScore(a, b Lifestyle) float64 {
	score, _ := lifestyleScore(a, b)
	return score
}

func lifestyleScore(a, b Lifestyle) (float64, int) {
	var earned, possible float64
	compared := 0
	for _, f := range lifestyleFactors {
		v1, ok1 := a.Get(f.name)
		v2, ok2 := b.Get(f.name)
		if !ok1 || !ok2 {
			continue
		}

		compared++
		possible += f.weight
		switch {
		case v1 == v2:
			earned += f.weight
		case adjacentLifestyle[f.name][v1+"|"+v2]:
			earned += 0.75 * f.weight
		default:
			earned += 0.25 * f.weight
		}
	}

	if compared == 0 {
		return neutralScore, 0
	}
	return earned / possible, compared
}

// AttachmentScore looks up the requester/candidate pair in the attachment
// compatibility matrix.
func AttachmentScore(user, match AttachmentStyle) float64 {
	s, _ := attachmentScore(user, match)
	return s
}

func attachmentScore(user, match AttachmentStyle) (float64, bool) {
	row, ok := attachmentMatrix[user]
	if !ok {
		return neutralScore, false
	}
	s, ok := row[match]
	if !ok {
		return neutralScore, false
	}
	return s, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
