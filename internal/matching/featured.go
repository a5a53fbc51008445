// internal/matching/featured.go

package matching

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// RandomSource yields values in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// topPickProbability is the chance the featured slot goes to the best score
// even when a complementary or unique profile exists.
const topPickProbability = 0.3

// SelectFeatured picks one match to highlight from a ranked list. ok is false
// for an empty list. A nil rnd falls back to the process-wide source.
func SelectFeatured(ranked []WeightedMatch, rnd RandomSource) (WeightedMatch, bool) {
	if len(ranked) == 0 {
		return WeightedMatch{}, false
	}
	if rnd == nil {
		rnd = defaultRandom
	}

	top := ranked[0]
	if rnd.Float64() < topPickProbability {
		return top, true
	}
	if m, ok := firstMatch(ranked, isComplementary); ok {
		return m, true
	}
	if m, ok := firstMatch(ranked, isUnique); ok {
		return m, true
	}
	return top, true
}

// SelectFeaturedDefault uses a process-wide time-seeded source.
func SelectFeaturedDefault(ranked []WeightedMatch) (WeightedMatch, bool) {
	return SelectFeatured(ranked, defaultRandom)
}

func firstMatch(ranked []WeightedMatch, pred func(WeightedMatch) bool) (WeightedMatch, bool) {
	for _, m := range ranked {
		if pred(m) {
			return m, true
		}
	}
	return WeightedMatch{}, false
}

// isComplementary: strong overall and shared interests, different
// personality.
func isComplementary(m WeightedMatch) bool {
	return m.MatchScore > 80 && m.PersonalityScore < 70 && m.InterestsScore > 85
}

func isUnique(m WeightedMatch) bool {
	if m.Profile.IsPremium || m.Profile.IsVerified {
		return true
	}
	for _, interest := range m.Profile.Interests {
		if strings.Contains(strings.ToLower(interest), "rare") {
			return true
		}
	}
	return m.AttachmentScore != nil && *m.AttachmentScore > 90
}

type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

var defaultRandom RandomSource = &lockedRandom{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
