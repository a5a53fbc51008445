// internal/patterns/learn.go

package patterns

import (
	"time"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

// Learn folds one action on target into a copy of prefs. Every action counts
// as a sample; only positive ones teach anything about the target.
// Super likes and matches count double.
func Learn(prefs *UserPreferences, target *matching.Profile, action Action, at time.Time) *UserPreferences {
	out := prefs.Clone()
	out.Samples++
	out.UpdatedAt = at

	if !action.Positive() || target == nil {
		return out
	}

	weight := 1
	if action == ActionSuperLike || action == ActionMatch {
		weight = 2
	}

	if age, ok := target.AgeAt(at); ok && age > 0 {
		if !out.hasAgeRange() {
			out.MinAge, out.MaxAge = age, age
		} else {
			if age < out.MinAge {
				out.MinAge = age
			}
			if age > out.MaxAge {
				out.MaxAge = age
			}
		}
	}

	for _, interest := range target.Interests {
		if key := matching.NormalizeInterest(interest); key != "" {
			out.Interests[key] += weight
		}
	}

	for _, trait := range target.PersonalityTraits {
		key := matching.TraitKey(trait.Name)
		if key == "" {
			continue
		}
		n := float64(out.TraitSamples[key])
		out.Traits[key] = (out.Traits[key]*n + trait.Value) / (n + 1)
		out.TraitSamples[key]++
	}

	if target.AttachmentStyle != "" {
		out.AttachmentStyles[target.AttachmentStyle] += weight
	}

	out.ActiveHours[at.Hour()]++
	return out
}
