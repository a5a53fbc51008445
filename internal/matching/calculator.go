// internal/matching/calculator.go

package matching

import "fmt"

// ScoreOptions tunes a single scoring call. The zero value uses
// DefaultWeights and DefaultMaxPreferredDistance.
type ScoreOptions struct {
	Weights              *WeightVector
	MaxPreferredDistance float64
}

func (o ScoreOptions) weights() WeightVector {
	if o.Weights != nil {
		return *o.Weights
	}
	return DefaultWeights()
}

func (o ScoreOptions) maxDistance() float64 {
	if o.MaxPreferredDistance > 0 {
		return o.MaxPreferredDistance
	}
	return DefaultMaxPreferredDistance
}

// DimensionScores holds the raw [0,1] scores for one pair together with
// which dimensions had data on both sides.
type DimensionScores struct {
	Scores    map[Dimension]float64
	Available map[Dimension]bool
}

// ScoreDimensions runs every dimension scorer for the pair.
func ScoreDimensions(user, candidate *Profile, maxPreferred float64) DimensionScores {
	ds := DimensionScores{
		Scores:    make(map[Dimension]float64, len(Dimensions)),
		Available: make(map[Dimension]bool, len(Dimensions)),
	}

	ds.Scores[DimensionInterests] = InterestScore(user.Interests, candidate.Interests)
	ds.Available[DimensionInterests] = len(interestSet(user.Interests)) > 0 && len(interestSet(candidate.Interests)) > 0

	trait, compared := traitScore(user.PersonalityTraits, candidate.PersonalityTraits)
	ds.Scores[DimensionPersonality] = trait
	ds.Available[DimensionPersonality] = compared > 0

	ds.Scores[DimensionIntention] = IntentionScore(user.RelationshipIntention, candidate.RelationshipIntention)
	ds.Available[DimensionIntention] = user.RelationshipIntention.Rank() > 0 && candidate.RelationshipIntention.Rank() > 0

	if miles, ok := PairDistance(user, candidate); ok {
		ds.Scores[DimensionLocation] = distanceMilesScore(miles, maxPreferred)
		ds.Available[DimensionLocation] = true
	} else {
		ds.Scores[DimensionLocation] = neutralScore
	}

	life, factors := lifestyleScore(user.Lifestyle, candidate.Lifestyle)
	ds.Scores[DimensionLifestyle] = life
	ds.Available[DimensionLifestyle] = factors > 0

	att, ok := attachmentScore(user.AttachmentStyle, candidate.AttachmentStyle)
	ds.Scores[DimensionAttachment] = att
	ds.Available[DimensionAttachment] = ok

	return ds
}

// PairDistance returns the distance in miles between the pair, preferring
// coordinates on both sides over the candidate's distance text.
func PairDistance(user, candidate *Profile) (float64, bool) {
	if user.Location != nil && candidate.Location != nil {
		return CalculateGeoDistance(
			user.Location.Latitude, user.Location.Longitude,
			candidate.Location.Latitude, candidate.Location.Longitude,
		), true
	}
	return ParseDistance(candidate.Distance)
}

// CalculateMatchScore scores candidate against user. Missing data degrades to
// neutral sub-scores and drops the dimension from the weighted sum; the
// requester's dealbreakers reduce the final score. The result is a new value
// on every call.
func CalculateMatchScore(user, candidate *Profile, opts ScoreOptions) (WeightedMatch, error) {
	if user == nil || candidate == nil {
		return WeightedMatch{}, fmt.Errorf("calculate match score: %w", ErrNilProfile)
	}

	ds := ScoreDimensions(user, candidate, opts.maxDistance())
	score := Aggregate(ds.Scores, ds.Available, opts.weights())

	violated := CheckDealbreakers(user.Dealbreakers, user, candidate)
	score = ApplyDealbreakerPenalty(score, len(violated))

	m := WeightedMatch{
		Profile:          copyProfile(candidate),
		MatchScore:       score,
		InterestsScore:   percent(ds.Scores[DimensionInterests]),
		PersonalityScore: percent(ds.Scores[DimensionPersonality]),
		IntentionScore:   percent(ds.Scores[DimensionIntention]),
		LocationScore:    percent(ds.Scores[DimensionLocation]),
		Dealbreakers:     violated,
	}
	if ds.Available[DimensionLifestyle] {
		m.LifestyleScore = intPtr(percent(ds.Scores[DimensionLifestyle]))
	}
	if ds.Available[DimensionAttachment] {
		m.AttachmentScore = intPtr(percent(ds.Scores[DimensionAttachment]))
	}
	return m, nil
}

// copyProfile detaches the slices and maps a WeightedMatch holds from the
// caller's profile.
func copyProfile(p *Profile) Profile {
	c := *p
	c.Interests = append([]string(nil), p.Interests...)
	c.PersonalityTraits = append([]PersonalityTrait(nil), p.PersonalityTraits...)
	c.Dealbreakers = append([]string(nil), p.Dealbreakers...)
	if p.Lifestyle != nil {
		c.Lifestyle = make(Lifestyle, len(p.Lifestyle))
		for k, v := range p.Lifestyle {
			c.Lifestyle[k] = v
		}
	}
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	return c
}
