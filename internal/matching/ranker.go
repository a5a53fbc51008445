// internal/matching/ranker.go

package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// earthRadiusMiles is the sphere radius used by the Haversine formula.
const earthRadiusMiles = 3963.0

// CalculateGeoDistance returns the great-circle distance in miles.
func CalculateGeoDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Filters are hard exclusions applied before scoring. Every field is
// optional.
type Filters struct {
	MinAge *int
	MaxAge *int
	// Intention narrows the pool further: when set, candidates must also be
	// within one rank of it. The requester's own intention always applies.
	Intention Intention
	// MaxDistance in miles, applied only when both sides have coordinates.
	MaxDistance float64
	// Dealbreakers are exclusion rules, unlike the requester profile's own
	// dealbreakers which only penalize.
	Dealbreakers []string
	// Limit truncates the ranked list when positive.
	Limit int
}

// RankOptions carries per-call scoring options and the clock used to derive
// ages.
type RankOptions struct {
	Score ScoreOptions
	Now   func() time.Time
}

func (o RankOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// RankCandidates filters the pool, scores every survivor and returns them
// best first. Candidates with equal scores keep their pool order. The
// context is checked once per candidate.
func RankCandidates(ctx context.Context, user *Profile, candidates []*Profile, filters Filters, opts RankOptions) ([]WeightedMatch, error) {
	if user == nil {
		return nil, fmt.Errorf("rank candidates: %w", ErrNilProfile)
	}

	now := opts.now()
	ranked := make([]WeightedMatch, 0, len(candidates))
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, fmt.Errorf("rank candidates: candidate %d: %w", i, ErrNilProfile)
		}
		if !passesFilters(user, candidate, filters, now) {
			continue
		}

		m, err := CalculateMatchScore(user, candidate, opts.Score)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, m)
	}

	SortMatches(ranked)

	if filters.Limit > 0 && len(ranked) > filters.Limit {
		ranked = ranked[:filters.Limit]
	}
	return ranked, nil
}

// SortMatches orders matches by descending score, keeping the existing order
// for ties.
func SortMatches(matches []WeightedMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
}

func passesFilters(user, candidate *Profile, f Filters, now time.Time) bool {
	return passesAge(candidate, f, now) &&
		passesIntention(user, candidate, f) &&
		passesDistance(user, candidate, f) &&
		len(CheckDealbreakers(f.Dealbreakers, user, candidate)) == 0
}

// passesAge keeps candidates without age data.
func passesAge(candidate *Profile, f Filters, now time.Time) bool {
	if f.MinAge == nil && f.MaxAge == nil {
		return true
	}
	age, ok := candidate.AgeAt(now)
	if !ok {
		return true
	}
	if f.MinAge != nil && age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && age > *f.MaxAge {
		return false
	}
	return true
}

// passesIntention keeps candidates within one rank of the requester's
// intention and of the optional filter intention. Unset ranks pass.
func passesIntention(user, candidate *Profile, f Filters) bool {
	rank := candidate.RelationshipIntention.Rank()
	if rank == 0 {
		return true
	}
	return withinOneRank(user.RelationshipIntention.Rank(), rank) &&
		withinOneRank(f.Intention.Rank(), rank)
}

func withinOneRank(ref, rank int) bool {
	if ref == 0 {
		return true
	}
	diff := ref - rank
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func passesDistance(user, candidate *Profile, f Filters) bool {
	if f.MaxDistance <= 0 || user.Location == nil || candidate.Location == nil {
		return true
	}
	d := CalculateGeoDistance(
		user.Location.Latitude, user.Location.Longitude,
		candidate.Location.Latitude, candidate.Location.Longitude,
	)
	return d <= f.MaxDistance
}
