// internal/dating/matching.go

package dating

import (
	"context"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

// MatchingEngine scores requester/candidate pairs. The default engine
// delegates to the matching package with the configured search radius.
type MatchingEngine interface {
	Score(user, candidate *matching.Profile) (matching.WeightedMatch, error)
	Rank(ctx context.Context, user *matching.Profile, candidates []*matching.Profile, filters matching.Filters) ([]matching.WeightedMatch, error)
}

type matchingEngine struct {
	opts matching.RankOptions
}

func NewMatchingEngine(maxPreferredDistance float64) MatchingEngine {
	return &matchingEngine{
		opts: matching.RankOptions{
			Score: matching.ScoreOptions{MaxPreferredDistance: maxPreferredDistance},
		},
	}
}

func (m *matchingEngine) Score(user, candidate *matching.Profile) (matching.WeightedMatch, error) {
	return matching.CalculateMatchScore(user, candidate, m.opts.Score)
}

func (m *matchingEngine) Rank(ctx context.Context, user *matching.Profile, candidates []*matching.Profile, filters matching.Filters) ([]matching.WeightedMatch, error) {
	return matching.RankCandidates(ctx, user, candidates, filters, m.opts)
}

// toProfile converts a stored row into the shape the engine scores.
func toProfile(rec *ProfileRecord) *matching.Profile {
	if rec == nil {
		return nil
	}

	p := &matching.Profile{
		ID:                    rec.UserID,
		BirthDate:             rec.BirthDate,
		Interests:             []string(rec.Interests),
		PersonalityTraits:     rec.PersonalityTraits.Data,
		RelationshipIntention: matching.Intention(deref(rec.RelationshipIntention)),
		TimelineExpectation:   matching.Timeline(deref(rec.TimelineExpectation)),
		DatingHistory:         rec.DatingHistory.Data,
		AttachmentStyle:       matching.AttachmentStyle(deref(rec.AttachmentStyle)),
		Dealbreakers:          []string(rec.Dealbreakers),
		IsPremium:             rec.IsPremium,
		IsVerified:            rec.IsVerified,
	}
	if rec.Lifestyle.Data != nil {
		p.Lifestyle = matching.Lifestyle(rec.Lifestyle.Data)
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		p.Location = &matching.Coordinates{Latitude: *rec.Latitude, Longitude: *rec.Longitude}
	}
	return p
}

func toProfiles(recs []*ProfileRecord) []*matching.Profile {
	out := make([]*matching.Profile, 0, len(recs))
	for _, rec := range recs {
		if rec != nil {
			out = append(out, toProfile(rec))
		}
	}
	return out
}

func deref(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
