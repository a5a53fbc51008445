package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perfectProfile(id string) *Profile {
	return &Profile{
		ID:                    id,
		Location:              &Coordinates{Latitude: 40.7128, Longitude: -74.0060},
		Interests:             []string{"hiking", "jazz", "cooking"},
		PersonalityTraits:     []PersonalityTrait{{Name: "agreeableness", Value: 70}},
		RelationshipIntention: IntentionSerious,
		AttachmentStyle:       AttachmentSecure,
		Lifestyle:             Lifestyle{"smoking": "never", "drinking": "socially"},
	}
}

func TestCalculateMatchScore_PerfectPair(t *testing.T) {
	m, err := CalculateMatchScore(perfectProfile("u"), perfectProfile("c"), ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, 100, m.MatchScore)
	assert.Equal(t, 100, m.InterestsScore)
	assert.Equal(t, 100, m.PersonalityScore)
	assert.Equal(t, 100, m.IntentionScore)
	assert.Equal(t, 100, m.LocationScore)
	require.NotNil(t, m.LifestyleScore)
	assert.Equal(t, 100, *m.LifestyleScore)
	require.NotNil(t, m.AttachmentScore)
	assert.Equal(t, 100, *m.AttachmentScore)
	assert.Empty(t, m.Dealbreakers)
	assert.Nil(t, m.Enhancement)
	assert.Equal(t, "c", m.Profile.ID)
}

func TestCalculateMatchScore_NoDataIsNeutral(t *testing.T) {
	m, err := CalculateMatchScore(&Profile{ID: "u"}, &Profile{ID: "c"}, ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, 50, m.MatchScore)
	assert.Equal(t, 50, m.InterestsScore)
	assert.Equal(t, 50, m.PersonalityScore)
	assert.Equal(t, 50, m.IntentionScore)
	assert.Equal(t, 50, m.LocationScore)
	assert.Nil(t, m.LifestyleScore)
	assert.Nil(t, m.AttachmentScore)
}

func TestCalculateMatchScore_MissingLifestyleDropsDimension(t *testing.T) {
	user := &Profile{
		Interests:             []string{"hiking"},
		RelationshipIntention: IntentionDating,
		Lifestyle:             Lifestyle{"smoking": "never"},
	}
	withoutLifestyle := &Profile{
		Interests:             []string{"hiking"},
		RelationshipIntention: IntentionDating,
	}
	withBadLifestyle := &Profile{
		Interests:             []string{"hiking"},
		RelationshipIntention: IntentionDating,
		Lifestyle:             Lifestyle{"smoking": "regularly"},
	}

	m1, err := CalculateMatchScore(user, withoutLifestyle, ScoreOptions{})
	require.NoError(t, err)
	m2, err := CalculateMatchScore(user, withBadLifestyle, ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, 100, m1.MatchScore)
	assert.Nil(t, m1.LifestyleScore)
	assert.Less(t, m2.MatchScore, m1.MatchScore)
	require.NotNil(t, m2.LifestyleScore)
	assert.Equal(t, 25, *m2.LifestyleScore)
}

func TestCalculateMatchScore_DistanceTextFallback(t *testing.T) {
	user := &Profile{}
	candidate := &Profile{Distance: "25 miles away"}

	m, err := CalculateMatchScore(user, candidate, ScoreOptions{MaxPreferredDistance: 25})
	require.NoError(t, err)

	// 1 - 25/50 = 0.5; 0.5^1.5 ~= 0.354
	assert.Equal(t, 35, m.LocationScore)
	assert.Equal(t, 35, m.MatchScore)
}

func TestCalculateMatchScore_SoftDealbreakerPenalty(t *testing.T) {
	user := &Profile{
		Interests:             []string{"hiking"},
		RelationshipIntention: IntentionDating,
		Dealbreakers:          []string{"no-smoking"},
	}
	candidate := &Profile{
		Interests:             []string{"hiking"},
		RelationshipIntention: IntentionDating,
		Lifestyle:             Lifestyle{"smoking": "regularly"},
	}

	m, err := CalculateMatchScore(user, candidate, ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, 60, m.MatchScore)
	assert.Equal(t, []string{"no-smoking"}, m.Dealbreakers)
}

func TestCalculateMatchScore_CustomWeights(t *testing.T) {
	user := &Profile{Interests: []string{"chess"}, RelationshipIntention: IntentionRelationship}
	candidate := &Profile{Interests: []string{"surfing"}, RelationshipIntention: IntentionSerious}
	w := NewWeightVector(map[Dimension]float64{DimensionIntention: 1})

	m, err := CalculateMatchScore(user, candidate, ScoreOptions{Weights: &w})
	require.NoError(t, err)

	assert.Equal(t, 75, m.MatchScore)
	assert.Equal(t, 0, m.InterestsScore)
}

func TestCalculateMatchScore_Deterministic(t *testing.T) {
	user := perfectProfile("u")
	candidate := perfectProfile("c")
	candidate.Interests = []string{"hiking", "surfing"}
	candidate.AttachmentStyle = AttachmentAvoidant

	first, err := CalculateMatchScore(user, candidate, ScoreOptions{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := CalculateMatchScore(user, candidate, ScoreOptions{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateMatchScore_DetachedFromInput(t *testing.T) {
	candidate := perfectProfile("c")

	m, err := CalculateMatchScore(perfectProfile("u"), candidate, ScoreOptions{})
	require.NoError(t, err)

	m.Profile.Interests[0] = "changed"
	m.Profile.Lifestyle["smoking"] = "regularly"
	m.Profile.Location.Latitude = 0

	assert.Equal(t, "hiking", candidate.Interests[0])
	assert.Equal(t, "never", candidate.Lifestyle["smoking"])
	assert.Equal(t, 40.7128, candidate.Location.Latitude)
}

func TestCalculateMatchScore_NilProfile(t *testing.T) {
	_, err := CalculateMatchScore(nil, &Profile{}, ScoreOptions{})
	assert.ErrorIs(t, err, ErrNilProfile)

	_, err = CalculateMatchScore(&Profile{}, nil, ScoreOptions{})
	assert.ErrorIs(t, err, ErrNilProfile)
}
