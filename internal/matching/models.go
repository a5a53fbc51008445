// internal/matching/models.go

// Package matching scores and ranks dating candidates. Everything here is
// pure and safe for concurrent use.
package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNilProfile = errors.New("profile is required")
)

type Intention string

const (
	IntentionCasual       Intention = "casual"
	IntentionDating       Intention = "dating"
	IntentionRelationship Intention = "relationship"
	IntentionSerious      Intention = "serious"
	IntentionMarriage     Intention = "marriage"
)

// Rank returns the 1-5 position of the intention on the seriousness
// spectrum, or 0 when unset or unknown.
func (i Intention) Rank() int {
	switch i {
	case IntentionCasual:
		return 1
	case IntentionDating:
		return 2
	case IntentionRelationship:
		return 3
	case IntentionSerious:
		return 4
	case IntentionMarriage:
		return 5
	}
	return 0
}

// Value maps the intention onto the 0-100 spectrum. ok is false for unset
// or unknown labels.
func (i Intention) Value() (float64, bool) {
	r := i.Rank()
	if r == 0 {
		return 0, false
	}
	return float64(r-1) * 25, true
}

type Timeline string

const (
	TimelineImmediate    Timeline = "immediate"
	TimelineWithinMonths Timeline = "within_months"
	TimelineWithinYear   Timeline = "within_year"
	TimelineNoRush       Timeline = "no_rush"
	TimelineUnsure       Timeline = "unsure"
)

// Urgency ranks the timeline from 1 (unsure) to 5 (immediate); 0 if unset.
func (t Timeline) Urgency() int {
	switch t {
	case TimelineImmediate:
		return 5
	case TimelineWithinMonths:
		return 4
	case TimelineWithinYear:
		return 3
	case TimelineNoRush:
		return 2
	case TimelineUnsure:
		return 1
	}
	return 0
}

type CommitmentPattern string

const (
	PatternSerialMonogamist CommitmentPattern = "serial_monogamist"
	PatternCasualDater      CommitmentPattern = "casual_dater"
	PatternLongTermSeeker   CommitmentPattern = "long_term_seeker"
	PatternMixed            CommitmentPattern = "mixed"
)

type AttachmentStyle string

const (
	AttachmentSecure   AttachmentStyle = "secure"
	AttachmentAnxious  AttachmentStyle = "anxious"
	AttachmentAvoidant AttachmentStyle = "avoidant"
	AttachmentFearful  AttachmentStyle = "fearful"
)

// DatingHistory holds optional self-reported relationship history.
type DatingHistory struct {
	LongestRelationshipMonths *int              `json:"longest_relationship_months,omitempty"`
	RelationshipCount         *int              `json:"relationship_count,omitempty"`
	MonthsSinceLast           *int              `json:"months_since_last,omitempty"`
	CommitmentPattern         CommitmentPattern `json:"commitment_pattern,omitempty"`
}

type PersonalityTrait struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Importance is the requester's 1-5 rating of the trait; 0 means unset.
	Importance int `json:"importance,omitempty"`
}

// Lifestyle maps a factor name to a string or bool value.
type Lifestyle map[string]interface{}

// Get returns the normalized string value of a factor. Bools become
// "yes"/"no"; empty strings count as missing.
func (l Lifestyle) Get(factor string) (string, bool) {
	raw, ok := l[factor]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		if v {
			return "yes", true
		}
		return "no", true
	default:
		s := strings.ToLower(fmt.Sprint(v))
		return s, s != ""
	}
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Profile is the requester or candidate shape the engine scores. Every field
// except ID is optional.
type Profile struct {
	ID        string     `json:"id"`
	Age       *int       `json:"age,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`

	Location *Coordinates `json:"location,omitempty"`
	// Distance is a free-text distance such as "5 miles away".
	Distance string `json:"distance,omitempty"`

	Interests         []string           `json:"interests,omitempty"`
	PersonalityTraits []PersonalityTrait `json:"personality_traits,omitempty"`

	RelationshipIntention Intention       `json:"relationship_intention,omitempty"`
	TimelineExpectation   Timeline        `json:"timeline_expectation,omitempty"`
	DatingHistory         DatingHistory   `json:"dating_history"`
	AttachmentStyle       AttachmentStyle `json:"attachment_style,omitempty"`
	Lifestyle             Lifestyle       `json:"lifestyle,omitempty"`
	Dealbreakers          []string        `json:"dealbreakers,omitempty"`

	IsPremium  bool `json:"is_premium"`
	IsVerified bool `json:"is_verified"`
}

// AgeAt derives the profile's age at the given instant. Age wins over
// BirthDate when both are set.
func (p *Profile) AgeAt(now time.Time) (int, bool) {
	if p.Age != nil {
		return *p.Age, true
	}
	if p.BirthDate == nil || p.BirthDate.IsZero() {
		return 0, false
	}
	b := *p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age, true
}

// WeightedMatch is a scored candidate. It is built once by the calculator
// and never modified; derived rankings produce new values.
type WeightedMatch struct {
	Profile Profile `json:"profile"`

	MatchScore       int      `json:"match_score"`
	InterestsScore   int      `json:"interests_score"`
	PersonalityScore int      `json:"personality_score"`
	IntentionScore   int      `json:"intention_score"`
	LocationScore    int      `json:"location_score"`
	LifestyleScore   *int     `json:"lifestyle_score,omitempty"`
	AttachmentScore  *int     `json:"attachment_score,omitempty"`
	Dealbreakers     []string `json:"dealbreakers,omitempty"`

	Enhancement *Enhancement `json:"enhancement,omitempty"`
}

// Enhancement records how an interaction-pattern blend changed a match.
type Enhancement struct {
	BaseScore  int     `json:"base_score"`
	MLScore    int     `json:"ml_score"`
	Confidence float64 `json:"confidence"`
}

func percent(f float64) int {
	return clampInt(int(roundHalfUp(f*100)), 0, 100)
}

func intPtr(v int) *int {
	return &v
}
