// internal/patterns/models.go

// Package patterns tracks swipe, message and match events and uses them to
// re-rank already scored candidates. It is a heuristic over a bounded
// in-memory sample, not a trained model.
package patterns

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

var (
	ErrInvalidInteraction  = errors.New("invalid interaction")
	ErrPreferencesNotFound = errors.New("user preferences not found")
)

type Action string

const (
	ActionLike      Action = "like"
	ActionPass      Action = "pass"
	ActionSuperLike Action = "super_like"
	ActionMessage   Action = "message"
	ActionMatch     Action = "match"
)

func (a Action) Valid() bool {
	switch a {
	case ActionLike, ActionPass, ActionSuperLike, ActionMessage, ActionMatch:
		return true
	}
	return false
}

// Positive reports whether the action signals interest in the target.
func (a Action) Positive() bool {
	return a.Valid() && a != ActionPass
}

// Successful reports whether the action marks a connection worth learning a
// success pattern from.
func (a Action) Successful() bool {
	return a == ActionMatch || a == ActionMessage
}

// Interaction is one tracked event between two users.
type Interaction struct {
	ID        uuid.UUID           `json:"id"`
	UserID    string              `json:"user_id"`
	TargetID  string              `json:"target_id"`
	Action    Action              `json:"action"`
	Timestamp time.Time           `json:"timestamp"`
	Context   *InteractionContext `json:"context,omitempty"`
}

// InteractionContext carries the profiles involved, when the caller has them.
type InteractionContext struct {
	User   *matching.Profile `json:"user,omitempty"`
	Target *matching.Profile `json:"target,omitempty"`
	Source string            `json:"source,omitempty"`
}

// SuccessPattern is the feature vector of one successful pairing.
type SuccessPattern struct {
	UserID                   string  `json:"user_id"`
	AgeMin                   int     `json:"age_min"`
	AgeMax                   int     `json:"age_max"`
	HasAge                   bool    `json:"has_age"`
	InterestOverlap          float64 `json:"interest_overlap"`
	PersonalityCompatibility float64 `json:"personality_compatibility"`
	// DistanceMiles is -1 when the distance is unknown.
	DistanceMiles           float64 `json:"distance_miles"`
	AttachmentCompatibility float64 `json:"attachment_compatibility"`
	// TimeToMessage is not measured yet and is always nil.
	TimeToMessage *time.Duration `json:"time_to_message,omitempty"`
	SuccessRate   float64        `json:"success_rate"`
	SampleSize    int            `json:"sample_size"`
	RecordedAt    time.Time      `json:"recorded_at"`
}

// UserPreferences is what a user has shown interest in so far.
type UserPreferences struct {
	UserID string `json:"user_id"`
	// MinAge and MaxAge are 0 until an age has been learned.
	MinAge int `json:"min_age"`
	MaxAge int `json:"max_age"`
	// Interests counts positive actions per candidate interest.
	Interests map[string]int `json:"interests,omitempty"`
	// Traits holds the running mean value of each trait on liked profiles.
	Traits           map[string]float64               `json:"traits,omitempty"`
	TraitSamples     map[string]int                   `json:"trait_samples,omitempty"`
	ActiveHours      [24]int                          `json:"active_hours"`
	AttachmentStyles map[matching.AttachmentStyle]int `json:"attachment_styles,omitempty"`
	Samples          int                              `json:"samples"`
	UpdatedAt        time.Time                        `json:"updated_at"`
}

func NewUserPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:           userID,
		Interests:        map[string]int{},
		Traits:           map[string]float64{},
		TraitSamples:     map[string]int{},
		AttachmentStyles: map[matching.AttachmentStyle]int{},
	}
}

// Clone returns a deep copy.
func (p *UserPreferences) Clone() *UserPreferences {
	c := *p
	c.Interests = make(map[string]int, len(p.Interests))
	for k, v := range p.Interests {
		c.Interests[k] = v
	}
	c.Traits = make(map[string]float64, len(p.Traits))
	for k, v := range p.Traits {
		c.Traits[k] = v
	}
	c.TraitSamples = make(map[string]int, len(p.TraitSamples))
	for k, v := range p.TraitSamples {
		c.TraitSamples[k] = v
	}
	c.AttachmentStyles = make(map[matching.AttachmentStyle]int, len(p.AttachmentStyles))
	for k, v := range p.AttachmentStyles {
		c.AttachmentStyles[k] = v
	}
	return &c
}

func (p *UserPreferences) hasAgeRange() bool {
	return p.MaxAge > 0 && p.MinAge <= p.MaxAge
}
