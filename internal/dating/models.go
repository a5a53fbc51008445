// internal/dating/models.go

package dating

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

// JSONColumn stores T as a JSONB column. NULL scans to the zero value.
type JSONColumn[T any] struct {
	Data T
}

func (j *JSONColumn[T]) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("json column: unsupported type %T", src)
	}
	if len(raw) == 0 {
		var zero T
		j.Data = zero
		return nil
	}
	return json.Unmarshal(raw, &j.Data)
}

func (j JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j JSONColumn[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Data)
}

func (j *JSONColumn[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &j.Data)
}

// ProfileRecord is a row of dating_profiles.
type ProfileRecord struct {
	UserID    string     `json:"user_id" db:"user_id"`
	BirthDate *time.Time `json:"birth_date,omitempty" db:"birth_date"`

	// Location
	Latitude  *float64 `json:"latitude,omitempty" db:"location_lat"`
	Longitude *float64 `json:"longitude,omitempty" db:"location_lng"`

	Interests         pq.StringArray                          `json:"interests" db:"interests"`
	PersonalityTraits JSONColumn[[]matching.PersonalityTrait] `json:"personality_traits" db:"personality_traits"`

	// Intention
	RelationshipIntention *string                            `json:"relationship_intention,omitempty" db:"relationship_intention"`
	TimelineExpectation   *string                            `json:"timeline_expectation,omitempty" db:"timeline_expectation"`
	DatingHistory         JSONColumn[matching.DatingHistory] `json:"dating_history" db:"dating_history"`
	AttachmentStyle       *string                            `json:"attachment_style,omitempty" db:"attachment_style"`
	Lifestyle             JSONColumn[map[string]interface{}] `json:"lifestyle" db:"lifestyle"`
	Dealbreakers          pq.StringArray                     `json:"dealbreakers" db:"dealbreakers"`

	IsPremium  bool      `json:"is_premium" db:"is_premium"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	LastActive time.Time `json:"last_active" db:"last_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// InteractionRecord is a row of match_interactions.
type InteractionRecord struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TargetID  string    `json:"target_id" db:"target_id"`
	Action    string    `json:"action" db:"action"`
	Source    *string   `json:"source,omitempty" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Hotpick struct {
	ID                int64                      `json:"id" db:"id"`
	BatchID           string                     `json:"batch_id" db:"batch_id"`
	UserID            string                     `json:"user_id" db:"user_id"`
	RecommendedUserID string                     `json:"recommended_user_id" db:"recommended_user_id"`
	Score             int                        `json:"score" db:"score"`
	Reason            *string                    `json:"reason,omitempty" db:"reason"`
	Factors           JSONColumn[HotpickFactors] `json:"factors" db:"factors"`
	IsFeatured        bool                       `json:"is_featured" db:"is_featured"`
	IsSeen            bool                       `json:"is_seen" db:"is_seen"`
	ExpiresAt         *time.Time                 `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt         time.Time                  `json:"created_at" db:"created_at"`
}

// HotpickFactors are the sub-scores behind a hotpick, stored as JSONB.
type HotpickFactors struct {
	Interests   int                   `json:"interests"`
	Personality int                   `json:"personality"`
	Intention   int                   `json:"intention"`
	Location    int                   `json:"location"`
	Lifestyle   *int                  `json:"lifestyle,omitempty"`
	Attachment  *int                  `json:"attachment,omitempty"`
	Enhancement *matching.Enhancement `json:"enhancement,omitempty"`
}

func factorsFromMatch(m matching.WeightedMatch) HotpickFactors {
	return HotpickFactors{
		Interests:   m.InterestsScore,
		Personality: m.PersonalityScore,
		Intention:   m.IntentionScore,
		Location:    m.LocationScore,
		Lifestyle:   m.LifestyleScore,
		Attachment:  m.AttachmentScore,
		Enhancement: m.Enhancement,
	}
}
