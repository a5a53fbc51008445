// internal/patterns/tracker.go

package patterns

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

const (
	baseBlendWeight = 0.7
	mlBlendWeight   = 0.3

	similarityThreshold = 0.7
	defaultPrediction   = 0.5
	minPrediction       = 0.05
	maxPrediction       = 0.95

	// confidenceSamples is the sample count at which sample confidence
	// saturates.
	confidenceSamples = 50
	mlSignals         = 5

	topInterestCount   = 10
	topHourCount       = 3
	topAttachmentCount = 2
)

type Config struct {
	BufferCapacity int
	CacheSize      int
	CacheTTL       time.Duration
}

// Tracker owns the interaction and success-pattern buffers and a preference
// cache in front of a PreferenceSource. It is safe for concurrent use.
type Tracker struct {
	interactions *RingBuffer[Interaction]
	successes    *RingBuffer[SuccessPattern]
	source       PreferenceSource
	cache        *PreferenceCache
	log          logger.Logger
	now          func() time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now for timestamps, time-of-day scoring and cache
// expiry.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
		t.cache.now = now
	}
}

func NewTracker(cfg Config, source PreferenceSource, log logger.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	t := &Tracker{
		interactions: NewRingBuffer[Interaction](cfg.BufferCapacity),
		successes:    NewRingBuffer[SuccessPattern](cfg.BufferCapacity),
		source:       source,
		cache:        NewPreferenceCache(cfg.CacheSize, cfg.CacheTTL),
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record appends an interaction to the buffer, filling in a missing ID or
// timestamp. Match and message events that carry both profiles also yield a
// success pattern.
func (t *Tracker) Record(in Interaction) (Interaction, error) {
	if in.UserID == "" || in.TargetID == "" {
		return Interaction{}, fmt.Errorf("%w: user and target ids are required", ErrInvalidInteraction)
	}
	if !in.Action.Valid() {
		return Interaction{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInteraction, in.Action)
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = t.now()
	}

	t.interactions.Add(in)
	interactionsRecorded.WithLabelValues(string(in.Action)).Inc()

	if in.Action.Successful() && in.Context != nil && in.Context.User != nil && in.Context.Target != nil {
		t.successes.Add(extractPattern(in.UserID, in.Context.User, in.Context.Target, in.Timestamp))
		successPatternsRecorded.Inc()
	}
	return in, nil
}

// Interactions returns the buffered interactions oldest first.
func (t *Tracker) Interactions() []Interaction {
	return t.interactions.Snapshot()
}

// SuccessPatterns returns the buffered success patterns oldest first.
func (t *Tracker) SuccessPatterns() []SuccessPattern {
	return t.successes.Snapshot()
}

// Invalidate drops the cached preferences of a user after they change.
func (t *Tracker) Invalidate(userID string) {
	t.cache.Remove(userID)
}

type Stats struct {
	Interactions    int   `json:"interactions"`
	SuccessPatterns int   `json:"success_patterns"`
	CachedUsers     int   `json:"cached_users"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
}

func (t *Tracker) Stats() Stats {
	hits, misses := t.cache.Stats()
	return Stats{
		Interactions:    t.interactions.Len(),
		SuccessPatterns: t.successes.Len(),
		CachedUsers:     t.cache.Len(),
		CacheHits:       hits,
		CacheMisses:     misses,
	}
}

// EnhanceScoring blends each match's score with a score derived from the
// user's learned preferences and re-sorts the result. Any failure to load
// preferences returns the base matches unchanged.
func (t *Tracker) EnhanceScoring(ctx context.Context, base []matching.WeightedMatch, userID string) []matching.WeightedMatch {
	unchanged := append([]matching.WeightedMatch(nil), base...)
	if len(base) == 0 {
		return unchanged
	}

	prefs, err := t.preferences(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrPreferencesNotFound) {
			enhancementsTotal.WithLabelValues("no_preferences").Inc()
			t.log.Debug("no learned preferences, keeping base ranking", map[string]interface{}{"user_id": userID})
		} else {
			enhancementsTotal.WithLabelValues("fallback").Inc()
			t.log.WithError(err).Warn("preference lookup failed, keeping base ranking", map[string]interface{}{
				"user_id": userID,
				"matches": len(base),
			})
		}
		return unchanged
	}

	now := t.now()
	enhanced := make([]matching.WeightedMatch, len(base))
	for i, m := range base {
		ml, signals := mlScore(prefs, &m.Profile, now)
		mlScores.Observe(float64(ml))

		blended := int(math.Floor(float64(m.MatchScore)*baseBlendWeight + float64(ml)*mlBlendWeight + 0.5))
		m.MatchScore = clampInt(blended, 1, 99)
		m.Enhancement = &matching.Enhancement{
			BaseScore:  base[i].MatchScore,
			MLScore:    ml,
			Confidence: confidence(signals, prefs.Samples),
		}
		enhanced[i] = m
	}
	matching.SortMatches(enhanced)

	enhancementsTotal.WithLabelValues("applied").Inc()
	return enhanced
}

func (t *Tracker) preferences(ctx context.Context, userID string) (*UserPreferences, error) {
	if prefs, ok := t.cache.Get(userID); ok {
		preferenceCacheLookups.WithLabelValues("hit").Inc()
		return prefs, nil
	}
	preferenceCacheLookups.WithLabelValues("miss").Inc()

	if t.source == nil {
		return nil, ErrPreferencesNotFound
	}
	prefs, err := t.source.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	t.cache.Add(userID, prefs)
	return prefs, nil
}

// PredictSuccess estimates the chance the pair connects by comparing it with
// stored success patterns. Only patterns more than 70% similar count; with
// none the estimate is 0.5.
func (t *Tracker) PredictSuccess(user, candidate *matching.Profile) (float64, error) {
	if user == nil || candidate == nil {
		return 0, fmt.Errorf("predict success: %w", matching.ErrNilProfile)
	}

	features := extractPattern(user.ID, user, candidate, t.now())
	best, found := 0.0, false
	for _, p := range t.successes.Snapshot() {
		sim := similarity(features, p)
		if sim <= similarityThreshold {
			continue
		}
		if v := p.SuccessRate * sim; !found || v > best {
			best, found = v, true
		}
	}

	if !found {
		return defaultPrediction, nil
	}
	return math.Max(minPrediction, math.Min(maxPrediction, best)), nil
}

func extractPattern(userID string, user, target *matching.Profile, at time.Time) SuccessPattern {
	p := SuccessPattern{
		UserID:                   userID,
		InterestOverlap:          matching.InterestScore(user.Interests, target.Interests),
		PersonalityCompatibility: matching.TraitScore(user.PersonalityTraits, target.PersonalityTraits),
		DistanceMiles:            -1,
		AttachmentCompatibility:  matching.AttachmentScore(user.AttachmentStyle, target.AttachmentStyle),
		SuccessRate:              1.0,
		SampleSize:               1,
		RecordedAt:               at,
	}

	a1, ok1 := user.AgeAt(at)
	a2, ok2 := target.AgeAt(at)
	switch {
	case ok1 && ok2:
		p.AgeMin, p.AgeMax, p.HasAge = minInt(a1, a2), maxInt(a1, a2), true
	case ok1:
		p.AgeMin, p.AgeMax, p.HasAge = a1, a1, true
	case ok2:
		p.AgeMin, p.AgeMax, p.HasAge = a2, a2, true
	}

	if miles, ok := matching.PairDistance(user, target); ok {
		p.DistanceMiles = miles
	}
	return p
}

// similarity gives equal credit to each feature of f that is close to p.
func similarity(f, p SuccessPattern) float64 {
	matched := 0
	if f.HasAge && p.HasAge && f.AgeMin >= p.AgeMin && f.AgeMax <= p.AgeMax {
		matched++
	}
	if math.Abs(f.InterestOverlap-p.InterestOverlap) < 0.2 {
		matched++
	}
	if math.Abs(f.PersonalityCompatibility-p.PersonalityCompatibility) < 0.15 {
		matched++
	}
	if f.DistanceMiles >= 0 && p.DistanceMiles >= 0 && math.Abs(f.DistanceMiles-p.DistanceMiles) < 10 {
		matched++
	}
	if math.Abs(f.AttachmentCompatibility-p.AttachmentCompatibility) < 0.1 {
		matched++
	}
	return float64(matched) / 5
}

// mlScore rates a candidate against learned preferences, starting from 50:
//
//	age inside the learned range      +15 (within 3 years of it +5)
//	candidate interests among top 10  +5 each, at most +20
//	trait closeness to learned means  +round(15 * closeness)
//	current hour among top 3 hours    +5
//	attachment among top 2 styles     +10
//
// signals counts how many of the five rules had data to judge.
func mlScore(prefs *UserPreferences, candidate *matching.Profile, now time.Time) (score int, signals int) {
	score = 50

	if age, ok := candidate.AgeAt(now); ok && prefs.hasAgeRange() {
		signals++
		switch {
		case age >= prefs.MinAge && age <= prefs.MaxAge:
			score += 15
		case age >= prefs.MinAge-3 && age <= prefs.MaxAge+3:
			score += 5
		}
	}

	if len(prefs.Interests) > 0 && len(candidate.Interests) > 0 {
		signals++
		top := topKeys(prefs.Interests, topInterestCount)
		hits := 0
		seen := map[string]bool{}
		for _, interest := range candidate.Interests {
			key := matching.NormalizeInterest(interest)
			if top[key] && !seen[key] {
				seen[key] = true
				hits++
			}
		}
		score += minInt(5*hits, 20)
	}

	var closeness float64
	compared := 0
	for _, trait := range candidate.PersonalityTraits {
		key := matching.TraitKey(trait.Name)
		pref, ok := prefs.Traits[key]
		if !ok {
			continue
		}
		closeness += 1 - math.Min(1, math.Abs(trait.Value-pref)/100)
		compared++
	}
	if compared > 0 {
		signals++
		score += int(math.Floor(15*closeness/float64(compared) + 0.5))
	}

	if hours := topHours(prefs.ActiveHours, topHourCount); len(hours) > 0 {
		signals++
		if hours[now.Hour()] {
			score += 5
		}
	}

	if len(prefs.AttachmentStyles) > 0 && candidate.AttachmentStyle != "" {
		signals++
		styles := make(map[string]int, len(prefs.AttachmentStyles))
		for s, n := range prefs.AttachmentStyles {
			styles[string(s)] = n
		}
		if topKeys(styles, topAttachmentCount)[string(candidate.AttachmentStyle)] {
			score += 10
		}
	}

	return clampInt(score, 0, 100), signals
}

// confidence mixes how many rules fired with how much history backs them.
func confidence(signals, samples int) float64 {
	signalPart := float64(signals) / mlSignals
	samplePart := math.Min(1, float64(samples)/confidenceSamples)
	return 0.5*signalPart + 0.5*samplePart
}

// topKeys returns the n highest-count keys with positive counts, ties broken
// alphabetically.
func topKeys(counts map[string]int, n int) map[string]bool {
	keys := make([]string, 0, len(counts))
	for k, v := range counts {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

func topHours(hours [24]int, n int) map[int]bool {
	idx := make([]int, 0, 24)
	for h, c := range hours {
		if c > 0 {
			idx = append(idx, h)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return hours[idx[i]] > hours[idx[j]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	out := make(map[int]bool, len(idx))
	for _, h := range idx {
		out[h] = true
	}
	return out
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
