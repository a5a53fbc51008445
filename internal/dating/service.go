// internal/dating/service.go

package dating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

var (
	ErrProfileNotFound    = errors.New("dating profile not found")
	ErrCannotMatchSelf    = errors.New("cannot match with yourself")
	ErrAccountUnderReview = errors.New("account under review")
	ErrRateLimited        = errors.New("too many interactions, please slow down")
)

const defaultDiscoverLimit = 20

type Service interface {
	// Matching
	Discover(ctx context.Context, userID string, req *DiscoverRequest) (*DiscoverResult, error)
	Compatibility(ctx context.Context, userID, otherID string) (*CompatibilityResult, error)
	RecordInteraction(ctx context.Context, userID string, dto *InteractionRequestDTO) (*patterns.Interaction, error)

	// Hotpicks & Recommendations
	GetHotpicks(ctx context.Context, userID string, params *GetHotpicksParams) ([]*Hotpick, error)
	GenerateHotpicks(ctx context.Context, userID string) (int, error)

	// Scheduled Jobs
	GenerateDailyHotpicks(ctx context.Context) error
	CleanupExpiredHotpicks(ctx context.Context) error
}

// Config carries the matching knobs loaded from the environment.
type Config struct {
	MaxPreferredDistance float64
	CandidateLimit       int
	HotpickLimit         int
	HotpickTTL           time.Duration
}

type Option func(*service)

// WithRandom fixes the source used to pick featured matches.
func WithRandom(rnd matching.RandomSource) Option {
	return func(s *service) {
		s.rnd = rnd
		s.hotpicks.rnd = rnd
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
		s.safety.now = now
		s.hotpicks.now = now
	}
}

type service struct {
	repo     Repository
	engine   MatchingEngine
	tracker  *patterns.Tracker
	prefs    patterns.PreferenceStore
	safety   *SafetyService
	hotpicks *RecommendationEngine
	log      logger.Logger
	cfg      Config
	rnd      matching.RandomSource
	now      func() time.Time
}

// NewService wires the matching pipeline. prefs may be nil, in which case
// interactions are tracked but no preferences are learned.
func NewService(repo Repository, engine MatchingEngine, tracker *patterns.Tracker, prefs patterns.PreferenceStore, cfg Config, log logger.Logger, opts ...Option) Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 200
	}

	s := &service{
		repo:     repo,
		engine:   engine,
		tracker:  tracker,
		prefs:    prefs,
		safety:   NewSafetyService(repo),
		hotpicks: NewRecommendationEngine(repo, engine, tracker, cfg, log),
		log:      log.WithFields(map[string]interface{}{"component": "dating_service"}),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover ranks the candidate pool for a user, blends in learned
// preferences and picks one featured match.
func (s *service) Discover(ctx context.Context, userID string, req *DiscoverRequest) (*DiscoverResult, error) {
	start := time.Now()
	defer func() { RecordResponseTime("discover", time.Since(start)) }()

	if req == nil {
		req = &DiscoverRequest{}
	}

	userRec, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		RecordDiscover("error")
		return nil, err
	}

	candidates, err := s.repo.FindCandidates(ctx, userID, &CandidateFilters{
		ExcludeInteracted: true,
		Limit:             s.cfg.CandidateLimit,
	})
	if err != nil {
		RecordDiscover("error")
		return nil, err
	}

	ranked, err := s.engine.Rank(ctx, toProfile(userRec), toProfiles(candidates), discoverFilters(req))
	if err != nil {
		RecordDiscover("error")
		return nil, fmt.Errorf("discover: %w", err)
	}

	// The limit applies after enhancement, not in the ranker.
	enhanced := s.tracker.EnhanceScoring(ctx, ranked, userID)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}
	if len(enhanced) > limit {
		enhanced = enhanced[:limit]
	}

	result := &DiscoverResult{Matches: enhanced, Total: len(enhanced)}
	if featured, ok := selectFeatured(enhanced, s.rnd); ok {
		result.Featured = &featured
	}

	for _, m := range enhanced {
		RecordCompatibilityScore(m.MatchScore)
	}
	if len(enhanced) == 0 {
		RecordDiscover("empty")
	} else {
		RecordDiscover("ok")
	}

	s.log.Debug("discover completed", map[string]interface{}{
		"user_id":    userID,
		"pool":       len(candidates),
		"ranked":     len(ranked),
		"returned":   len(enhanced),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return result, nil
}

// discoverFilters maps query filters. The ranker reads the requester's own
// intention from the profile; req.Intention only narrows further.
func discoverFilters(req *DiscoverRequest) matching.Filters {
	f := matching.Filters{
		Intention:    matching.Intention(req.Intention),
		MaxDistance:  req.MaxDistance,
		Dealbreakers: req.Dealbreakers,
	}
	if req.MinAge > 0 {
		minAge := req.MinAge
		f.MinAge = &minAge
	}
	if req.MaxAge > 0 {
		maxAge := req.MaxAge
		f.MaxAge = &maxAge
	}
	return f
}

func selectFeatured(ranked []matching.WeightedMatch, rnd matching.RandomSource) (matching.WeightedMatch, bool) {
	if rnd == nil {
		return matching.SelectFeaturedDefault(ranked)
	}
	return matching.SelectFeatured(ranked, rnd)
}

// Compatibility scores one pair in full: the weighted match, the extended
// intention analysis and the pattern-based success estimate.
func (s *service) Compatibility(ctx context.Context, userID, otherID string) (*CompatibilityResult, error) {
	if userID == otherID {
		return nil, ErrCannotMatchSelf
	}

	userRec, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	otherRec, err := s.repo.GetUserProfile(ctx, otherID)
	if err != nil {
		return nil, err
	}
	user, other := toProfile(userRec), toProfile(otherRec)

	match, err := s.engine.Score(user, other)
	if err != nil {
		return nil, err
	}
	intention, err := matching.AnalyzeIntention(user, other)
	if err != nil {
		return nil, err
	}
	probability, err := s.tracker.PredictSuccess(user, other)
	if err != nil {
		return nil, err
	}

	RecordCompatibilityScore(match.MatchScore)
	return &CompatibilityResult{
		Match:              match,
		Intention:          intention,
		SuccessProbability: probability,
	}, nil
}

// RecordInteraction persists a swipe, feeds it to the tracker and updates
// the user's learned preferences. A failed preference update is logged and
// does not fail the call.
func (s *service) RecordInteraction(ctx context.Context, userID string, dto *InteractionRequestDTO) (*patterns.Interaction, error) {
	if dto.TargetID == userID {
		return nil, ErrCannotMatchSelf
	}
	action := patterns.Action(dto.Action)
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", patterns.ErrInvalidInteraction, dto.Action)
	}

	if err := s.safety.VerifyInteraction(ctx, userID); err != nil {
		return nil, err
	}

	userRec, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	targetRec, err := s.repo.GetUserProfile(ctx, dto.TargetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	in := patterns.Interaction{
		ID:        uuid.New(),
		UserID:    userID,
		TargetID:  dto.TargetID,
		Action:    action,
		Timestamp: now,
		Context: &patterns.InteractionContext{
			User:   toProfile(userRec),
			Target: toProfile(targetRec),
			Source: dto.Source,
		},
	}

	rec := &InteractionRecord{
		ID:        in.ID.String(),
		UserID:    userID,
		TargetID:  dto.TargetID,
		Action:    dto.Action,
		CreatedAt: now,
	}
	if dto.Source != "" {
		rec.Source = &dto.Source
	}
	if err := s.repo.SaveInteraction(ctx, rec); err != nil {
		return nil, err
	}
	RecordInteraction(dto.Action)

	recorded, err := s.tracker.Record(in)
	if err != nil {
		return nil, err
	}

	s.learn(ctx, userID, in.Context.Target, action, now)

	recorded.Context = nil
	return &recorded, nil
}

func (s *service) learn(ctx context.Context, userID string, target *matching.Profile, action patterns.Action, at time.Time) {
	if s.prefs == nil {
		return
	}
	log := s.log.WithFields(map[string]interface{}{"user_id": userID, "action": string(action)})

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if errors.Is(err, patterns.ErrPreferencesNotFound) {
		prefs = patterns.NewUserPreferences(userID)
	} else if err != nil {
		log.WithError(err).Warn("failed to load preferences, skipping update", nil)
		return
	}

	if err := s.prefs.SavePreferences(ctx, patterns.Learn(prefs, target, action, at)); err != nil {
		log.WithError(err).Warn("failed to save preferences", nil)
		return
	}
	s.tracker.Invalidate(userID)
}

func (s *service) GetHotpicks(ctx context.Context, userID string, params *GetHotpicksParams) ([]*Hotpick, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = s.cfg.HotpickLimit
	}
	return s.repo.GetUserHotpicks(ctx, userID, limit, params.ExcludeViewed)
}

func (s *service) GenerateHotpicks(ctx context.Context, userID string) (int, error) {
	return s.hotpicks.GenerateForUser(ctx, userID)
}

func (s *service) GenerateDailyHotpicks(ctx context.Context) error {
	return s.hotpicks.GenerateDailyHotpicks(ctx)
}

func (s *service) CleanupExpiredHotpicks(ctx context.Context) error {
	return s.hotpicks.CleanupExpiredHotpicks(ctx)
}
