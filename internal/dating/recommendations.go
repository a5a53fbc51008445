// internal/dating/recommendations.go

package dating

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

const (
	activeUserDays        = 30
	defaultHotpickLimit   = 10
	defaultHotpickTTL     = 24 * time.Hour
	maxReasonsPerHotpick  = 2
	strongSubScoreMinimum = 80
)

type RecommendationEngine struct {
	repo           Repository
	engine         MatchingEngine
	tracker        *patterns.Tracker
	log            logger.Logger
	limit          int
	candidateLimit int
	ttl            time.Duration
	rnd            matching.RandomSource
	now            func() time.Time
}

func NewRecommendationEngine(repo Repository, engine MatchingEngine, tracker *patterns.Tracker, cfg Config, log logger.Logger) *RecommendationEngine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	r := &RecommendationEngine{
		repo:           repo,
		engine:         engine,
		tracker:        tracker,
		log:            log.WithFields(map[string]interface{}{"component": "recommendations"}),
		limit:          cfg.HotpickLimit,
		candidateLimit: cfg.CandidateLimit,
		ttl:            cfg.HotpickTTL,
		now:            time.Now,
	}
	if r.limit <= 0 {
		r.limit = defaultHotpickLimit
	}
	if r.ttl <= 0 {
		r.ttl = defaultHotpickTTL
	}
	return r
}

// GenerateDailyHotpicks builds hotpicks for every recently active user who
// has none yet today. Per-user failures are logged and skipped.
func (r *RecommendationEngine) GenerateDailyHotpicks(ctx context.Context) error {
	activeUsers, err := r.repo.GetActiveUsers(ctx, activeUserDays)
	if err != nil {
		return err
	}

	batchID := uuid.NewString()
	created, skipped := 0, 0
	for _, userID := range activeUsers {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip if already generated today
		hasToday, err := r.repo.HasTodayHotpicks(ctx, userID)
		if err != nil {
			r.log.WithError(err).Warn("hotpick check failed, skipping user", map[string]interface{}{"user_id": userID})
			skipped++
			continue
		}
		if hasToday {
			continue
		}

		n, err := r.generate(ctx, userID, batchID)
		created += n
		if err != nil {
			r.log.WithError(err).Warn("hotpick generation failed, skipping user", map[string]interface{}{"user_id": userID})
			skipped++
		}
	}

	r.log.Info("daily hotpicks generated", map[string]interface{}{
		"batch_id": batchID,
		"users":    len(activeUsers),
		"created":  created,
		"skipped":  skipped,
	})
	return nil
}

// GenerateForUser builds today's hotpicks for a single user on demand.
func (r *RecommendationEngine) GenerateForUser(ctx context.Context, userID string) (int, error) {
	return r.generate(ctx, userID, uuid.NewString())
}

func (r *RecommendationEngine) generate(ctx context.Context, userID, batchID string) (int, error) {
	userRec, err := r.repo.GetUserProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	candidates, err := r.repo.FindCandidates(ctx, userID, &CandidateFilters{
		ExcludeInteracted: true,
		Limit:             r.candidateLimit,
	})
	if err != nil {
		return 0, err
	}

	ranked, err := r.engine.Rank(ctx, toProfile(userRec), toProfiles(candidates), matching.Filters{})
	if err != nil {
		return 0, err
	}
	enhanced := r.tracker.EnhanceScoring(ctx, ranked, userID)

	picks, featured := pickHotpicks(enhanced, r.limit, r.rnd)
	expiresAt := r.now().Add(r.ttl)

	created := 0
	for i, m := range picks {
		reason := generateReason(m)
		hotpick := &Hotpick{
			BatchID:           batchID,
			UserID:            userID,
			RecommendedUserID: m.Profile.ID,
			Score:             m.MatchScore,
			Reason:            &reason,
			Factors:           JSONColumn[HotpickFactors]{Data: factorsFromMatch(m)},
			IsFeatured:        featured && i == 0,
			ExpiresAt:         &expiresAt,
		}
		if err := r.repo.CreateHotpick(ctx, hotpick); err != nil {
			RecordHotpicks(created)
			return created, err
		}
		created++
	}

	RecordHotpicks(created)
	return created, nil
}

// pickHotpicks puts the featured match first and fills the rest in ranked
// order.
func pickHotpicks(ranked []matching.WeightedMatch, limit int, rnd matching.RandomSource) ([]matching.WeightedMatch, bool) {
	top, ok := selectFeatured(ranked, rnd)
	if !ok {
		return nil, false
	}

	picks := make([]matching.WeightedMatch, 0, limit)
	picks = append(picks, top)
	for _, m := range ranked {
		if len(picks) >= limit {
			break
		}
		if m.Profile.ID == top.Profile.ID {
			continue
		}
		picks = append(picks, m)
	}
	return picks, true
}

func generateReason(m matching.WeightedMatch) string {
	reasons := []string{}

	if m.InterestsScore >= 70 {
		reasons = append(reasons, "shares your interests")
	}
	if m.IntentionScore >= strongSubScoreMinimum {
		reasons = append(reasons, "looking for the same thing")
	}
	if m.LocationScore >= strongSubScoreMinimum {
		reasons = append(reasons, "lives nearby")
	}
	if m.AttachmentScore != nil && *m.AttachmentScore >= strongSubScoreMinimum {
		reasons = append(reasons, "has a compatible attachment style")
	}

	if len(reasons) == 0 {
		return "Recommended for you"
	}
	if len(reasons) > maxReasonsPerHotpick {
		reasons = reasons[:maxReasonsPerHotpick]
	}

	reason := strings.Join(reasons, " and ")
	return strings.ToUpper(reason[:1]) + reason[1:]
}

func (r *RecommendationEngine) CleanupExpiredHotpicks(ctx context.Context) error {
	removed, err := r.repo.DeleteExpiredHotpicks(ctx)
	if err != nil {
		return err
	}

	RecordExpiredHotpicks(removed)
	r.log.Info("expired hotpicks removed", map[string]interface{}{"removed": removed})
	return nil
}
