package dating

import (
	"context"
	"fmt"
	"time"
)

const (
	reportWindowDays    = 30
	maxReports          = 3
	interactionWindow   = 24 * time.Hour
	maxDailyInteraction = 1000
)

type SafetyService struct {
	repo Repository
	now  func() time.Time
}

func NewSafetyService(repo Repository) *SafetyService {
	return &SafetyService{repo: repo, now: time.Now}
}

// VerifyInteraction rejects swipes from accounts under review and from
// accounts swiping faster than a person plausibly could.
func (s *SafetyService) VerifyInteraction(ctx context.Context, userID string) error {
	// Check if sender has been reported
	reportCount, err := s.repo.GetUserReportCount(ctx, userID, reportWindowDays)
	if err != nil {
		return fmt.Errorf("report count: %w", err)
	}
	if reportCount > maxReports {
		return ErrAccountUnderReview
	}

	// Check interaction frequency (spam prevention)
	recent, err := s.repo.CountRecentInteractions(ctx, userID, s.now().Add(-interactionWindow))
	if err != nil {
		return fmt.Errorf("interaction count: %w", err)
	}
	if recent >= maxDailyInteraction {
		return ErrRateLimited
	}

	return nil
}
