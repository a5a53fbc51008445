// internal/dating/admin.go

package dating

import (
	"context"
	"time"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

type AdminService struct {
	repo    Repository
	tracker *patterns.Tracker
	now     func() time.Time
}

func NewAdminService(repo Repository, tracker *patterns.Tracker) *AdminService {
	return &AdminService{repo: repo, tracker: tracker, now: time.Now}
}

// GetMatchingStats combines persisted interaction counts with the in-memory
// tracker state of this instance.
func (a *AdminService) GetMatchingStats(ctx context.Context) (*MatchingStats, error) {
	counts, err := a.repo.GetInteractionStats(ctx, a.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	return &MatchingStats{
		Interactions: counts,
		Tracker:      a.tracker.Stats(),
	}, nil
}
