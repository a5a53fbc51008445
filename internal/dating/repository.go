package dating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Profiles for matching
	GetUserProfile(ctx context.Context, userID string) (*ProfileRecord, error)
	FindCandidates(ctx context.Context, userID string, filters *CandidateFilters) ([]*ProfileRecord, error)
	GetActiveUsers(ctx context.Context, daysActive int) ([]string, error)

	// Interactions
	SaveInteraction(ctx context.Context, rec *InteractionRecord) error
	CountRecentInteractions(ctx context.Context, userID string, since time.Time) (int, error)
	GetInteractionStats(ctx context.Context, since time.Time) (map[string]int64, error)

	// Safety
	GetUserReportCount(ctx context.Context, userID string, days int) (int, error)

	// Hotpicks
	CreateHotpick(ctx context.Context, hotpick *Hotpick) error
	GetUserHotpicks(ctx context.Context, userID string, limit int, excludeViewed bool) ([]*Hotpick, error)
	HasTodayHotpicks(ctx context.Context, userID string) (bool, error)
	DeleteExpiredHotpicks(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	p.user_id, p.birth_date, p.location_lat, p.location_lng, p.interests,
	p.personality_traits, p.relationship_intention, p.timeline_expectation,
	p.dating_history, p.attachment_style, p.lifestyle, p.dealbreakers,
	p.is_premium, p.is_verified, p.last_active, p.created_at`

// Profile Methods

func (r *postgresRepository) GetUserProfile(ctx context.Context, userID string) (*ProfileRecord, error) {
	var profile ProfileRecord
	query := `SELECT ` + profileColumns + ` FROM dating_profiles p WHERE p.user_id = $1`

	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	return &profile, nil
}

// FindCandidates returns recently active profiles other than the requester,
// skipping blocked users and, optionally, anyone already acted on.
func (r *postgresRepository) FindCandidates(ctx context.Context, userID string, filters *CandidateFilters) ([]*ProfileRecord, error) {
	query := `SELECT ` + profileColumns + `
		FROM dating_profiles p
		WHERE p.user_id <> $1
			AND p.last_active > NOW() - INTERVAL '30 days'
			AND NOT EXISTS (
				SELECT 1 FROM user_blocks b
				WHERE (b.blocker_id = $1 AND b.blocked_id = p.user_id)
				   OR (b.blocker_id = p.user_id AND b.blocked_id = $1)
			)`

	if filters.ExcludeInteracted {
		query += `
			AND NOT EXISTS (
				SELECT 1 FROM match_interactions i
				WHERE i.user_id = $1 AND i.target_id = p.user_id
			)`
	}

	query += ` ORDER BY p.last_active DESC LIMIT $2`

	var candidates []*ProfileRecord
	if err := r.db.SelectContext(ctx, &candidates, query, userID, filters.Limit); err != nil {
		return nil, fmt.Errorf("find candidates for %s: %w", userID, err)
	}

	return candidates, nil
}

func (r *postgresRepository) GetActiveUsers(ctx context.Context, daysActive int) ([]string, error) {
	query := `
		SELECT user_id FROM dating_profiles
		WHERE last_active > NOW() - $1 * INTERVAL '1 day'
		ORDER BY user_id
	`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, daysActive); err != nil {
		return nil, fmt.Errorf("get active users: %w", err)
	}

	return ids, nil
}

// Interaction Methods

func (r *postgresRepository) SaveInteraction(ctx context.Context, rec *InteractionRecord) error {
	query := `
		INSERT INTO match_interactions (id, user_id, target_id, action, source, created_at)
		VALUES (:id, :user_id, :target_id, :action, :source, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("save interaction: %w", err)
	}

	return nil
}

func (r *postgresRepository) CountRecentInteractions(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM match_interactions WHERE user_id = $1 AND created_at > $2`

	err := r.db.GetContext(ctx, &count, query, userID, since)
	return count, err
}

func (r *postgresRepository) GetInteractionStats(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT action, COUNT(*) AS total
		FROM match_interactions
		WHERE created_at > $1
		GROUP BY action
	`

	rows, err := r.db.QueryxContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("interaction stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var action string
		var total int64
		if err := rows.Scan(&action, &total); err != nil {
			return nil, fmt.Errorf("interaction stats: %w", err)
		}
		stats[action] = total
	}

	return stats, rows.Err()
}

func (r *postgresRepository) GetUserReportCount(ctx context.Context, userID string, days int) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM user_reports
		WHERE reported_id = $1 AND created_at > NOW() - $2 * INTERVAL '1 day'
	`

	err := r.db.GetContext(ctx, &count, query, userID, days)
	return count, err
}

// Hotpicks Methods

func (r *postgresRepository) CreateHotpick(ctx context.Context, hotpick *Hotpick) error {
	query := `
		INSERT INTO hotpicks (
			batch_id, user_id, recommended_user_id, score, reason, factors, is_featured, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, recommended_user_id, DATE(created_at))
		DO UPDATE SET score = $4, reason = $5, factors = $6, is_featured = $7
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		hotpick.BatchID, hotpick.UserID, hotpick.RecommendedUserID,
		hotpick.Score, hotpick.Reason, hotpick.Factors, hotpick.IsFeatured, hotpick.ExpiresAt,
	).Scan(&hotpick.ID, &hotpick.CreatedAt)
	if err != nil {
		return fmt.Errorf("create hotpick: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetUserHotpicks(ctx context.Context, userID string, limit int, excludeViewed bool) ([]*Hotpick, error) {
	query := `
		SELECT id, batch_id, user_id, recommended_user_id, score, reason, factors,
		       is_featured, is_seen, expires_at, created_at
		FROM hotpicks
		WHERE user_id = $1
		      AND (expires_at IS NULL OR expires_at > NOW())
	`

	if excludeViewed {
		query += " AND is_seen = FALSE"
	}

	query += " ORDER BY is_featured DESC, score DESC, created_at DESC LIMIT $2"

	var hotpicks []*Hotpick
	if err := r.db.SelectContext(ctx, &hotpicks, query, userID, limit); err != nil {
		return nil, fmt.Errorf("get hotpicks: %w", err)
	}

	return hotpicks, nil
}

func (r *postgresRepository) HasTodayHotpicks(ctx context.Context, userID string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM hotpicks
			WHERE user_id = $1 AND created_at >= date_trunc('day', NOW())
		)
	`

	err := r.db.GetContext(ctx, &exists, query, userID)
	return exists, err
}

func (r *postgresRepository) DeleteExpiredHotpicks(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM hotpicks
		WHERE expires_at < NOW() OR created_at < NOW() - INTERVAL '7 days'
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired hotpicks: %w", err)
	}

	return res.RowsAffected()
}
