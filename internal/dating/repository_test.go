package dating

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/matching"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(sqlx.NewDb(db, "postgres")), mock
}

var profileRowColumns = []string{
	"user_id", "birth_date", "location_lat", "location_lng", "interests",
	"personality_traits", "relationship_intention", "timeline_expectation",
	"dating_history", "attachment_style", "lifestyle", "dealbreakers",
	"is_premium", "is_verified", "last_active", "created_at",
}

func TestPostgresRepository_GetUserProfile(t *testing.T) {
	repo, mock := newMockRepo(t)
	birth := time.Date(1995, time.June, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(profileRowColumns).AddRow(
		"u1", birth, 40.7128, -74.0060, "{hiking,jazz}",
		`[{"name":"openness","value":70,"importance":4}]`, "relationship", "within_year",
		`{"relationship_count":2,"commitment_pattern":"long_term_seeker"}`, "secure",
		`{"smoking":"never","drinking":"socially"}`, "{no-smoking}",
		true, false, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM dating_profiles p WHERE p.user_id = $1")).
		WithArgs("u1").
		WillReturnRows(rows)

	rec, err := repo.GetUserProfile(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, []string{"hiking", "jazz"}, []string(rec.Interests))
	assert.Equal(t, []string{"no-smoking"}, []string(rec.Dealbreakers))
	require.Len(t, rec.PersonalityTraits.Data, 1)
	assert.Equal(t, 4, rec.PersonalityTraits.Data[0].Importance)
	assert.Equal(t, matching.PatternLongTermSeeker, rec.DatingHistory.Data.CommitmentPattern)
	assert.Equal(t, "never", rec.Lifestyle.Data["smoking"])

	p := toProfile(rec)
	require.NotNil(t, p.Location)
	assert.Equal(t, 40.7128, p.Location.Latitude)
	assert.Equal(t, matching.IntentionRelationship, p.RelationshipIntention)
	assert.Equal(t, matching.AttachmentSecure, p.AttachmentStyle)
	age, ok := p.AgeAt(now)
	assert.True(t, ok)
	assert.Equal(t, 28, age)
}

func TestPostgresRepository_GetUserProfileNullColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(profileRowColumns).AddRow(
		"u2", nil, nil, nil, nil,
		nil, nil, nil,
		nil, nil, nil, nil,
		false, false, now, now,
	)
	mock.ExpectQuery("FROM dating_profiles p").WithArgs("u2").WillReturnRows(rows)

	rec, err := repo.GetUserProfile(context.Background(), "u2")
	require.NoError(t, err)

	p := toProfile(rec)
	assert.Nil(t, p.Location)
	assert.Nil(t, p.BirthDate)
	assert.Empty(t, p.Interests)
	assert.Empty(t, p.RelationshipIntention)
	assert.Nil(t, p.Lifestyle)
}

func TestPostgresRepository_GetUserProfileNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM dating_profiles p").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPostgresRepository_FindCandidates(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("c1", nil, nil, nil, "{chess}", nil, nil, nil, nil, nil, nil, nil, false, false, now, now).
		AddRow("c2", nil, nil, nil, "{}", nil, nil, nil, nil, nil, nil, nil, false, true, now, now)

	mock.ExpectQuery(`FROM match_interactions i\s+WHERE i.user_id = \$1`).
		WithArgs("u1", 50).
		WillReturnRows(rows)

	got, err := repo.FindCandidates(context.Background(), "u1", &CandidateFilters{ExcludeInteracted: true, Limit: 50})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].UserID)
	assert.True(t, got[1].IsVerified)
}

func TestPostgresRepository_FindCandidatesError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM dating_profiles p").WillReturnError(errors.New("connection reset"))

	_, err := repo.FindCandidates(context.Background(), "u1", &CandidateFilters{Limit: 10})
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresRepository_SaveInteraction(t *testing.T) {
	repo, mock := newMockRepo(t)
	source := "discover"
	at := time.Date(2024, time.March, 1, 20, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO match_interactions")).
		WithArgs("id-1", "u1", "c1", "like", &source, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveInteraction(context.Background(), &InteractionRecord{
		ID: "id-1", UserID: "u1", TargetID: "c1", Action: "like", Source: &source, CreatedAt: at,
	})
	assert.NoError(t, err)
}

func TestPostgresRepository_GetInteractionStats(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Now().Add(-time.Hour)

	mock.ExpectQuery("GROUP BY action").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"action", "total"}).AddRow("like", 12).AddRow("pass", 30))

	stats, err := repo.GetInteractionStats(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"like": 12, "pass": 30}, stats)
}

func TestPostgresRepository_CreateHotpick(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now()
	reason := "Shares your interests"
	expires := created.Add(24 * time.Hour)

	h := &Hotpick{
		BatchID:           "batch-1",
		UserID:            "u1",
		RecommendedUserID: "c1",
		Score:             81,
		Reason:            &reason,
		Factors:           JSONColumn[HotpickFactors]{Data: HotpickFactors{Interests: 90}},
		IsFeatured:        true,
		ExpiresAt:         &expires,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO hotpicks")).
		WithArgs("batch-1", "u1", "c1", 81, &reason, `{"interests":90,"personality":0,"intention":0,"location":0}`, true, &expires).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	require.NoError(t, repo.CreateHotpick(context.Background(), h))
	assert.Equal(t, int64(7), h.ID)
	assert.Equal(t, created, h.CreatedAt)
}

func TestPostgresRepository_GetUserHotpicks(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "user_id", "recommended_user_id", "score", "reason", "factors",
		"is_featured", "is_seen", "expires_at", "created_at",
	}).AddRow(1, "b", "u1", "c1", 88, "Lives nearby", `{"interests":50,"personality":50,"intention":50,"location":95}`, true, false, now, now)

	mock.ExpectQuery(`AND is_seen = FALSE ORDER BY is_featured DESC`).
		WithArgs("u1", 5).
		WillReturnRows(rows)

	got, err := repo.GetUserHotpicks(context.Background(), "u1", 5, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 95, got[0].Factors.Data.Location)
	assert.Equal(t, "Lives nearby", *got[0].Reason)
}

func TestPostgresRepository_HasTodayHotpicks(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasTodayHotpicks(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPostgresRepository_DeleteExpiredHotpicks(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM hotpicks").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpiredHotpicks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestPostgresRepository_GetActiveUsers(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT user_id FROM dating_profiles").
		WithArgs(30).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("a").AddRow("b"))

	ids, err := repo.GetActiveUsers(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestJSONColumn_Scan(t *testing.T) {
	var col JSONColumn[map[string]interface{}]

	require.NoError(t, col.Scan([]byte(`{"diet":"vegan"}`)))
	assert.Equal(t, "vegan", col.Data["diet"])

	require.NoError(t, col.Scan(nil))
	assert.Nil(t, col.Data)

	assert.Error(t, col.Scan(42))
	assert.Error(t, col.Scan("{broken"))
}
