package dating

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/auth"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

const testSecret = "handler-test-secret"

// stubService records the last call and returns canned results.
type stubService struct {
	err error

	discoverReq   *DiscoverRequest
	compatOther   string
	interaction   *InteractionRequestDTO
	hotpickParams *GetHotpicksParams
	hotpicks      []*Hotpick
	created       int
}

func (s *stubService) Discover(_ context.Context, _ string, req *DiscoverRequest) (*DiscoverResult, error) {
	s.discoverReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &DiscoverResult{Matches: ranked("a"), Total: 1}, nil
}

func (s *stubService) Compatibility(_ context.Context, _, otherID string) (*CompatibilityResult, error) {
	s.compatOther = otherID
	if s.err != nil {
		return nil, s.err
	}
	return &CompatibilityResult{SuccessProbability: 0.5}, nil
}

func (s *stubService) RecordInteraction(_ context.Context, userID string, dto *InteractionRequestDTO) (*patterns.Interaction, error) {
	s.interaction = dto
	if s.err != nil {
		return nil, s.err
	}
	return &patterns.Interaction{ID: uuid.New(), UserID: userID, TargetID: dto.TargetID, Action: patterns.Action(dto.Action)}, nil
}

func (s *stubService) GetHotpicks(_ context.Context, _ string, params *GetHotpicksParams) ([]*Hotpick, error) {
	s.hotpickParams = params
	return s.hotpicks, s.err
}

func (s *stubService) GenerateHotpicks(context.Context, string) (int, error) {
	return s.created, s.err
}

func (s *stubService) GenerateDailyHotpicks(context.Context) error  { return nil }
func (s *stubService) CleanupExpiredHotpicks(context.Context) error { return nil }

func newTestRouter(t *testing.T, svc Service, repo Repository) *mux.Router {
	t.Helper()
	tracker := patterns.NewTracker(patterns.Config{BufferCapacity: 10, CacheSize: 10, CacheTTL: time.Minute}, nil, nil)
	handler := NewHandler(svc, NewAdminService(repo, tracker), logger.NewTestLogger(t))

	router := mux.NewRouter()
	RegisterRoutes(router, handler, auth.NewMiddleware(auth.NewJWTValidator(testSecret)))
	return router
}

func authorizedRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	return requestWithRole(t, "", method, target, body)
}

func requestWithRole(t *testing.T, role, method, target, body string) *http.Request {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID: "me",
		Type:   "access",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_RequiresAuth(t *testing.T) {
	router := newTestRouter(t, &stubService{}, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dating/discover", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_DiscoverMatches(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet,
		"/api/v1/dating/discover?min_age=25&max_age=35&max_distance=30&intention=relationship&dealbreakers=no-smoking,no-kids&limit=5", ""))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeResponse(t, rec).Success)
	assert.Equal(t, &DiscoverRequest{
		MinAge:       25,
		MaxAge:       35,
		MaxDistance:  30,
		Intention:    "relationship",
		Dealbreakers: []string{"no-smoking", "no-kids"},
		Limit:        5,
	}, svc.discoverReq)
}

func TestHandler_DiscoverMatchesBadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non numeric age", "min_age=old"},
		{"under age", "min_age=16"},
		{"unknown intention", "intention=situationship"},
		{"unknown dealbreaker", "dealbreakers=no-cats"},
		{"limit too large", "limit=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			router := newTestRouter(t, svc, newFakeRepo())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet, "/api/v1/dating/discover?"+tt.query, ""))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.discoverReq)
		})
	}
}

func TestHandler_GetCompatibility(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet, "/api/v1/dating/compatibility/user-42", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", svc.compatOther)
}

func TestHandler_RecordInteraction(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodPost, "/api/v1/dating/interactions",
		`{"target_id":"c1","action":"super_like","source":"hotpicks"}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, &InteractionRequestDTO{TargetID: "c1", Action: "super_like", Source: "hotpicks"}, svc.interaction)
}

func TestHandler_RecordInteractionInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"target_id":`},
		{"missing target", `{"action":"like"}`},
		{"unknown action", `{"target_id":"c1","action":"wink"}`},
		{"unknown source", `{"target_id":"c1","action":"like","source":"ads"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			router := newTestRouter(t, svc, newFakeRepo())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authorizedRequest(t, http.MethodPost, "/api/v1/dating/interactions", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.interaction)
		})
	}
}

func TestHandler_ServiceErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrProfileNotFound, http.StatusNotFound},
		{ErrCannotMatchSelf, http.StatusBadRequest},
		{patterns.ErrInvalidInteraction, http.StatusBadRequest},
		{ErrAccountUnderReview, http.StatusForbidden},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := newTestRouter(t, &stubService{err: tt.err}, newFakeRepo())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authorizedRequest(t, http.MethodPost, "/api/v1/dating/interactions",
				`{"target_id":"c1","action":"like"}`))

			assert.Equal(t, tt.want, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotContains(t, resp.Error, "boom")
		})
	}
}

func TestHandler_GetHotpicks(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet, "/api/v1/dating/hotpicks?limit=4", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &GetHotpicksParams{Limit: 4, ExcludeViewed: true}, svc.hotpickParams)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet, "/api/v1/dating/hotpicks?include_viewed=true&limit=-1", ""))
	assert.Equal(t, &GetHotpicksParams{ExcludeViewed: false}, svc.hotpickParams)
}

func TestHandler_GenerateHotpicks(t *testing.T) {
	router := newTestRouter(t, &stubService{created: 6}, newFakeRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodPost, "/api/v1/dating/hotpicks/generate", ""))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"created":6}}`, rec.Body.String())
}

func TestHandler_GetStats(t *testing.T) {
	repo := newFakeRepo()
	repo.stats = map[string]int64{"like": 2}
	router := newTestRouter(t, &stubService{}, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestWithRole(t, auth.RoleAdmin, http.MethodGet, "/api/v1/dating/stats", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"interactions_last_30_days":{"like":2}`)
}

func TestHandler_GetStatsRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	repo.stats = map[string]int64{"like": 2}
	router := newTestRouter(t, &stubService{}, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authorizedRequest(t, http.MethodGet, "/api/v1/dating/stats", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "interactions_last_30_days")
}
