package dating

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/auth"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

type Handler struct {
	service Service
	admin   *AdminService
	log     logger.Logger
}

func NewHandler(service Service, admin *AdminService, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		service: service,
		admin:   admin,
		log:     log.WithFields(map[string]interface{}{"component": "dating_handler"}),
	}
}

func (h *Handler) DiscoverMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, err := parseDiscoverRequest(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Discover(r.Context(), userID, req)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to discover matches")
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

func parseDiscoverRequest(r *http.Request) (*DiscoverRequest, error) {
	q := r.URL.Query()
	req := &DiscoverRequest{
		Intention: q.Get("intention"),
	}

	ints := map[string]*int{"min_age": &req.MinAge, "max_age": &req.MaxAge, "limit": &req.Limit}
	for key, dst := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.New(key + " must be a number")
			}
			*dst = n
		}
	}

	if v := q.Get("max_distance"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("max_distance must be a number")
		}
		req.MaxDistance = d
	}

	for _, v := range q["dealbreakers"] {
		for _, label := range strings.Split(v, ",") {
			if label = strings.TrimSpace(label); label != "" {
				req.Dealbreakers = append(req.Dealbreakers, label)
			}
		}
	}

	return req, nil
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.service.Compatibility(r.Context(), userID, mux.Vars(r)["userId"])
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to calculate compatibility")
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto InteractionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	interaction, err := h.service.RecordInteraction(r.Context(), userID, &dto)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to record interaction")
		return
	}

	utils.SuccessResponse(w, interaction, http.StatusCreated)
}

func (h *Handler) GetHotpicks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params := &GetHotpicksParams{
		ExcludeViewed: r.URL.Query().Get("include_viewed") != "true",
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			params.Limit = l
		}
	}

	hotpicks, err := h.service.GetHotpicks(r.Context(), userID, params)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get hotpicks")
		return
	}
	if hotpicks == nil {
		hotpicks = []*Hotpick{}
	}

	utils.SuccessResponse(w, hotpicks, http.StatusOK)
}

func (h *Handler) GenerateHotpicks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	created, err := h.service.GenerateHotpicks(r.Context(), userID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to generate hotpicks")
		return
	}

	utils.SuccessResponse(w, GenerateHotpicksResult{Created: created}, http.StatusCreated)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetMatchingStats(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get stats")
		return
	}

	utils.SuccessResponse(w, stats, http.StatusOK)
}

// respondWithServiceError maps domain errors to status codes; anything
// unrecognised is logged and reported as a 500 with a generic message.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCannotMatchSelf), errors.Is(err, patterns.ErrInvalidInteraction):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAccountUnderReview):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrRateLimited):
		utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
	default:
		h.log.WithError(err).Error(fallback, nil)
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
