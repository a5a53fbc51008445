package dating

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/dating").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Matching
	api.HandleFunc("/discover", handler.DiscoverMatches).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
	api.HandleFunc("/interactions", handler.RecordInteraction).Methods("POST")

	// Hotpicks
	api.HandleFunc("/hotpicks", handler.GetHotpicks).Methods("GET")
	api.HandleFunc("/hotpicks/generate", handler.GenerateHotpicks).Methods("POST")

	// Stats
	api.Handle("/stats", authMiddleware.RequireAdmin(http.HandlerFunc(handler.GetStats))).Methods("GET")
}
