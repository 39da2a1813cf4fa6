package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"altervalue/internal/service"
	"altervalue/internal/transport/rest/handler"
	"altervalue/internal/transport/rest/middleware"
	"altervalue/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	CampaignService    *service.CampaignService
	ResponseService    *service.ResponseService
	CalculationService *service.CalculationService
	WSHub              *ws.Hub
	Logger             *zap.Logger

	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	campaignHandler := handler.NewCampaignHandler(c.CampaignService, c.ResponseService)
	responseHandler := handler.NewResponseHandler(c.CampaignService, c.ResponseService)
	resultsHandler := handler.NewResultsHandler(c.CalculationService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CampaignService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/public/campaigns/{code}", responseHandler.Resolve).Methods("GET", "OPTIONS")
	v1.HandleFunc("/public/campaigns/{code}/responses", responseHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/campaigns/{campaignId}", wsHandler.CampaignWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Consultant routes (require consultant auth)
	consultantRoutes := v1.NewRoute().Subrouter()
	consultantRoutes.Use(authMW.RequireConsultant)

	consultantRoutes.HandleFunc("/campaigns", campaignHandler.Create).Methods("POST", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns", campaignHandler.List).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}", campaignHandler.Get).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}", campaignHandler.Update).Methods("PUT", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}", campaignHandler.Delete).Methods("DELETE", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}/activate", campaignHandler.Activate).Methods("POST", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}/close", campaignHandler.Close).Methods("POST", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}/responses/count", campaignHandler.ResponseCount).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}/results", resultsHandler.Get).Methods("GET", "OPTIONS")
	consultantRoutes.HandleFunc("/campaigns/{campaignId}/results/invalidate", resultsHandler.Invalidate).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
