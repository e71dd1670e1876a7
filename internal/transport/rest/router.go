package rest

import (
	"net/http"

	"legalflow/internal/service"
	"legalflow/internal/transport/rest/handler"
	"legalflow/internal/transport/rest/middleware"
	"legalflow/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	ProfileService *service.ProfileService
	AuditService   *service.AuditService
	RollupService  *service.RollupService
	AI             handler.Pinger // nil when AI analysis is disabled
	WSHub          *ws.Hub
	AllowedOrigins string
	MaxUploadBytes int64
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	profileHandler := handler.NewProfileHandler(c.ProfileService)
	auditHandler := handler.NewAuditHandler(c.AuditService, c.MaxUploadBytes)
	rollupHandler := handler.NewRollupHandler(c.RollupService)
	healthHandler := handler.NewHealthHandler(c.AI)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	v1.HandleFunc("/domains", auditHandler.Domains).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	// User routes (require session token)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/me", authHandler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/profile", profileHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/profile", profileHandler.Save).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/scores", auditHandler.Scores).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}", auditHandler.Domain).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/questions/{question}/answer", auditHandler.Answer).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/messages", auditHandler.Conversation).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/messages", auditHandler.SendMessage).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/uploads", auditHandler.Upload).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/risks", auditHandler.Risks).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/domains/{domain}/analysis", rollupHandler.FinalAnalysis).Methods("GET", "OPTIONS")

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
