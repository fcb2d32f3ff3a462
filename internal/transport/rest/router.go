package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"campusforms/internal/service"
	"campusforms/internal/transport/rest/handler"
	"campusforms/internal/transport/rest/middleware"
	"campusforms/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	FormService    *service.FormService
	SessionService *service.SessionService
	ExportService  *service.ExportService
	WSHub          *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	formHandler := handler.NewFormHandler(c.FormService, c.ExportService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/forms/{formId}/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/forms/{formId}", wsHandler.StudentWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Student routes (require a form-scoped student token)
	studentRoutes := v1.NewRoute().Subrouter()
	studentRoutes.Use(authMW.RequireStudent)

	studentRoutes.HandleFunc("/forms/{formId}/session", sessionHandler.Get).Methods("GET", "OPTIONS")
	studentRoutes.HandleFunc("/forms/{formId}/session/answer", sessionHandler.Answer).Methods("PUT", "OPTIONS")
	studentRoutes.HandleFunc("/forms/{formId}/session/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	studentRoutes.HandleFunc("/forms/{formId}/session/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")
	studentRoutes.HandleFunc("/forms/{formId}/session/group/{questionId}", sessionHandler.GroupStatus).Methods("GET", "OPTIONS")

	// Staff routes (require staff auth)
	staffRoutes := v1.NewRoute().Subrouter()
	staffRoutes.Use(authMW.RequireStaff)

	staffRoutes.HandleFunc("/forms", formHandler.Create).Methods("POST", "OPTIONS")
	staffRoutes.HandleFunc("/forms", formHandler.List).Methods("GET", "OPTIONS")
	staffRoutes.HandleFunc("/forms/{formId}", formHandler.Get).Methods("GET", "OPTIONS")
	staffRoutes.HandleFunc("/forms/{formId}", formHandler.Update).Methods("PUT", "OPTIONS")
	staffRoutes.HandleFunc("/forms/{formId}", formHandler.Delete).Methods("DELETE", "OPTIONS")
	staffRoutes.HandleFunc("/forms/{formId}/responses", formHandler.Responses).Methods("GET", "OPTIONS")
	staffRoutes.HandleFunc("/forms/{formId}/responses/export", formHandler.Export).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
