package middleware

import (
	"context"
	"net/http"
	"strings"

	"campusforms/internal/service"
)

type contextKey string

const (
	StaffIDKey      contextKey = "staffId"
	StudentEmailKey contextKey = "studentEmail"
	StudentNameKey  contextKey = "studentName"
	FormIDKey       contextKey = "formId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireStaff validates a staff JWT from the Authorization header
func (m *AuthMiddleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateStaffToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), StaffIDKey, claims.StaffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStudent validates a student JWT from the Authorization header or
// query param (for WebSocket-style clients)
func (m *AuthMiddleware) RequireStudent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateStudentToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, StudentEmailKey, claims.Email)
		ctx = context.WithValue(ctx, StudentNameKey, claims.Name)
		ctx = context.WithValue(ctx, FormIDKey, claims.FormID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStaffID extracts the staff ID from context
func GetStaffID(ctx context.Context) string {
	if v := ctx.Value(StaffIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetStudentEmail extracts the student email from context
func GetStudentEmail(ctx context.Context) string {
	if v := ctx.Value(StudentEmailKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetStudentName extracts the student name from context
func GetStudentName(ctx context.Context) string {
	if v := ctx.Value(StudentNameKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetFormID extracts the token-scoped form ID from context
func GetFormID(ctx context.Context) string {
	if v := ctx.Value(FormIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
