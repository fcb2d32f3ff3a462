package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"campusforms/internal/config"
	"campusforms/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles staff and student authentication
type AuthService struct {
	staffUsername string
	staffPassword string
	jwtSecret     []byte
	checkTimeout  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		staffUsername: cfg.StaffUsername,
		staffPassword: cfg.StaffPassword,
		jwtSecret:     []byte(cfg.JWTSecret),
		checkTimeout:  cfg.AuthCheckTimeout,
	}
}

// Login validates staff credentials and returns a token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.staffUsername || password != s.staffPassword {
		return nil, ErrInvalidCredentials
	}

	staffID := "staff_" + uuid.New().String()[:8]

	claims := &model.StaffClaims{
		StaffID: staffID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{Token: tokenString, StaffID: staffID}, nil
}

// ValidateStaffToken validates a staff JWT and returns claims
func (s *AuthService) ValidateStaffToken(tokenString string) (*model.StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateStudentToken creates a form-scoped token for a student
func (s *AuthService) GenerateStudentToken(formID, email, name string) (string, error) {
	claims := &model.StudentClaims{
		FormID: formID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateStudentToken validates a student JWT and returns claims
func (s *AuthService) ValidateStudentToken(tokenString string) (*model.StudentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.StudentClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*model.StudentClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ResolveStudent is the bounded best-effort session check used by optional
// auth paths: it never takes longer than the configured timeout and answers
// "no session" instead of hanging.
func (s *AuthService) ResolveStudent(ctx context.Context, tokenString string) (*model.StudentClaims, bool) {
	if tokenString == "" {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	type result struct {
		claims *model.StudentClaims
		err    error
	}
	done := make(chan result, 1)
	go func() {
		c, err := s.ValidateStudentToken(tokenString)
		done <- result{c, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, false
		}
		return r.claims, true
	case <-ctx.Done():
		return nil, false
	}
}
