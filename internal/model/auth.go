package model

import "github.com/golang-jwt/jwt/v5"

// StaffClaims is the JWT payload for staff (form owners)
type StaffClaims struct {
	StaffID string `json:"staffId"`
	jwt.RegisteredClaims
}

// StudentClaims is the JWT payload for a student, scoped to one form
type StudentClaims struct {
	FormID string `json:"formId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LoginResponse is returned on staff login
type LoginResponse struct {
	Token   string `json:"token"`
	StaffID string `json:"staffId"`
}

// StartSessionResponse is returned when a student opens a form
type StartSessionResponse struct {
	Token     string       `json:"token"`
	SessionID string       `json:"sessionId"`
	Form      *Form        `json:"form"`
	Session   *FillSession `json:"session"`
}
