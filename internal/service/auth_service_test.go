package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusforms/internal/config"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		StaffUsername:    "admin",
		StaffPassword:    "secret",
		JWTSecret:        "test-secret",
		AuthCheckTimeout: time.Second,
	})
}

func TestStaffLogin(t *testing.T) {
	svc := testAuthService()

	if _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	resp, err := svc.Login("admin", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := svc.ValidateStaffToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateStaffToken: %v", err)
	}
	if claims.StaffID != resp.StaffID {
		t.Fatalf("staff id = %q, want %q", claims.StaffID, resp.StaffID)
	}

	if _, err := svc.ValidateStaffToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestStudentTokenFormScope(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateStudentToken("form-1", "ada@uni.edu", "Ada")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}
	claims, err := svc.ValidateStudentToken(token)
	if err != nil {
		t.Fatalf("ValidateStudentToken: %v", err)
	}
	if claims.FormID != "form-1" || claims.Email != "ada@uni.edu" || claims.Name != "Ada" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestResolveStudent(t *testing.T) {
	svc := testAuthService()
	ctx := context.Background()

	if _, ok := svc.ResolveStudent(ctx, ""); ok {
		t.Fatalf("empty token resolved a session")
	}
	if _, ok := svc.ResolveStudent(ctx, "garbage"); ok {
		t.Fatalf("garbage token resolved a session")
	}

	token, err := svc.GenerateStudentToken("form-1", "ada@uni.edu", "Ada")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}
	claims, ok := svc.ResolveStudent(ctx, token)
	if !ok || claims.Email != "ada@uni.edu" {
		t.Fatalf("resolve: ok=%v claims=%+v", ok, claims)
	}
}
