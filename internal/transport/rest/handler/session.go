package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"campusforms/internal/cache"
	"campusforms/internal/model"
	"campusforms/internal/service"
	"campusforms/internal/transport/rest/middleware"
)

// SessionHandler handles student fill-session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// StartSessionRequest is the body for opening a fill session
type StartSessionRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Start handles POST /v1/forms/{formId}/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	session, form, err := h.sessionSvc.Start(r.Context(), formID, req.Email, req.Name)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	token, err := h.authSvc.GenerateStudentToken(formID, req.Email, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusCreated, model.StartSessionResponse{
		Token:     token,
		SessionID: session.ID,
		Form:      form,
		Session:   session,
	})
}

// Get handles GET /v1/forms/{formId}/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID, email, ok := h.identity(w, r)
	if !ok {
		return
	}
	session, progress, err := h.sessionSvc.Get(r.Context(), formID, email)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  session,
		"progress": progress,
	})
}

// AnswerRequest is the body for recording an answer
type AnswerRequest struct {
	QuestionID string            `json:"questionId"`
	Answer     model.AnswerValue `json:"answer"`
}

// Answer handles PUT /v1/forms/{formId}/session/answer
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	formID, email, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	session, err := h.sessionSvc.SetAnswer(r.Context(), formID, email, req.QuestionID, req.Answer)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

// Advance handles POST /v1/forms/{formId}/session/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	formID, email, ok := h.identity(w, r)
	if !ok {
		return
	}
	result, err := h.sessionSvc.Advance(r.Context(), formID, email)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Retreat handles POST /v1/forms/{formId}/session/retreat
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	formID, email, ok := h.identity(w, r)
	if !ok {
		return
	}
	result, err := h.sessionSvc.Retreat(r.Context(), formID, email)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GroupStatus handles GET /v1/forms/{formId}/session/group/{questionId}
func (h *SessionHandler) GroupStatus(w http.ResponseWriter, r *http.Request) {
	formID, email, ok := h.identity(w, r)
	if !ok {
		return
	}
	questionID := mux.Vars(r)["questionId"]

	status, err := h.sessionSvc.GroupStatus(r.Context(), formID, email, questionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// identity reads the token-scoped form and student, rejecting path mismatches
// so a token for one form cannot drive a session on another.
func (h *SessionHandler) identity(w http.ResponseWriter, r *http.Request) (formID, email string, ok bool) {
	formID = mux.Vars(r)["formId"]
	email = middleware.GetStudentEmail(r.Context())
	if email == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", "", false
	}
	if scoped := middleware.GetFormID(r.Context()); scoped != "" && scoped != formID {
		writeError(w, http.StatusForbidden, "token not valid for this form")
		return "", "", false
	}
	return formID, email, true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFormNotFound):
		writeError(w, http.StatusNotFound, "form not found")
	case errors.Is(err, service.ErrFormNotPublished):
		writeError(w, http.StatusForbidden, "form is not open")
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "no active session, start one first")
	case errors.Is(err, service.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, "this form was already submitted")
	case errors.Is(err, service.ErrUnknownQuestion):
		writeError(w, http.StatusBadRequest, "question does not exist on this form")
	case errors.Is(err, cache.ErrStaleSession):
		writeError(w, http.StatusConflict, "session changed concurrently, reload and retry")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
