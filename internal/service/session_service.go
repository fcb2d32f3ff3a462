package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campusforms/internal/cache"
	"campusforms/internal/engine"
	"campusforms/internal/model"
	"campusforms/internal/repository"
)

var (
	ErrSessionNotFound  = errors.New("no active fill session")
	ErrAlreadySubmitted = errors.New("this form was already submitted")
	ErrUnknownQuestion  = errors.New("question does not exist on this form")
)

// AdvanceResult is what one navigation attempt reports back to the shell.
// Either the session moved (possibly into submission, with Outcome set), or
// Rejection carries the reason it did not.
type AdvanceResult struct {
	Session            *model.FillSession   `json:"session"`
	Rejection          string               `json:"rejection,omitempty"`
	UnavailableMembers []string             `json:"unavailableMembers,omitempty"`
	AvailableStudents  []string             `json:"availableStudents,omitempty"`
	Outcome            *model.SubmitOutcome `json:"outcome,omitempty"`
	Progress           model.Progress       `json:"progress"`
}

// SessionService drives fill sessions: it owns the answer map and current
// index, and sequences the gates: validation first, the group round trip
// last, navigation only after both approve, submission at most once per
// session.
type SessionService struct {
	sessions     cache.SessionCache
	formSvc      *FormService
	groupSvc     *GroupService
	submitSvc    *SubmitService
	responseRepo repository.ResponseRepo
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions cache.SessionCache,
	formSvc *FormService,
	groupSvc *GroupService,
	submitSvc *SubmitService,
	responseRepo repository.ResponseRepo,
) *SessionService {
	return &SessionService{
		sessions:     sessions,
		formSvc:      formSvc,
		groupSvc:     groupSvc,
		submitSvc:    submitSvc,
		responseRepo: responseRepo,
	}
}

// Start opens (or resumes) a fill session for a student on a published form.
func (s *SessionService) Start(ctx context.Context, formID, email, name string) (*model.FillSession, *model.Form, error) {
	form, err := s.formSvc.GetPublished(ctx, formID)
	if err != nil {
		return nil, nil, err
	}

	submitted, err := s.responseRepo.HasSubmitted(ctx, formID, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for an earlier submission: %w", err)
	}
	if submitted {
		return nil, nil, ErrAlreadySubmitted
	}

	if existing, err := s.sessions.Get(ctx, formID, email); err == nil && existing != nil && existing.Status == model.SessionActive {
		return existing, form, nil
	}

	session := &model.FillSession{
		ID:           uuid.New().String(),
		FormID:       formID,
		StudentEmail: email,
		StudentName:  name,
		Index:        0,
		Answers:      model.AnswerMap{},
		Status:       model.SessionActive,
		StartedAt:    time.Now(),
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, form, nil
}

// Get returns the current session state with its progress snapshot.
func (s *SessionService) Get(ctx context.Context, formID, email string) (*model.FillSession, model.Progress, error) {
	session, form, err := s.load(ctx, formID, email)
	if err != nil {
		return nil, model.Progress{}, err
	}
	return session, engine.VisibleProgress(session.Index, form.Questions, session.Answers), nil
}

// SetAnswer records the student's answer to one question. Inherited group
// answers are read-only.
func (s *SessionService) SetAnswer(ctx context.Context, formID, email, questionID string, answer model.AnswerValue) (*model.FillSession, error) {
	session, form, err := s.load(ctx, formID, email)
	if err != nil {
		return nil, err
	}
	if questionIndex(form, questionID) < 0 {
		return nil, ErrUnknownQuestion
	}
	if session.Answers.Get(questionID).Inherited {
		return session, nil
	}
	answer.Inherited = false
	session.Answers[questionID] = answer
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Advance moves forward one step, running the gates for the current question.
func (s *SessionService) Advance(ctx context.Context, formID, email string) (*AdvanceResult, error) {
	session, form, err := s.load(ctx, formID, email)
	if err != nil {
		return nil, err
	}
	res := &AdvanceResult{Session: session}
	if len(form.Questions) == 0 || session.Status == model.SessionSubmitted {
		// terminal: the end screen stays where it is
		res.Progress = engine.VisibleProgress(session.Index, form.Questions, session.Answers)
		return res, nil
	}

	q := &form.Questions[session.Index]
	if q.Type == model.QuestionGroupSelection {
		if blocked := s.gateGroup(ctx, form, session, q, res); blocked {
			if err := s.save(ctx, session); err != nil {
				return nil, err
			}
			res.Progress = engine.VisibleProgress(session.Index, form.Questions, session.Answers)
			return res, nil
		}
	} else {
		if v := engine.Validate(q, session.Answers.Get(q.ID)); !v.OK {
			res.Rejection = v.Reason
			res.Progress = engine.VisibleProgress(session.Index, form.Questions, session.Answers)
			return res, nil
		}
	}

	next := engine.Advance(session.Index, form.Questions, session.Answers)
	session.Index = next.Index

	if next.Submit {
		outcome := s.submitSvc.Submit(ctx, form, session)
		res.Outcome = &outcome
		switch outcome.Code {
		case model.OutcomeSuccess:
			now := time.Now()
			session.Status = model.SessionSubmitted
			session.SubmittedAt = &now
		case model.OutcomeMembersUnavailable:
			// race lost between re-validation and claim: back to selection
			s.clearGroupSelections(form, session)
			res.UnavailableMembers = outcome.UnavailableMembers
		}
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	res.Progress = engine.VisibleProgress(session.Index, form.Questions, session.Answers)
	return res, nil
}

// Retreat moves back one visible question; before the first it is a no-op.
func (s *SessionService) Retreat(ctx context.Context, formID, email string) (*AdvanceResult, error) {
	session, form, err := s.load(ctx, formID, email)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionActive {
		session.Index = engine.Retreat(session.Index, form.Questions, session.Answers)
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return &AdvanceResult{
		Session:  session,
		Progress: engine.VisibleProgress(session.Index, form.Questions, session.Answers),
	}, nil
}

// GroupStatus exposes the live status for the question the student is on,
// inheriting the answer right away when the group is already filled.
func (s *SessionService) GroupStatus(ctx context.Context, formID, email, questionID string) (*model.GroupSelectionStatus, error) {
	session, form, err := s.load(ctx, formID, email)
	if err != nil {
		return nil, err
	}
	if questionIndex(form, questionID) < 0 {
		return nil, ErrUnknownQuestion
	}
	status, err := s.groupSvc.Status(ctx, formID, questionID)
	if err != nil {
		return nil, err
	}
	if status.IsFilled && len(status.GroupMembers) > 0 {
		session.Answers[questionID] = model.AnswerValue{Values: status.GroupMembers, Inherited: true}
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return status, nil
}

// gateGroup runs the group selection gates for the current question. It
// returns true when advancement is blocked, filling in the rejection detail.
func (s *SessionService) gateGroup(ctx context.Context, form *model.Form, session *model.FillSession, q *model.Question, res *AdvanceResult) bool {
	status, err := s.groupSvc.Status(ctx, form.ID, q.ID)
	if err != nil {
		log.Printf("group status fetch failed for form %s question %s: %v", form.ID, q.ID, err)
		res.Rejection = "Could not reach the server, please try again"
		return true
	}

	// someone else completed the group: take it over read-only and move on
	if status.IsFilled && len(status.GroupMembers) > 0 {
		session.Answers[q.ID] = model.AnswerValue{Values: status.GroupMembers, Inherited: true}
		return false
	}

	answer := session.Answers.Get(q.ID)
	if len(answer.Values) == 0 {
		if q.IsRequired() {
			res.Rejection = "This question is required"
		}
		return q.IsRequired()
	}

	if ok, reason := s.groupSvc.CheckSelection(q, status, answer.Values); !ok {
		res.Rejection = reason
		return true
	}

	// the round trip is always the last gate before advancing
	validation, err := s.groupSvc.Revalidate(ctx, form.ID, answer.Values)
	if err != nil {
		log.Printf("group re-validation failed for form %s question %s: %v", form.ID, q.ID, err)
		res.Rejection = "Could not reach the server, please try again"
		return true
	}
	if !validation.Available {
		delete(session.Answers, q.ID)
		res.Rejection = validation.Message
		res.UnavailableMembers = validation.UnavailableMembers
		if refreshed, err := s.groupSvc.Status(ctx, form.ID, q.ID); err == nil {
			res.AvailableStudents = refreshed.AvailableStudents
		}
		return true
	}
	return false
}

func (s *SessionService) clearGroupSelections(form *model.Form, session *model.FillSession) {
	for qi := range form.Questions {
		q := &form.Questions[qi]
		if q.Type != model.QuestionGroupSelection {
			continue
		}
		if a := session.Answers.Get(q.ID); !a.Inherited && len(a.Values) > 0 {
			delete(session.Answers, q.ID)
			session.Index = qi
		}
	}
}

func (s *SessionService) load(ctx context.Context, formID, email string) (*model.FillSession, *model.Form, error) {
	form, err := s.formSvc.Get(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.Get(ctx, formID, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	if session.Index < 0 {
		session.Index = 0
	}
	if session.Index >= len(form.Questions) && len(form.Questions) > 0 {
		session.Index = len(form.Questions) - 1
	}
	return session, form, nil
}

// save applies the optimistic version guard: a write based on a snapshot that
// another request has since replaced is dropped rather than applied.
func (s *SessionService) save(ctx context.Context, session *model.FillSession) error {
	err := s.sessions.Save(ctx, session, session.Version)
	if errors.Is(err, cache.ErrStaleSession) {
		log.Printf("dropping stale session write for %s/%s", session.FormID, session.StudentEmail)
		return err
	}
	return err
}

func questionIndex(form *model.Form, questionID string) int {
	for i := range form.Questions {
		if form.Questions[i].ID == questionID {
			return i
		}
	}
	return -1
}
