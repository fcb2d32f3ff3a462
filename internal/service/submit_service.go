package service

import (
	"context"
	"log"
	"time"

	"campusforms/internal/model"
	"campusforms/internal/repository"
)

// SubmitService is the submission orchestrator: it assembles the final
// response, commits any fresh group claim, persists the response, and maps
// every failure to a structured outcome. No error escapes this boundary.
type SubmitService struct {
	responseRepo     repository.ResponseRepo
	groupSvc         *GroupService
	redirectDelaySec int
	now              func() time.Time
}

// NewSubmitService creates a new submission orchestrator
func NewSubmitService(responseRepo repository.ResponseRepo, groupSvc *GroupService, redirectDelaySec int) *SubmitService {
	return &SubmitService{
		responseRepo:     responseRepo,
		groupSvc:         groupSvc,
		redirectDelaySec: redirectDelaySec,
		now:              time.Now,
	}
}

// Submit finalizes a fill session. The group claim is the last server-side
// race check: losing it surfaces GROUP_MEMBERS_UNAVAILABLE with the members
// that are gone, and the response is not persisted.
func (s *SubmitService) Submit(ctx context.Context, form *model.Form, session *model.FillSession) model.SubmitOutcome {
	now := s.now()

	// client-side date checks may have passed on a stale clock
	if form.Expired(now) {
		return model.SubmitOutcome{
			Code:    model.OutcomeFormExpired,
			Message: "This form's deadline has passed",
		}
	}

	for qi := range form.Questions {
		q := &form.Questions[qi]
		if q.Type != model.QuestionGroupSelection {
			continue
		}
		answer := session.Answers.Get(q.ID)
		if answer.Inherited || len(answer.Values) == 0 {
			continue
		}
		validation, err := s.groupSvc.Claim(ctx, form.ID, q.ID, session.StudentName, answer.Values)
		if err != nil {
			log.Printf("group claim failed for form %s: %v", form.ID, err)
			return model.SubmitOutcome{
				Code:    model.OutcomeFailure,
				Message: "Could not reach the server, please try again",
			}
		}
		if !validation.Available {
			return model.SubmitOutcome{
				Code:               model.OutcomeMembersUnavailable,
				Message:            validation.Message,
				UnavailableMembers: validation.UnavailableMembers,
			}
		}
	}

	resp := &model.FormResponse{
		FormID:         form.ID,
		StudentEmail:   session.StudentEmail,
		StudentName:    session.StudentName,
		ResponseData:   session.Answers,
		ElapsedSeconds: session.ElapsedSeconds(now),
		SubmittedAt:    now,
	}
	id, err := s.responseRepo.Create(ctx, resp)
	if err != nil {
		log.Printf("response persist failed for form %s: %v", form.ID, err)
		return model.SubmitOutcome{
			Code:    model.OutcomeFailure,
			Message: "Could not submit your response, please try again",
		}
	}

	outcome := model.SubmitOutcome{
		Code:       model.OutcomeSuccess,
		ResponseID: id,
	}
	if target := form.RedirectTarget(); target != "" {
		// the shell shows the confirmation first, then redirects
		outcome.RedirectURL = target
		outcome.RedirectDelaySec = s.redirectDelaySec
	}
	return outcome
}
