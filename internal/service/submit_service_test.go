package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusforms/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func submitEnv() (*testEnv, *model.FillSession) {
	env := newTestEnv()
	env.submitSvc.now = fixedNow
	started := fixedNow().Add(-90 * time.Second)
	session := &model.FillSession{
		ID:           "sess-1",
		FormID:       "form-1",
		StudentEmail: "ada@uni.edu",
		StudentName:  "Ada",
		Answers:      model.AnswerMap{"q-name": model.TextAnswer("Ada")},
		Status:       model.SessionActive,
		StartedAt:    started,
	}
	return env, session
}

func TestSubmitExpiredForm(t *testing.T) {
	env, session := submitEnv()
	closed := fixedNow().Add(-time.Hour)
	form := &model.Form{ID: "form-1", ClosesAt: &closed, Questions: threeQuestionForm()}

	outcome := env.submitSvc.Submit(context.Background(), form, session)
	if outcome.Code != model.OutcomeFormExpired {
		t.Fatalf("code = %q", outcome.Code)
	}
	if outcome.Message == "" {
		t.Fatalf("expired outcome has no message")
	}
	if len(env.responses.responses) != 0 {
		t.Fatalf("response persisted for an expired form")
	}
}

func TestSubmitSuccessRecordsElapsed(t *testing.T) {
	env, session := submitEnv()
	form := &model.Form{ID: "form-1", Questions: threeQuestionForm()}

	outcome := env.submitSvc.Submit(context.Background(), form, session)
	if outcome.Code != model.OutcomeSuccess || outcome.ResponseID == "" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.RedirectURL != "" {
		t.Fatalf("redirect set without a redirect question")
	}
	resp := env.responses.responses[0]
	if resp.ElapsedSeconds != 90 {
		t.Fatalf("elapsed = %d, want 90", resp.ElapsedSeconds)
	}
	if !resp.SubmittedAt.Equal(fixedNow()) {
		t.Fatalf("submittedAt = %v", resp.SubmittedAt)
	}
}

func TestSubmitRedirectDelay(t *testing.T) {
	env, session := submitEnv()
	form := &model.Form{ID: "form-1", Questions: []model.Question{
		{ID: "q-name", Order: 1, Type: model.QuestionShortText, Title: "Name"},
		{ID: "q-redir", Order: 2, Type: model.QuestionRedirect, RedirectURL: "https://uni.edu/next-steps"},
	}}

	outcome := env.submitSvc.Submit(context.Background(), form, session)
	if outcome.Code != model.OutcomeSuccess {
		t.Fatalf("code = %q", outcome.Code)
	}
	if outcome.RedirectURL != "https://uni.edu/next-steps" || outcome.RedirectDelaySec != 3 {
		t.Fatalf("redirect = %q delay = %d", outcome.RedirectURL, outcome.RedirectDelaySec)
	}
}

func TestSubmitPersistFailure(t *testing.T) {
	env, session := submitEnv()
	env.responses.failNext = errors.New("mongo down")
	form := &model.Form{ID: "form-1", Questions: threeQuestionForm()}

	outcome := env.submitSvc.Submit(context.Background(), form, session)
	if outcome.Code != model.OutcomeFailure || outcome.Message == "" {
		t.Fatalf("outcome = %+v", outcome)
	}
}
