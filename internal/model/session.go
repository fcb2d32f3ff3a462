package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSubmitted SessionStatus = "submitted"
)

// FillSession is the explicit per-student state of one in-progress form fill.
// It lives in Redis for the duration of the session; Version guards against a
// stale handler write landing after the student has already moved on.
type FillSession struct {
	ID           string        `json:"id"`
	FormID       string        `json:"formId"`
	StudentEmail string        `json:"studentEmail"`
	StudentName  string        `json:"studentName,omitempty"`
	Index        int           `json:"index"`
	Answers      AnswerMap     `json:"answers"`
	Status       SessionStatus `json:"status"`
	Version      int64         `json:"version"`
	StartedAt    time.Time     `json:"startedAt"`
	SubmittedAt  *time.Time    `json:"submittedAt,omitempty"`
}

// ElapsedSeconds returns whole seconds since the session started.
func (s *FillSession) ElapsedSeconds(now time.Time) int {
	return int(now.Sub(s.StartedAt) / time.Second)
}

// OutcomeCode classifies the terminal result of a submission
type OutcomeCode string

const (
	OutcomeSuccess            OutcomeCode = "SUCCESS"
	OutcomeFormExpired        OutcomeCode = "FORM_EXPIRED"
	OutcomeMembersUnavailable OutcomeCode = "GROUP_MEMBERS_UNAVAILABLE"
	OutcomeFailure            OutcomeCode = "FAILURE"
)

// SubmitOutcome is what the submission orchestrator reports back to the page
// shell. Nothing past the orchestrator boundary surfaces as a raw error.
type SubmitOutcome struct {
	Code               OutcomeCode `json:"code"`
	Message            string      `json:"message,omitempty"`
	UnavailableMembers []string    `json:"unavailableMembers,omitempty"`
	RedirectURL        string      `json:"redirectUrl,omitempty"`
	RedirectDelaySec   int         `json:"redirectDelaySec,omitempty"`
	ResponseID         string      `json:"responseId,omitempty"`
}

func (o SubmitOutcome) Success() bool { return o.Code == OutcomeSuccess }

// Progress is the visible-position snapshot for the progress bar
type Progress struct {
	Position int `json:"position"` // 1-based position among visible questions
	Total    int `json:"total"`    // count of currently visible questions
}
