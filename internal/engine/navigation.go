package engine

import "campusforms/internal/model"

// NextState is the result of a navigation step: either render Index, or
// submit (with Index still pointing at the question to display afterwards,
// typically an end screen).
type NextState struct {
	Index  int  `json:"index"`
	Submit bool `json:"submit"`
}

// Advance computes the next state when moving forward from current. The
// landing index comes from the question's navigation-action rules (first
// match wins), defaulting to current+1, and is then skip-scanned forward past
// hidden questions. Landing past the end of the list, or on an end screen,
// signals submission.
func Advance(current int, questions []model.Question, answers model.AnswerMap) NextState {
	landing := landingIndex(current, questions, answers)
	for landing < len(questions) && !IsVisible(landing, questions, answers) {
		landing++
	}
	if landing >= len(questions) {
		return NextState{Index: len(questions) - 1, Submit: true}
	}
	if questions[landing].Type == model.QuestionEndScreen {
		return NextState{Index: landing, Submit: true}
	}
	return NextState{Index: landing}
}

// Retreat computes the previous visible index; navigating before the first
// question is a no-op.
func Retreat(current int, questions []model.Question, answers model.AnswerMap) int {
	prev := current - 1
	for prev >= 0 && !IsVisible(prev, questions, answers) {
		prev--
	}
	if prev < 0 {
		return current
	}
	return prev
}

// landingIndex applies jump_to / skip_next / skip_to_end rules attached to
// the current question. The first rule whose condition holds decides the
// landing; for jump_to the rule's target index is the destination itself.
func landingIndex(current int, questions []model.Question, answers model.AnswerMap) int {
	if current < 0 || current >= len(questions) {
		return len(questions)
	}
	q := &questions[current]
	if q.HasConditionalLogic {
		for _, r := range q.ConditionalRules {
			action := model.CanonicalAction(string(r.Action))
			if action.IsVisibility() {
				continue
			}
			if !match(r, questions, answers) {
				continue
			}
			switch action {
			case model.ActionJumpTo:
				if r.TargetIndex >= 0 && r.TargetIndex < len(questions) {
					return r.TargetIndex
				}
				// out-of-range jump target: fall through sequentially
				return current + 1
			case model.ActionSkipNext:
				return current + 2
			case model.ActionSkipToEnd:
				return len(questions) - 1
			}
		}
	}
	return current + 1
}
