package engine

import "campusforms/internal/model"

// IsVisible decides whether the question at index should be displayed given
// the current answers. Show/hide rules are evaluated in stored order with the
// first matching rule winning; navigation-action rules on the same list are
// ignored here.
func IsVisible(index int, questions []model.Question, answers model.AnswerMap) bool {
	if index < 0 || index >= len(questions) {
		return false
	}
	q := &questions[index]
	if q.Type.IsScreen() {
		return true
	}
	if !q.HasConditionalLogic || len(q.ConditionalRules) == 0 {
		return true
	}

	hasShowRule := false
	for _, r := range q.ConditionalRules {
		action := model.CanonicalAction(string(r.Action))
		if !action.IsVisibility() {
			continue
		}
		if action == model.ActionShow {
			hasShowRule = true
		}
		if !match(r, questions, answers) {
			continue
		}
		return action == model.ActionShow
	}
	// No rule fired: any show rule present means hidden by default, a list of
	// only hide rules means shown by default.
	return !hasShowRule
}

// VisibleProgress computes the 1-based position of index among currently
// visible questions and the visible total, for the shell's progress display.
func VisibleProgress(index int, questions []model.Question, answers model.AnswerMap) model.Progress {
	p := model.Progress{}
	for i := range questions {
		if !IsVisible(i, questions, answers) {
			continue
		}
		p.Total++
		if i <= index {
			p.Position++
		}
	}
	return p
}
