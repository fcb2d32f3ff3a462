package service

import (
	"context"
	"errors"
	"testing"

	"campusforms/internal/model"
)

func TestNormalizeFormSortsByOrder(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-c", Order: 3, Type: model.QuestionShortText},
		{ID: "q-a", Order: 1, Type: model.QuestionStartScreen},
		{ID: "q-b", Order: 2, Type: model.QuestionShortText},
	}}
	NormalizeForm(form)

	got := []string{form.Questions[0].ID, form.Questions[1].ID, form.Questions[2].ID}
	want := []string{"q-a", "q-b", "q-c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestNormalizeFormOrderTieKeepsArrayPosition(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-first", Order: 1},
		{ID: "q-second", Order: 1},
		{ID: "q-third", Order: 1},
	}}
	NormalizeForm(form)

	for i, want := range []string{"q-first", "q-second", "q-third"} {
		if form.Questions[i].ID != want {
			t.Fatalf("question %d = %s, want %s", i, form.Questions[i].ID, want)
		}
	}
}

func TestNormalizeFormResolvesRuleTargets(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-track", Order: 1, Type: model.QuestionMultipleChoice},
		{ID: "q-tools", Order: 2, Type: model.QuestionCheckboxes, ConditionalRules: []model.Rule{
			{TargetIndex: 0, Operator: "Equals", Operand: "ds", Action: "Show"},
		}},
	}}
	NormalizeForm(form)

	q := form.Questions[1]
	if !q.HasConditionalLogic {
		t.Fatalf("HasConditionalLogic not set")
	}
	r := q.ConditionalRules[0]
	if r.TargetID != "q-track" {
		t.Fatalf("TargetID = %q", r.TargetID)
	}
	if r.Operator != model.OpEquals || r.Action != model.ActionShow {
		t.Fatalf("canonicalized rule = %+v", r)
	}
	if r.Disabled {
		t.Fatalf("resolvable rule was disabled")
	}
}

func TestNormalizeFormDisablesUnresolvableRule(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-a", Order: 1},
		{ID: "q-b", Order: 2, ConditionalRules: []model.Rule{
			{TargetIndex: 9, Operator: "equals", Operand: "x", Action: "show"},
			{TargetIndex: -1, Operator: "equals", Operand: "y", Action: "hide"},
		}},
	}}
	NormalizeForm(form)

	for i, r := range form.Questions[1].ConditionalRules {
		if !r.Disabled {
			t.Fatalf("rule %d with out-of-range target not disabled", i)
		}
	}
}

func TestNormalizeFormSortsRulesByOrder(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-a", Order: 1},
		{ID: "q-b", Order: 2, ConditionalRules: []model.Rule{
			{TargetIndex: 0, Operator: "equals", Operand: "second", Action: "hide", Order: 2},
			{TargetIndex: 0, Operator: "equals", Operand: "first", Action: "show", Order: 1},
		}},
	}}
	NormalizeForm(form)

	rules := form.Questions[1].ConditionalRules
	if rules[0].Operand != "first" || rules[1].Operand != "second" {
		t.Fatalf("rule order = %q, %q", rules[0].Operand, rules[1].Operand)
	}
}

func TestNormalizeFormKeepsExplicitTargetID(t *testing.T) {
	form := &model.Form{Questions: []model.Question{
		{ID: "q-a", Order: 1},
		{ID: "q-b", Order: 2, ConditionalRules: []model.Rule{
			{TargetIndex: 9, TargetID: "q-a", Operator: "equals", Operand: "x", Action: "show"},
		}},
	}}
	NormalizeForm(form)

	r := form.Questions[1].ConditionalRules[0]
	if r.Disabled || r.TargetID != "q-a" {
		t.Fatalf("pre-resolved rule = %+v", r)
	}
}

func TestGetPublished(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	draft := &model.Form{OwnerID: "staff_test", Title: "Draft"}
	draftID, _ := env.formSvc.Create(ctx, draft)

	if _, err := env.formSvc.GetPublished(ctx, draftID); !errors.Is(err, ErrFormNotPublished) {
		t.Fatalf("err = %v, want ErrFormNotPublished", err)
	}
	if _, err := env.formSvc.GetPublished(ctx, "missing"); !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("err = %v, want ErrFormNotFound", err)
	}

	liveID := env.createForm(threeQuestionForm()...)
	form, err := env.formSvc.GetPublished(ctx, liveID)
	if err != nil {
		t.Fatalf("GetPublished: %v", err)
	}
	if len(form.Questions) != 3 {
		t.Fatalf("questions = %d", len(form.Questions))
	}
}
