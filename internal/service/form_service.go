package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"campusforms/internal/cache"
	"campusforms/internal/model"
	"campusforms/internal/repository"
)

var (
	ErrFormNotFound     = errors.New("form not found")
	ErrFormNotPublished = errors.New("form is not published")
)

// FormService loads, normalizes and manages form schemas
type FormService struct {
	formRepo  repository.FormRepo
	formCache cache.FormCache
}

// NewFormService creates a new form service
func NewFormService(formRepo repository.FormRepo, formCache cache.FormCache) *FormService {
	return &FormService{
		formRepo:  formRepo,
		formCache: formCache,
	}
}

// Create normalizes and persists a new form schema
func (s *FormService) Create(ctx context.Context, form *model.Form) (string, error) {
	NormalizeForm(form)
	return s.formRepo.Create(ctx, form)
}

// Update normalizes and persists schema changes, invalidating the cache
func (s *FormService) Update(ctx context.Context, form *model.Form) error {
	NormalizeForm(form)
	if err := s.formRepo.Update(ctx, form); err != nil {
		return err
	}
	if err := s.formCache.Invalidate(ctx, form.ID); err != nil {
		log.Printf("form cache invalidate failed for %s: %v", form.ID, err)
	}
	return nil
}

// Get returns the normalized schema, from cache when possible. Cache failures
// degrade to a repository read.
func (s *FormService) Get(ctx context.Context, id string) (*model.Form, error) {
	if form, err := s.formCache.Get(ctx, id); err == nil && form != nil {
		return form, nil
	} else if err != nil {
		log.Printf("form cache read failed for %s: %v", id, err)
	}

	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	NormalizeForm(form)
	if err := s.formCache.Set(ctx, form); err != nil {
		log.Printf("form cache write failed for %s: %v", id, err)
	}
	return form, nil
}

// GetPublished is Get plus the student-facing published check
func (s *FormService) GetPublished(ctx context.Context, id string) (*model.Form, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.Published {
		return nil, ErrFormNotPublished
	}
	return form, nil
}

// List returns all forms owned by a staff member
func (s *FormService) List(ctx context.Context, ownerID string) ([]*model.Form, error) {
	return s.formRepo.GetByOwner(ctx, ownerID)
}

// Delete removes a form and drops it from the cache
func (s *FormService) Delete(ctx context.Context, id string) error {
	if err := s.formRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.formCache.Invalidate(ctx, id); err != nil {
		log.Printf("form cache invalidate failed for %s: %v", id, err)
	}
	return nil
}

// NormalizeForm is the single schema-ingestion pass: questions are sorted by
// order (original array position breaks ties), operators and actions are
// canonicalized, rules are sorted by their own order, and each rule's
// positional target is resolved to a question ID. Rules whose target cannot
// be resolved are disabled rather than dropped; a malformed rule must not
// crash the form.
func NormalizeForm(form *model.Form) {
	type keyed struct {
		q   model.Question
		pos int
	}
	byOrder := make([]keyed, len(form.Questions))
	for i, q := range form.Questions {
		byOrder[i] = keyed{q, i}
	}
	sort.SliceStable(byOrder, func(i, j int) bool {
		if byOrder[i].q.Order != byOrder[j].q.Order {
			return byOrder[i].q.Order < byOrder[j].q.Order
		}
		return byOrder[i].pos < byOrder[j].pos
	})
	for i := range byOrder {
		form.Questions[i] = byOrder[i].q
	}

	for qi := range form.Questions {
		q := &form.Questions[qi]
		if len(q.ConditionalRules) > 0 {
			q.HasConditionalLogic = true
		}
		sort.SliceStable(q.ConditionalRules, func(i, j int) bool {
			return q.ConditionalRules[i].Order < q.ConditionalRules[j].Order
		})
		for ri := range q.ConditionalRules {
			r := &q.ConditionalRules[ri]
			r.Operator = model.CanonicalOperator(string(r.Operator))
			r.Action = model.CanonicalAction(string(r.Action))
			if r.TargetID != "" {
				continue
			}
			if r.TargetIndex < 0 || r.TargetIndex >= len(form.Questions) {
				r.Disabled = true
				log.Printf("form %s question %s: rule %d targets out-of-range index %d, rule disabled",
					form.ID, q.ID, ri, r.TargetIndex)
				continue
			}
			r.TargetID = form.Questions[r.TargetIndex].ID
		}
	}
}
