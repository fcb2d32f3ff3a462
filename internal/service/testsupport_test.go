package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"campusforms/internal/cache"
	"campusforms/internal/model"
)

/* ---- In-memory fakes satisfying the repository and cache interfaces ---- */

type fakeFormRepo struct {
	forms map[string]*model.Form
	seq   int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[string]*model.Form{}}
}

func (r *fakeFormRepo) Create(ctx context.Context, form *model.Form) (string, error) {
	r.seq++
	id := fmt.Sprintf("form-%d", r.seq)
	form.ID = id
	r.forms[id] = form
	return id, nil
}

func (r *fakeFormRepo) GetByID(ctx context.Context, id string) (*model.Form, error) {
	return r.forms[id], nil
}

func (r *fakeFormRepo) GetByOwner(ctx context.Context, ownerID string) ([]*model.Form, error) {
	var out []*model.Form
	for _, f := range r.forms {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) Update(ctx context.Context, form *model.Form) error {
	r.forms[form.ID] = form
	return nil
}

func (r *fakeFormRepo) Delete(ctx context.Context, id string) error {
	delete(r.forms, id)
	return nil
}

type fakeResponseRepo struct {
	responses []*model.FormResponse
	seq       int
	failNext  error
}

func (r *fakeResponseRepo) Create(ctx context.Context, resp *model.FormResponse) (string, error) {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return "", err
	}
	r.seq++
	resp.ID = fmt.Sprintf("resp-%d", r.seq)
	r.responses = append(r.responses, resp)
	return resp.ID, nil
}

func (r *fakeResponseRepo) GetByID(ctx context.Context, id string) (*model.FormResponse, error) {
	for _, resp := range r.responses {
		if resp.ID == id {
			return resp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) GetByForm(ctx context.Context, formID string) ([]*model.FormResponse, error) {
	var out []*model.FormResponse
	for _, resp := range r.responses {
		if resp.FormID == formID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) HasSubmitted(ctx context.Context, formID, studentEmail string) (bool, error) {
	for _, resp := range r.responses {
		if resp.FormID == formID && resp.StudentEmail == studentEmail {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResponseRepo) CountByForm(ctx context.Context, formID string) (int64, error) {
	out, _ := r.GetByForm(ctx, formID)
	return int64(len(out)), nil
}

type fakeGroupRepo struct {
	groups  map[string]*model.Group // formID|questionID
	claimed map[string]bool         // student name -> claimed
	roster  []string
	// claimBetween simulates another student winning the race between the
	// re-validation round trip and the final claim.
	claimBetween []string
	failStatus   error
	failValidate error
}

func newFakeGroupRepo(roster ...string) *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  map[string]*model.Group{},
		claimed: map[string]bool{},
		roster:  roster,
	}
}

func groupKey(formID, questionID string) string { return formID + "|" + questionID }

func (r *fakeGroupRepo) GetGroup(ctx context.Context, formID, questionID string) (*model.Group, error) {
	if r.failStatus != nil {
		return nil, r.failStatus
	}
	return r.groups[groupKey(formID, questionID)], nil
}

func (r *fakeGroupRepo) AvailableStudents(ctx context.Context, formID string) ([]string, error) {
	if r.failStatus != nil {
		return nil, r.failStatus
	}
	var out []string
	for _, name := range r.roster {
		if !r.claimed[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeGroupRepo) ValidateMembers(ctx context.Context, formID string, members []string) (*model.MemberValidation, error) {
	if r.failValidate != nil {
		return nil, r.failValidate
	}
	v := r.verdict(members)
	// after answering, let a simulated rival claim students
	for _, name := range r.claimBetween {
		r.claimed[name] = true
	}
	r.claimBetween = nil
	return v, nil
}

func (r *fakeGroupRepo) ClaimMembers(ctx context.Context, formID, questionID, filledBy string, members []string) (*model.MemberValidation, error) {
	v := r.verdict(members)
	if !v.Available {
		return v, nil
	}
	for _, name := range members {
		r.claimed[name] = true
	}
	r.groups[groupKey(formID, questionID)] = &model.Group{
		FormID:     formID,
		QuestionID: questionID,
		Members:    members,
		FilledBy:   filledBy,
	}
	return v, nil
}

func (r *fakeGroupRepo) AddToRoster(ctx context.Context, students []model.RosterStudent) error {
	for _, s := range students {
		r.roster = append(r.roster, s.Name)
	}
	return nil
}

func (r *fakeGroupRepo) verdict(members []string) *model.MemberValidation {
	var unavailable []string
	for _, name := range members {
		if r.claimed[name] {
			unavailable = append(unavailable, name)
		}
	}
	if len(unavailable) > 0 {
		return &model.MemberValidation{
			Available:          false,
			UnavailableMembers: unavailable,
			Message:            fmt.Sprintf("Some students were already claimed by another group: %v", unavailable),
		}
	}
	return &model.MemberValidation{Available: true}
}

type fakeSessionCache struct {
	m map[string]string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{m: map[string]string{}}
}

func (c *fakeSessionCache) key(formID, email string) string { return formID + "|" + email }

func (c *fakeSessionCache) Set(ctx context.Context, session *model.FillSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.m[c.key(session.FormID, session.StudentEmail)] = string(data)
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, formID, email string) (*model.FillSession, error) {
	data, ok := c.m[c.key(formID, email)]
	if !ok {
		return nil, nil
	}
	var s model.FillSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *fakeSessionCache) Save(ctx context.Context, session *model.FillSession, expectedVersion int64) error {
	if stored, _ := c.Get(ctx, session.FormID, session.StudentEmail); stored != nil && stored.Version != expectedVersion {
		return cache.ErrStaleSession
	}
	session.Version = expectedVersion + 1
	return c.Set(ctx, session)
}

func (c *fakeSessionCache) Delete(ctx context.Context, formID, email string) error {
	delete(c.m, c.key(formID, email))
	return nil
}

type fakeFormCache struct{}

func (fakeFormCache) Set(ctx context.Context, form *model.Form) error         { return nil }
func (fakeFormCache) Get(ctx context.Context, id string) (*model.Form, error) { return nil, nil }
func (fakeFormCache) Invalidate(ctx context.Context, id string) error         { return nil }

/* ---- Wiring helper ---- */

type testEnv struct {
	forms     *fakeFormRepo
	responses *fakeResponseRepo
	groups    *fakeGroupRepo
	sessions  *fakeSessionCache

	formSvc    *FormService
	groupSvc   *GroupService
	submitSvc  *SubmitService
	sessionSvc *SessionService
	exportSvc  *ExportService
}

func newTestEnv(roster ...string) *testEnv {
	env := &testEnv{
		forms:     newFakeFormRepo(),
		responses: &fakeResponseRepo{},
		groups:    newFakeGroupRepo(roster...),
		sessions:  newFakeSessionCache(),
	}
	env.formSvc = NewFormService(env.forms, fakeFormCache{})
	env.groupSvc = NewGroupService(env.groups)
	env.submitSvc = NewSubmitService(env.responses, env.groupSvc, 3)
	env.sessionSvc = NewSessionService(env.sessions, env.formSvc, env.groupSvc, env.submitSvc, env.responses)
	env.exportSvc = NewExportService(env.responses, env.formSvc)
	return env
}

func (env *testEnv) createForm(questions ...model.Question) string {
	form := &model.Form{
		OwnerID:   "staff_test",
		Title:     "Test Form",
		Published: true,
		Questions: questions,
	}
	id, _ := env.formSvc.Create(context.Background(), form)
	return id
}
