package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"campusforms/internal/model"
	"campusforms/internal/repository"
)

// ExportService renders a form's responses for staff: listing for the
// response viewer and CSV export for download.
type ExportService struct {
	responseRepo repository.ResponseRepo
	formSvc      *FormService
}

// NewExportService creates a new export service
func NewExportService(responseRepo repository.ResponseRepo, formSvc *FormService) *ExportService {
	return &ExportService{
		responseRepo: responseRepo,
		formSvc:      formSvc,
	}
}

// Responses returns all submissions for a form in submission order.
func (s *ExportService) Responses(ctx context.Context, formID string) ([]*model.FormResponse, error) {
	return s.responseRepo.GetByForm(ctx, formID)
}

// WriteCSV streams every response of the form as CSV. Columns follow the
// normalized question order; answers use the same per-type formatting as the
// response viewer, so an exported value reads exactly like the on-screen one.
func (s *ExportService) WriteCSV(ctx context.Context, formID string, w io.Writer) error {
	form, err := s.formSvc.Get(ctx, formID)
	if err != nil {
		return err
	}
	responses, err := s.responseRepo.GetByForm(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to load responses: %w", err)
	}

	var answerable []*model.Question
	for i := range form.Questions {
		q := &form.Questions[i]
		if q.Type.IsScreen() || q.Type == model.QuestionStatement || q.Type == model.QuestionRedirect {
			continue
		}
		answerable = append(answerable, q)
	}

	cw := csv.NewWriter(w)
	header := []string{"Student Email", "Student Name", "Submitted At", "Elapsed Seconds"}
	for _, q := range answerable {
		header = append(header, q.Title)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, resp := range responses {
		row := []string{
			resp.StudentEmail,
			resp.StudentName,
			resp.SubmittedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", resp.ElapsedSeconds),
		}
		for _, q := range answerable {
			row = append(row, model.FormatAnswer(q, resp.ResponseData.Get(q.ID)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
