package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"campusforms/internal/model"
)

func TestWriteCSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	formID := env.createForm(
		model.Question{ID: "q-start", Order: 1, Type: model.QuestionStartScreen, Title: "Welcome"},
		model.Question{ID: "q-name", Order: 2, Type: model.QuestionShortText, Title: "Name"},
		model.Question{ID: "q-score", Order: 3, Type: model.QuestionNumber, Title: "Score"},
		model.Question{ID: "q-tools", Order: 4, Type: model.QuestionCheckboxes, Title: "Tools"},
		model.Question{ID: "q-end", Order: 5, Type: model.QuestionEndScreen, Title: "Thanks"},
	)

	submitted := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	env.responses.responses = append(env.responses.responses, &model.FormResponse{
		ID:           "resp-1",
		FormID:       formID,
		StudentEmail: "ada@uni.edu",
		StudentName:  "Ada",
		ResponseData: model.AnswerMap{
			"q-name":  model.TextAnswer("Ada Lovelace"),
			"q-score": model.TextAnswer("7.0"),
			"q-tools": model.ListAnswer("Python", "SQL"),
		},
		ElapsedSeconds: 42,
		SubmittedAt:    submitted,
	})

	var buf bytes.Buffer
	if err := env.exportSvc.WriteCSV(ctx, formID, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(records))
	}

	// screens are not columns
	wantHeader := []string{"Student Email", "Student Name", "Submitted At", "Elapsed Seconds", "Name", "Score", "Tools"}
	for i, want := range wantHeader {
		if records[0][i] != want {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], want)
		}
	}

	row := records[1]
	if row[0] != "ada@uni.edu" || row[1] != "Ada" {
		t.Fatalf("identity columns = %v", row[:2])
	}
	if row[2] != "2026-03-10 09:30:00" || row[3] != "42" {
		t.Fatalf("timing columns = %v", row[2:4])
	}
	if row[4] != "Ada Lovelace" {
		t.Fatalf("text column = %q", row[4])
	}
	if row[5] != "7" {
		t.Fatalf("number column = %q, want normalized %q", row[5], "7")
	}
	if row[6] != "Python, SQL" {
		t.Fatalf("checkbox column = %q", row[6])
	}
}

func TestWriteCSVEmptyAnswersStayBlank(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	formID := env.createForm(
		model.Question{ID: "q-name", Order: 1, Type: model.QuestionShortText, Title: "Name"},
		model.Question{ID: "q-extra", Order: 2, Type: model.QuestionLongText, Title: "Anything else"},
	)
	env.responses.responses = append(env.responses.responses, &model.FormResponse{
		ID:           "resp-1",
		FormID:       formID,
		StudentEmail: "ada@uni.edu",
		StudentName:  "Ada",
		ResponseData: model.AnswerMap{"q-name": model.TextAnswer("Ada")},
		SubmittedAt:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	})

	var buf bytes.Buffer
	if err := env.exportSvc.WriteCSV(ctx, formID, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported CSV: %v", err)
	}
	if got := records[1][5]; got != "" {
		t.Fatalf("unanswered column = %q, want empty", got)
	}
}
