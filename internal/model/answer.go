package model

import (
	"strconv"
	"strings"
	"time"
)

// ContactInfo is the structured answer of a contact_info question
type ContactInfo struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

func (c ContactInfo) IsZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// FileRef is the structured answer of a file_upload question
type FileRef struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
	Size int64  `json:"size,omitempty" bson:"size,omitempty"`
}

// AnswerValue holds one question's answer. Exactly one of the fields is
// populated depending on the question type: Text for scalar answers
// (text/number/date/choice), Values for multi-select answers (checkboxes,
// group member names), Contact and File for structured answers.
type AnswerValue struct {
	Text      string       `json:"text,omitempty" bson:"text,omitempty"`
	Values    []string     `json:"values,omitempty" bson:"values,omitempty"`
	Contact   *ContactInfo `json:"contact,omitempty" bson:"contact,omitempty"`
	File      *FileRef     `json:"file,omitempty" bson:"file,omitempty"`
	Inherited bool         `json:"inherited,omitempty" bson:"inherited,omitempty"` // group answer taken over from an already-filled group
}

// TextAnswer returns a scalar answer value.
func TextAnswer(s string) AnswerValue { return AnswerValue{Text: s} }

// ListAnswer returns a multi-select answer value.
func ListAnswer(vs ...string) AnswerValue { return AnswerValue{Values: vs} }

// IsEmpty reports whether the value counts as unanswered.
func (v AnswerValue) IsEmpty() bool {
	if v.Text != "" || len(v.Values) > 0 {
		return false
	}
	if v.Contact != nil && !v.Contact.IsZero() {
		return false
	}
	if v.File != nil && v.File.Name != "" {
		return false
	}
	return true
}

// Raw returns the value in the shape rule conditions are evaluated against:
// nil when empty, []string for multi-select answers, a string otherwise.
func (v AnswerValue) Raw() interface{} {
	switch {
	case len(v.Values) > 0:
		return v.Values
	case v.Text != "":
		return v.Text
	case v.Contact != nil && !v.Contact.IsZero():
		return v.Contact.Email
	case v.File != nil && v.File.Name != "":
		return v.File.Name
	}
	return nil
}

// AnswerMap maps question IDs to answers for one fill session
type AnswerMap map[string]AnswerValue

// Get returns the answer for a question id, or an empty value.
func (m AnswerMap) Get(id string) AnswerValue {
	if m == nil {
		return AnswerValue{}
	}
	return m[id]
}

// FormResponse is one submitted fill of a form
type FormResponse struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	FormID         string    `json:"formId" bson:"formId"`
	StudentEmail   string    `json:"studentEmail" bson:"studentEmail"`
	StudentName    string    `json:"studentName,omitempty" bson:"studentName,omitempty"`
	ResponseData   AnswerMap `json:"responseData" bson:"responseData"`
	ElapsedSeconds int       `json:"elapsedSeconds" bson:"elapsedSeconds"`
	SubmittedAt    time.Time `json:"submittedAt" bson:"submittedAt"`
}

// FormatAnswer renders an answer for display (response viewer, CSV export).
// Formatting an already-formatted scalar yields the same string.
func FormatAnswer(q *Question, v AnswerValue) string {
	if v.IsEmpty() {
		return ""
	}
	switch {
	case v.Contact != nil && !v.Contact.IsZero():
		parts := make([]string, 0, 3)
		if v.Contact.Name != "" {
			parts = append(parts, v.Contact.Name)
		}
		if v.Contact.Email != "" {
			parts = append(parts, v.Contact.Email)
		}
		if v.Contact.Phone != "" {
			parts = append(parts, v.Contact.Phone)
		}
		return strings.Join(parts, ", ")
	case v.File != nil && v.File.Name != "":
		if v.File.URL != "" {
			return v.File.Name + " (" + v.File.URL + ")"
		}
		return v.File.Name
	case len(v.Values) > 0:
		return strings.Join(v.Values, ", ")
	}
	if q != nil && q.Type == QuestionNumber {
		// "7.0" and "7" display the same way
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return v.Text
}
