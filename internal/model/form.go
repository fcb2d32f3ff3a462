package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// QuestionType defines the kind of form field a question renders as
type QuestionType string

const (
	QuestionStartScreen    QuestionType = "start_screen"
	QuestionEndScreen      QuestionType = "end_screen"
	QuestionStatement      QuestionType = "statement"
	QuestionShortText      QuestionType = "short_text"
	QuestionLongText       QuestionType = "long_text"
	QuestionEmail          QuestionType = "email"
	QuestionPhone          QuestionType = "phone"
	QuestionURL            QuestionType = "url"
	QuestionNumber         QuestionType = "number"
	QuestionDate           QuestionType = "date"
	QuestionTime           QuestionType = "time"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionCheckboxes     QuestionType = "checkboxes"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionRating         QuestionType = "rating"
	QuestionNPS            QuestionType = "nps"
	QuestionLinearScale    QuestionType = "linear_scale"
	QuestionFileUpload     QuestionType = "file_upload"
	QuestionContactInfo    QuestionType = "contact_info"
	QuestionGroupSelection QuestionType = "group_selection"
	QuestionRedirect       QuestionType = "redirect"
)

// IsScreen reports whether the type is a start or end screen (always visible,
// never answered).
func (t QuestionType) IsScreen() bool {
	return t == QuestionStartScreen || t == QuestionEndScreen
}

// FlexBool accepts the legacy required-flag encodings (true, "Yes", "TRUE",
// "yes", "true") and decodes them to a plain boolean once, at ingestion.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = flexTruthy(s)
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		// Anything undecodable counts as "not required" rather than a
		// schema load failure.
		*b = false
		return nil
	}
	*b = FlexBool(v)
	return nil
}

func (b *FlexBool) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeBoolean:
		var v bool
		if err := bson.UnmarshalValue(t, data, &v); err != nil {
			return err
		}
		*b = FlexBool(v)
	case bson.TypeString:
		var s string
		if err := bson.UnmarshalValue(t, data, &s); err != nil {
			return err
		}
		*b = flexTruthy(s)
	default:
		*b = false
	}
	return nil
}

func flexTruthy(s string) FlexBool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// Option is one selectable choice of a choice-like question
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// Question is one field definition in a form schema
type Question struct {
	ID          string       `json:"id" bson:"id"`
	Order       int          `json:"order" bson:"order"`
	Type        QuestionType `json:"type" bson:"type"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Required    FlexBool     `json:"required" bson:"required"`
	Options     []Option     `json:"options,omitempty" bson:"options,omitempty"`

	// Type-specific constraints
	MinValue     *float64 `json:"minValue,omitempty" bson:"minValue,omitempty"`
	MaxValue     *float64 `json:"maxValue,omitempty" bson:"maxValue,omitempty"`
	MinLength    int      `json:"minLength,omitempty" bson:"minLength,omitempty"`
	MaxLength    int      `json:"maxLength,omitempty" bson:"maxLength,omitempty"`
	MaxSelect    int      `json:"maxSelect,omitempty" bson:"maxSelect,omitempty"`
	MinGroupSize int      `json:"minGroupSize,omitempty" bson:"minGroupSize,omitempty"`
	MaxGroupSize int      `json:"maxGroupSize,omitempty" bson:"maxGroupSize,omitempty"`
	ScaleMin     int      `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"`
	ScaleMax     int      `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`
	FileTypes    []string `json:"fileTypes,omitempty" bson:"fileTypes,omitempty"`
	MaxFileSize  int64    `json:"maxFileSize,omitempty" bson:"maxFileSize,omitempty"` // bytes
	RedirectURL  string   `json:"redirectUrl,omitempty" bson:"redirectUrl,omitempty"`

	HasConditionalLogic bool   `json:"hasConditionalLogic" bson:"hasConditionalLogic"`
	ConditionalRules    []Rule `json:"conditionalRules,omitempty" bson:"conditionalRules,omitempty"`
}

// IsRequired returns the normalized required flag.
func (q *Question) IsRequired() bool {
	return bool(q.Required)
}

// Form is a persistent form template created by staff
type Form struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Questions   []Question `json:"questions" bson:"questions"`
	OpensAt     *time.Time `json:"opensAt,omitempty" bson:"opensAt,omitempty"`
	ClosesAt    *time.Time `json:"closesAt,omitempty" bson:"closesAt,omitempty"`
	Published   bool       `json:"published" bson:"published"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Expired reports whether the form's deadline has passed at t.
func (f *Form) Expired(t time.Time) bool {
	return f.ClosesAt != nil && t.After(*f.ClosesAt)
}

// RedirectTarget returns the redirect URL configured on a redirect question,
// or "" when the form has none.
func (f *Form) RedirectTarget() string {
	for i := range f.Questions {
		if f.Questions[i].Type == QuestionRedirect && f.Questions[i].RedirectURL != "" {
			return f.Questions[i].RedirectURL
		}
	}
	return ""
}
