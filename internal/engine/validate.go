package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"campusforms/internal/model"
)

// Result is the outcome of validating one answer
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func ok() Result { return Result{OK: true} }

func fail(format string, a ...any) Result {
	return Result{Reason: fmt.Sprintf(format, a...)}
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// Validate checks a candidate answer against the question's constraints.
// Failures come back as user-displayable reasons; Validate never panics.
// Group selection size bounds are owned by the group coordinator; here only
// the required check applies, and callers bypass Validate entirely when the
// group was filled by someone else.
func Validate(q *model.Question, answer model.AnswerValue) Result {
	if q == nil {
		return ok()
	}
	switch q.Type {
	case model.QuestionStartScreen, model.QuestionEndScreen, model.QuestionStatement, model.QuestionRedirect:
		return ok()
	}

	if answer.IsEmpty() {
		if q.IsRequired() {
			return fail("This question is required")
		}
		return ok()
	}

	switch q.Type {
	case model.QuestionEmail:
		if !emailPattern.MatchString(strings.TrimSpace(answer.Text)) {
			return fail("Please enter a valid email address")
		}
	case model.QuestionPhone:
		if !phonePattern.MatchString(strings.TrimSpace(answer.Text)) {
			return fail("Please enter a valid phone number")
		}
	case model.QuestionURL:
		u, err := url.Parse(strings.TrimSpace(answer.Text))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fail("Please enter a valid URL starting with http:// or https://")
		}
	case model.QuestionNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(answer.Text), 64)
		if err != nil {
			return fail("Please enter a number")
		}
		if q.MinValue != nil && f < *q.MinValue {
			return fail("Value must be at least %s", trimFloat(*q.MinValue))
		}
		if q.MaxValue != nil && f > *q.MaxValue {
			return fail("Value must be at most %s", trimFloat(*q.MaxValue))
		}
	case model.QuestionDate:
		if !datePattern.MatchString(strings.TrimSpace(answer.Text)) {
			return fail("Please enter a date as YYYY-MM-DD")
		}
	case model.QuestionTime:
		if !timePattern.MatchString(strings.TrimSpace(answer.Text)) {
			return fail("Please enter a time as HH:MM")
		}
	case model.QuestionShortText, model.QuestionLongText:
		n := len([]rune(answer.Text))
		if q.MinLength > 0 && n < q.MinLength {
			return fail("Answer must be at least %d characters", q.MinLength)
		}
		if q.MaxLength > 0 && n > q.MaxLength {
			return fail("Answer must be at most %d characters", q.MaxLength)
		}
	case model.QuestionCheckboxes:
		if q.MaxSelect > 0 && len(answer.Values) > q.MaxSelect {
			return fail("Select at most %d options", q.MaxSelect)
		}
	case model.QuestionRating, model.QuestionNPS, model.QuestionLinearScale:
		f, err := strconv.ParseFloat(strings.TrimSpace(answer.Text), 64)
		if err != nil {
			return fail("Please pick a value on the scale")
		}
		lo, hi := scaleBounds(q)
		if f < float64(lo) || f > float64(hi) {
			return fail("Pick a value between %d and %d", lo, hi)
		}
	case model.QuestionFileUpload:
		if answer.File == nil || answer.File.Name == "" {
			return fail("Please upload a file")
		}
		if len(q.FileTypes) > 0 && !allowedFileType(answer.File.Name, q.FileTypes) {
			return fail("Allowed file types: %s", strings.Join(q.FileTypes, ", "))
		}
		if q.MaxFileSize > 0 && answer.File.Size > q.MaxFileSize {
			return fail("File is too large (max %d MB)", q.MaxFileSize/(1024*1024))
		}
	case model.QuestionContactInfo:
		if answer.Contact == nil || answer.Contact.Name == "" {
			return fail("Please enter your name")
		}
		if answer.Contact.Email != "" && !emailPattern.MatchString(answer.Contact.Email) {
			return fail("Please enter a valid email address")
		}
	}
	return ok()
}

func scaleBounds(q *model.Question) (int, int) {
	lo, hi := q.ScaleMin, q.ScaleMax
	if hi == 0 {
		switch q.Type {
		case model.QuestionRating:
			lo, hi = 1, 5
		case model.QuestionNPS:
			lo, hi = 0, 10
		default:
			lo, hi = 1, 10
		}
	}
	return lo, hi
}

func allowedFileType(name string, types []string) bool {
	lower := strings.ToLower(name)
	for _, t := range types {
		if strings.HasSuffix(lower, "."+strings.TrimPrefix(strings.ToLower(t), ".")) {
			return true
		}
	}
	return false
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
