// Package engine implements the schema-driven form engine: conditional rule
// evaluation, question visibility, navigation and answer validation. The
// package is pure and never touches the network or storage, so a fill
// session can be driven headlessly in tests.
package engine

import (
	"log"
	"math"
	"strconv"
	"strings"

	"campusforms/internal/model"
)

// Evaluate applies a single conditional-rule predicate to the actual answer
// value of the rule's target question. actual is nil (unanswered), a string,
// or a []string. A malformed rule never panics; an unknown operator logs and
// evaluates to false.
func Evaluate(operator model.Operator, operand string, actual interface{}) bool {
	switch model.CanonicalOperator(string(operator)) {
	case model.OpEquals:
		return toString(actual) == operand
	case model.OpNotEquals:
		return toString(actual) != operand
	case model.OpContains:
		return containsValue(actual, operand)
	case model.OpDoesNotContain:
		return !containsValue(actual, operand)
	case model.OpGreaterThan:
		return toFloat(actual) > toFloat(operand)
	case model.OpLessThan:
		return toFloat(actual) < toFloat(operand)
	case model.OpGreaterOrEqual:
		return toFloat(actual) >= toFloat(operand)
	case model.OpLessOrEqual:
		return toFloat(actual) <= toFloat(operand)
	case model.OpIsEmpty:
		return isEmptyValue(actual)
	case model.OpIsNotEmpty:
		return !isEmptyValue(actual)
	case model.OpStartsWith:
		return strings.HasPrefix(strings.ToLower(toString(actual)), strings.ToLower(operand))
	case model.OpEndsWith:
		return strings.HasSuffix(strings.ToLower(toString(actual)), strings.ToLower(operand))
	}
	log.Printf("engine: unknown rule operator %q, treating as no match", operator)
	return false
}

// match evaluates one rule against the answers of the full question list.
// Disabled rules (unresolvable target) never match.
func match(r model.Rule, questions []model.Question, answers model.AnswerMap) bool {
	if r.Disabled {
		return false
	}
	return Evaluate(r.Operator, r.Operand, targetAnswer(r, questions, answers))
}

// targetAnswer resolves the answer the rule's condition is tested against.
// Resolution prefers the question ID captured at schema ingestion and falls
// back to the positional index for schemas loaded before resolution.
func targetAnswer(r model.Rule, questions []model.Question, answers model.AnswerMap) interface{} {
	if r.TargetID != "" {
		return answers.Get(r.TargetID).Raw()
	}
	if r.TargetIndex < 0 || r.TargetIndex >= len(questions) {
		return nil
	}
	return answers.Get(questions[r.TargetIndex].ID).Raw()
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// toFloat parses a value as a float and returns NaN when it cannot. NaN
// compares false against everything, so an unanswered numeric question never
// satisfies a numeric rule.
func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// containsValue is a membership test for array answers and a case-insensitive
// substring test for scalars.
func containsValue(actual interface{}, operand string) bool {
	if list, ok := actual.([]string); ok {
		for _, item := range list {
			if item == operand {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(toString(actual)), strings.ToLower(operand))
}

func isEmptyValue(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	}
	return false
}
