package model

import "strings"

// Operator is a conditional-rule comparison operator. Incoming schemas spell
// these inconsistently ("Greater Than", "greater_than", "GREATER_THAN"), so
// every lookup goes through CanonicalOperator.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpContains       Operator = "contains"
	OpDoesNotContain Operator = "does_not_contain"
	OpGreaterThan    Operator = "greater_than"
	OpLessThan       Operator = "less_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessOrEqual    Operator = "less_or_equal"
	OpIsEmpty        Operator = "is_empty"
	OpIsNotEmpty     Operator = "is_not_empty"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"
)

// CanonicalOperator lower-cases and collapses whitespace runs to underscores
// so that space- and underscore-separated spellings match the same operator.
func CanonicalOperator(s string) Operator {
	return Operator(strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), "_"))
}

// RuleAction is what a matched rule does
type RuleAction string

const (
	ActionShow      RuleAction = "show"
	ActionHide      RuleAction = "hide"
	ActionJumpTo    RuleAction = "jump_to"
	ActionSkipNext  RuleAction = "skip_next"
	ActionSkipToEnd RuleAction = "skip_to_end"
)

// CanonicalAction normalizes an action spelling the same way as operators.
func CanonicalAction(s string) RuleAction {
	return RuleAction(strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), "_"))
}

// IsVisibility reports whether the action belongs to the visibility resolver
// (show/hide) rather than the navigation controller.
func (a RuleAction) IsVisibility() bool {
	return a == ActionShow || a == ActionHide
}

// Rule is a single conditional clause attached to a question. The condition is
// evaluated against the answer of the question at TargetIndex; for jump_to
// rules the same index doubles as the landing position.
type Rule struct {
	TargetIndex int        `json:"targetQuestionIndex" bson:"targetQuestionIndex"`
	TargetID    string     `json:"targetQuestionId,omitempty" bson:"targetQuestionId,omitempty"` // resolved at ingestion
	Operator    Operator   `json:"operator" bson:"operator"`
	Operand     string     `json:"operand,omitempty" bson:"operand,omitempty"`
	Action      RuleAction `json:"action" bson:"action"`
	Order       int        `json:"order" bson:"order"`
	Disabled    bool       `json:"-" bson:"disabled,omitempty"` // target unresolvable; rule never matches
}
