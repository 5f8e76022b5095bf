package engine

import (
	"strconv"
	"strings"

	"github.com/Taycode/survey-app-api/model"
)

// EvaluateRule reports whether a conditional rule's condition is met given
// the current answers. A missing answer counts as empty; empty answers only
// satisfy is_empty. Malformed numeric operands make greater_than/less_than
// false rather than an error.
func EvaluateRule(rule model.ConditionalRule, answers map[string]string) bool {
	answer := answers[rule.SourceFieldID]

	if answer == "" {
		switch rule.Operator {
		case model.OpIsEmpty:
			return true
		default:
			// Including is_not_empty: no value satisfies nothing else.
			return false
		}
	}

	switch rule.Operator {
	case model.OpEquals:
		return answer == rule.Value
	case model.OpNotEquals:
		return answer != rule.Value
	case model.OpGreaterThan:
		a, b, ok := parseFloats(answer, rule.Value)
		return ok && a > b
	case model.OpLessThan:
		a, b, ok := parseFloats(answer, rule.Value)
		return ok && a < b
	case model.OpContains:
		return strings.Contains(strings.ToLower(answer), strings.ToLower(rule.Value))
	case model.OpIn:
		for _, v := range strings.Split(rule.Value, ",") {
			if answer == strings.TrimSpace(v) {
				return true
			}
		}
		return false
	case model.OpIsEmpty:
		return false
	case model.OpIsNotEmpty:
		return true
	}
	return false // unknown operator
}

func parseFloats(a, b string) (float64, float64, bool) {
	fa, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, false
	}
	fb, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, false
	}
	return fa, fb, true
}
