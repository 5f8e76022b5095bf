package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Taycode/survey-app-api/model"
)

// AnswerInput is one submitted answer. Value keeps whatever JSON type the
// client sent; it is stringified before validation and storage, so 42 and
// "42" are equivalent.
type AnswerInput struct {
	FieldID string `json:"field_id"`
	Value   any    `json:"value"`
}

// ValidateAndApply checks a section submission and, when clean, persists the
// answers and records the section as the response's last submitted one.
// All checks run and their errors accumulate; the only short-circuit is an
// invisible section, which yields a single "section"-keyed error. Nothing is
// persisted unless the whole submission validates.
func (e *Engine) ValidateAndApply(ctx context.Context, section model.Section, answers []AnswerInput, resp model.SurveyResponse) (bool, map[string]string, error) {
	errs := map[string]string{}

	visibleSections, err := e.VisibleSections(ctx, resp)
	if err != nil {
		return false, nil, err
	}
	if !visibleSections[section.ID] {
		errs["section"] = fmt.Sprintf("Section '%s' is not available based on your previous answers.", section.Title)
		return false, errs, nil
	}

	visibleFields, err := e.VisibleFields(ctx, section, resp)
	if err != nil {
		return false, nil, err
	}

	sectionFields, err := e.store.FieldsBySection(ctx, section.ID)
	if err != nil {
		return false, nil, err
	}
	fieldsByID := make(map[string]model.Field, len(sectionFields))
	for _, f := range sectionFields {
		fieldsByID[f.ID] = f
	}

	submitted := make(map[string]string, len(answers))
	for _, a := range answers {
		value := Stringify(a.Value)
		submitted[a.FieldID] = value

		if !visibleFields[a.FieldID] {
			errs[a.FieldID] = "This field is not available based on your previous answers."
			continue
		}
		field, ok := fieldsByID[a.FieldID]
		if !ok {
			errs[a.FieldID] = "Field does not belong to this section."
			continue
		}

		if field.HasDependencies {
			if msg, err := e.checkDependentOption(ctx, field, value, resp); err != nil {
				return false, nil, err
			} else if msg != "" {
				errs[a.FieldID] = msg
			}
		}

		if msg, err := e.validateType(ctx, field, value); err != nil {
			return false, nil, err
		} else if msg != "" {
			errs[a.FieldID] = msg
		}
	}

	for _, field := range sectionFields {
		if visibleFields[field.ID] && field.Required && submitted[field.ID] == "" {
			errs[field.ID] = "This field is required."
		}
	}

	if len(errs) > 0 {
		return false, errs, nil
	}

	for _, a := range answers {
		field := fieldsByID[a.FieldID]
		if err := e.store.SaveAnswer(ctx, resp.ID, field, Stringify(a.Value)); err != nil {
			return false, nil, err
		}
	}
	if err := e.store.SetLastSection(ctx, resp.ID, section.ID); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

func (e *Engine) checkDependentOption(ctx context.Context, field model.Field, value string, resp model.SurveyResponse) (string, error) {
	options, err := e.FieldOptions(ctx, field, resp)
	if err != nil {
		return "", err
	}
	labels := make([]string, len(options))
	for i, opt := range options {
		if value == opt.Value {
			return "", nil
		}
		labels[i] = opt.Label
	}
	return "Invalid option selected. Available options: " + strings.Join(labels, ", "), nil
}

// validateType applies the per-type format checks. Empty values pass; the
// required-field check covers those. Dropdown and radio are checked against
// the field's static option set, independent of dependency filtering: a
// dependent value must satisfy both its dependency's option list and the
// field's own options.
func (e *Engine) validateType(ctx context.Context, field model.Field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	switch field.Type {
	case model.FieldNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return fmt.Sprintf("Value '%s' is not a valid number", value), nil
		}
	case model.FieldDropdown, model.FieldRadio:
		options, err := e.store.OptionsByField(ctx, field.ID)
		if err != nil {
			return "", err
		}
		for _, opt := range options {
			if value == opt.Value {
				return "", nil
			}
		}
		return fmt.Sprintf("Value '%s' is not a valid option", value), nil
	}
	// text, date, checkbox: accepted as-is.
	return "", nil
}

// Stringify renders a submitted JSON value the way it will be stored.
// Numbers lose their float form when integral, arrays (checkbox answers)
// become their JSON encoding, nil becomes the empty string.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
