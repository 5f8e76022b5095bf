package engine

import (
	"context"

	"github.com/Taycode/survey-app-api/model"
)

// FieldOptions resolves the effective option list for a field. Fields
// without dependencies use their static options. Otherwise the first
// dependency row (creation order) whose source value matches the source
// field's current answer supplies the options; with no match the static
// options remain in effect.
func (e *Engine) FieldOptions(ctx context.Context, field model.Field, resp model.SurveyResponse) ([]model.Option, error) {
	if !field.HasDependencies {
		return e.staticOptions(ctx, field.ID)
	}

	answers, err := e.Answers(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	deps, err := e.store.DependenciesByField(ctx, field.ID)
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		if answers[dep.SourceFieldID] == dep.SourceValue {
			return dep.Options, nil
		}
	}

	return e.staticOptions(ctx, field.ID)
}

func (e *Engine) staticOptions(ctx context.Context, fieldID string) ([]model.Option, error) {
	rows, err := e.store.OptionsByField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	options := make([]model.Option, len(rows))
	for i, o := range rows {
		options[i] = model.Option{Label: o.Label, Value: o.Value}
	}
	return options, nil
}
