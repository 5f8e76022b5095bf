package engine

import (
	"context"

	"github.com/Taycode/survey-app-api/model"
)

// VisibleSections computes the set of section IDs currently visible to the
// response. All sections start visible; every matching section-targeted rule
// then adds or removes its target. Rules apply in creation order, so when
// two matching rules conflict the later-created one wins.
func (e *Engine) VisibleSections(ctx context.Context, resp model.SurveyResponse) (map[string]bool, error) {
	answers, err := e.Answers(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	sections, err := e.store.SectionsBySurvey(ctx, resp.SurveyID)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(sections))
	for _, s := range sections {
		visible[s.ID] = true
	}

	rules, err := e.store.RulesBySurvey(ctx, resp.SurveyID, "section")
	if err != nil {
		return nil, err
	}
	applyRules(rules, answers, visible, nil)

	return visible, nil
}

// VisibleFields computes the set of visible field IDs within a section,
// considering only rules that target fields of this section. Same base-set
// and ordering semantics as VisibleSections.
func (e *Engine) VisibleFields(ctx context.Context, section model.Section, resp model.SurveyResponse) (map[string]bool, error) {
	answers, err := e.Answers(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	fields, err := e.store.FieldsBySection(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool, len(fields))
	inSection := make(map[string]bool, len(fields))
	for _, f := range fields {
		visible[f.ID] = true
		inSection[f.ID] = true
	}

	rules, err := e.store.RulesBySurvey(ctx, section.SurveyID, "field")
	if err != nil {
		return nil, err
	}
	applyRules(rules, answers, visible, inSection)

	return visible, nil
}

// applyRules folds matching rules over the visibility set. When scope is
// non-nil, rules targeting entities outside it are skipped.
func applyRules(rules []model.ConditionalRule, answers map[string]string, visible, scope map[string]bool) {
	for _, rule := range rules {
		target := rule.Target.TargetID()
		if scope != nil && !scope[target] {
			continue
		}
		if !EvaluateRule(rule, answers) {
			continue
		}
		switch rule.Action {
		case model.ActionShow:
			visible[target] = true
		case model.ActionHide:
			delete(visible, target)
		}
	}
}
