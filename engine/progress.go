package engine

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/Taycode/survey-app-api/model"
)

type Progress struct {
	Completed  int     `json:"sections_completed"`
	Total      int     `json:"total_sections"`
	Remaining  int     `json:"sections_remaining"`
	Percentage float64 `json:"percentage"`
}

// FieldView is a field as rendered to the respondent: visible, with its
// effective option list, and optionally pre-filled with the current answer.
type FieldView struct {
	FieldID      string          `json:"field_id"`
	Label        string          `json:"label"`
	Type         model.FieldType `json:"field_type"`
	Required     bool            `json:"is_required"`
	CurrentValue string          `json:"current_value,omitempty"`
	Options      []model.Option  `json:"options,omitempty"`
}

type SectionView struct {
	SectionID string      `json:"section_id"`
	Title     string      `json:"title"`
	Order     int         `json:"order"`
	Fields    []FieldView `json:"fields"`
}

type CurrentSection struct {
	Section    *SectionView `json:"current_section"`
	IsComplete bool         `json:"is_complete"`
	Progress   Progress     `json:"progress"`
}

type SectionNav struct {
	Section    SectionView `json:"section"`
	IsEditable bool        `json:"is_editable"`
	Progress   Progress    `json:"progress"`
}

// Progress counts visible sections against visible sections holding at
// least one answer. A section counts as completed from its first answer,
// regardless of required fields still open.
func (e *Engine) Progress(ctx context.Context, resp model.SurveyResponse) (Progress, error) {
	visible, err := e.VisibleSections(ctx, resp)
	if err != nil {
		return Progress{}, err
	}
	answered, err := e.store.AnsweredSectionIDs(ctx, resp.ID)
	if err != nil {
		return Progress{}, err
	}

	// Count over the survey's actual sections: the visibility map may hold
	// entries for show-rule targets that never existed.
	sections, err := e.store.SectionsBySurvey(ctx, resp.SurveyID)
	if err != nil {
		return Progress{}, err
	}

	var total, completed int
	for _, section := range sections {
		if !visible[section.ID] {
			continue
		}
		total++
		if answered[section.ID] {
			completed++
		}
	}

	p := Progress{
		Completed: completed,
		Total:     total,
		Remaining: total - completed,
	}
	if total > 0 {
		p.Percentage = math.Round(float64(completed)/float64(total)*100*100) / 100
	}
	return p, nil
}

// CurrentSection finds the first visible section without any answer, in
// section order, hydrated for display. A nil section with IsComplete=true
// means every visible section has been touched.
func (e *Engine) CurrentSection(ctx context.Context, resp model.SurveyResponse) (CurrentSection, error) {
	visible, err := e.VisibleSections(ctx, resp)
	if err != nil {
		return CurrentSection{}, err
	}
	answered, err := e.store.AnsweredSectionIDs(ctx, resp.ID)
	if err != nil {
		return CurrentSection{}, err
	}

	sections, err := e.store.SectionsBySurvey(ctx, resp.SurveyID)
	if err != nil {
		return CurrentSection{}, err
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	progress, err := e.Progress(ctx, resp)
	if err != nil {
		return CurrentSection{}, err
	}

	for _, section := range sections {
		if !visible[section.ID] || answered[section.ID] {
			continue
		}
		view, err := e.sectionView(ctx, section, resp, false)
		if err != nil {
			return CurrentSection{}, err
		}
		return CurrentSection{Section: &view, Progress: progress}, nil
	}

	return CurrentSection{IsComplete: true, Progress: progress}, nil
}

// SectionForNavigation returns a section hydrated with existing answers for
// back-navigation and editing. It returns nil when the section does not
// exist in the survey or is currently hidden; callers surface both as not
// found.
func (e *Engine) SectionForNavigation(ctx context.Context, sectionID string, resp model.SurveyResponse) (*SectionNav, error) {
	section, err := e.store.SectionByID(ctx, sectionID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if section.SurveyID != resp.SurveyID {
		return nil, nil
	}

	visible, err := e.VisibleSections(ctx, resp)
	if err != nil {
		return nil, err
	}
	if !visible[section.ID] {
		return nil, nil
	}

	view, err := e.sectionView(ctx, section, resp, true)
	if err != nil {
		return nil, err
	}
	progress, err := e.Progress(ctx, resp)
	if err != nil {
		return nil, err
	}
	return &SectionNav{Section: view, IsEditable: true, Progress: progress}, nil
}

// sectionView assembles the visible fields of a section in order, with
// resolved options and, when prefill is set, the respondent's answers.
func (e *Engine) sectionView(ctx context.Context, section model.Section, resp model.SurveyResponse, prefill bool) (SectionView, error) {
	visibleFields, err := e.VisibleFields(ctx, section, resp)
	if err != nil {
		return SectionView{}, err
	}

	var answers map[string]string
	if prefill {
		answers, err = e.Answers(ctx, resp.ID)
		if err != nil {
			return SectionView{}, err
		}
	}

	fields, err := e.store.FieldsBySection(ctx, section.ID)
	if err != nil {
		return SectionView{}, err
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	view := SectionView{
		SectionID: section.ID,
		Title:     section.Title,
		Order:     section.Order,
		Fields:    []FieldView{},
	}
	for _, field := range fields {
		if !visibleFields[field.ID] {
			continue
		}
		fv := FieldView{
			FieldID:  field.ID,
			Label:    field.Label,
			Type:     field.Type,
			Required: field.Required,
		}
		if prefill {
			fv.CurrentValue = answers[field.ID]
		}
		if field.Type.HasOptions() {
			fv.Options, err = e.FieldOptions(ctx, field, resp)
			if err != nil {
				return SectionView{}, err
			}
		}
		view.Fields = append(view.Fields, fv)
	}
	return view, nil
}
