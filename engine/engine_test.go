package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Taycode/survey-app-api/model"
)

// fakeStore is an in-memory Store for engine tests. Slices preserve
// creation order, matching the store's ORDER BY clauses.
type fakeStore struct {
	surveys   map[string]model.Survey
	sections  []model.Section
	fields    []model.Field
	options   map[string][]model.FieldOption
	rules     []model.ConditionalRule
	deps      map[string][]model.FieldDependency
	responses map[string]model.SurveyResponse
	byToken   map[string]string
	answers   map[string]map[string]model.AnswerValue
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		surveys:   map[string]model.Survey{},
		options:   map[string][]model.FieldOption{},
		deps:      map[string][]model.FieldDependency{},
		responses: map[string]model.SurveyResponse{},
		byToken:   map[string]string{},
		answers:   map[string]map[string]model.AnswerValue{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) addSurvey(status model.SurveyStatus) model.Survey {
	survey := model.Survey{ID: s.id("survey"), Title: "Survey", Status: status}
	s.surveys[survey.ID] = survey
	return survey
}

func (s *fakeStore) addSection(surveyID string, order int) model.Section {
	section := model.Section{ID: s.id("section"), SurveyID: surveyID, Title: fmt.Sprintf("Section %d", order), Order: order}
	s.sections = append(s.sections, section)
	return section
}

func (s *fakeStore) addField(sectionID string, ft model.FieldType, required bool) model.Field {
	field := model.Field{ID: s.id("field"), SectionID: sectionID, Label: "Field", Type: ft, Required: required, Order: len(s.fields)}
	s.fields = append(s.fields, field)
	return field
}

func (s *fakeStore) addOption(fieldID, value string) {
	s.options[fieldID] = append(s.options[fieldID], model.FieldOption{
		ID: s.id("option"), FieldID: fieldID, Label: value, Value: value,
	})
}

func (s *fakeStore) addRule(target model.RuleTarget, sourceFieldID string, op model.Operator, value string, action model.RuleAction) {
	s.rules = append(s.rules, model.ConditionalRule{
		ID: s.id("rule"), Target: target, SourceFieldID: sourceFieldID,
		Operator: op, Value: value, Action: action,
	})
}

func (s *fakeStore) addDependency(dependentFieldID, sourceFieldID, sourceValue string, options ...string) {
	opts := make([]model.Option, len(options))
	for i, o := range options {
		opts[i] = model.Option{Label: o, Value: o}
	}
	s.deps[dependentFieldID] = append(s.deps[dependentFieldID], model.FieldDependency{
		ID: s.id("dep"), DependentFieldID: dependentFieldID,
		SourceFieldID: sourceFieldID, SourceValue: sourceValue, Options: opts,
	})
	for i, f := range s.fields {
		if f.ID == dependentFieldID {
			s.fields[i].HasDependencies = true
		}
	}
}

func (s *fakeStore) addResponse(surveyID string) model.SurveyResponse {
	resp := model.SurveyResponse{
		ID: s.id("resp"), SurveyID: surveyID, SessionToken: s.id("token"),
		Status: model.ResponseInProgress, StartedAt: time.Now().UTC(),
	}
	s.responses[resp.ID] = resp
	s.byToken[resp.SessionToken] = resp.ID
	return resp
}

func (s *fakeStore) setAnswer(responseID, fieldID, value string) {
	if s.answers[responseID] == nil {
		s.answers[responseID] = map[string]model.AnswerValue{}
	}
	s.answers[responseID][fieldID] = model.PlainValue(value)
}

func (s *fakeStore) SurveyByID(_ context.Context, id string) (model.Survey, error) {
	survey, ok := s.surveys[id]
	if !ok {
		return model.Survey{}, model.ErrNotFound
	}
	return survey, nil
}

func (s *fakeStore) SectionsBySurvey(_ context.Context, surveyID string) ([]model.Section, error) {
	var out []model.Section
	for _, sec := range s.sections {
		if sec.SurveyID == surveyID {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (s *fakeStore) SectionByID(_ context.Context, id string) (model.Section, error) {
	for _, sec := range s.sections {
		if sec.ID == id {
			return sec, nil
		}
	}
	return model.Section{}, model.ErrNotFound
}

func (s *fakeStore) FieldsBySection(_ context.Context, sectionID string) ([]model.Field, error) {
	var out []model.Field
	for _, f := range s.fields {
		if f.SectionID == sectionID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) OptionsByField(_ context.Context, fieldID string) ([]model.FieldOption, error) {
	return s.options[fieldID], nil
}

func (s *fakeStore) RulesBySurvey(_ context.Context, surveyID, targetType string) ([]model.ConditionalRule, error) {
	var out []model.ConditionalRule
	for _, r := range s.rules {
		if model.TargetType(r.Target) == targetType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) DependenciesByField(_ context.Context, fieldID string) ([]model.FieldDependency, error) {
	return s.deps[fieldID], nil
}

func (s *fakeStore) CreateResponse(_ context.Context, resp model.SurveyResponse) error {
	s.responses[resp.ID] = resp
	s.byToken[resp.SessionToken] = resp.ID
	return nil
}

func (s *fakeStore) ResponseByToken(_ context.Context, token string) (model.SurveyResponse, error) {
	id, ok := s.byToken[token]
	if !ok {
		return model.SurveyResponse{}, model.ErrNotFound
	}
	return s.responses[id], nil
}

func (s *fakeStore) SetLastSection(_ context.Context, responseID, sectionID string) error {
	resp, ok := s.responses[responseID]
	if !ok {
		return model.ErrNotFound
	}
	resp.LastSectionID = sectionID
	s.responses[responseID] = resp
	return nil
}

func (s *fakeStore) CompleteResponse(_ context.Context, responseID string) (model.SurveyResponse, error) {
	resp, ok := s.responses[responseID]
	if !ok || resp.Status != model.ResponseInProgress {
		return model.SurveyResponse{}, model.ErrNotFound
	}
	now := time.Now().UTC()
	resp.Status = model.ResponseCompleted
	resp.CompletedAt = &now
	s.responses[responseID] = resp
	return resp, nil
}

func (s *fakeStore) AnswersByResponse(_ context.Context, responseID string) ([]model.FieldAnswer, error) {
	var out []model.FieldAnswer
	for fieldID, value := range s.answers[responseID] {
		out = append(out, model.FieldAnswer{ResponseID: responseID, FieldID: fieldID, Value: value})
	}
	return out, nil
}

func (s *fakeStore) SaveAnswer(_ context.Context, responseID string, field model.Field, value string) error {
	if s.answers[responseID] == nil {
		s.answers[responseID] = map[string]model.AnswerValue{}
	}
	if field.Sensitive && value != "" {
		s.answers[responseID][field.ID] = model.EncryptedValue(value)
	} else {
		s.answers[responseID][field.ID] = model.PlainValue(value)
	}
	return nil
}

func (s *fakeStore) AnsweredSectionIDs(_ context.Context, responseID string) (map[string]bool, error) {
	sectionOf := map[string]string{}
	for _, f := range s.fields {
		sectionOf[f.ID] = f.SectionID
	}
	answered := map[string]bool{}
	for fieldID := range s.answers[responseID] {
		answered[sectionOf[fieldID]] = true
	}
	return answered, nil
}

// fakeDecrypter reverses fakeStore.SaveAnswer's sensitive-value encoding.
type fakeDecrypter struct {
	fail bool
}

func (d fakeDecrypter) Decrypt(data []byte) (string, error) {
	if d.fail {
		return "", errors.New("decrypt failed")
	}
	return string(data), nil
}

func newTestEngine(s *fakeStore) *Engine {
	return New(s, fakeDecrypter{})
}
