package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/Taycode/survey-app-api/model"
)

func TestValidateAndApply(t *testing.T) {
	ctx := context.Background()

	t.Run("required field missing", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		name := s.addField(sec.ID, model.FieldText, true)
		resp := s.addResponse(survey.ID)

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, nil, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("submission without required answer should fail")
		}
		if errs[name.ID] != "This field is required." {
			t.Errorf("got error %q", errs[name.ID])
		}
	})

	t.Run("required field empty value", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		name := s.addField(sec.ID, model.FieldText, true)
		resp := s.addResponse(survey.ID)

		answers := []AnswerInput{{FieldID: name.ID, Value: ""}}
		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[name.ID] != "This field is required." {
			t.Errorf("empty answer should count as missing, got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("number type check", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		age := s.addField(sec.ID, model.FieldNumber, true)
		resp := s.addResponse(survey.ID)
		eng := newTestEngine(s)

		ok, errs, err := eng.ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: age.ID, Value: "abc"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[age.ID] != "Value 'abc' is not a valid number" {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}

		ok, errs, err = eng.ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: age.ID, Value: "42"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("numeric string should validate, got errs=%v", errs)
		}
	})

	t.Run("json number accepted", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		age := s.addField(sec.ID, model.FieldNumber, true)
		resp := s.addResponse(survey.ID)

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: age.ID, Value: float64(42)}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("got errs=%v", errs)
		}
		if got := s.answers[resp.ID][age.ID]; got != model.PlainValue("42") {
			t.Errorf("stored %v, want 42", got)
		}
	})

	t.Run("dropdown rejects unknown option", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		color := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(color.ID, "red")
		s.addOption(color.ID, "blue")
		resp := s.addResponse(survey.ID)

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: color.ID, Value: "green"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[color.ID] != "Value 'green' is not a valid option" {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("field from another section", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		s1 := s.addSection(survey.ID, 1)
		s2 := s.addSection(survey.ID, 2)
		s.addField(s1.ID, model.FieldText, false)
		foreign := s.addField(s2.ID, model.FieldText, false)
		resp := s.addResponse(survey.ID)

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, s1, []AnswerInput{{FieldID: foreign.ID, Value: "x"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[foreign.ID] != "This field is not available based on your previous answers." {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("hidden section short-circuits", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		s1 := s.addSection(survey.ID, 1)
		s2 := s.addSection(survey.ID, 2)
		trigger := s.addField(s1.ID, model.FieldRadio, true)
		s.addField(s2.ID, model.FieldText, true)
		s.addRule(model.SectionTarget(s2.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
		resp := s.addResponse(survey.ID)
		s.setAnswer(resp.ID, trigger.ID, "no")

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, s2, nil, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("hidden section must not accept submissions")
		}
		if len(errs) != 1 || !strings.Contains(errs["section"], "is not available based on your previous answers.") {
			t.Errorf("got errs=%v", errs)
		}
	})

	t.Run("hidden field answer rejected", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		trigger := s.addField(sec.ID, model.FieldRadio, true)
		detail := s.addField(sec.ID, model.FieldText, false)
		s.addRule(model.FieldTarget(detail.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
		resp := s.addResponse(survey.ID)
		s.setAnswer(resp.ID, trigger.ID, "no")

		answers := []AnswerInput{{FieldID: trigger.ID, Value: "no"}, {FieldID: detail.ID, Value: "x"}}
		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[detail.ID] != "This field is not available based on your previous answers." {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("hidden required field not enforced", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		trigger := s.addField(sec.ID, model.FieldRadio, true)
		s.addOption(trigger.ID, "yes")
		s.addOption(trigger.ID, "no")
		detail := s.addField(sec.ID, model.FieldText, true)
		s.addRule(model.FieldTarget(detail.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
		resp := s.addResponse(survey.ID)
		s.setAnswer(resp.ID, trigger.ID, "no")

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: trigger.ID, Value: "no"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("hidden required field should not block submission, got errs=%v", errs)
		}
	})

	t.Run("dependent option membership", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		country := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(country.ID, "it")
		city := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(city.ID, "Rome")
		s.addOption(city.ID, "Milan")
		s.addOption(city.ID, "Paris")
		s.addDependency(city.ID, country.ID, "it", "Rome", "Milan")
		resp := s.addResponse(survey.ID)
		s.setAnswer(resp.ID, country.ID, "it")

		answers := []AnswerInput{{FieldID: country.ID, Value: "it"}, {FieldID: city.ID, Value: "Paris"}}
		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[city.ID] != "Invalid option selected. Available options: Rome, Milan" {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}

		answers[1].Value = "Rome"
		ok, errs, err = newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("value in dependent option list should pass, got errs=%v", errs)
		}
	})

	t.Run("dependency value outside static options", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		country := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(country.ID, "it")
		city := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(city.ID, "none")
		s.addDependency(city.ID, country.ID, "it", "Rome", "Milan")
		resp := s.addResponse(survey.ID)
		s.setAnswer(resp.ID, country.ID, "it")

		// The static option check still applies to dependent fields: a value
		// the dependency offers but the field's own options do not is invalid.
		answers := []AnswerInput{{FieldID: country.ID, Value: "it"}, {FieldID: city.ID, Value: "Rome"}}
		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok || errs[city.ID] != "Value 'Rome' is not a valid option" {
			t.Errorf("got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("nothing persisted on failure", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		name := s.addField(sec.ID, model.FieldText, true)
		age := s.addField(sec.ID, model.FieldNumber, true)
		resp := s.addResponse(survey.ID)

		answers := []AnswerInput{{FieldID: name.ID, Value: "Ada"}, {FieldID: age.ID, Value: "abc"}}
		ok, _, err := newTestEngine(s).ValidateAndApply(ctx, sec, answers, resp)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected validation failure")
		}
		if len(s.answers[resp.ID]) != 0 {
			t.Errorf("no answer should be saved on failed validation, got %v", s.answers[resp.ID])
		}
		if s.responses[resp.ID].LastSectionID != "" {
			t.Error("last section should not advance on failed validation")
		}
	})

	t.Run("success persists and sets last section", func(t *testing.T) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		name := s.addField(sec.ID, model.FieldText, true)
		resp := s.addResponse(survey.ID)

		ok, errs, err := newTestEngine(s).ValidateAndApply(ctx, sec, []AnswerInput{{FieldID: name.ID, Value: "Ada"}}, resp)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("got errs=%v", errs)
		}
		if got := s.answers[resp.ID][name.ID]; got != model.PlainValue("Ada") {
			t.Errorf("stored %v", got)
		}
		if s.responses[resp.ID].LastSectionID != sec.ID {
			t.Error("last section not recorded")
		}
	})
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"integral float", float64(42), "42"},
		{"fractional float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"array", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.in); got != tt.want {
				t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
