package engine

import (
	"context"
	"testing"

	"github.com/Taycode/survey-app-api/model"
)

func TestFieldOptions(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeStore, model.Field, model.Field, model.SurveyResponse) {
		s := newFakeStore()
		survey := s.addSurvey(model.SurveyPublished)
		sec := s.addSection(survey.ID, 1)
		country := s.addField(sec.ID, model.FieldDropdown, true)
		city := s.addField(sec.ID, model.FieldDropdown, true)
		s.addOption(country.ID, "it")
		s.addOption(country.ID, "fr")
		s.addOption(city.ID, "none")
		resp := s.addResponse(survey.ID)
		return s, country, city, resp
	}

	t.Run("no dependencies, static options", func(t *testing.T) {
		s, country, _, resp := setup()
		opts, err := newTestEngine(s).FieldOptions(ctx, country, resp)
		if err != nil {
			t.Fatal(err)
		}
		if len(opts) != 2 || opts[0].Value != "it" || opts[1].Value != "fr" {
			t.Errorf("expected static options [it fr], got %v", opts)
		}
	})

	t.Run("matching dependency replaces options", func(t *testing.T) {
		s, country, city, resp := setup()
		s.addDependency(city.ID, country.ID, "it", "Rome", "Milan")
		s.addDependency(city.ID, country.ID, "fr", "Paris")
		s.setAnswer(resp.ID, country.ID, "fr")
		city.HasDependencies = true

		opts, err := newTestEngine(s).FieldOptions(ctx, city, resp)
		if err != nil {
			t.Fatal(err)
		}
		if len(opts) != 1 || opts[0].Value != "Paris" {
			t.Errorf("expected [Paris], got %v", opts)
		}
	})

	t.Run("no matching dependency falls back to static", func(t *testing.T) {
		s, country, city, resp := setup()
		s.addDependency(city.ID, country.ID, "it", "Rome", "Milan")
		s.setAnswer(resp.ID, country.ID, "fr")
		city.HasDependencies = true

		opts, err := newTestEngine(s).FieldOptions(ctx, city, resp)
		if err != nil {
			t.Fatal(err)
		}
		if len(opts) != 1 || opts[0].Value != "none" {
			t.Errorf("expected static fallback [none], got %v", opts)
		}
	})

	t.Run("first matching dependency wins", func(t *testing.T) {
		s, country, city, resp := setup()
		s.addDependency(city.ID, country.ID, "it", "Rome")
		s.addDependency(city.ID, country.ID, "it", "Milan")
		s.setAnswer(resp.ID, country.ID, "it")
		city.HasDependencies = true

		opts, err := newTestEngine(s).FieldOptions(ctx, city, resp)
		if err != nil {
			t.Fatal(err)
		}
		if len(opts) != 1 || opts[0].Value != "Rome" {
			t.Errorf("expected first dependency's [Rome], got %v", opts)
		}
	})
}
