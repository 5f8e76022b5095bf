package engine

import (
	"context"
	"testing"

	"github.com/Taycode/survey-app-api/model"
)

func TestProgress(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	s2 := s.addSection(survey.ID, 2)
	s3 := s.addSection(survey.ID, 3)
	f1 := s.addField(s1.ID, model.FieldText, true)
	f2 := s.addField(s2.ID, model.FieldText, true)
	f3 := s.addField(s3.ID, model.FieldText, true)
	resp := s.addResponse(survey.ID)
	eng := newTestEngine(s)

	p, err := eng.Progress(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if p.Completed != 0 || p.Total != 3 || p.Remaining != 3 || p.Percentage != 0 {
		t.Errorf("fresh response: got %+v", p)
	}

	s.setAnswer(resp.ID, f1.ID, "a")
	p, err = eng.Progress(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if p.Completed != 1 || p.Remaining != 2 || p.Percentage != 33.33 {
		t.Errorf("one of three: got %+v", p)
	}

	s.setAnswer(resp.ID, f2.ID, "b")
	s.setAnswer(resp.ID, f3.ID, "c")
	p, err = eng.Progress(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if p.Completed != 3 || p.Remaining != 0 || p.Percentage != 100 {
		t.Errorf("all answered: got %+v", p)
	}
}

func TestProgressExcludesHiddenSections(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	s2 := s.addSection(survey.ID, 2)
	trigger := s.addField(s1.ID, model.FieldRadio, true)
	s.addField(s2.ID, model.FieldText, true)
	s.addRule(model.SectionTarget(s2.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
	resp := s.addResponse(survey.ID)
	s.setAnswer(resp.ID, trigger.ID, "no")

	p, err := newTestEngine(s).Progress(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 1 || p.Completed != 1 || p.Percentage != 100 {
		t.Errorf("hidden section should not count: got %+v", p)
	}
}

func TestProgressIgnoresPhantomRuleTargets(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	f1 := s.addField(s1.ID, model.FieldText, true)
	s.addRule(model.SectionTarget("no-such-section"), f1.ID, model.OpIsNotEmpty, "", model.ActionShow)
	resp := s.addResponse(survey.ID)
	s.setAnswer(resp.ID, f1.ID, "a")

	p, err := newTestEngine(s).Progress(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 1 || p.Completed != 1 || p.Percentage != 100 {
		t.Errorf("rule targeting a nonexistent section must not count: got %+v", p)
	}
}

func TestCurrentSection(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	s2 := s.addSection(survey.ID, 2)
	f1 := s.addField(s1.ID, model.FieldText, true)
	f2 := s.addField(s2.ID, model.FieldText, true)
	resp := s.addResponse(survey.ID)
	eng := newTestEngine(s)

	cur, err := eng.CurrentSection(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if cur.IsComplete || cur.Section == nil || cur.Section.SectionID != s1.ID {
		t.Errorf("fresh response should start at first section, got %+v", cur)
	}
	if len(cur.Section.Fields) != 1 || cur.Section.Fields[0].FieldID != f1.ID {
		t.Errorf("section view fields: %+v", cur.Section.Fields)
	}

	s.setAnswer(resp.ID, f1.ID, "a")
	cur, err = eng.CurrentSection(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Section == nil || cur.Section.SectionID != s2.ID {
		t.Errorf("should advance to second section, got %+v", cur)
	}

	s.setAnswer(resp.ID, f2.ID, "b")
	cur, err = eng.CurrentSection(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if !cur.IsComplete || cur.Section != nil {
		t.Errorf("all sections answered should report complete, got %+v", cur)
	}
}

func TestCurrentSectionSkipsHidden(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	s2 := s.addSection(survey.ID, 2)
	s3 := s.addSection(survey.ID, 3)
	trigger := s.addField(s1.ID, model.FieldRadio, true)
	s.addField(s2.ID, model.FieldText, true)
	s.addField(s3.ID, model.FieldText, true)
	s.addRule(model.SectionTarget(s2.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
	resp := s.addResponse(survey.ID)
	s.setAnswer(resp.ID, trigger.ID, "no")

	cur, err := newTestEngine(s).CurrentSection(ctx, resp)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Section == nil || cur.Section.SectionID != s3.ID {
		t.Errorf("hidden section should be skipped, got %+v", cur)
	}
}

func TestSectionForNavigation(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	survey := s.addSurvey(model.SurveyPublished)
	other := s.addSurvey(model.SurveyPublished)
	s1 := s.addSection(survey.ID, 1)
	s2 := s.addSection(survey.ID, 2)
	foreign := s.addSection(other.ID, 1)
	trigger := s.addField(s1.ID, model.FieldRadio, true)
	s.addField(s2.ID, model.FieldText, true)
	s.addRule(model.SectionTarget(s2.ID), trigger.ID, model.OpEquals, "no", model.ActionHide)
	resp := s.addResponse(survey.ID)
	s.setAnswer(resp.ID, trigger.ID, "yes")
	eng := newTestEngine(s)

	nav, err := eng.SectionForNavigation(ctx, s1.ID, resp)
	if err != nil {
		t.Fatal(err)
	}
	if nav == nil || !nav.IsEditable {
		t.Fatalf("visible section should be navigable, got %+v", nav)
	}
	if nav.Section.Fields[0].CurrentValue != "yes" {
		t.Errorf("navigation should prefill answers, got %+v", nav.Section.Fields)
	}

	if nav, err = eng.SectionForNavigation(ctx, "nope", resp); err != nil || nav != nil {
		t.Errorf("unknown section: nav=%+v err=%v", nav, err)
	}
	if nav, err = eng.SectionForNavigation(ctx, foreign.ID, resp); err != nil || nav != nil {
		t.Errorf("section of another survey: nav=%+v err=%v", nav, err)
	}

	s.setAnswer(resp.ID, trigger.ID, "no")
	if nav, err = eng.SectionForNavigation(ctx, s2.ID, resp); err != nil || nav != nil {
		t.Errorf("hidden section: nav=%+v err=%v", nav, err)
	}
}
