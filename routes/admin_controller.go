package routes

import (
	"errors"
	"net/http"

	"github.com/Taycode/survey-app-api/app"
	"github.com/Taycode/survey-app-api/httpx"
	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil || survey.Title == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.Store.CreateSurvey(r.Context(), &survey); err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, survey)
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Store.Surveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

// surveyDetail is the builder view: the survey with its full structure.
type surveyDetail struct {
	model.Survey
	Sections []sectionDetail `json:"sections"`
}

type sectionDetail struct {
	model.Section
	Fields []fieldDetail `json:"fields"`
}

type fieldDetail struct {
	model.Field
	Options []model.FieldOption `json:"options,omitempty"`
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		survey, err := app.Store.SurveyByID(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		detail := surveyDetail{Survey: survey, Sections: []sectionDetail{}}
		sections, err := app.Store.SectionsBySurvey(r.Context(), survey.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.sections", err)
			return
		}
		for _, section := range sections {
			sd := sectionDetail{Section: section, Fields: []fieldDetail{}}
			fields, err := app.Store.FieldsBySection(r.Context(), section.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.get_survey.fields", err)
				return
			}
			for _, field := range fields {
				fd := fieldDetail{Field: field}
				if field.Type.HasOptions() {
					fd.Options, err = app.Store.OptionsByField(r.Context(), field.ID)
					if err != nil {
						httpx.LogInternalError(w, "db.get_survey.options", err)
						return
					}
				}
				sd.Fields = append(sd.Fields, fd)
			}
			detail.Sections = append(detail.Sections, sd)
		}

		render.JSON(w, r, detail)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		survey.ID = chi.URLParam(r, "id")

		err = app.Store.UpdateSurvey(r.Context(), survey)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "update_survey", survey.ID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		err := app.Store.DeleteSurvey(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		survey, err := app.Store.SurveyByID(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "publish_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if survey.Status == model.SurveyPublished {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "publish_survey", "Survey is already published")
			return
		}

		if err = app.Store.SetSurveyStatus(r.Context(), surveyId, model.SurveyPublished); err != nil {
			httpx.LogInternalError(w, "db.publish_survey", err)
			return
		}
		render.JSON(w, r, map[string]string{"detail": "Survey published successfully"})
	}
}

func CloseSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		err := app.Store.SetSurveyStatus(r.Context(), surveyId, model.SurveyClosed)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "close_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.close_survey", err)
			return
		}
		render.JSON(w, r, map[string]string{"detail": "Survey closed successfully"})
	}
}

func CreateSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := model.Section{}
		err := render.DecodeJSON(r.Body, &section)
		if err != nil || section.Title == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		section.SurveyID = chi.URLParam(r, "id")

		if err := app.Store.CreateSection(r.Context(), &section); err != nil {
			httpx.LogInternalError(w, "db.insert_section", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, section)
	}
}

func UpdateSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := model.Section{}
		err := render.DecodeJSON(r.Body, &section)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		section.ID = chi.URLParam(r, "id")

		err = app.Store.UpdateSection(r.Context(), section)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "update_section", section.ID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_section", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sectionId := chi.URLParam(r, "id")

		err := app.Store.DeleteSection(r.Context(), sectionId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_section", sectionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_section", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := model.Field{}
		err := render.DecodeJSON(r.Body, &field)
		if err != nil || field.Label == "" || !validFieldType(field.Type) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		field.SectionID = chi.URLParam(r, "id")

		if err := app.Store.CreateField(r.Context(), &field); err != nil {
			httpx.LogInternalError(w, "db.insert_field", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, field)
	}
}

func validFieldType(t model.FieldType) bool {
	switch t {
	case model.FieldText, model.FieldNumber, model.FieldDate,
		model.FieldDropdown, model.FieldCheckbox, model.FieldRadio:
		return true
	}
	return false
}

func UpdateField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := model.Field{}
		err := render.DecodeJSON(r.Body, &field)
		if err != nil || !validFieldType(field.Type) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		field.ID = chi.URLParam(r, "id")

		err = app.Store.UpdateField(r.Context(), field)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "update_field", field.ID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldId := chi.URLParam(r, "id")

		err := app.Store.DeleteField(r.Context(), fieldId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_field", fieldId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opt := model.FieldOption{}
		err := render.DecodeJSON(r.Body, &opt)
		if err != nil || opt.Value == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		opt.FieldID = chi.URLParam(r, "id")

		if err := app.Store.CreateOption(r.Context(), &opt); err != nil {
			httpx.LogInternalError(w, "db.insert_option", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, opt)
	}
}

func DeleteOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		optionId := chi.URLParam(r, "id")

		err := app.Store.DeleteOption(r.Context(), optionId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_option", optionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_option", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type createRuleRequest struct {
	TargetType    string           `json:"target_type"`
	TargetID      string           `json:"target_id"`
	SourceFieldID string           `json:"source_field"`
	Operator      model.Operator   `json:"operator"`
	Value         string           `json:"value"`
	Action        model.RuleAction `json:"action"`
}

func CreateRule(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRuleRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.SourceFieldID == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		target, err := model.ParseTarget(req.TargetType, req.TargetID)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_rule", "%s", err)
			return
		}
		if req.Action == "" {
			req.Action = model.ActionShow
		}

		rule := model.ConditionalRule{
			Target:        target,
			SourceFieldID: req.SourceFieldID,
			Operator:      req.Operator,
			Value:         req.Value,
			Action:        req.Action,
		}
		if err := app.Store.CreateRule(r.Context(), &rule); err != nil {
			httpx.LogInternalError(w, "db.insert_rule", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":           rule.ID,
			"target_type":  req.TargetType,
			"target_id":    req.TargetID,
			"source_field": rule.SourceFieldID,
			"operator":     rule.Operator,
			"value":        rule.Value,
			"action":       rule.Action,
		})
	}
}

func DeleteRule(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleId := chi.URLParam(r, "id")

		err := app.Store.DeleteRule(r.Context(), ruleId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_rule", ruleId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_rule", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateDependency(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dep := model.FieldDependency{}
		err := render.DecodeJSON(r.Body, &dep)
		if err != nil || dep.SourceFieldID == "" || len(dep.Options) == 0 {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		dep.DependentFieldID = chi.URLParam(r, "id")

		if err := app.Store.CreateDependency(r.Context(), &dep); err != nil {
			httpx.LogInternalError(w, "db.insert_dependency", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, dep)
	}
}

func DeleteDependency(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		depId := chi.URLParam(r, "id")

		err := app.Store.DeleteDependency(r.Context(), depId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_dependency", depId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_dependency", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
