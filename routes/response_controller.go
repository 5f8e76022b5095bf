package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/Taycode/survey-app-api/app"
	"github.com/Taycode/survey-app-api/httpx"
	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")
		status := model.ResponseStatus(r.URL.Query().Get("status"))

		responses, err := app.Store.ResponsesBySurvey(r.Context(), surveyId, status)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
			"count":     len(responses),
		})
	}
}

func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseId := chi.URLParam(r, "id")

		resp, err := app.Store.ResponseByID(r.Context(), responseId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_response", responseId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_response", err)
			return
		}

		answers, err := app.Engine.Answers(r.Context(), resp.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_response.answers", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"response": resp,
			"answers":  answers,
		})
	}
}

func GetAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		stats, err := app.Analytics.SurveyStats(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_analytics", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_analytics", err)
			return
		}

		render.JSON(w, r, stats)
	}
}

func DownloadExport(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")
		format := r.URL.Query().Get("format")

		file, err := app.Exporter.Render(r.Context(), surveyId, format)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "export_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "export_survey", "%s", err)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
		w.Write(file.Content)
	}
}

func TriggerExport(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")
		format := r.URL.Query().Get("format")

		_, err := app.Store.SurveyByID(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "export_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		go app.Exporter.Run(context.Background(), surveyId, format, app.Delivery)

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]string{"detail": "Export started"})
	}
}

type invitationsRequest struct {
	Emails []string `json:"emails"`
}

func SendInvitations(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		var req invitationsRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || len(req.Emails) == 0 {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.Store.SurveyByID(r.Context(), surveyId)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "send_invitations", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if survey.Status != model.SurveyPublished {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "send_invitations", "Survey is not published")
			return
		}

		surveyURL := app.Config.Url() + "/api/surveys/" + survey.ID + "/submissions/start"
		for _, email := range req.Emails {
			inv := model.Invitation{SurveyID: survey.ID, Email: email}
			if err := app.Store.CreateInvitation(r.Context(), &inv); err != nil {
				httpx.LogInternalError(w, "db.insert_invitation", err)
				return
			}
			go func(email string) {
				if err := app.Mailer.SendInvitation(context.Background(), email, survey.Title, surveyURL); err != nil {
					log.Errorf("notify.invitation: survey=%s email=%s: %s", survey.ID, email, err)
				}
			}(email)
		}

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]any{
			"detail": "Invitations sent",
			"count":  len(req.Emails),
		})
	}
}
