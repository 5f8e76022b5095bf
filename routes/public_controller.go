package routes

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/Taycode/survey-app-api/app"
	"github.com/Taycode/survey-app-api/engine"
	"github.com/Taycode/survey-app-api/httpx"
	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const sessionHeader = "X-Session-Token"

func StartSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		resp, err := app.Engine.Start(r.Context(), surveyId, engine.StartInfo{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		if errors.Is(err, engine.ErrSurveyNotOpen) {
			httpx.LogNotFound(w, "submission.start", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "submission.start", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"session_token": resp.SessionToken,
		})
	}
}

// session resolves the response for the request's session token. On failure
// the response is already written and ok is false.
func session(app app.App, w http.ResponseWriter, r *http.Request) (resp model.SurveyResponse, ok bool) {
	token := r.Header.Get(sessionHeader)
	if token == "" {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.session_token", "%s header required", sessionHeader)
		return resp, false
	}

	resp, err := app.Engine.Resume(r.Context(), token)
	if errors.Is(err, engine.ErrNoSession) {
		httpx.LogNotFound(w, "submission.session", token)
		return resp, false
	}
	if err != nil {
		httpx.LogInternalError(w, "submission.session", err)
		return resp, false
	}
	return resp, true
}

func GetCurrentSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := session(app, w, r)
		if !ok {
			return
		}

		current, err := app.Engine.CurrentSection(r.Context(), resp)
		if err != nil {
			httpx.LogInternalError(w, "submission.current_section", err)
			return
		}
		render.JSON(w, r, current)
	}
}

func GetSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := session(app, w, r)
		if !ok {
			return
		}

		sectionId := chi.URLParam(r, "id")
		nav, err := app.Engine.SectionForNavigation(r.Context(), sectionId, resp)
		if err != nil {
			httpx.LogInternalError(w, "submission.get_section", err)
			return
		}
		if nav == nil {
			// hidden sections deliberately read as missing
			httpx.LogNotFound(w, "submission.get_section", sectionId)
			return
		}
		render.JSON(w, r, nav)
	}
}

type submitSectionRequest struct {
	SectionID string               `json:"section_id"`
	Answers   []engine.AnswerInput `json:"answers"`
}

func SubmitSection(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := session(app, w, r)
		if !ok {
			return
		}

		var req submitSectionRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.SectionID == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		result, errs, err := app.Engine.SubmitSection(r.Context(), resp, req.SectionID, req.Answers)
		switch {
		case errors.Is(err, engine.ErrNotInProgress):
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "submission.submit_section", "%s", err)
			return
		case errors.Is(err, engine.ErrNoSection):
			httpx.LogNotFound(w, "submission.submit_section", req.SectionID)
			return
		case err != nil:
			httpx.LogInternalError(w, "submission.submit_section", err)
			return
		}
		if errs != nil {
			httpx.LogValidationErrors(w, r, "submission.submit_section", errs)
			return
		}

		render.JSON(w, r, map[string]any{
			"status":      "success",
			"message":     "Section saved successfully",
			"is_complete": result.IsComplete,
			"progress":    result.Progress,
		})
	}
}

func FinishSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := session(app, w, r)
		if !ok {
			return
		}

		finished, err := app.Engine.Finish(r.Context(), resp)
		if errors.Is(err, engine.ErrNotInProgress) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "submission.finish", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "submission.finish", err)
			return
		}

		app.Analytics.Invalidate(resp.SurveyID)

		render.JSON(w, r, map[string]any{
			"message":      "Survey completed successfully",
			"completed_at": finished.CompletedAt,
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
