package routes

import (
	"net/http"

	"github.com/Taycode/survey-app-api/app"
	"github.com/Taycode/survey-app-api/routes/middlewares"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public submission flow, driven by the X-Session-Token header
	api.Post("/surveys/{id}/submissions/start", StartSurvey(app))
	api.Get("/submissions/current-section", GetCurrentSection(app))
	api.Get("/submissions/sections/{id}", GetSection(app))
	api.Post("/submissions/submit-section", SubmitSection(app))
	api.Post("/submissions/finish", FinishSurvey(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// survey builder
		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get("/surveys/{id}", GetSurveyById(app))
		r.Put("/surveys/{id}", UpdateSurvey(app))
		r.Delete("/surveys/{id}", DeleteSurvey(app))
		r.Post("/surveys/{id}/publish", PublishSurvey(app))
		r.Post("/surveys/{id}/close", CloseSurvey(app))

		r.Post("/surveys/{id}/sections", CreateSection(app))
		r.Put("/sections/{id}", UpdateSection(app))
		r.Delete("/sections/{id}", DeleteSection(app))

		r.Post("/sections/{id}/fields", CreateField(app))
		r.Put("/fields/{id}", UpdateField(app))
		r.Delete("/fields/{id}", DeleteField(app))

		r.Post("/fields/{id}/options", CreateOption(app))
		r.Delete("/options/{id}", DeleteOption(app))

		r.Post("/rules", CreateRule(app))
		r.Delete("/rules/{id}", DeleteRule(app))

		r.Post("/fields/{id}/dependencies", CreateDependency(app))
		r.Delete("/dependencies/{id}", DeleteDependency(app))

		// response management
		r.Get("/surveys/{id}/responses", ListResponses(app))
		r.Get("/responses/{id}", GetResponse(app))
		r.Get("/surveys/{id}/analytics", GetAnalytics(app))
		r.Get("/surveys/{id}/export", DownloadExport(app))
		r.Post("/surveys/{id}/export", TriggerExport(app))
		r.Post("/surveys/{id}/invitations", SendInvitations(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
