package app

import (
	"github.com/Taycode/survey-app-api/analytics"
	"github.com/Taycode/survey-app-api/config"
	"github.com/Taycode/survey-app-api/engine"
	"github.com/Taycode/survey-app-api/export"
	"github.com/Taycode/survey-app-api/notify"
	"github.com/Taycode/survey-app-api/store"
	"github.com/go-chi/oauth"
)

type App struct {
	*store.Store
	*oauth.BearerServer
	config.Config
	Engine    *engine.Engine
	Analytics *analytics.Service
	Exporter  *export.Exporter
	Delivery  export.Delivery
	Mailer    notify.Mailer
}
