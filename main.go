package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/Taycode/survey-app-api/analytics"
	"github.com/Taycode/survey-app-api/app"
	"github.com/Taycode/survey-app-api/config"
	"github.com/Taycode/survey-app-api/database"
	"github.com/Taycode/survey-app-api/engine"
	"github.com/Taycode/survey-app-api/export"
	"github.com/Taycode/survey-app-api/httpx"
	"github.com/Taycode/survey-app-api/log"
	"github.com/Taycode/survey-app-api/notify"
	"github.com/Taycode/survey-app-api/routes"
	"github.com/Taycode/survey-app-api/secure"
	"github.com/Taycode/survey-app-api/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	cipher, err := secure.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("main.cipher:", err)
	}

	st := store.New(db, cipher)
	eng := engine.New(st, cipher)
	bearerServer := httpx.NewBearerServer(db, cfg)

	app := app.App{
		Store:        st,
		BearerServer: bearerServer,
		Config:       cfg,
		Engine:       eng,
		Analytics:    analytics.New(st),
		Exporter:     export.New(st, eng),
		Delivery:     export.DirDelivery{Dir: cfg.ExportDir},
		Mailer:       notify.LogMailer{},
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
