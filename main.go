package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/services"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	config.SetConfig(cfg)
	config.ConfigureLogging(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logrus.WithField("env", cfg.GoEnv).Info("Starting Kendall's Studio API server...")

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	db := config.GetDB()
	if err := config.MigrateDatabase(db, cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := services.NewFileStorage(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up file storage")
	}
	mailer, err := services.NewMailer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up mailer")
	}

	app, err := buildApplication(ctx, cfg, db, mailer, storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to wire services")
	}
	defer app.Close()

	purgeJob, err := app.verification.StartPurgeJob(cfg.TokenPurgeSchedule)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start token purge job")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, app.deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
	<-purgeJob.Stop().Done()
	logrus.Info("Server stopped")
}
