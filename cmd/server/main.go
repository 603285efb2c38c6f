package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/bootstrap"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/infra/cache"
	"github.com/promptdeck/promptdeck/internal/infra/db"
	"github.com/promptdeck/promptdeck/internal/modules/handler"
	"github.com/promptdeck/promptdeck/internal/modules/service"
	"github.com/promptdeck/promptdeck/internal/router"
	"github.com/promptdeck/promptdeck/internal/telemetry"
)

//	@title			PromptDeck API
//	@version		1.0
//	@description	Project and prompt management with LLM-backed generation.
func main() {
	_ = godotenv.Load()

	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync()

	if cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != "" {
		if _, err := telemetry.SetupTracing(cfg); err != nil {
			log.Warn("tracing setup failed", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = telemetry.Shutdown(ctx)
			}()

			if err := db.RegisterOpenTelemetryPlugin(do.MustInvoke[*gorm.DB](inj)); err != nil {
				log.Warn("gorm tracing plugin failed", zap.Error(err))
			}
			if rdb := do.MustInvoke[*redis.Client](inj); rdb != nil {
				if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
					log.Warn("redis tracing plugin failed", zap.Error(err))
				}
			}
		}
	}

	r := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		UserService:    do.MustInvoke[service.UserService](inj),
		AuthService:    do.MustInvoke[service.AuthService](inj),
		AuthHandler:    do.MustInvoke[*handler.AuthHandler](inj),
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		PromptHandler:  do.MustInvoke[*handler.PromptHandler](inj),
		FileHandler:    do.MustInvoke[*handler.FileHandler](inj),
		RunHandler:     do.MustInvoke[*handler.RunHandler](inj),
		StreamHandler:  do.MustInvoke[*handler.StreamHandler](inj),
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	_ = inj.Shutdown()
}
