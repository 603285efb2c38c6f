package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/infra/blob"
	"github.com/promptdeck/promptdeck/internal/infra/cache"
	"github.com/promptdeck/promptdeck/internal/infra/db"
	"github.com/promptdeck/promptdeck/internal/infra/llm"
	"github.com/promptdeck/promptdeck/internal/infra/logger"
	mq "github.com/promptdeck/promptdeck/internal/infra/queue"
	"github.com/promptdeck/promptdeck/internal/modules/handler"
	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
	"github.com/promptdeck/promptdeck/internal/modules/service"
	"github.com/promptdeck/promptdeck/internal/pkg/report"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// error reporter
	do.Provide(inj, func(i *do.Injector) (report.ErrorReporter, error) {
		return report.NewZapReporter(do.MustInvoke[*zap.Logger](i)), nil
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			_ = d.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto")
			if err := d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.Prompt{},
				&model.ProjectFile{},
				&model.PromptRun{},
			); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis; optional, analytics responses are just uncached without it
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Redis.Addr == "" {
			return nil, nil
		}
		return cache.New(cfg)
	})

	// RabbitMQ; optional, run lifecycle events are dropped without it
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		return mq.NewPublisher(conn, do.MustInvoke[*zap.Logger](i), cfg)
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Generation client
	do.Provide(inj, func(i *do.Injector) (*llm.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return llm.NewClient(cfg), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.PromptRepo, error) {
		return repo.NewPromptRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectFileRepo, error) {
		return repo.NewProjectFileRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.PromptRunRepo, error) {
		return repo.NewPromptRunRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(do.MustInvoke[*config.Config](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*llm.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PromptService, error) {
		return service.NewPromptService(
			do.MustInvoke[repo.PromptRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.FileService, error) {
		return service.NewFileService(
			do.MustInvoke[repo.ProjectFileRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.ContextAssembler, error) {
		return service.NewContextAssembler(
			do.MustInvoke[repo.ProjectFileRepo](i),
			do.MustInvoke[*blob.S3Deps](i),
			do.MustInvoke[report.ErrorReporter](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RunService, error) {
		var events service.EventPublisher
		if pub := do.MustInvoke[*mq.Publisher](i); pub != nil {
			events = pub
		}
		return service.NewRunService(
			do.MustInvoke[repo.PromptRunRepo](i),
			do.MustInvoke[repo.PromptRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*service.ContextAssembler](i),
			do.MustInvoke[*llm.Client](i),
			events,
			do.MustInvoke[report.ErrorReporter](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AnalyticsService, error) {
		return service.NewAnalyticsService(
			do.MustInvoke[repo.PromptRunRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(
			do.MustInvoke[service.UserService](i),
			do.MustInvoke[service.AuthService](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PromptHandler, error) {
		return handler.NewPromptHandler(
			do.MustInvoke[service.PromptService](i),
			do.MustInvoke[service.RunService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.FileHandler, error) {
		return handler.NewFileHandler(do.MustInvoke[service.FileService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.RunHandler, error) {
		return handler.NewRunHandler(
			do.MustInvoke[service.RunService](i),
			do.MustInvoke[service.AnalyticsService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StreamHandler, error) {
		return handler.NewStreamHandler(do.MustInvoke[service.RunService](i)), nil
	})

	return inj
}
