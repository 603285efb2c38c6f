package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
)

// ProjectAnalytics aggregates the run ledger for one project.
type ProjectAnalytics struct {
	ProjectID     uuid.UUID          `json:"project_id"`
	TotalRuns     int                `json:"total_runs"`
	CompletedRuns int                `json:"completed_runs"`
	FailedRuns    int                `json:"failed_runs"`
	PendingRuns   int                `json:"pending_runs"`
	TotalTokens   int64              `json:"total_tokens"`
	TotalCost     float64            `json:"total_cost"`
	Runs          []*model.PromptRun `json:"runs"`
}

type AnalyticsService interface {
	ProjectAnalytics(ctx context.Context, user *model.User, projectID uuid.UUID) (*ProjectAnalytics, error)
}

type analyticsService struct {
	runs     repo.PromptRunRepo
	projects repo.ProjectRepo
	rdb      *redis.Client // nil disables caching
	ttl      time.Duration
	log      *zap.Logger
}

func NewAnalyticsService(runs repo.PromptRunRepo, projects repo.ProjectRepo, rdb *redis.Client, cfg *config.Config, log *zap.Logger) AnalyticsService {
	return &analyticsService{
		runs:     runs,
		projects: projects,
		rdb:      rdb,
		ttl:      time.Duration(cfg.Redis.AnalyticsTTLSec) * time.Second,
		log:      log,
	}
}

func (s *analyticsService) ProjectAnalytics(ctx context.Context, user *model.User, projectID uuid.UUID) (*ProjectAnalytics, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if project.OwnerID != user.ID {
		return nil, ErrForbidden
	}

	key := analyticsKey(projectID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached ProjectAnalytics
			if err := sonic.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	runs, err := s.runs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := &ProjectAnalytics{ProjectID: projectID, Runs: runs}
	for _, run := range runs {
		out.TotalRuns++
		switch run.Status {
		case model.RunStatusCompleted:
			out.CompletedRuns++
		case model.RunStatusFailed:
			out.FailedRuns++
		default:
			out.PendingRuns++
		}
		if run.TokensUsed != nil {
			out.TotalTokens += *run.TokensUsed
		}
		if run.Cost != nil {
			out.TotalCost += *run.Cost
		}
	}

	if s.rdb != nil && s.ttl > 0 {
		if raw, err := sonic.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.log.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}
	return out, nil
}

func analyticsKey(projectID uuid.UUID) string {
	return fmt.Sprintf("analytics:project:%s", projectID)
}
