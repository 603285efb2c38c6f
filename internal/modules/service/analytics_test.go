package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/model"
)

func float64Ptr(v float64) *float64 { return &v }

func newAnalyticsFixture(t *testing.T, rdb *redis.Client) (*MockPromptRunRepo, *MockProjectRepo, AnalyticsService) {
	t.Helper()
	runs := new(MockPromptRunRepo)
	projects := new(MockProjectRepo)
	cfg := &config.Config{}
	cfg.Redis.AnalyticsTTLSec = 30
	return runs, projects, NewAnalyticsService(runs, projects, rdb, cfg, zap.NewNop())
}

func analyticsTestRuns(projectID uuid.UUID) []*model.PromptRun {
	return []*model.PromptRun{
		{ID: uuid.New(), ProjectID: projectID, Status: model.RunStatusCompleted, TokensUsed: int64Ptr(1000), Cost: float64Ptr(0.03)},
		{ID: uuid.New(), ProjectID: projectID, Status: model.RunStatusCompleted, TokensUsed: int64Ptr(500), Cost: float64Ptr(0.015)},
		{ID: uuid.New(), ProjectID: projectID, Status: model.RunStatusFailed},
		{ID: uuid.New(), ProjectID: projectID, Status: model.RunStatusPending},
	}
}

func TestProjectAnalyticsAggregates(t *testing.T) {
	runs, projects, svc := newAnalyticsFixture(t, nil)
	user := &model.User{ID: uuid.New()}
	project := &model.Project{ID: uuid.New(), OwnerID: user.ID}

	projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	runs.On("ListByProject", mock.Anything, project.ID).Return(analyticsTestRuns(project.ID), nil)

	out, err := svc.ProjectAnalytics(context.Background(), user, project.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, out.TotalRuns)
	assert.Equal(t, 2, out.CompletedRuns)
	assert.Equal(t, 1, out.FailedRuns)
	assert.Equal(t, 1, out.PendingRuns)
	assert.Equal(t, int64(1500), out.TotalTokens)
	assert.InDelta(t, 0.045, out.TotalCost, 1e-9)
	assert.Len(t, out.Runs, 4)
}

func TestProjectAnalyticsCachesResult(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	runs, projects, svc := newAnalyticsFixture(t, rdb)
	user := &model.User{ID: uuid.New()}
	project := &model.Project{ID: uuid.New(), OwnerID: user.ID}

	projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	runs.On("ListByProject", mock.Anything, project.ID).Return(analyticsTestRuns(project.ID), nil).Once()

	first, err := svc.ProjectAnalytics(context.Background(), user, project.ID)
	assert.NoError(t, err)

	// second call must be served from the cache
	second, err := svc.ProjectAnalytics(context.Background(), user, project.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.TotalRuns, second.TotalRuns)
	assert.Equal(t, first.TotalTokens, second.TotalTokens)
	runs.AssertNumberOfCalls(t, "ListByProject", 1)

	// entry expires with the configured TTL
	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists("analytics:project:"+project.ID.String()))
}

func TestProjectAnalyticsForbiddenForNonOwner(t *testing.T) {
	runs, projects, svc := newAnalyticsFixture(t, nil)
	project := &model.Project{ID: uuid.New(), OwnerID: uuid.New()}
	projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := svc.ProjectAnalytics(context.Background(), &model.User{ID: uuid.New()}, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	runs.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
}
