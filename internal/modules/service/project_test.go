package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/infra/llm"
	"github.com/promptdeck/promptdeck/internal/modules/model"
)

type projectFixture struct {
	projects *MockProjectRepo
	gen      *MockGenerator
	svc      ProjectService
	user     *model.User
}

func newProjectFixture() *projectFixture {
	f := &projectFixture{
		projects: new(MockProjectRepo),
		gen:      new(MockGenerator),
	}
	cfg := &config.Config{}
	cfg.OpenAI.NameMaxTokens = 20
	f.svc = NewProjectService(f.projects, f.gen, cfg, zap.NewNop())
	f.user = &model.User{ID: uuid.New(), Email: "owner@example.com"}
	return f
}

func TestCreateProject(t *testing.T) {
	f := newProjectFixture()
	f.projects.On("GetByName", mock.Anything, "fresh").Return(nil, errRecordNotFound())
	f.projects.On("Create", mock.Anything, mock.AnythingOfType("*model.Project")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Project).ID = uuid.New()
		}).Return(nil)

	project, err := f.svc.Create(context.Background(), f.user, "fresh", nil)
	assert.NoError(t, err)
	assert.Equal(t, f.user.ID, project.OwnerID)
	assert.True(t, project.IsActive)
}

func TestCreateProjectRejectsDuplicateName(t *testing.T) {
	f := newProjectFixture()
	other := &model.Project{ID: uuid.New(), Name: "taken", OwnerID: uuid.New()}
	// the name is taken even though a different user owns it
	f.projects.On("GetByName", mock.Anything, "taken").Return(other, nil)

	_, err := f.svc.Create(context.Background(), f.user, "taken", nil)
	assert.ErrorIs(t, err, ErrProjectNameTaken)
	f.projects.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProjectForbiddenForNonOwner(t *testing.T) {
	f := newProjectFixture()
	project := &model.Project{ID: uuid.New(), OwnerID: uuid.New()}
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.svc.Get(context.Background(), f.user, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGenerateNameUsesCompletion(t *testing.T) {
	f := newProjectFixture()
	project := &model.Project{ID: uuid.New(), Name: "old", OwnerID: f.user.ID}
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.gen.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "User: plan my trip") &&
			strings.Contains(prompt, "Assistant: sure, where to?")
	}), int64(20)).Return(&llm.Completion{Text: "\" Trip Planning \""}, nil)
	f.projects.On("Update", mock.Anything, project).Return(nil)

	got, err := f.svc.GenerateName(context.Background(), f.user, project.ID, []NameMessage{
		{Role: "user", Content: "plan my trip"},
		{Role: "assistant", Content: "sure, where to?"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Trip Planning", got.Name)
}

func TestGenerateNameFallsBackOnFailure(t *testing.T) {
	f := newProjectFixture()
	project := &model.Project{ID: uuid.New(), Name: "old", OwnerID: f.user.ID}
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.gen.On("Complete", mock.Anything, mock.AnythingOfType("string"), int64(20)).
		Return(nil, assert.AnError)
	f.projects.On("Update", mock.Anything, project).Return(nil)

	got, err := f.svc.GenerateName(context.Background(), f.user, project.ID, []NameMessage{
		{Role: "user", Content: "hello"},
	})
	assert.NoError(t, err)
	assert.Equal(t, fallbackProjectName, got.Name)
}
