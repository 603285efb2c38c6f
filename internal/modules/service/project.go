package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
)

// fallbackProjectName is used when the naming call fails or returns nothing.
const fallbackProjectName = "New Conversation"

// NameMessage is one turn of the conversation supplied to GenerateName.
type NameMessage struct {
	Role    string
	Content string
}

type ProjectService interface {
	Create(ctx context.Context, owner *model.User, name string, description *string) (*model.Project, error)
	List(ctx context.Context, owner *model.User) ([]*model.Project, error)
	Get(ctx context.Context, user *model.User, projectID uuid.UUID) (*model.Project, error)
	GenerateName(ctx context.Context, user *model.User, projectID uuid.UUID, history []NameMessage) (*model.Project, error)
}

type projectService struct {
	projects repo.ProjectRepo
	gen      Generator
	cfg      *config.Config
	log      *zap.Logger
}

func NewProjectService(projects repo.ProjectRepo, gen Generator, cfg *config.Config, log *zap.Logger) ProjectService {
	return &projectService{projects: projects, gen: gen, cfg: cfg, log: log}
}

func (s *projectService) Create(ctx context.Context, owner *model.User, name string, description *string) (*model.Project, error) {
	// Project names are unique store-wide, not per owner.
	if _, err := s.projects.GetByName(ctx, name); err == nil {
		return nil, ErrProjectNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project := &model.Project{
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
		IsActive:    true,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, owner *model.User) ([]*model.Project, error) {
	return s.projects.ListByOwner(ctx, owner.ID)
}

func (s *projectService) Get(ctx context.Context, user *model.User, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID != user.ID {
		return nil, ErrForbidden
	}
	return project, nil
}

// GenerateName asks the generation API for a short title summarizing the
// supplied conversation and stores it as the project name. A failed or
// empty completion falls back to a static name rather than surfacing an
// error.
func (s *projectService) GenerateName(ctx context.Context, user *model.User, projectID uuid.UUID, history []NameMessage) (*model.Project, error) {
	project, err := s.Get(ctx, user, projectID)
	if err != nil {
		return nil, err
	}

	name := fallbackProjectName
	comp, err := s.gen.Complete(ctx, namingPrompt(history), int64(s.cfg.OpenAI.NameMaxTokens))
	if err != nil {
		s.log.Warn("name generation failed", zap.String("project_id", projectID.String()), zap.Error(err))
	} else if title := strings.TrimSpace(strings.Trim(strings.TrimSpace(comp.Text), `"`)); title != "" {
		name = title
	}

	project.Name = name
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func namingPrompt(history []NameMessage) string {
	var sb strings.Builder
	sb.WriteString("Generate a short, descriptive title (max 5 words) for this conversation:\n\n")
	for _, m := range history {
		switch m.Role {
		case "assistant":
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("User: ")
		}
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	sb.WriteString("\nTitle:")
	return sb.String()
}
