package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
)

type PromptInput struct {
	Name        string
	Description *string
	Content     string
	Metadata    datatypes.JSONMap
}

type PromptService interface {
	Create(ctx context.Context, user *model.User, projectID uuid.UUID, in PromptInput) (*model.Prompt, error)
	Get(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.Prompt, error)
	Update(ctx context.Context, user *model.User, promptID uuid.UUID, in PromptInput) (*model.Prompt, error)
	Delete(ctx context.Context, user *model.User, promptID uuid.UUID) error
	ListByProject(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.Prompt, error)
}

type promptService struct {
	prompts  repo.PromptRepo
	projects repo.ProjectRepo
}

func NewPromptService(prompts repo.PromptRepo, projects repo.ProjectRepo) PromptService {
	return &promptService{prompts: prompts, projects: projects}
}

// resolve loads a prompt and checks that the caller owns its project.
func (s *promptService) resolve(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.Prompt, *model.Project, error) {
	prompt, err := s.prompts.GetByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPromptNotFound
		}
		return nil, nil, err
	}
	project, err := s.projects.GetByID(ctx, prompt.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, err
	}
	if project.OwnerID != user.ID {
		return nil, nil, ErrForbidden
	}
	return prompt, project, nil
}

func (s *promptService) assertProject(ctx context.Context, user *model.User, projectID uuid.UUID) (*model.Project, error) {
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

func (s *promptService) Create(ctx context.Context, user *model.User, projectID uuid.UUID, in PromptInput) (*model.Prompt, error) {
	if _, err := s.assertProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	prompt := &model.Prompt{
		ProjectID:   projectID,
		Name:        in.Name,
		Description: in.Description,
		Content:     in.Content,
		Metadata:    in.Metadata,
	}
	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *promptService) Get(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.Prompt, error) {
	prompt, _, err := s.resolve(ctx, user, promptID)
	return prompt, err
}

func (s *promptService) Update(ctx context.Context, user *model.User, promptID uuid.UUID, in PromptInput) (*model.Prompt, error) {
	prompt, _, err := s.resolve(ctx, user, promptID)
	if err != nil {
		return nil, err
	}
	prompt.Name = in.Name
	prompt.Description = in.Description
	prompt.Content = in.Content
	prompt.Metadata = in.Metadata
	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *promptService) Delete(ctx context.Context, user *model.User, promptID uuid.UUID) error {
	prompt, _, err := s.resolve(ctx, user, promptID)
	if err != nil {
		return err
	}
	// Runs reference prompts without a foreign key, so the run history
	// for this prompt stays intact after deletion.
	return s.prompts.Delete(ctx, prompt.ID)
}

func (s *promptService) ListByProject(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.Prompt, error) {
	if _, err := s.assertProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	return s.prompts.ListByProject(ctx, projectID)
}
