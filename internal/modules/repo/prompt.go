package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/modules/model"
)

type PromptRepo interface {
	Create(ctx context.Context, p *model.Prompt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Prompt, error)
	// GetInProject returns the prompt only when it belongs to the project.
	GetInProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID) (*model.Prompt, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Prompt, error)
	Update(ctx context.Context, p *model.Prompt) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type promptRepo struct{ db *gorm.DB }

func NewPromptRepo(db *gorm.DB) PromptRepo {
	return &promptRepo{db: db}
}

func (r *promptRepo) Create(ctx context.Context, p *model.Prompt) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promptRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Prompt, error) {
	var p model.Prompt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promptRepo) GetInProject(ctx context.Context, id uuid.UUID, projectID uuid.UUID) (*model.Prompt, error) {
	var p model.Prompt
	err := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promptRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Prompt, error) {
	var prompts []*model.Prompt
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&prompts).Error
	return prompts, err
}

func (r *promptRepo) Update(ctx context.Context, p *model.Prompt) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Runs referencing the prompt are left in place on purpose.
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Prompt{}).Error
}
