package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/modules/model"
)

type ProjectFileRepo interface {
	Create(ctx context.Context, f *model.ProjectFile) error
	// ListByProject returns files in insertion order; the context assembler
	// depends on this ordering.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectFile, error)
	SetStorageKey(ctx context.Context, id uuid.UUID, key string) error
}

type projectFileRepo struct{ db *gorm.DB }

func NewProjectFileRepo(db *gorm.DB) ProjectFileRepo {
	return &projectFileRepo{db: db}
}

func (r *projectFileRepo) Create(ctx context.Context, f *model.ProjectFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *projectFileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectFile, error) {
	var files []*model.ProjectFile
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&files).Error
	return files, err
}

func (r *projectFileRepo) SetStorageKey(ctx context.Context, id uuid.UUID, key string) error {
	return r.db.WithContext(ctx).
		Model(&model.ProjectFile{}).
		Where("id = ?", id).
		Update("storage_key", key).Error
}
