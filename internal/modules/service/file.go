package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
	"github.com/promptdeck/promptdeck/internal/pkg/utils/mime"
)

type FileService interface {
	Upload(ctx context.Context, user *model.User, projectID uuid.UUID, filename string, data []byte) (*model.ProjectFile, error)
	ListByProject(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.ProjectFile, error)
}

type fileService struct {
	files    repo.ProjectFileRepo
	projects repo.ProjectRepo
	store    FileStore
	log      *zap.Logger
}

func NewFileService(files repo.ProjectFileRepo, projects repo.ProjectRepo, store FileStore, log *zap.Logger) FileService {
	return &fileService{files: files, projects: projects, store: store, log: log}
}

func (s *fileService) Upload(ctx context.Context, user *model.User, projectID uuid.UUID, filename string, data []byte) (*model.ProjectFile, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if project.OwnerID != user.ID {
		return nil, ErrForbidden
	}

	contentType := mime.Detect(data, filename)
	key := storageKey(projectID, uuid.New())
	if err := s.store.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload file content: %w", err)
	}

	file := &model.ProjectFile{
		ProjectID:   projectID,
		Filename:    filename,
		StorageKey:  &key,
		Purpose:     model.FilePurposeAnswers,
		ContentType: contentType,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}
	s.log.Info("project file uploaded",
		zap.String("project_id", projectID.String()),
		zap.String("file_id", file.ID.String()),
		zap.Int("size", len(data)))
	return file, nil
}

func (s *fileService) ListByProject(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.ProjectFile, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if project.OwnerID != user.ID {
		return nil, ErrForbidden
	}
	return s.files.ListByProject(ctx, projectID)
}

func storageKey(projectID, fileID uuid.UUID) string {
	return fmt.Sprintf("projects/%s/files/%s", projectID, fileID)
}
