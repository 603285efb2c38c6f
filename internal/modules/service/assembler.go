package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/modules/repo"
	"github.com/promptdeck/promptdeck/internal/pkg/report"
	"github.com/promptdeck/promptdeck/internal/pkg/utils/mime"
)

// ContextAssembler builds the text payload sent to the generation API: the
// prompt content followed by the contents of every stored project file, in
// insertion order. File problems never fail a run; each broken file is
// reported and skipped, and if everything fails the prompt text alone is
// used.
type ContextAssembler struct {
	files    repo.ProjectFileRepo
	store    FileStore
	reporter report.ErrorReporter
	log      *zap.Logger
}

func NewContextAssembler(files repo.ProjectFileRepo, store FileStore, reporter report.ErrorReporter, log *zap.Logger) *ContextAssembler {
	return &ContextAssembler{files: files, store: store, reporter: reporter, log: log}
}

func (a *ContextAssembler) Assemble(ctx context.Context, promptText string, projectID uuid.UUID) string {
	files, err := a.files.ListByProject(ctx, projectID)
	if err != nil {
		a.reporter.Report(ctx, fmt.Errorf("list project files: %w", err))
		return promptText
	}

	// Files captured from a local path but never stored get uploaded on
	// first use. Failures here only exclude the file from this payload.
	for _, f := range files {
		if f.StorageKey != nil && *f.StorageKey != "" {
			continue
		}
		if f.LocalPath == nil || *f.LocalPath == "" {
			continue
		}
		data, err := os.ReadFile(*f.LocalPath)
		if err != nil {
			a.reporter.Report(ctx, fmt.Errorf("read local file %s: %w", f.ID, err))
			continue
		}
		key := storageKey(projectID, f.ID)
		if err := a.store.Upload(ctx, key, data, mime.Detect(data, f.Filename)); err != nil {
			a.reporter.Report(ctx, fmt.Errorf("upload file %s: %w", f.ID, err))
			continue
		}
		if err := a.files.SetStorageKey(ctx, f.ID, key); err != nil {
			a.reporter.Report(ctx, fmt.Errorf("record storage key for file %s: %w", f.ID, err))
			continue
		}
		f.StorageKey = &key
	}

	var sb strings.Builder
	for _, f := range files {
		if f.StorageKey == nil || *f.StorageKey == "" {
			continue
		}
		content, err := a.store.Download(ctx, *f.StorageKey)
		if err != nil {
			a.reporter.Report(ctx, fmt.Errorf("fetch file %s: %w", f.ID, err))
			continue
		}
		sb.Write(content)
		sb.WriteByte('\n')
	}

	if sb.Len() == 0 {
		return promptText
	}
	return promptText + "\n" + sb.String()
}
