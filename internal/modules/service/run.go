package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
	"github.com/promptdeck/promptdeck/internal/pkg/paging"
	"github.com/promptdeck/promptdeck/internal/pkg/pricing"
	"github.com/promptdeck/promptdeck/internal/pkg/report"
	"github.com/promptdeck/promptdeck/internal/pkg/utils/tokens"
)

// chatPromptName labels the ad-hoc prompts created for free-form chat
// messages, as opposed to prompts authored through the prompt CRUD.
const chatPromptName = "Chat message"

const defaultRunPageSize = 50

// RunEvent is the lifecycle message published on run completion and failure.
type RunEvent struct {
	RunID     uuid.UUID `json:"run_id"`
	ProjectID uuid.UUID `json:"project_id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	UserID    uuid.UUID `json:"user_id"`
	Status    string    `json:"status"`
}

type ListRunsInput struct {
	PromptID uuid.UUID
	Cursor   string
	Limit    int
	Desc     bool
}

type ListRunsOutput struct {
	Runs       []*model.PromptRun
	NextCursor string
}

type RunService interface {
	RunPrompt(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.PromptRun, error)
	SendPrompt(ctx context.Context, user *model.User, projectID, promptID uuid.UUID) (*model.PromptRun, error)
	SendMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (*model.PromptRun, error)
	StreamMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (<-chan StreamEvent, error)
	ListMessages(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.PromptRun, error)
	ListByPrompt(ctx context.Context, user *model.User, in ListRunsInput) (*ListRunsOutput, error)
}

type runService struct {
	runs     repo.PromptRunRepo
	prompts  repo.PromptRepo
	projects repo.ProjectRepo

	assembler *ContextAssembler
	gen       Generator
	events    EventPublisher
	reporter  report.ErrorReporter
	cfg       *config.Config
	log       *zap.Logger
}

func NewRunService(
	runs repo.PromptRunRepo,
	prompts repo.PromptRepo,
	projects repo.ProjectRepo,
	assembler *ContextAssembler,
	gen Generator,
	events EventPublisher,
	reporter report.ErrorReporter,
	cfg *config.Config,
	log *zap.Logger,
) RunService {
	return &runService{
		runs:      runs,
		prompts:   prompts,
		projects:  projects,
		assembler: assembler,
		gen:       gen,
		events:    events,
		reporter:  reporter,
		cfg:       cfg,
		log:       log,
	}
}

// RunPrompt executes a stored prompt end to end: resolve and authorize,
// persist a pending run, assemble the payload, call the generation API and
// finalize the run.
func (s *runService) RunPrompt(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.PromptRun, error) {
	prompt, project, err := s.resolvePrompt(ctx, user, promptID)
	if err != nil {
		return nil, err
	}
	run, err := s.createRun(ctx, prompt, project, user, nil)
	if err != nil {
		return nil, err
	}
	if err := s.execute(ctx, run, prompt.Content, project.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// SendPrompt executes a stored prompt addressed through its project, for
// chat-style clients that track the project rather than the prompt.
func (s *runService) SendPrompt(ctx context.Context, user *model.User, projectID, promptID uuid.UUID) (*model.PromptRun, error) {
	project, err := s.ownedProject(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	prompt, err := s.prompts.GetInProject(ctx, promptID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	// InputData stays nil: only free-form messages appear as user turns
	// in the chat transcript.
	run, err := s.createRun(ctx, prompt, project, user, nil)
	if err != nil {
		return nil, err
	}
	if err := s.execute(ctx, run, prompt.Content, project.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// SendMessage runs a free-form chat message. The message is persisted as an
// ad-hoc prompt so the run ledger stays uniform across entry points.
func (s *runService) SendMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (*model.PromptRun, error) {
	project, err := s.ownedProject(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	prompt := &model.Prompt{
		ProjectID: projectID,
		Name:      chatPromptName,
		Content:   content,
	}
	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}
	run, err := s.createRun(ctx, prompt, project, user, &content)
	if err != nil {
		return nil, err
	}
	if err := s.execute(ctx, run, content, project.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *runService) ListMessages(ctx context.Context, user *model.User, projectID uuid.UUID) ([]*model.PromptRun, error) {
	if _, err := s.ownedProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	return s.runs.ListByProject(ctx, projectID)
}

func (s *runService) ListByPrompt(ctx context.Context, user *model.User, in ListRunsInput) (*ListRunsOutput, error) {
	if _, _, err := s.resolvePrompt(ctx, user, in.PromptID); err != nil {
		return nil, err
	}

	var (
		afterCreatedAt time.Time
		afterID        uuid.UUID
	)
	if in.Cursor != "" {
		t, id, err := paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
		afterCreatedAt, afterID = t, id
	}

	limit := in.Limit
	if limit <= 0 || limit > defaultRunPageSize {
		limit = defaultRunPageSize
	}

	// Fetch one extra row to learn whether another page exists.
	runs, err := s.runs.ListByPrompt(ctx, in.PromptID, afterCreatedAt, afterID, limit+1, in.Desc)
	if err != nil {
		return nil, err
	}

	out := &ListRunsOutput{Runs: runs}
	if len(runs) > limit {
		out.Runs = runs[:limit]
		last := out.Runs[len(out.Runs)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

func (s *runService) resolvePrompt(ctx context.Context, user *model.User, promptID uuid.UUID) (*model.Prompt, *model.Project, error) {
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

func (s *runService) ownedProject(ctx context.Context, user *model.User, projectID uuid.UUID) (*model.Project, error) {
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

// createRun persists the pending ledger entry before any external call.
func (s *runService) createRun(ctx context.Context, prompt *model.Prompt, project *model.Project, user *model.User, input *string) (*model.PromptRun, error) {
	run := &model.PromptRun{
		PromptID:  prompt.ID,
		ProjectID: project.ID,
		UserID:    user.ID,
		InputData: input,
		Status:    model.RunStatusPending,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// execute assembles the payload, performs the blocking generation call and
// drives the run to its terminal state.
func (s *runService) execute(ctx context.Context, run *model.PromptRun, promptText string, projectID uuid.UUID) error {
	payload := s.assembler.Assemble(ctx, promptText, projectID)

	if n := tokens.Estimate(payload); n > 0 {
		if err := s.runs.SetInputTokens(ctx, run.ID, n); err != nil {
			s.log.Warn("record input tokens failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		} else {
			run.InputTokens = &n
		}
	}

	// Terminal transitions must land even when the caller hangs up
	// mid-generation, otherwise the run stays pending forever.
	finalCtx := context.WithoutCancel(ctx)

	comp, err := s.gen.Complete(ctx, payload, 0)
	if err != nil {
		s.reporter.Report(finalCtx, err)
		if ferr := s.runs.MarkFailed(finalCtx, run.ID); ferr != nil && !errors.Is(ferr, repo.ErrRunFinalized) {
			s.reporter.Report(finalCtx, ferr)
		}
		run.Status = model.RunStatusFailed
		s.publish(finalCtx, "run.failed", run)
		return ErrGenerationFailed
	}

	cost := pricing.Cost(comp.TotalTokens, s.cfg.OpenAI.UnitPricePer1K)
	if err := s.runs.MarkCompleted(finalCtx, run.ID, comp.Text, comp.TotalTokens, cost); err != nil {
		if errors.Is(err, repo.ErrRunFinalized) {
			return err
		}
		s.reporter.Report(finalCtx, err)
		return err
	}
	run.Status = model.RunStatusCompleted
	run.OutputData = &comp.Text
	run.TokensUsed = comp.TotalTokens
	run.Cost = &cost
	run.UpdatedAt = time.Now()
	s.publish(finalCtx, "run.completed", run)
	return nil
}

func (s *runService) publish(ctx context.Context, key string, run *model.PromptRun) {
	if s.events == nil {
		return
	}
	event := RunEvent{
		RunID:     run.ID,
		ProjectID: run.ProjectID,
		PromptID:  run.PromptID,
		UserID:    run.UserID,
		Status:    run.Status,
	}
	if err := s.events.PublishJSON(ctx, key, event); err != nil {
		s.log.Warn("publish run event failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}
