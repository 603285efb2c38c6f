package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/modules/model"
)

// ErrRunFinalized is returned when a terminal transition is attempted on a
// run that already left the pending state.
var ErrRunFinalized = errors.New("run already finalized")

type PromptRunRepo interface {
	Create(ctx context.Context, run *model.PromptRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PromptRun, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.PromptRun, error)
	ListByPrompt(ctx context.Context, promptID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.PromptRun, error)
	SetInputTokens(ctx context.Context, id uuid.UUID, tokens int) error
	MarkCompleted(ctx context.Context, id uuid.UUID, output string, tokens *int64, cost float64) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type promptRunRepo struct{ db *gorm.DB }

func NewPromptRunRepo(db *gorm.DB) PromptRunRepo {
	return &promptRunRepo{db: db}
}

func (r *promptRunRepo) Create(ctx context.Context, run *model.PromptRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *promptRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.PromptRun, error) {
	var run model.PromptRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *promptRunRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.PromptRun, error) {
	var runs []*model.PromptRun
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&runs).Error
	return runs, err
}

func (r *promptRunRepo) ListByPrompt(ctx context.Context, promptID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int, timeDesc bool) ([]*model.PromptRun, error) {
	q := r.db.WithContext(ctx).Where("prompt_id = ?", promptID)

	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		op := ">"
		if timeDesc {
			op = "<"
		}
		q = q.Where(
			"(created_at "+op+" ?) OR (created_at = ? AND id "+op+" ?)",
			afterCreatedAt, afterCreatedAt, afterID,
		)
	}

	order := "created_at ASC, id ASC"
	if timeDesc {
		order = "created_at DESC, id DESC"
	}

	query := q.Order(order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var runs []*model.PromptRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// SetInputTokens records the payload size estimate on a still-pending run.
func (r *promptRunRepo) SetInputTokens(ctx context.Context, id uuid.UUID, tokens int) error {
	return r.db.WithContext(ctx).
		Model(&model.PromptRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusPending).
		Update("input_tokens", tokens).Error
}

// MarkCompleted commits the terminal success transition. The guarded WHERE
// clause makes terminal states immutable: a run that already completed or
// failed is never touched again.
func (r *promptRunRepo) MarkCompleted(ctx context.Context, id uuid.UUID, output string, tokens *int64, cost float64) error {
	res := r.db.WithContext(ctx).
		Model(&model.PromptRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusPending).
		Updates(map[string]interface{}{
			"status":      model.RunStatusCompleted,
			"output_data": output,
			"tokens_used": tokens,
			"cost":        cost,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRunFinalized
	}
	return nil
}

// MarkFailed commits the terminal failure transition. Output, tokens and
// cost are left untouched.
func (r *promptRunRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.PromptRun{}).
		Where("id = ? AND status = ?", id, model.RunStatusPending).
		Update("status", model.RunStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRunFinalized
	}
	return nil
}
