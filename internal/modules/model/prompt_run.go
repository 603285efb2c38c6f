package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PromptRun is one execution attempt of a prompt against the generation
// API. Created as pending before any external call, then transitioned
// exactly once to completed or failed.
//
// PromptID deliberately carries no foreign key constraint: deleting a
// prompt keeps its run history intact.
type PromptRun struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PromptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	InputData  *string `gorm:"type:text" json:"input_data,omitempty"`
	OutputData *string `gorm:"type:text" json:"output_data,omitempty"`
	Status     string  `gorm:"type:text;not null;default:pending;index" json:"status"`

	TokensUsed *int64   `json:"tokens_used,omitempty"`
	Cost       *float64 `json:"cost,omitempty"`
	// InputTokens is a tokenizer estimate of the assembled payload,
	// recorded at creation. Informational only.
	InputTokens *int `json:"input_tokens,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PromptRun) TableName() string { return "prompt_runs" }

func (r *PromptRun) Terminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
