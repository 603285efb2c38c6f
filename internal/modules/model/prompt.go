package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Prompt struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description,omitempty"`
	Content     string            `gorm:"type:text;not null" json:"content"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prompt) TableName() string { return "prompts" }
