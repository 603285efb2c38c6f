package model

import (
	"time"

	"github.com/google/uuid"
)

const FilePurposeAnswers = "answers"

// ProjectFile is metadata for a file attached to a project. The bytes live
// in the external blob store; only StorageKey is kept here. A file without
// a StorageKey contributes no context until its upload succeeds.
type ProjectFile struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Filename   string    `gorm:"type:text;not null" json:"filename"`
	StorageKey *string   `gorm:"type:text" json:"storage_key,omitempty"`
	Purpose    string    `gorm:"type:text;not null;default:answers" json:"purpose"`
	// LocalPath records a server-side source to upload from when StorageKey
	// is still missing.
	LocalPath   *string `gorm:"type:text" json:"-"`
	ContentType string  `gorm:"type:text" json:"content_type,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ProjectFile) TableName() string { return "project_files" }
