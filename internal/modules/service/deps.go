package service

import (
	"context"

	"github.com/promptdeck/promptdeck/internal/infra/llm"
)

// Generator produces completions for assembled prompt payloads. The
// production implementation is the OpenAI client in internal/infra/llm.
type Generator interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (*llm.Completion, error)
	Stream(ctx context.Context, prompt string) (llm.DeltaStream, error)
}

// FileStore persists project file contents under opaque keys.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// EventPublisher emits fire-and-forget lifecycle events. A nil publisher
// disables event emission without branching at every call site.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}
