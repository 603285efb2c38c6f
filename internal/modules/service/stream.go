package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/repo"
	"github.com/promptdeck/promptdeck/internal/pkg/utils/tokens"
)

// errorDelta is the synthetic assistant chunk emitted when generation
// fails mid-stream.
const errorDelta = "[Error generating response]"

// StreamEvent is one unit on the relay channel between the provider stream
// and the SSE writer. Exactly one event with End set closes every stream
// that is still being consumed; the channel is closed after it.
type StreamEvent struct {
	Delta string
	End   bool
}

// StreamMessage starts a streaming chat run. The returned channel carries
// provider deltas in order and is closed when the run reaches a terminal
// state. Setup errors (authorization, persistence) are returned
// synchronously; generation errors surface on the channel as a synthetic
// error delta.
func (s *runService) StreamMessage(ctx context.Context, user *model.User, projectID uuid.UUID, content string) (<-chan StreamEvent, error) {
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

	payload := s.assembler.Assemble(ctx, content, project.ID)
	if n := tokens.Estimate(payload); n > 0 {
		if err := s.runs.SetInputTokens(ctx, run.ID, n); err != nil {
			s.log.Warn("record input tokens failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		}
	}

	buffer := s.cfg.OpenAI.StreamBuffer
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan StreamEvent, buffer)
	go s.relay(ctx, run, payload, ch)
	return ch, nil
}

// relay forwards provider deltas to the channel and finalizes the run. The
// run is finalized on a detached context so a caller disconnect never
// leaves it pending.
func (s *runService) relay(ctx context.Context, run *model.PromptRun, payload string, ch chan<- StreamEvent) {
	defer close(ch)
	finalCtx := context.WithoutCancel(ctx)

	stream, err := s.gen.Stream(ctx, payload)
	if err != nil {
		s.fail(finalCtx, run, err)
		s.send(ctx, ch, StreamEvent{Delta: errorDelta})
		s.send(ctx, ch, StreamEvent{End: true})
		return
	}
	defer stream.Close()

	var sb strings.Builder
	alive := true
	for stream.Next() {
		delta := stream.Delta()
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if alive {
			alive = s.send(ctx, ch, StreamEvent{Delta: delta})
		}
	}

	if err := stream.Err(); err != nil {
		s.fail(finalCtx, run, err)
		if alive {
			s.send(ctx, ch, StreamEvent{Delta: errorDelta})
			s.send(ctx, ch, StreamEvent{End: true})
		}
		return
	}

	// Token usage is not reported on the streaming endpoint; completed
	// streaming runs record output only.
	if err := s.runs.MarkCompleted(finalCtx, run.ID, sb.String(), nil, 0); err != nil {
		if !errors.Is(err, repo.ErrRunFinalized) {
			s.reporter.Report(finalCtx, err)
		}
	} else {
		run.Status = model.RunStatusCompleted
		s.publish(finalCtx, "run.completed", run)
	}
	if alive {
		s.send(ctx, ch, StreamEvent{End: true})
	}
}

// send delivers one event unless the caller has gone away. It returns false
// once the caller's context is done; the relay then stops forwarding but
// keeps draining the provider stream so the run can be finalized.
func (s *runService) send(ctx context.Context, ch chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *runService) fail(ctx context.Context, run *model.PromptRun, cause error) {
	s.reporter.Report(ctx, cause)
	if err := s.runs.MarkFailed(ctx, run.ID); err != nil && !errors.Is(err, repo.ErrRunFinalized) {
		s.reporter.Report(ctx, err)
	}
	run.Status = model.RunStatusFailed
	s.publish(ctx, "run.failed", run)
}
