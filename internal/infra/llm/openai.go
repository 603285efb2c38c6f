package llm

import (
	"context"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/promptdeck/promptdeck/internal/config"
)

// Completion is the outcome of a blocking generation call. TotalTokens is
// nil when the provider omitted usage information.
type Completion struct {
	Text        string
	TotalTokens *int64
}

// DeltaStream yields incremental text pieces from a streaming generation.
// Delta may be empty for chunks that carry no text content.
type DeltaStream interface {
	Next() bool
	Delta() string
	Err() error
	Close() error
}

// Client wraps the OpenAI chat completion API.
type Client struct {
	oc      openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		oc:      openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey)),
		model:   openai.ChatModel(cfg.OpenAI.Model),
		timeout: time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
	}
}

func (c *Client) params(prompt string, maxTokens int64) openai.ChatCompletionNewParams {
	p := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if maxTokens > 0 {
		p.MaxTokens = openai.Int(maxTokens)
	}
	return p
}

// Complete sends the payload as a single user message and waits for the full
// reply. The per-request timeout does not apply to streaming calls, which
// terminate only at provider stream end or provider error.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int64) (*Completion, error) {
	resp, err := c.oc.Chat.Completions.New(ctx, c.params(prompt, maxTokens),
		option.WithRequestTimeout(c.timeout))
	if err != nil {
		return nil, err
	}

	out := &Completion{}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	if resp.JSON.Usage.Valid() {
		total := resp.Usage.TotalTokens
		out.TotalTokens = &total
	}
	return out, nil
}

func (c *Client) Stream(ctx context.Context, prompt string) (DeltaStream, error) {
	s := c.oc.Chat.Completions.NewStreaming(ctx, c.params(prompt, 0))
	if err := s.Err(); err != nil {
		return nil, err
	}
	return &chunkStream{s: s}, nil
}

type chunkStream struct {
	s *ssestream.Stream[openai.ChatCompletionChunk]
}

func (cs *chunkStream) Next() bool { return cs.s.Next() }

func (cs *chunkStream) Delta() string {
	chunk := cs.s.Current()
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func (cs *chunkStream) Err() error   { return cs.s.Err() }
func (cs *chunkStream) Close() error { return cs.s.Close() }
