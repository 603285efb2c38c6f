package serializer

import (
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/internal/modules/model"
)

// SendPromptResponse is the body returned by the send_prompt and messages
// endpoints.
type SendPromptResponse struct {
	Reply     string    `json:"reply"`
	RunID     uuid.UUID `json:"run_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func BuildSendPromptResponse(reply string, run *model.PromptRun) SendPromptResponse {
	return SendPromptResponse{
		Reply:     reply,
		RunID:     run.ID,
		Status:    run.Status,
		CreatedAt: run.CreatedAt,
		UpdatedAt: run.UpdatedAt,
	}
}

// ChatMessage is one entry of a project's derived chat history.
type ChatMessage struct {
	ID      uuid.UUID `json:"id"`
	Role    string    `json:"role"`
	Content string    `json:"content"`
}

// BuildChatMessages flattens runs into the chat transcript: each run
// contributes its input as a user message and its output as an assistant
// message, in run order.
func BuildChatMessages(runs []*model.PromptRun) []ChatMessage {
	messages := make([]ChatMessage, 0, len(runs)*2)
	for _, run := range runs {
		if run.InputData != nil && *run.InputData != "" {
			messages = append(messages, ChatMessage{ID: run.ID, Role: "user", Content: *run.InputData})
		}
		if run.OutputData != nil && *run.OutputData != "" {
			messages = append(messages, ChatMessage{ID: run.ID, Role: "assistant", Content: *run.OutputData})
		}
	}
	return messages
}
