package handler

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type StreamHandler struct {
	runs service.RunService
}

func NewStreamHandler(runs service.RunService) *StreamHandler {
	return &StreamHandler{runs: runs}
}

type streamDelta struct {
	Role  string `json:"role"`
	Delta string `json:"delta"`
}

// StreamMessage godoc
//
//	@Summary	Send a chat message and stream the reply as SSE
//	@Tags		runs
//	@Produce	text/event-stream
//	@Param		project_id	path	string	true	"project id"
//	@Param		content		query	string	true	"message content"
//	@Router		/projects/{project_id}/messages/stream [get]
func (h *StreamHandler) StreamMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	content := c.Query("content")
	if content == "" {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("content is required", nil))
		return
	}

	events, err := h.runs.StreamMessage(c.Request.Context(), user, projectID, content)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	flusher, _ := c.Writer.(http.Flusher)
	for ev := range events {
		if ev.End {
			c.Writer.WriteString("event: end\ndata: {}\n\n")
			if flusher != nil {
				flusher.Flush()
			}
			return
		}
		body, err := sonic.Marshal(streamDelta{Role: "assistant", Delta: ev.Delta})
		if err != nil {
			continue
		}
		c.Writer.WriteString("data: ")
		c.Writer.Write(body)
		c.Writer.WriteString("\n\n")
		if flusher != nil {
			flusher.Flush()
		}
	}
}
