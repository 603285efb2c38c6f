package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type RunHandler struct {
	runs      service.RunService
	analytics service.AnalyticsService
}

func NewRunHandler(runs service.RunService, analytics service.AnalyticsService) *RunHandler {
	return &RunHandler{runs: runs, analytics: analytics}
}

type sendPromptRequest struct {
	PromptID uuid.UUID `json:"prompt_id" binding:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Run godoc
//
//	@Summary	Execute a stored prompt and wait for the result
//	@Tags		runs
//	@Produce	json
//	@Param		prompt_id	path		string	true	"prompt id"
//	@Success	200			{object}	serializer.Response
//	@Router		/prompts/{prompt_id}/run [post]
func (h *RunHandler) Run(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	promptID, ok := pathUUID(c, "prompt_id")
	if !ok {
		return
	}
	run, err := h.runs.RunPrompt(c.Request.Context(), user, promptID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: run, Msg: "ok"})
}

// SendPrompt godoc
//
//	@Summary	Execute one of the project's prompts as a chat turn
//	@Tags		runs
//	@Accept		json
//	@Produce	json
//	@Param		project_id	path		string				true	"project id"
//	@Param		body		body		sendPromptRequest	true	"prompt reference"
//	@Success	200			{object}	serializer.SendPromptResponse
//	@Router		/projects/{project_id}/send_prompt [post]
func (h *RunHandler) SendPrompt(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req sendPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("prompt_id is required", err))
		return
	}
	run, err := h.runs.SendPrompt(c.Request.Context(), user, projectID, req.PromptID)
	if err != nil {
		respondErr(c, err)
		return
	}
	reply := ""
	if run.OutputData != nil {
		reply = *run.OutputData
	}
	c.JSON(http.StatusOK, serializer.BuildSendPromptResponse(reply, run))
}

// SendMessage godoc
//
//	@Summary	Send a free-form chat message and wait for the reply
//	@Tags		runs
//	@Accept		json
//	@Produce	json
//	@Param		project_id	path		string				true	"project id"
//	@Param		body		body		sendMessageRequest	true	"message"
//	@Success	200			{object}	serializer.SendPromptResponse
//	@Router		/projects/{project_id}/messages [post]
func (h *RunHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("content is required", err))
		return
	}
	run, err := h.runs.SendMessage(c.Request.Context(), user, projectID, req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	reply := ""
	if run.OutputData != nil {
		reply = *run.OutputData
	}
	c.JSON(http.StatusOK, serializer.BuildSendPromptResponse(reply, run))
}

// GetMessages godoc
//
//	@Summary	Get the project's chat transcript derived from its runs
//	@Tags		runs
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id}/messages [get]
func (h *RunHandler) GetMessages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	runs, err := h.runs.ListMessages(c.Request.Context(), user, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: serializer.BuildChatMessages(runs), Msg: "ok"})
}

// Analytics godoc
//
//	@Summary	Aggregate run counts, tokens and cost for a project
//	@Tags		analytics
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Success	200			{object}	serializer.Response
//	@Router		/analytics/projects/{project_id} [get]
func (h *RunHandler) Analytics(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	out, err := h.analytics.ProjectAnalytics(c.Request.Context(), user, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out, Msg: "ok"})
}
