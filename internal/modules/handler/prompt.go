package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type PromptHandler struct {
	prompts service.PromptService
	runs    service.RunService
}

func NewPromptHandler(prompts service.PromptService, runs service.RunService) *PromptHandler {
	return &PromptHandler{prompts: prompts, runs: runs}
}

type createPromptRequest struct {
	ProjectID   uuid.UUID         `json:"project_id" binding:"required"`
	Name        string            `json:"name" binding:"required,max=200"`
	Description *string           `json:"description"`
	Content     string            `json:"content" binding:"required"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

type promptRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Description *string           `json:"description"`
	Content     string            `json:"content" binding:"required"`
	Metadata    datatypes.JSONMap `json:"metadata"`
}

func (r promptRequest) toInput() service.PromptInput {
	return service.PromptInput{
		Name:        r.Name,
		Description: r.Description,
		Content:     r.Content,
		Metadata:    r.Metadata,
	}
}

// Create godoc
//
//	@Summary	Create a prompt in a project
//	@Tags		prompts
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createPromptRequest	true	"prompt"
//	@Success	200		{object}	serializer.Response
//	@Router		/prompts [post]
func (h *PromptHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	var req createPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	prompt, err := h.prompts.Create(c.Request.Context(), user, req.ProjectID, service.PromptInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: prompt, Msg: "ok"})
}

// ListByProject godoc
//
//	@Summary	List a project's prompts
//	@Tags		prompts
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id}/prompts [get]
func (h *PromptHandler) ListByProject(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	prompts, err := h.prompts.ListByProject(c.Request.Context(), user, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: prompts, Msg: "ok"})
}

// Get godoc
//
//	@Summary	Get one prompt
//	@Tags		prompts
//	@Produce	json
//	@Param		prompt_id	path		string	true	"prompt id"
//	@Success	200			{object}	serializer.Response
//	@Router		/prompts/{prompt_id} [get]
func (h *PromptHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	promptID, ok := pathUUID(c, "prompt_id")
	if !ok {
		return
	}
	prompt, err := h.prompts.Get(c.Request.Context(), user, promptID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: prompt, Msg: "ok"})
}

// Update godoc
//
//	@Summary	Replace a prompt's fields
//	@Tags		prompts
//	@Accept		json
//	@Produce	json
//	@Param		prompt_id	path		string			true	"prompt id"
//	@Param		body		body		promptRequest	true	"prompt"
//	@Success	200			{object}	serializer.Response
//	@Router		/prompts/{prompt_id} [put]
func (h *PromptHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	promptID, ok := pathUUID(c, "prompt_id")
	if !ok {
		return
	}
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	prompt, err := h.prompts.Update(c.Request.Context(), user, promptID, req.toInput())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: prompt, Msg: "ok"})
}

// Delete godoc
//
//	@Summary	Delete a prompt, keeping its run history
//	@Tags		prompts
//	@Param		prompt_id	path	string	true	"prompt id"
//	@Success	204
//	@Router		/prompts/{prompt_id} [delete]
func (h *PromptHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	promptID, ok := pathUUID(c, "prompt_id")
	if !ok {
		return
	}
	if err := h.prompts.Delete(c.Request.Context(), user, promptID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRuns godoc
//
//	@Summary	List a prompt's runs, cursor-paginated
//	@Tags		prompts
//	@Produce	json
//	@Param		prompt_id	path		string	true	"prompt id"
//	@Param		cursor		query		string	false	"pagination cursor"
//	@Param		limit		query		int		false	"page size"
//	@Param		order		query		string	false	"asc or desc"
//	@Success	200			{object}	serializer.Response
//	@Router		/prompts/{prompt_id}/runs [get]
func (h *PromptHandler) ListRuns(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	promptID, ok := pathUUID(c, "prompt_id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid limit", err))
			return
		}
		limit = n
	}
	out, err := h.runs.ListByPrompt(c.Request.Context(), user, service.ListRunsInput{
		PromptID: promptID,
		Cursor:   c.Query("cursor"),
		Limit:    limit,
		Desc:     c.Query("order") == "desc",
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{
		Data: gin.H{"runs": out.Runs, "next_cursor": out.NextCursor},
		Msg:  "ok",
	})
}
