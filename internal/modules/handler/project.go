package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type ProjectHandler struct {
	projects service.ProjectService
}

func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description"`
}

type generateNameRequest struct {
	Messages []nameMessage `json:"messages" binding:"required,min=1,dive"`
}

type nameMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// Create godoc
//
//	@Summary	Create a project
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		body	body		projectRequest	true	"project"
//	@Success	200		{object}	serializer.Response
//	@Router		/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	project, err := h.projects.Create(c.Request.Context(), user, req.Name, req.Description)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project, Msg: "ok"})
}

// List godoc
//
//	@Summary	List the caller's projects
//	@Tags		projects
//	@Produce	json
//	@Success	200	{object}	serializer.Response
//	@Router		/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projects, err := h.projects.List(c.Request.Context(), user)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: projects, Msg: "ok"})
}

// Get godoc
//
//	@Summary	Get one project
//	@Tags		projects
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), user, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project, Msg: "ok"})
}

// GenerateName godoc
//
//	@Summary	Generate and store a short project name from a conversation
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		project_id	path		string				true	"project id"
//	@Param		body		body		generateNameRequest	true	"conversation turns"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id}/generate_name [post]
func (h *ProjectHandler) GenerateName(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	var req generateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("messages are required", err))
		return
	}
	history := make([]service.NameMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		history = append(history, service.NameMessage{Role: m.Role, Content: m.Content})
	}
	project, err := h.projects.GenerateName(c.Request.Context(), user, projectID, history)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project, Msg: "ok"})
}
