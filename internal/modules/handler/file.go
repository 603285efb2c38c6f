package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/middleware"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

// maxUploadBytes caps multipart file uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type FileHandler struct {
	files service.FileService
}

func NewFileHandler(files service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload godoc
//
//	@Summary	Upload a context file to a project
//	@Tags		files
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Param		file		formData	file	true	"file content"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file too large", nil))
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable file", err))
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable file", err))
		return
	}

	file, err := h.files.Upload(c.Request.Context(), user, projectID, header.Filename, data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: file, Msg: "ok"})
}

// List godoc
//
//	@Summary	List a project's files
//	@Tags		files
//	@Produce	json
//	@Param		project_id	path		string	true	"project id"
//	@Success	200			{object}	serializer.Response
//	@Router		/projects/{project_id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	projectID, ok := pathUUID(c, "project_id")
	if !ok {
		return
	}
	files, err := h.files.ListByProject(c.Request.Context(), user, projectID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: files, Msg: "ok"})
}
