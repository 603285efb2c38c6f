package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
	"github.com/promptdeck/promptdeck/internal/pkg/paging"
)

// respondErr maps service errors onto the HTTP error taxonomy.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("user"))
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("project"))
	case errors.Is(err, service.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("prompt"))
	case errors.Is(err, service.ErrRunNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("run"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("email already registered", nil))
	case errors.Is(err, service.ErrProjectNameTaken):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("project name already exists", nil))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("invalid credentials"))
	case errors.Is(err, paging.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid cursor", err))
	case errors.Is(err, service.ErrGenerationFailed):
		c.JSON(http.StatusInternalServerError, serializer.InternalErr("failed to run prompt", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

// pathUUID parses a :param path segment as a UUID; on failure it writes the
// 400 response and reports !ok.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
