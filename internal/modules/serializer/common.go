package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger installs the shared logger used for response-level logging.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response is the common envelope for non-streaming endpoints.
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	if err != nil {
		log.Debug("request error", zap.Int("code", errCode), zap.String("msg", msg), zap.Error(err))
	}
	return res
}

func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

func NotFoundErr(entity string) Response {
	if entity == "" {
		entity = "resource"
	}
	return Err(http.StatusNotFound, entity+" not found", nil)
}

func ForbiddenErr(msg string) Response {
	if msg == "" {
		msg = "not authorized"
	}
	return Err(http.StatusForbidden, msg, nil)
}

// InternalErr hides the underlying cause from the caller; detail only shows
// outside release mode.
func InternalErr(msg string, err error) Response {
	if msg == "" {
		msg = "internal server error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}
