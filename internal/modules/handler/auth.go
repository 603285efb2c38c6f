package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/serializer"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type AuthHandler struct {
	users service.UserService
	auth  service.AuthService
	cfg   *config.Config
}

func NewAuthHandler(users service.UserService, auth service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Age      *int   `json:"age" binding:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
//
//	@Summary	Create a user account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"account details"
//	@Success	200		{object}	serializer.Response
//	@Router		/users [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Age)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: user, Msg: "ok"})
}

// Login godoc
//
//	@Summary	Log in and set the session cookie
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"credentials"
//	@Success	200		{object}	serializer.Response
//	@Router		/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	token, ttl, err := h.auth.IssueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.InternalErr("failed to issue token", err))
		return
	}
	c.SetCookie(h.cfg.Auth.CookieName, token, int(ttl.Seconds()), "/", "", h.cfg.Auth.CookieSecure, true)
	c.JSON(http.StatusOK, serializer.Response{Data: user, Msg: "ok"})
}

// Logout godoc
//
//	@Summary	Clear the session cookie
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	serializer.Response
//	@Router		/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cfg.Auth.CookieName, "", -1, "/", "", h.cfg.Auth.CookieSecure, true)
	c.JSON(http.StatusOK, serializer.Response{Msg: "logged out"})
}
