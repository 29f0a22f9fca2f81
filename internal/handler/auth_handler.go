package handler

import (
	"net/http"

	"relay-chat/internal/services"
	"relay-chat/internal/transport/httpdto"
	relay_errors "relay-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	identity *services.IdentityService
}

func NewAuthHandler(identity *services.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	u, token, err := h.identity.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: token,
		User:  httpdto.UserInfo{ID: u.ID.String(), Name: u.Name},
	}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	u, token, err := h.identity.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: token,
		User:  httpdto.UserInfo{ID: u.ID.String(), Name: u.Name},
	}))
}

// writeError maps error kinds onto the transport envelope for the
// endpoints that do not go through the core router.
func writeError(c *gin.Context, err error) {
	kind := relay_errors.KindOf(err)
	switch kind {
	case relay_errors.KindValidation:
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), kind.String()))
	case relay_errors.KindAuthentication:
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse(err.Error(), kind.String()))
	case relay_errors.KindAuthorization:
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse(err.Error(), kind.String()))
	case relay_errors.KindNotFound:
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), kind.String()))
	case relay_errors.KindConflict:
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), kind.String()))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}
