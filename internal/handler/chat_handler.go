package handler

import (
	"io"

	"relay-chat/internal/middleware"
	"relay-chat/internal/router"

	"github.com/gin-gonic/gin"
)

// ChatHandler adapts HTTP requests into the core router's shape and writes
// its responses back. All room and message routes funnel through Dispatch;
// the core decides which operation the (verb, path) pair maps to.
type ChatHandler struct {
	core *router.Router
}

func NewChatHandler(core *router.Router) *ChatHandler {
	return &ChatHandler{core: core}
}

func (h *ChatHandler) Dispatch(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}

	resp := h.core.Handle(c.Request.Context(), router.Request{
		Verb:        c.Request.Method,
		Path:        c.Request.URL.Path,
		Query:       c.Request.URL.Query(),
		Body:        body,
		CallerToken: middleware.ExtractBearer(c),
	})
	c.JSON(resp.Status, resp.Body)
}
