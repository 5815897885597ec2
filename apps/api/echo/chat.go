package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cpgs-hub/backend/core/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatAPI struct {
	router  *chat.Router
	metrics *metrics
}

func registerChatAPI(g *echo.Group, opts *Options, m *metrics) {
	api := chatAPI{router: opts.Chat, metrics: m}

	g.POST("/chat", api.reply, rateLimitMiddleware(opts.Limiter, opts.Logger))
}

func (api *chatAPI) reply(ctx echo.Context) error {
	data := new(chatRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	reply, err := api.router.Reply(ctx.Request().Context(), data.Message)
	if err != nil {
		return err
	}
	api.metrics.observeChat(string(reply.Source))
	return ctx.JSON(http.StatusOK, reply)
}
