package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cropdoc/entities"
	"cropdoc/pkg/apperror"
	"cropdoc/pkg/chat/controller"
	"cropdoc/pkg/chat/service"
)

type ChatCtrl struct{ s service.ChatService }

func New(s service.ChatService) controller.ChatController { return &ChatCtrl{s: s} }

type chatReq struct {
	Messages  []entities.ChatMessage `json:"messages"`
	Language  string                 `json:"language"`
	SessionID string                 `json:"sessionId"`
}

func (h *ChatCtrl) Chat(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Messages array is required"})
	}
	reply, err := h.s.Reply(c.Request().Context(), service.ChatInput{
		Messages:  req.Messages,
		Language:  req.Language,
		SessionID: req.SessionID,
	})
	if err != nil {
		return apperror.Respond(c, err, "Chat failed. Please try again.")
	}
	return c.JSON(http.StatusOK, map[string]string{"response": reply})
}
