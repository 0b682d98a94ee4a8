package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/server/chat"
	"github.com/melodic-ai/melodic/store"
)

type messageResponse struct {
	UID       string `json:"id"`
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

func convertMessage(message *store.ChatMessage) *messageResponse {
	return &messageResponse{
		UID:       message.UID,
		SessionID: message.SessionID,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedTs: message.CreatedTs,
	}
}

// GetMessages handles GET /api/messages/:sessionId. Reads never fail the
// request: a storage error yields an empty list.
func (s *APIV1Service) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Session ID is required"})
	}

	limit := chat.DefaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid limit"})
		}
		limit = parsed
	}

	messages, _ := s.MessageService.GetMessages(ctx, sessionID, limit)
	response := make([]*messageResponse, 0, len(messages))
	for _, message := range messages {
		response = append(response, convertMessage(message))
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": response})
}

type createMessageRequest struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// CreateMessage handles POST /api/messages.
func (s *APIV1Service) CreateMessage(c echo.Context) error {
	ctx := c.Request().Context()

	request := &createMessageRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request data"})
	}

	message, err := s.MessageService.CreateMessage(ctx, &store.ChatMessage{
		SessionID: request.SessionID,
		Role:      store.Role(request.Role),
		Content:   request.Content,
	})
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, convertMessage(message))
}

// DeleteMessages handles DELETE /api/messages/:sessionId. Deleting an
// unknown session succeeds; stored context for the session is kept.
func (s *APIV1Service) DeleteMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Session ID is required"})
	}

	if err := s.MessageService.DeleteAllMessages(ctx, sessionID); err != nil {
		return c.JSON(errorStatus(err), map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
