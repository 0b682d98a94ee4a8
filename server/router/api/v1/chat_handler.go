package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/server/ai"
	"github.com/melodic-ai/melodic/server/chat"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

// useServerKey is the sentinel apiKey value that selects the server-held
// credential. Clients in the trusted deployment path always send it; a
// literal key is the legacy bring-your-own-key mode.
const useServerKey = "use_env"

type chatRequest struct {
	Message             string              `json:"message"`
	APIKey              string              `json:"apiKey"`
	Model               string              `json:"model"`
	SessionID           string              `json:"sessionId,omitempty"`
	ConversationHistory []chat.HistoryEntry `json:"conversationHistory,omitempty"`
}

type chatResponse struct {
	*ai.Completion
	SessionID string `json:"sessionId"`
}

// Chat handles POST /api/chat.
func (s *APIV1Service) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	request := &chatRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request data"})
	}
	if request.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Message is required"})
	}
	if request.APIKey == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "API key is required"})
	}

	chatService := s.ChatService
	if request.APIKey != useServerKey {
		// Legacy mode: the client supplies its own OpenAI key per request.
		provider := ai.NewOpenAIProvider(request.APIKey, s.Profile.OpenAIBaseURL)
		chatService = chat.NewService(provider, s.ContextManager, s.MessageService)
	}

	result, err := chatService.Chat(ctx, &chat.ChatRequest{
		Message:             request.Message,
		Model:               request.Model,
		SessionID:           request.SessionID,
		ConversationHistory: request.ConversationHistory,
	})
	if err != nil {
		body := map[string]any{"message": err.Error()}
		if apperrors.IsCode(err, apperrors.ErrCodeNotConfigured) {
			body["needsApiKey"] = true
		}
		return c.JSON(errorStatus(err), body)
	}

	return c.JSON(http.StatusOK, &chatResponse{
		Completion: result.Completion,
		SessionID:  result.SessionID,
	})
}
