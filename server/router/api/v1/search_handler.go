package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/server/chat"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

type searchRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// Search handles POST /api/search. Unlike chat, search error bodies use an
// "error" key and always report whether a key is missing.
func (s *APIV1Service) Search(c echo.Context) error {
	ctx := c.Request().Context()

	request := &searchRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request data", "needsApiKey": false})
	}
	if request.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Message is required", "needsApiKey": false})
	}

	result, err := s.SearchService.Search(ctx, &chat.SearchRequest{
		Message:      request.Message,
		SystemPrompt: request.SystemPrompt,
	})
	if err != nil {
		return c.JSON(errorStatus(err), map[string]any{
			"error":       err.Error(),
			"needsApiKey": apperrors.IsCode(err, apperrors.ErrCodeNotConfigured),
		})
	}
	return c.JSON(http.StatusOK, result)
}
