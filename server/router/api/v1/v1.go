// Package v1 exposes the JSON-over-HTTP API surface.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/internal/profile"
	"github.com/melodic-ai/melodic/server/chat"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
	"github.com/melodic-ai/melodic/server/middleware"
	"github.com/melodic-ai/melodic/store"
)

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	ChatService    *chat.Service
	SearchService  *chat.SearchService
	MessageService *chat.MessageService
	ContextManager *chat.ContextManager

	rateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service with its collaborators.
func NewAPIV1Service(
	profile *profile.Profile,
	store *store.Store,
	chatService *chat.Service,
	searchService *chat.SearchService,
	messageService *chat.MessageService,
	contextManager *chat.ContextManager,
) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		ChatService:    chatService,
		SearchService:  searchService,
		MessageService: messageService,
		ContextManager: contextManager,
		rateLimiter:    middleware.NewRateLimiter(),
	}
}

// RegisterRoutes registers all API routes on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	apiGroup := echoServer.Group("/api")

	rateLimited := s.rateLimiter.Middleware()
	apiGroup.POST("/chat", s.Chat, rateLimited)
	apiGroup.POST("/search", s.Search, rateLimited, s.requireSignIn)

	apiGroup.GET("/messages/:sessionId", s.GetMessages)
	apiGroup.POST("/messages", s.CreateMessage)
	apiGroup.DELETE("/messages/:sessionId", s.DeleteMessages)

	apiGroup.POST("/auth/signup", s.SignUp)
	apiGroup.POST("/auth/login", s.LogIn)

	apiGroup.GET("/metrics", s.GetMetrics, s.requireSignIn)
}

// errorStatus maps the internal error taxonomy onto HTTP status codes.
// Upstream and configuration failures both surface as 500 with a message
// body; configuration failures additionally flag needsApiKey so the client
// can prompt for one.
func errorStatus(err error) int {
	switch apperrors.GetCodeFromError(err, apperrors.ErrCodeUpstreamFailed) {
	case apperrors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
