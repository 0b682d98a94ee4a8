// Package server assembles the HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/melodic-ai/melodic/internal/profile"
	"github.com/melodic-ai/melodic/server/ai"
	"github.com/melodic-ai/melodic/server/chat"
	apiv1 "github.com/melodic-ai/melodic/server/router/api/v1"
	"github.com/melodic-ai/melodic/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

// NewServer wires the stores, services, and providers into an Echo server.
// Provider selection happens here once; a missing API key only surfaces when
// the selected provider is actually called.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(echomiddleware.CORS())
	s.echoServer = echoServer

	chatProvider, err := ai.NewChatProvider(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat provider")
	}
	searchProvider, err := ai.NewSearchProvider(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search provider")
	}

	contextManager := chat.NewContextManager(store)
	messageService := chat.NewMessageService(store)
	chatService := chat.NewService(chatProvider, contextManager, messageService)
	searchService := chat.NewSearchService(searchProvider, profile.SearchModel)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, chatService, searchService, messageService, contextManager)
	apiV1Service.RegisterRoutes(echoServer)

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	return s.echoServer.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		fmt.Printf("failed to shutdown server, error: %+v\n", err)
	}

	if err := s.Store.Close(); err != nil {
		fmt.Printf("failed to close database, error: %+v\n", err)
	}

	fmt.Printf("server stopped\n")
}
