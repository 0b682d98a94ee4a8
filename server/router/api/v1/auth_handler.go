package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/server/auth"
	"github.com/melodic-ai/melodic/store"
)

type signRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signResponse struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
}

// SignUp handles POST /api/auth/signup.
func (s *APIV1Service) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	request := &signRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request data"})
	}
	if request.Username == "" || request.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Username and password are required"})
	}

	existing, err := s.Store.GetUserByUsername(ctx, request.Username)
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"message": err.Error()})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Username is already taken"})
	}

	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to hash password"})
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		Username:     request.Username,
		PasswordHash: passwordHash,
		CreatedTs:    time.Now().Unix(),
	})
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"message": err.Error()})
	}
	return s.issueToken(c, user, http.StatusCreated)
}

// LogIn handles POST /api/auth/login.
func (s *APIV1Service) LogIn(c echo.Context) error {
	ctx := c.Request().Context()

	request := &signRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request data"})
	}

	user, err := s.Store.GetUserByUsername(ctx, request.Username)
	if err != nil {
		return c.JSON(errorStatus(err), map[string]string{"message": err.Error()})
	}
	if user == nil || !auth.CheckPassword(request.Password, user.PasswordHash) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Incorrect username or password"})
	}
	return s.issueToken(c, user, http.StatusOK)
}

func (s *APIV1Service) issueToken(c echo.Context, user *store.User, status int) error {
	expiresAt := time.Now().Add(auth.AccessTokenDuration)
	token, err := auth.GenerateAccessToken(user.Username, user.ID, expiresAt, []byte(s.Profile.Secret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to generate access token"})
	}
	return c.JSON(status, &signResponse{AccessToken: token, Username: user.Username})
}

// requireSignIn verifies the bearer token when an instance secret is
// configured. Instances without a secret run open.
func (s *APIV1Service) requireSignIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.Profile.Secret == "" {
			return next(c)
		}

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "Sign-in required", "needsApiKey": false})
		}
		claims, err := auth.ParseAccessToken(token, []byte(s.Profile.Secret))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "Invalid access token", "needsApiKey": false})
		}
		c.Set("username", claims.Name)
		return next(c)
	}
}
