package controller

import (
	"errors"
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-sleep/app/dto/http"
	"github.com/vibast-solutions/ms-go-sleep/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register is the nickname bootstrap: find-or-create the user, always issue
// a fresh token pair. 201 on first sight of a nickname, 200 afterwards.
func (c *AuthController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest,
			httpdto.NewErrorResponse(http.StatusBadRequest, "invalid request body"))
	}

	if strings.TrimSpace(req.Nickname) == "" {
		return ctx.JSON(http.StatusBadRequest,
			httpdto.NewErrorResponse(http.StatusBadRequest, "nickname is required"))
	}

	result, err := c.authService.Bootstrap(ctx.Request().Context(), req.Nickname)
	if err != nil {
		if errors.Is(err, service.ErrNicknameRequired) {
			return ctx.JSON(http.StatusBadRequest,
				httpdto.NewErrorResponse(http.StatusBadRequest, "nickname is required"))
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound,
				httpdto.NewErrorResponse(http.StatusNotFound, "user not found"))
		}
		logrus.WithError(err).Error("Bootstrap failed")
		return ctx.JSON(http.StatusInternalServerError,
			httpdto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}

	data := httpdto.BootstrapData{
		UserView:     httpdto.NewUserView(result.User),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}

	if result.Created {
		logrus.WithField("nickname", result.User.Nickname).Info("User registered")
		return ctx.JSON(http.StatusCreated,
			httpdto.NewResponse(http.StatusCreated, data, "User registered successfully"))
	}

	logrus.WithField("nickname", result.User.Nickname).Debug("Existing user re-issued tokens")
	return ctx.JSON(http.StatusOK,
		httpdto.NewResponse(http.StatusOK, data, "User already exists"))
}

// RefreshToken rotates the token pair when presented with the currently
// stored refresh token.
func (c *AuthController) RefreshToken(ctx echo.Context) error {
	var req httpdto.RefreshTokenRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest,
			httpdto.NewErrorResponse(http.StatusBadRequest, "invalid request body"))
	}

	if req.RefreshToken == "" {
		return ctx.JSON(http.StatusBadRequest,
			httpdto.NewErrorResponse(http.StatusBadRequest, "refreshToken is required"))
	}

	tokens, err := c.authService.Refresh(ctx.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenExpired) {
			return ctx.JSON(http.StatusUnauthorized,
				httpdto.NewErrorResponse(http.StatusUnauthorized, "invalid or expired refresh token"))
		}
		logrus.WithError(err).Error("Token refresh failed")
		return ctx.JSON(http.StatusInternalServerError,
			httpdto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}

	data := httpdto.TokenPairData{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	return ctx.JSON(http.StatusOK,
		httpdto.NewResponse(http.StatusOK, data, "token refreshed successfully"))
}

// Logout clears the stored refresh token for the authenticated user.
func (c *AuthController) Logout(ctx echo.Context) error {
	userID, ok := currentUserID(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized,
			httpdto.NewErrorResponse(http.StatusUnauthorized, "unauthorized"))
	}

	if err := c.authService.Logout(ctx.Request().Context(), userID); err != nil {
		logrus.WithError(err).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError,
			httpdto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}

	return ctx.JSON(http.StatusOK,
		httpdto.NewResponse(http.StatusOK, httpdto.EmptyData{}, "logged out successfully"))
}

// currentUserID reads the identity the auth middleware attached.
func currentUserID(ctx echo.Context) (uint64, bool) {
	userID, ok := ctx.Get("user_id").(uint64)
	return userID, ok
}
