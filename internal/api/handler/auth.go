package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
)

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(s AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: s}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@demo.com"`
	Password string `json:"password" example:"password"`
	Name     string `json:"name" example:"John Doe"`
}

type UserResponse struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"John Doe"`
	Email string `json:"email" example:"user@demo.com"`
	Role  string `json:"role" example:"user"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func toUserResponse(a actor.Actor) UserResponse {
	return UserResponse{ID: a.UserID, Name: a.Name, Email: a.Email, Role: string(a.Role)}
}

// Login godoc
// @Summary ログイン
// @Description デモ用。任意のパスワードでトークンを発行します。admin@demo.com は管理者になります
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "認証情報"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.Login(c.Request().Context(), application.LoginInput{
		Email: req.Email, Password: req.Password, Name: req.Name,
	})
	if err != nil {
		return api.HTTPErrorFromDomain(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.Actor),
	})
}

// Me godoc
// @Summary ログイン中のユーザー
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	a, err := currentActor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(a))
}
