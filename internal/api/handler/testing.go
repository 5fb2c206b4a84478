package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

// WithTestActor は認証済みの操作者をコンテキストに設定する（テスト用）
func WithTestActor(c echo.Context, userID int64, role actor.Role) echo.Context {
	api.SetActor(c, actor.Actor{UserID: userID, Email: "user@demo.com", Role: role})
	return c
}
