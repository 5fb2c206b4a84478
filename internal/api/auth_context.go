package api

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
)

const actorContextKey = "actor"

// SetActor は認証済みの操作者をリクエストコンテキストに保存する
func SetActor(c echo.Context, a actor.Actor) {
	c.Set(actorContextKey, a)
}

// ActorFrom は認証ミドルウェアが保存した操作者を返す
func ActorFrom(c echo.Context) (actor.Actor, bool) {
	a, ok := c.Get(actorContextKey).(actor.Actor)
	return a, ok
}
