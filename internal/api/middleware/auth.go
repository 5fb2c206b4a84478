package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/domain/actor"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// TokenParser はトークンから操作者を復元する
type TokenParser interface {
	ParseToken(token string) (actor.Actor, error)
}

// Authenticate はBearerトークンを検証して操作者をコンテキストに保存する
// ヘッダーがない場合は ?token= を使う（チケットPDFのリンク用）
func Authenticate(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				token = c.QueryParam("token")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンがありません")
			}

			a, err := parser.ParseToken(token)
			if err != nil {
				logger.Warn("トークン検証失敗",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンが無効または期限切れです")
			}

			api.SetActor(c, a)
			return next(c)
		}
	}
}

// AdminOnly は管理者以外のアクセスを拒否する
// Authenticate の後に適用すること
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, ok := api.ActorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}
			if !a.IsAdmin() {
				logger.Warn("管理者権限なし",
					zap.Int64("user_id", a.UserID),
					zap.String("path", c.Path()),
				)
				return echo.NewHTTPError(http.StatusForbidden, "管理者権限が必要です")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
