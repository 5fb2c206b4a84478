package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = HTTPErrorFromDomain(err)
	}

	code := he.Code
	message, ok := he.Message.(string)
	if !ok {
		message = http.StatusText(code)
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// HTTPErrorFromDomain は台帳のエラーをHTTPステータスに対応付ける
func HTTPErrorFromDomain(err error) *echo.HTTPError {
	var code int
	switch {
	case errors.Is(err, event.ErrEventNotFound), errors.Is(err, booking.ErrBookingNotFound):
		code = http.StatusNotFound
	case errors.Is(err, event.ErrTierUnavailable), errors.Is(err, booking.ErrBookingAlreadyCancelled):
		code = http.StatusConflict
	case errors.Is(err, booking.ErrInvalidQuantity),
		errors.Is(err, booking.ErrUserIDRequired),
		errors.Is(err, booking.ErrEventIDRequired),
		errors.Is(err, application.ErrInvalidStatsWindow),
		errors.Is(err, application.ErrInvalidBookingScope),
		errors.Is(err, application.ErrInvalidCredentials):
		code = http.StatusBadRequest
	case errors.Is(err, application.ErrInvalidToken):
		code = http.StatusUnauthorized
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}
