package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

// Handlers はルーティングに必要なハンドラー一式
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Event   *handler.EventHandler
	Booking *handler.BookingHandler
	Stats   *handler.StatsHandler
}

// Options はルーターの設定
type Options struct {
	Tokens          middleware.TokenParser
	Metrics         *metrics.Metrics
	MetricsUser     string
	MetricsPassword string
}

// New はミドルウェアとルートを設定したEchoインスタンスを作成する
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e)
	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics))
	}

	e.GET("/health", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()),
		middleware.MetricsBasicAuth(opts.MetricsUser, opts.MetricsPassword))

	authn := middleware.Authenticate(opts.Tokens)
	adminOnly := middleware.AdminOnly()

	v1 := e.Group("/api/v1")

	// 認証
	v1.POST("/auth/login", h.Auth.Login)
	v1.GET("/me", h.Auth.Me, authn)

	// イベント
	v1.GET("/events", h.Event.List)
	v1.GET("/events/featured", h.Event.Featured)
	v1.GET("/events/categories", h.Event.Categories)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.GET("/events/:id/availability", h.Event.Availability)
	v1.POST("/events", h.Event.Create, authn, adminOnly)
	v1.PATCH("/events/:id", h.Event.Update, authn, adminOnly)
	v1.DELETE("/events/:id", h.Event.Delete, authn, adminOnly)

	// 予約
	bookings := v1.Group("/bookings", authn)
	bookings.POST("", h.Booking.Create)
	bookings.GET("", h.Booking.ListMine)
	bookings.GET("/summary", h.Booking.Summary)
	bookings.GET("/:id", h.Booking.GetByID)
	bookings.POST("/:id/cancel", h.Booking.Cancel)
	bookings.GET("/:id/ticket", h.Booking.Ticket)
	bookings.GET("/:id/ticket.pdf", h.Booking.TicketPDF)

	// 管理者
	v1.GET("/admin/bookings", h.Booking.ListAll, authn, adminOnly)

	// 集計
	v1.GET("/stats", h.Stats.Get)

	return e
}
