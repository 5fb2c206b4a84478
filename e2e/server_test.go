package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-booking/internal/api/router"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-booking/internal/seed"
)

// デモイベントがすべて開催前になる時刻
var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Ledger  *application.Ledger
	Clock   *clock.Fixed
	Metrics *metrics.Metrics
}

// NewTestServer はデモデータ投入済みのインメモリ台帳でサーバーを作成
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	clk := clock.NewFixed(testNow)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	ledger := application.NewLedger(
		memory.NewEventRepository(),
		memory.NewBookingRepository(),
		application.WithClock(clk),
		application.WithMetrics(m),
	)

	events, err := seed.Demo()
	require.NoError(t, err)
	require.NoError(t, ledger.Seed(context.Background(), events))

	authService := application.NewAuthService("e2e-secret", time.Hour, clk)

	e := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(clk),
		Auth:    handler.NewAuthHandler(authService),
		Event:   handler.NewEventHandler(ledger),
		Booking: handler.NewBookingHandler(ledger),
		Stats:   handler.NewStatsHandler(ledger),
	}, router.Options{
		Tokens:  authService,
		Metrics: m,
	})

	return &TestServer{Echo: e, Ledger: ledger, Clock: clk, Metrics: m}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// Login はログインしてトークンを返す
func (s *TestServer) Login(t *testing.T, email string) string {
	t.Helper()
	rec := s.Request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
