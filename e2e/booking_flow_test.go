package e2e

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/api/handler"
)

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	server := NewTestServer(t)

	rec := server.Request(http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
}

// TestE2E_BrowseEvents は未ログインでのイベント閲覧をテスト
func TestE2E_BrowseEvents(t *testing.T) {
	server := NewTestServer(t)

	t.Run("全件", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.EventResponse](t, rec), 4)
	})

	t.Run("キーワードとカテゴリで絞り込み", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events?q=2024&category=Business", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		events := decode[[]handler.EventResponse](t, rec)
		require.Len(t, events, 1)
		assert.Equal(t, "Business Summit 2024", events[0].Title)
	})

	t.Run("注目イベント", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events/featured", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.EventResponse](t, rec), 3)
	})

	t.Run("カテゴリ一覧", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events/categories", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Technology", "Music", "Art", "Business"}, decode[[]string](t, rec))
	})

	t.Run("存在しないイベント", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events/999", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decode[api.ErrorResponse](t, rec)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.NotEmpty(t, resp.Error)
	})
}

// TestE2E_CompleteBookingJourney は予約からキャンセル、集計までの流れをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	server := NewTestServer(t)
	token := server.Login(t, "user@demo.com")
	var bookingID string

	// 1. 予約作成（General 3枚 = 897）
	t.Run("予約作成", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
			"event_id":       "1",
			"tier_name":      "General",
			"quantity":       3,
			"customer_name":  "John Doe",
			"customer_email": "user@demo.com",
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		b := decode[handler.BookingResponse](t, rec)
		bookingID = b.ID
		assert.Equal(t, int64(1), b.UserID)
		assert.Equal(t, 897, b.TotalPrice)
		assert.Equal(t, "confirmed", b.Status)
		assert.Regexp(t, `^QR-[0-9A-F]{16}$`, b.TicketCode)
	})

	// 2. 残席数が減っている
	t.Run("残席数確認", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/events/1/availability", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 347, decode[handler.AvailabilityResponse](t, rec).AvailableSeats)

		rec = server.Request(http.MethodGet, "/api/v1/events/1", nil, "")
		ev := decode[handler.EventResponse](t, rec)
		assert.Equal(t, 197, ev.PriceTiers[0].Available)
	})

	// 3. 開催前の予約として表示される
	t.Run("自分の予約一覧", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/bookings?scope=upcoming", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		bookings := decode[[]handler.BookingResponse](t, rec)
		require.Len(t, bookings, 1)
		assert.Equal(t, bookingID, bookings[0].ID)

		rec = server.Request(http.MethodGet, "/api/v1/bookings?scope=past", nil, token)
		assert.Empty(t, decode[[]handler.BookingResponse](t, rec))
	})

	// 4. チケット
	t.Run("チケット取得", func(t *testing.T) {
		rec := server.Request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s/ticket", bookingID), nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"event_title":"Tech Conference 2024"`)

		rec = server.Request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s/ticket.pdf", bookingID), nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	})

	// 5. キャンセル
	t.Run("キャンセル", func(t *testing.T) {
		rec := server.Request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID), nil, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "cancelled", decode[handler.BookingResponse](t, rec).Status)

		rec = server.Request(http.MethodGet, "/api/v1/events/1/availability", nil, "")
		assert.Equal(t, 350, decode[handler.AvailabilityResponse](t, rec).AvailableSeats)
	})

	// 6. 二重キャンセルは409
	t.Run("二重キャンセル", func(t *testing.T) {
		rec := server.Request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID), nil, token)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = server.Request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s/ticket", bookingID), nil, token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	// 7. 集計（キャンセル分は売上に含めない）
	t.Run("集計", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/stats", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decode[handler.StatsResponse](t, rec)
		assert.Equal(t, 4, stats.TotalEvents)
		assert.Equal(t, 1, stats.TotalBookings)
		assert.Equal(t, 0, stats.TotalRevenue)
		assert.Equal(t, "2024-03", stats.Month)
		assert.Equal(t, 1, stats.BookingsByStatus["cancelled"])

		rec = server.Request(http.MethodGet, "/api/v1/bookings/summary", nil, token)
		assert.JSONEq(t, `{"confirmed":0,"cancelled":1,"pending":0}`, rec.Body.String())
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(server.Metrics.BookingsTotal.WithLabelValues("success")))
}

// TestE2E_BookingErrors は予約のエラー応答をテスト
func TestE2E_BookingErrors(t *testing.T) {
	server := NewTestServer(t)
	token := server.Login(t, "user@demo.com")

	// Premium の残りを5枚にする
	for i := 0; i < 2; i++ {
		rec := server.Request(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
			"event_id": "1", "tier_name": "Premium", "quantity": 10,
			"customer_name": "John Doe", "customer_email": "user@demo.com",
		}, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
	}{
		{"残数を超える枚数", map[string]interface{}{"event_id": "1", "tier_name": "Premium", "quantity": 10}, http.StatusConflict},
		{"存在しない種別", map[string]interface{}{"event_id": "1", "tier_name": "Balcony", "quantity": 1}, http.StatusConflict},
		{"存在しないイベント", map[string]interface{}{"event_id": "999", "tier_name": "General", "quantity": 1}, http.StatusNotFound},
		{"枚数0", map[string]interface{}{"event_id": "1", "tier_name": "General", "quantity": 0}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.body["customer_name"] = "John Doe"
			tt.body["customer_email"] = "user@demo.com"
			rec := server.Request(http.MethodPost, "/api/v1/bookings", tt.body, token)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	// 失敗した予約で台帳は変わらない
	rec := server.Request(http.MethodGet, "/api/v1/events/1", nil, "")
	ev := decode[handler.EventResponse](t, rec)
	assert.Equal(t, 330, ev.AvailableSeats)
	assert.Equal(t, 5, ev.PriceTiers[2].Available)
}

// TestE2E_Authorization は認証と権限をテスト
func TestE2E_Authorization(t *testing.T) {
	server := NewTestServer(t)
	userToken := server.Login(t, "user@demo.com")
	otherToken := server.Login(t, "alice@example.com")
	adminToken := server.Login(t, "admin@demo.com")

	rec := server.Request(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"event_id": "2", "tier_name": "VIP", "quantity": 2,
		"customer_name": "John Doe", "customer_email": "user@demo.com",
	}, userToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := decode[handler.BookingResponse](t, rec).ID

	t.Run("トークンなし", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, server.Request(http.MethodGet, "/api/v1/bookings", nil, "").Code)
		assert.Equal(t, http.StatusUnauthorized, server.Request(http.MethodGet, "/api/v1/me", nil, "").Code)
	})

	t.Run("不正なトークン", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, server.Request(http.MethodGet, "/api/v1/me", nil, "garbage").Code)
	})

	t.Run("クエリパラメータのトークンでPDFを取得", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s/ticket.pdf?token=%s", bookingID, userToken)
		assert.Equal(t, http.StatusOK, server.Request(http.MethodGet, path, nil, "").Code)
	})

	t.Run("他人の予約は参照もキャンセルもできない", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/bookings/%s", bookingID)
		assert.Equal(t, http.StatusForbidden, server.Request(http.MethodGet, path, nil, otherToken).Code)
		assert.Equal(t, http.StatusForbidden, server.Request(http.MethodPost, path+"/cancel", nil, otherToken).Code)
	})

	t.Run("一般ユーザーは管理者APIを使えない", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, server.Request(http.MethodGet, "/api/v1/admin/bookings", nil, userToken).Code)
		assert.Equal(t, http.StatusForbidden, server.Request(http.MethodDelete, "/api/v1/events/1", nil, userToken).Code)
	})

	t.Run("管理者は全予約を参照できる", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/admin/bookings", nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.BookingResponse](t, rec), 1)

		rec = server.Request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s", bookingID), nil, adminToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ログイン中のユーザー", func(t *testing.T) {
		rec := server.Request(http.MethodGet, "/api/v1/me", nil, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", decode[handler.UserResponse](t, rec).Role)
	})
}

// TestE2E_AdminEventManagement は管理者によるイベント管理をテスト
func TestE2E_AdminEventManagement(t *testing.T) {
	server := NewTestServer(t)
	adminToken := server.Login(t, "admin@demo.com")
	userToken := server.Login(t, "user@demo.com")
	var eventID string

	t.Run("イベント作成", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/events", map[string]interface{}{
			"title":       "東京ドームコンサート 2024",
			"category":    "Music",
			"date":        "2024-05-03",
			"time":        "18:00",
			"location":    "東京ドーム",
			"total_seats": 100,
			"price_tiers": []map[string]interface{}{
				{"name": "S席", "price": 15000, "total": 20},
				{"name": "A席", "price": 9000, "total": 80},
			},
		}, adminToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		ev := decode[handler.EventResponse](t, rec)
		eventID = ev.ID
		assert.Equal(t, 100, ev.AvailableSeats)
		assert.Equal(t, 20, ev.PriceTiers[0].Available)
	})

	t.Run("予約後にイベントを更新しても予約のスナップショットは変わらない", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
			"event_id": eventID, "tier_name": "S席", "quantity": 2,
			"customer_name": "田中太郎", "customer_email": "tanaka@example.com",
		}, userToken)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		bookingID := decode[handler.BookingResponse](t, rec).ID

		rec = server.Request(http.MethodPatch, "/api/v1/events/"+eventID, map[string]interface{}{
			"location": "さいたまスーパーアリーナ",
		}, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "さいたまスーパーアリーナ", decode[handler.EventResponse](t, rec).Location)

		rec = server.Request(http.MethodGet, "/api/v1/bookings/"+bookingID, nil, userToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "東京ドーム", decode[handler.BookingResponse](t, rec).Event.Location)
	})

	t.Run("イベント削除", func(t *testing.T) {
		rec := server.Request(http.MethodDelete, "/api/v1/events/"+eventID, nil, adminToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = server.Request(http.MethodGet, "/api/v1/events/"+eventID, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// 予約は残る
		rec = server.Request(http.MethodGet, "/api/v1/bookings", nil, userToken)
		assert.Len(t, decode[[]handler.BookingResponse](t, rec), 1)
	})

	t.Run("不正な日付", func(t *testing.T) {
		rec := server.Request(http.MethodPost, "/api/v1/events", map[string]interface{}{
			"title": "x", "date": "2024/05/03",
		}, adminToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestE2E_ConcurrentBookings は同時予約で売り越さないことをテスト
func TestE2E_ConcurrentBookings(t *testing.T) {
	server := NewTestServer(t)
	token := server.Login(t, "user@demo.com")

	// Premium は残り25枚
	const requests = 30
	var wg sync.WaitGroup
	var created, conflicted atomic.Int32

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := server.Request(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
				"event_id": "1", "tier_name": "Premium", "quantity": 1,
				"customer_name": "John Doe", "customer_email": "user@demo.com",
			}, token)
			switch rec.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(25), created.Load())
	assert.Equal(t, int32(requests-25), conflicted.Load())

	rec := server.Request(http.MethodGet, "/api/v1/events/1", nil, "")
	ev := decode[handler.EventResponse](t, rec)
	assert.Equal(t, 325, ev.AvailableSeats)
	assert.Equal(t, 0, ev.PriceTiers[2].Available)
}
