package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の試行数（result: success, not_found, tier_unavailable, invalid_quantity, error）
	BookingsTotal *prometheus.CounterVec

	// 予約キャンセルの試行数（result: success, not_found, already_cancelled, error）
	CancellationsTotal *prometheus.CounterVec

	// 予約されたチケット枚数（event_id, tier）
	TicketsBooked *prometheus.CounterVec

	// 状態別の予約数（status: confirmed, cancelled, pending）
	ActiveBookings *prometheus.GaugeVec

	// キャンセル分を除いた売上合計
	LedgerRevenue prometheus.Gauge

	// 登録イベント数
	EventsTotal prometheus.Gauge

	// 残席キャッシュの参照結果（result: hit, miss, error）
	CacheRequestsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts",
			},
			[]string{"result"},
		),
		CancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_cancellations_total",
				Help: "Total number of booking cancellation attempts",
			},
			[]string{"result"},
		),
		TicketsBooked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tickets_booked_total",
				Help: "Total number of tickets booked",
			},
			[]string{"event_id", "tier"},
		),
		ActiveBookings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bookings_active",
				Help: "Current number of bookings by status",
			},
			[]string{"status"},
		),
		LedgerRevenue: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_revenue_total",
				Help: "Revenue of non-cancelled bookings",
			},
		),
		EventsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "events_total",
				Help: "Current number of events",
			},
		),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_requests_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.CancellationsTotal,
		m.TicketsBooked,
		m.ActiveBookings,
		m.LedgerRevenue,
		m.EventsTotal,
		m.CacheRequestsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
