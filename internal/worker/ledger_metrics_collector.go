package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

// StatsSource は台帳の集計を返すインターフェース
type StatsSource interface {
	Stats(ctx context.Context, month string) (*application.Stats, error)
}

// LedgerMetricsCollector は台帳の集計を定期的にゲージへ反映するワーカー
type LedgerMetricsCollector struct {
	source   StatsSource
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// DefaultCollectorInterval は収集間隔が0以下のときに使う間隔
const DefaultCollectorInterval = 15 * time.Second

// NewLedgerMetricsCollector は新しいコレクターを作成
func NewLedgerMetricsCollector(source StatsSource, m *metrics.Metrics, interval time.Duration) *LedgerMetricsCollector {
	if interval <= 0 {
		interval = DefaultCollectorInterval
	}
	return &LedgerMetricsCollector{
		source:   source,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はコレクターを開始（起動直後に1回収集する）
func (c *LedgerMetricsCollector) Start(ctx context.Context) {
	logger.Info("台帳メトリクス収集開始", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	c.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("台帳メトリクス収集停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("台帳メトリクス収集停止（シグナル受信）")
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// Stop はコレクターを停止
func (c *LedgerMetricsCollector) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// collect は集計を取得してゲージを更新
func (c *LedgerMetricsCollector) collect(ctx context.Context) {
	log := logger.Get()

	stats, err := c.source.Stats(ctx, "")
	if err != nil {
		log.Error("台帳メトリクスの収集失敗", zap.Error(err))
		return
	}

	for _, status := range []booking.Status{booking.StatusConfirmed, booking.StatusCancelled, booking.StatusPending} {
		c.metrics.ActiveBookings.WithLabelValues(string(status)).Set(float64(stats.BookingsByStatus[status]))
	}
	c.metrics.LedgerRevenue.Set(float64(stats.TotalRevenue))
	c.metrics.EventsTotal.Set(float64(stats.TotalEvents))

	log.Debug("台帳メトリクスを更新",
		zap.Int("events", stats.TotalEvents),
		zap.Int("bookings", stats.TotalBookings),
		zap.Int("revenue", stats.TotalRevenue),
	)
}
