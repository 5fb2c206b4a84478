package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

const defaultFeaturedLimit = 3

// AvailabilityCache はイベントの残席数キャッシュ
type AvailabilityCache interface {
	GetAvailableSeats(ctx context.Context, eventID string) (int, error)
	SetAvailableSeats(ctx context.Context, eventID string, seats int) error
	Invalidate(ctx context.Context, eventID string) error
}

// Ledger はイベントと予約を一元管理する台帳
// 公開メソッドはすべてアトミックに実行される。更新系は書き込みロック、参照系は読み込みロックを取る
type Ledger struct {
	mu            sync.RWMutex
	eventRepo     event.Repository
	bookingRepo   booking.Repository
	clock         clock.Clock
	cache         AvailabilityCache
	metrics       *metrics.Metrics
	featuredLimit int
	newID         func() string
}

// LedgerOption はLedgerの設定を変更する
type LedgerOption func(*Ledger)

// WithClock は時刻の取得元を差し替える
func WithClock(c clock.Clock) LedgerOption {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithAvailabilityCache は残席数キャッシュを設定する
func WithAvailabilityCache(c AvailabilityCache) LedgerOption {
	return func(l *Ledger) {
		l.cache = c
	}
}

// WithMetrics は台帳操作のメトリクス記録先を設定する
func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithFeaturedLimit は注目イベントの最大件数を設定する
func WithFeaturedLimit(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.featuredLimit = n
		}
	}
}

// WithIDGenerator はイベントとチケット種別のID採番を差し替える
func WithIDGenerator(fn func() string) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// NewLedger は新しいLedgerを作成する
func NewLedger(er event.Repository, br booking.Repository, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		eventRepo:     er,
		bookingRepo:   br,
		clock:         clock.NewSystem(),
		featuredLimit: defaultFeaturedLimit,
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now は台帳が使う現在時刻を返す
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// invalidate はイベントの残席キャッシュを破棄する
// キャッシュの失敗は台帳の結果に影響させない
func (l *Ledger) invalidate(ctx context.Context, eventID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (l *Ledger) countBooking(result string) {
	if l.metrics != nil {
		l.metrics.BookingsTotal.WithLabelValues(result).Inc()
	}
}

func (l *Ledger) countCancellation(result string) {
	if l.metrics != nil {
		l.metrics.CancellationsTotal.WithLabelValues(result).Inc()
	}
}

func (l *Ledger) countCache(result string) {
	if l.metrics != nil {
		l.metrics.CacheRequestsTotal.WithLabelValues(result).Inc()
	}
}
