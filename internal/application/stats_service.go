package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

// MonthLayout は集計期間の指定形式
const MonthLayout = "2006-01"

// Stats は台帳全体の集計結果
type Stats struct {
	TotalEvents   int
	TotalBookings int
	// キャンセル済みを除いた売上
	TotalRevenue int

	// 集計対象の月（YYYY-MM）
	Window string
	// 対象月に作成された予約数（状態を問わない）
	WindowBookings int
	// 対象月に作成された予約のうちキャンセル済みを除いた売上
	WindowRevenue int

	PopularEvents    []*event.Event
	BookingsByStatus map[booking.Status]int
}

// Stats は台帳の集計を返す
// month が空の場合は現在時刻の月を対象にする
func (l *Ledger) Stats(ctx context.Context, month string) (*Stats, error) {
	start, err := l.windowStart(month)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 1, 0)

	l.mu.RLock()
	defer l.mu.RUnlock()

	events, err := l.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	bookings, err := l.bookingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}

	stats := &Stats{
		TotalEvents:   len(events),
		TotalBookings: len(bookings),
		Window:        start.Format(MonthLayout),
		PopularEvents: l.featured(events),
		BookingsByStatus: map[booking.Status]int{
			booking.StatusConfirmed: 0,
			booking.StatusCancelled: 0,
			booking.StatusPending:   0,
		},
	}
	for _, b := range bookings {
		stats.BookingsByStatus[b.Status]++
		inWindow := !b.BookingDate.Before(start) && b.BookingDate.Before(end)
		if inWindow {
			stats.WindowBookings++
		}
		if b.IsCancelled() {
			continue
		}
		stats.TotalRevenue += b.TotalPrice
		if inWindow {
			stats.WindowRevenue += b.TotalPrice
		}
	}
	return stats, nil
}

func (l *Ledger) windowStart(month string) (time.Time, error) {
	now := l.clock.Now()
	if month == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(MonthLayout, month, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidStatsWindow, month)
	}
	return t, nil
}
