package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

type CreateBookingInput struct {
	UserID        int64
	EventID       string
	TierName      string
	Quantity      int
	CustomerName  string
	CustomerEmail string
}

// CreateBooking はチケット種別の座席を確保して予約を作成する
// 枚数、イベントの存在、種別の残数の順に検証し、失敗時は何も変更しない
func (l *Ledger) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	if input.Quantity <= 0 {
		l.countBooking("invalid_quantity")
		logger.Warn("予約を拒否しました",
			zap.String("event_id", input.EventID),
			zap.Int("quantity", input.Quantity),
			zap.Error(booking.ErrInvalidQuantity))
		return nil, booking.ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ev, err := l.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			l.countBooking("not_found")
			logger.Warn("予約を拒否しました", zap.String("event_id", input.EventID), zap.Error(err))
			return nil, err
		}
		l.countBooking("error")
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	// 予約時点のイベントをスナップショットとして残す
	snapshot := ev.Clone()
	tier, err := ev.Reserve(input.TierName, input.Quantity)
	if err != nil {
		l.countBooking("tier_unavailable")
		logger.Warn("予約を拒否しました",
			zap.String("event_id", input.EventID),
			zap.String("tier", input.TierName),
			zap.Int("quantity", input.Quantity),
			zap.Error(err))
		return nil, err
	}

	b := booking.NewBooking(input.UserID, snapshot, tier, input.Quantity, input.CustomerName, input.CustomerEmail, l.clock.Now())
	if err := b.Validate(); err != nil {
		l.countBooking("invalid")
		return nil, err
	}

	if err := l.eventRepo.Update(ctx, ev); err != nil {
		l.countBooking("error")
		return nil, fmt.Errorf("座席の確保に失敗: %w", err)
	}
	if err := l.bookingRepo.Create(ctx, b); err != nil {
		// 確保した座席を元に戻す
		if rbErr := l.eventRepo.Update(context.WithoutCancel(ctx), snapshot); rbErr != nil {
			logger.Error("座席のロールバックに失敗", zap.String("event_id", ev.ID), zap.Error(rbErr))
		}
		l.countBooking("error")
		return nil, fmt.Errorf("予約の保存に失敗: %w", err)
	}
	l.invalidate(ctx, ev.ID)

	l.countBooking("success")
	if l.metrics != nil {
		l.metrics.TicketsBooked.WithLabelValues(ev.ID, tier.Name).Add(float64(input.Quantity))
	}
	logger.Info("予約を作成しました",
		zap.String("booking_id", b.ID),
		zap.String("event_id", ev.ID),
		zap.String("tier", tier.Name),
		zap.Int("quantity", b.Quantity),
		zap.Int("total_price", b.TotalPrice))
	return b.Clone(), nil
}

// CancelBooking は予約をキャンセルし、座席をイベントと種別に戻す
// キャンセル済みの予約は ErrBookingAlreadyCancelled を返し、何も変更しない
func (l *Ledger) CancelBooking(ctx context.Context, id string) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			l.countCancellation("not_found")
			return nil, err
		}
		l.countCancellation("error")
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	if err := b.Cancel(l.clock.Now()); err != nil {
		l.countCancellation("already_cancelled")
		logger.Warn("キャンセルを拒否しました", zap.String("booking_id", id), zap.Error(err))
		return nil, err
	}

	var before *event.Event
	ev, err := l.eventRepo.GetByID(ctx, b.EventID)
	switch {
	case err == nil:
		before = ev.Clone()
		if !ev.Release(b.TierID, b.TicketType, b.Quantity) {
			logger.Warn("チケット種別が見つからないため種別の残数は戻しません",
				zap.String("booking_id", b.ID),
				zap.String("event_id", b.EventID),
				zap.String("tier", b.TicketType))
		}
		if err := l.eventRepo.Update(ctx, ev); err != nil {
			l.countCancellation("error")
			return nil, fmt.Errorf("座席の返却に失敗: %w", err)
		}
	case errors.Is(err, event.ErrEventNotFound):
		logger.Warn("イベントが削除済みのため座席は戻しません",
			zap.String("booking_id", b.ID),
			zap.String("event_id", b.EventID))
	default:
		l.countCancellation("error")
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	if err := l.bookingRepo.Update(ctx, b); err != nil {
		if before != nil {
			if rbErr := l.eventRepo.Update(context.WithoutCancel(ctx), before); rbErr != nil {
				logger.Error("座席のロールバックに失敗", zap.String("event_id", b.EventID), zap.Error(rbErr))
			}
		}
		l.countCancellation("error")
		return nil, fmt.Errorf("予約の更新に失敗: %w", err)
	}
	l.invalidate(ctx, b.EventID)

	l.countCancellation("success")
	logger.Info("予約をキャンセルしました",
		zap.String("booking_id", b.ID),
		zap.String("event_id", b.EventID),
		zap.String("tier", b.TicketType),
		zap.Int("quantity", b.Quantity))
	return b, nil
}

func (l *Ledger) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bookingRepo.GetByID(ctx, id)
}

// ListBookings は登録順に全予約を返す
func (l *Ledger) ListBookings(ctx context.Context) ([]*booking.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bookingRepo.List(ctx)
}

// GetBookingsByUserID はユーザーの全予約を状態を問わず登録順に返す
func (l *Ledger) GetBookingsByUserID(ctx context.Context, userID int64) ([]*booking.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bookingRepo.ListByUserID(ctx, userID)
}

// BookingScope はユーザー予約一覧の絞り込み
type BookingScope string

const (
	ScopeAll      BookingScope = "all"
	ScopeUpcoming BookingScope = "upcoming"
	ScopePast     BookingScope = "past"
)

// ParseBookingScope は文字列から BookingScope を返す。空文字は all
func ParseBookingScope(s string) (BookingScope, error) {
	switch BookingScope(s) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeUpcoming, ScopePast:
		return BookingScope(s), nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidBookingScope, s)
}

// GetUserBookings はユーザーの予約を開催日時で絞り込んで返す
func (l *Ledger) GetUserBookings(ctx context.Context, userID int64, scope BookingScope) ([]*booking.Booking, error) {
	bookings, err := l.GetBookingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if scope == ScopeAll || scope == "" {
		return bookings, nil
	}

	now := l.clock.Now()
	filtered := make([]*booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		switch scope {
		case ScopeUpcoming:
			if b.IsUpcoming(now) {
				filtered = append(filtered, b)
			}
		case ScopePast:
			if b.IsPast(now) {
				filtered = append(filtered, b)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidBookingScope, scope)
		}
	}
	return filtered, nil
}

// BookingSummary はユーザーの状態別予約数
type BookingSummary struct {
	Confirmed int
	Cancelled int
	Pending   int
}

func (l *Ledger) GetBookingSummary(ctx context.Context, userID int64) (*BookingSummary, error) {
	bookings, err := l.GetBookingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &BookingSummary{}
	for _, b := range bookings {
		switch b.Status {
		case booking.StatusConfirmed:
			summary.Confirmed++
		case booking.StatusCancelled:
			summary.Cancelled++
		case booking.StatusPending:
			summary.Pending++
		}
	}
	return summary, nil
}
