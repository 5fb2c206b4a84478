package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
)

var (
	ErrIDRequired  = errors.New("IDは必須です")
	ErrDuplicateID = errors.New("同じIDのデータが既に存在します")
)

// BookingRepository は予約リポジトリのインメモリ実装
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*booking.Booking
	order    []string
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[string]*booking.Booking)}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID == "" {
		return ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; ok {
		return ErrDuplicateID
	}
	r.bookings[b.ID] = b.Clone()
	r.order = append(r.order, b.ID)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b.Clone(), nil
}

func (r *BookingRepository) List(ctx context.Context) ([]*booking.Booking, error) {
	return r.filter(ctx, func(*booking.Booking) bool { return true })
}

func (r *BookingRepository) ListByUserID(ctx context.Context, userID int64) ([]*booking.Booking, error) {
	return r.filter(ctx, func(b *booking.Booking) bool { return b.UserID == userID })
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) filter(ctx context.Context, keep func(*booking.Booking) bool) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*booking.Booking, 0)
	for _, id := range r.order {
		if b := r.bookings[id]; keep(b) {
			result = append(result, b.Clone())
		}
	}
	return result, nil
}
