package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-booking/internal/clock"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/memory"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// === Mock implementations ===

// MockEventRepository はevent.Repositoryのモック
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event).Clone(), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context) ([]*event.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Update(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBookingRepository はbooking.Repositoryのモック
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking).Clone(), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]*booking.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUserID(ctx context.Context, userID int64) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// MockAvailabilityCache はAvailabilityCacheのモック
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) GetAvailableSeats(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockAvailabilityCache) SetAvailableSeats(ctx context.Context, eventID string, seats int) error {
	args := m.Called(ctx, eventID, seats)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// newSeededMockCache はデモデータ投入時の無効化を受け付けるモックを作成する
func newSeededMockCache() *MockAvailabilityCache {
	cache := new(MockAvailabilityCache)
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
	return cache
}

// === Fixtures ===

// demoEvents はテスト用の4イベント
func demoEvents() []*event.Event {
	return []*event.Event{
		{
			ID: "1", Title: "Tech Conference 2024", Description: "Join industry leaders for cutting-edge technology discussions",
			Category: "Technology", Date: "2024-03-15", Time: "09:00", Location: "San Francisco Convention Center",
			Organizer: "Tech Events Inc.", Featured: true, TotalSeats: 500, AvailableSeats: 350,
			PriceTiers: []event.PriceTier{
				{ID: "1", Name: "General", Price: 299, Available: 200, Total: 300},
				{ID: "2", Name: "VIP", Price: 599, Available: 50, Total: 100},
				{ID: "3", Name: "Premium", Price: 899, Available: 25, Total: 100},
			},
		},
		{
			ID: "2", Title: "Music Festival Summer", Description: "Three days of amazing music",
			Category: "Music", Date: "2024-04-20", Time: "15:00", Location: "Central Park, New York",
			Organizer: "Music Events Co.", Featured: true, TotalSeats: 1000, AvailableSeats: 750,
			PriceTiers: []event.PriceTier{
				{ID: "4", Name: "General", Price: 149, Available: 600, Total: 800},
				{ID: "5", Name: "VIP", Price: 299, Available: 150, Total: 200},
			},
		},
		{
			ID: "3", Title: "Art Gallery Opening", Description: "Exclusive contemporary art exhibition",
			Category: "Art", Date: "2024-03-25", Time: "18:00", Location: "Modern Art Museum, Chicago",
			Organizer: "Art Collective", Featured: false, TotalSeats: 150, AvailableSeats: 100,
			PriceTiers: []event.PriceTier{
				{ID: "6", Name: "Standard", Price: 75, Available: 100, Total: 150},
			},
		},
		{
			ID: "4", Title: "Business Summit 2024", Description: "Connect with entrepreneurs and investors",
			Category: "Business", Date: "2024-04-10", Time: "08:30", Location: "Business Center, Los Angeles",
			Organizer: "Business Leaders Inc.", Featured: true, TotalSeats: 300, AvailableSeats: 200,
			PriceTiers: []event.PriceTier{
				{ID: "7", Name: "Professional", Price: 399, Available: 150, Total: 200},
				{ID: "8", Name: "Executive", Price: 799, Available: 50, Total: 100},
			},
		},
	}
}

// sequentialIDs は "id-1", "id-2", ... を順に返す
func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// setupTestLedger はデモデータ投入済みのインメモリ台帳を作成する
func setupTestLedger(t *testing.T, opts ...LedgerOption) (*Ledger, *clock.Fixed) {
	t.Helper()
	clk := clock.NewFixed(testNow)
	base := []LedgerOption{WithClock(clk), WithIDGenerator(sequentialIDs())}
	l := NewLedger(memory.NewEventRepository(), memory.NewBookingRepository(), append(base, opts...)...)
	require.NoError(t, l.Seed(context.Background(), demoEvents()))
	return l, clk
}

func bookGeneral(t *testing.T, l *Ledger, userID int64, quantity int) *booking.Booking {
	t.Helper()
	b, err := l.CreateBooking(context.Background(), CreateBookingInput{
		UserID:        userID,
		EventID:       "1",
		TierName:      "General",
		Quantity:      quantity,
		CustomerName:  "John Doe",
		CustomerEmail: "user@demo.com",
	})
	require.NoError(t, err)
	return b
}
