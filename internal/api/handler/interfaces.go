package handler

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

// EventServiceInterface はイベント操作のインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	UpdateEvent(ctx context.Context, id string, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	SearchEvents(ctx context.Context, query, category, date string) ([]*event.Event, error)
	FeaturedEvents(ctx context.Context) ([]*event.Event, error)
	Categories(ctx context.Context) ([]string, error)
	AvailableSeats(ctx context.Context, eventID string) (int, error)
}

// BookingServiceInterface は予約操作のインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListBookings(ctx context.Context) ([]*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID int64, scope application.BookingScope) ([]*booking.Booking, error)
	GetBookingSummary(ctx context.Context, userID int64) (*application.BookingSummary, error)
}

// StatsServiceInterface は集計のインターフェース
type StatsServiceInterface interface {
	Stats(ctx context.Context, month string) (*application.Stats, error)
}

// AuthServiceInterface はログインのインターフェース
type AuthServiceInterface interface {
	Login(ctx context.Context, input application.LoginInput) (*application.LoginResult, error)
}
