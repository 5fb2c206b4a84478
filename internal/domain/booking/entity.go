package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking は予約エンティティを表す
// Event は予約時点のイベントのスナップショットで、以後のイベント編集の影響を受けない
type Booking struct {
	ID            string
	UserID        int64
	EventID       string
	Event         *event.Event
	TierID        string
	TicketType    string
	Quantity      int
	TotalPrice    int
	Status        Status
	BookingDate   time.Time
	TicketCode    string
	CustomerName  string
	CustomerEmail string
	CancelledAt   *time.Time
	UpdatedAt     time.Time
}

// NewBooking は確定状態の新しい予約を作成する
func NewBooking(userID int64, ev *event.Event, tier event.PriceTier, quantity int, customerName, customerEmail string, now time.Time) *Booking {
	return &Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventID:       ev.ID,
		Event:         ev.Clone(),
		TierID:        tier.ID,
		TicketType:    tier.Name,
		Quantity:      quantity,
		TotalPrice:    tier.Price * quantity,
		Status:        StatusConfirmed,
		BookingDate:   now,
		TicketCode:    NewTicketCode(),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		UpdatedAt:     now,
	}
}

// NewTicketCode はチケットコードを生成する
func NewTicketCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "QR-" + strings.ToUpper(raw[:16])
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.UserID <= 0 {
		return ErrUserIDRequired
	}
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Cancel は予約をキャンセルする
// キャンセル済みの予約は再度キャンセルできない
func (b *Booking) Cancel(now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// IsCancelled はキャンセル済みかを返す
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsUpcoming は確定済みかつ開催前かを返す
func (b *Booking) IsUpcoming(now time.Time) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	startsAt, ok := b.startsAt(now.Location())
	return ok && startsAt.After(now)
}

// IsPast は開催日時を過ぎているかを返す（状態は問わない）
func (b *Booking) IsPast(now time.Time) bool {
	startsAt, ok := b.startsAt(now.Location())
	return ok && startsAt.Before(now)
}

func (b *Booking) startsAt(loc *time.Location) (time.Time, bool) {
	if b.Event == nil {
		return time.Time{}, false
	}
	t, err := b.Event.StartsAt(loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone は予約のディープコピーを返す
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.Event = b.Event.Clone()
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	return &c
}
