package booking

import (
	"errors"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrUserIDRequired          = errors.New("ユーザーIDは必須です")
	ErrEventIDRequired         = errors.New("イベントIDは必須です")

	// ErrInvalidQuantity はイベント側の確保処理と同じ値を使う
	ErrInvalidQuantity = event.ErrInvalidQuantity
)
