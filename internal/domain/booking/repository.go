package booking

import "context"

// Repository は予約リポジトリのインターフェース
// 予約は物理削除しない
type Repository interface {
	// Create は新しい予約を保存する
	Create(ctx context.Context, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// List は登録順に全予約を取得する
	List(ctx context.Context) ([]*Booking, error)

	// ListByUserID はユーザーの予約を登録順に取得する
	ListByUserID(ctx context.Context, userID int64) ([]*Booking, error)

	// Update は予約を置き換える
	Update(ctx context.Context, booking *Booking) error
}
