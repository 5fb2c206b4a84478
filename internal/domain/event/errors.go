package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound    = errors.New("イベントが見つかりません")
	ErrTierUnavailable  = errors.New("指定のチケット種別は予約できません")
	ErrInvalidQuantity  = errors.New("枚数は1以上の整数である必要があります")
	ErrInvalidEventDate = errors.New("イベントの日時の形式が不正です")
)
