package application

import "errors"

var (
	ErrInvalidStatsWindow  = errors.New("集計期間はYYYY-MM形式で指定してください")
	ErrInvalidBookingScope = errors.New("scopeはall, upcoming, pastのいずれかです")
	ErrInvalidCredentials  = errors.New("メールアドレスは必須です")
	ErrInvalidToken        = errors.New("トークンが無効です")
)
