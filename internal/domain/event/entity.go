package event

import (
	"fmt"
	"strings"
	"time"
)

// DefaultImageURL は画像未指定のイベントに使うプレースホルダー画像
const DefaultImageURL = "https://images.pexels.com/photos/2774556/pexels-photo-2774556.jpeg?auto=compress&cs=tinysrgb&w=800"

// 日付・時刻の文字列フォーマット
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// PriceTier はイベント内のチケット種別を表す
type PriceTier struct {
	ID          string
	Name        string
	Price       int
	Description string
	Available   int
	Total       int
}

// Event はイベントエンティティを表す
type Event struct {
	ID             string
	Title          string
	Description    string
	Category       string
	Date           string // YYYY-MM-DD
	Time           string // HH:MM
	Location       string
	ImageURL       string
	Organizer      string
	Featured       bool
	TotalSeats     int
	AvailableSeats int
	PriceTiers     []PriceTier
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone はイベントのディープコピーを返す
// 予約のスナップショットやリポジトリの返却値に使う
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	if e.PriceTiers != nil {
		c.PriceTiers = make([]PriceTier, len(e.PriceTiers))
		copy(c.PriceTiers, e.PriceTiers)
	}
	return &c
}

// TierByID はIDからチケット種別を返す
func (e *Event) TierByID(id string) *PriceTier {
	if id == "" {
		return nil
	}
	for i := range e.PriceTiers {
		if e.PriceTiers[i].ID == id {
			return &e.PriceTiers[i]
		}
	}
	return nil
}

// TierByName は名前からチケット種別を返す
func (e *Event) TierByName(name string) *PriceTier {
	for i := range e.PriceTiers {
		if e.PriceTiers[i].Name == name {
			return &e.PriceTiers[i]
		}
	}
	return nil
}

// Reserve は指定種別の座席を quantity 分確保する
// 失敗時はイベントを一切変更しない
func (e *Event) Reserve(tierName string, quantity int) (PriceTier, error) {
	if quantity <= 0 {
		return PriceTier{}, ErrInvalidQuantity
	}
	tier := e.TierByName(tierName)
	if tier == nil {
		return PriceTier{}, fmt.Errorf("%w: %s", ErrTierUnavailable, tierName)
	}
	if tier.Available < quantity {
		return PriceTier{}, fmt.Errorf("%w: 残り%d枚", ErrTierUnavailable, tier.Available)
	}
	if e.AvailableSeats < quantity {
		return PriceTier{}, fmt.Errorf("%w: イベントの残席は%d席です", ErrTierUnavailable, e.AvailableSeats)
	}
	tier.Available -= quantity
	e.AvailableSeats -= quantity
	return *tier, nil
}

// Release は確保済みの座席を戻す
// 種別はIDで探し、見つからなければ名前で探す。どちらもなければ種別側は戻さない
// 戻り値は種別側の在庫を戻せたかどうか
func (e *Event) Release(tierID, tierName string, quantity int) bool {
	if quantity <= 0 {
		return false
	}
	e.AvailableSeats = clamp(e.AvailableSeats+quantity, e.TotalSeats)

	tier := e.TierByID(tierID)
	if tier == nil {
		tier = e.TierByName(tierName)
	}
	if tier == nil {
		return false
	}
	tier.Available = clamp(tier.Available+quantity, tier.Total)
	return true
}

// Matches は検索条件に一致するかを返す
// query はタイトルまたは説明の部分一致（大文字小文字を区別しない）、category と date は完全一致
func (e *Event) Matches(query, category, date string) bool {
	if category != "" && e.Category != category {
		return false
	}
	if date != "" && e.Date != date {
		return false
	}
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q)
}

// StartsAt はイベントの開始日時を返す
// 時刻が空の場合はその日の0時とみなす
func (e *Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if e.Time == "" {
		t, err := time.ParseInLocation(DateLayout, e.Date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidEventDate, e.Date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrInvalidEventDate, e.Date, e.Time)
	}
	return t, nil
}

// TierCapacity は全種別の残数合計を返す
func (e *Event) TierCapacity() int {
	var sum int
	for _, t := range e.PriceTiers {
		sum += t.Available
	}
	return sum
}

func clamp(v, max int) int {
	if v > max {
		return max
	}
	return v
}
