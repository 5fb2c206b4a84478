package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	redisinfra "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// PriceTierInput はチケット種別の入力。Available が nil の場合は Total と同じ値になる
type PriceTierInput struct {
	ID          string
	Name        string
	Price       int
	Description string
	Available   *int
	Total       int
}

type CreateEventInput struct {
	Title       string
	Description string
	Category    string
	Date        string
	Time        string
	Location    string
	ImageURL    string
	Organizer   string
	Featured    bool
	TotalSeats  int
	// nil の場合は TotalSeats と同じ値になる
	AvailableSeats *int
	PriceTiers     []PriceTierInput
}

// CreateEvent はイベントを登録する
// 入力値の検証は行わない
func (l *Ledger) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	now := l.clock.Now()
	e := &event.Event{
		ID:             l.newID(),
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Date:           input.Date,
		Time:           input.Time,
		Location:       input.Location,
		ImageURL:       input.ImageURL,
		Organizer:      input.Organizer,
		Featured:       input.Featured,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		PriceTiers:     l.buildTiers(input.PriceTiers),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.AvailableSeats != nil {
		e.AvailableSeats = *input.AvailableSeats
	}
	if e.ImageURL == "" {
		e.ImageURL = event.DefaultImageURL
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	logger.Info("イベントを作成しました", zap.String("event_id", e.ID), zap.String("title", e.Title))
	return e, nil
}

// UpdateEventInput は更新するフィールドだけを指定する。nil のフィールドは変更しない
type UpdateEventInput struct {
	Title          *string
	Description    *string
	Category       *string
	Date           *string
	Time           *string
	Location       *string
	ImageURL       *string
	Organizer      *string
	Featured       *bool
	TotalSeats     *int
	AvailableSeats *int
	// nil の場合は既存の種別を維持し、空スライスの場合は全種別を削除する
	PriceTiers []PriceTierInput
}

// UpdateEvent は指定したフィールドだけを上書きする
// 既存予約のスナップショットには影響しない
func (l *Ledger) UpdateEvent(ctx context.Context, id string, input UpdateEventInput) (*event.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&e.Title, input.Title)
	setString(&e.Description, input.Description)
	setString(&e.Category, input.Category)
	setString(&e.Date, input.Date)
	setString(&e.Time, input.Time)
	setString(&e.Location, input.Location)
	setString(&e.ImageURL, input.ImageURL)
	setString(&e.Organizer, input.Organizer)
	if input.Featured != nil {
		e.Featured = *input.Featured
	}
	if input.TotalSeats != nil {
		e.TotalSeats = *input.TotalSeats
	}
	if input.AvailableSeats != nil {
		e.AvailableSeats = *input.AvailableSeats
	}
	if input.PriceTiers != nil {
		e.PriceTiers = l.buildTiers(input.PriceTiers)
	}
	e.UpdatedAt = l.clock.Now()

	if err := l.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	l.invalidate(ctx, e.ID)
	logger.Info("イベントを更新しました", zap.String("event_id", e.ID))
	return e, nil
}

// DeleteEvent はイベントを削除する
// 既存予約はスナップショットを保持したまま残る
func (l *Ledger) DeleteEvent(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	l.invalidate(ctx, id)
	logger.Info("イベントを削除しました", zap.String("event_id", id))
	return nil
}

func (l *Ledger) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.eventRepo.GetByID(ctx, id)
}

// ListEvents は登録順にイベント一覧を返す
func (l *Ledger) ListEvents(ctx context.Context) ([]*event.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.eventRepo.List(ctx)
}

// SearchEvents はキーワード、カテゴリ、日付で絞り込む。空の条件は無視される
func (l *Ledger) SearchEvents(ctx context.Context, query, category, date string) ([]*event.Event, error) {
	events, err := l.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*event.Event, 0, len(events))
	for _, e := range events {
		if e.Matches(query, category, date) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// FeaturedEvents は注目イベントを登録順に最大 featuredLimit 件返す
func (l *Ledger) FeaturedEvents(ctx context.Context) ([]*event.Event, error) {
	events, err := l.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return l.featured(events), nil
}

func (l *Ledger) featured(events []*event.Event) []*event.Event {
	featured := make([]*event.Event, 0, l.featuredLimit)
	for _, e := range events {
		if len(featured) == l.featuredLimit {
			break
		}
		if e.Featured {
			featured = append(featured, e)
		}
	}
	return featured
}

// Categories は登録済みイベントのカテゴリを重複なく出現順に返す
func (l *Ledger) Categories(ctx context.Context) ([]string, error) {
	events, err := l.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(events))
	categories := make([]string, 0, len(events))
	for _, e := range events {
		if e.Category == "" {
			continue
		}
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		categories = append(categories, e.Category)
	}
	return categories, nil
}

// AvailableSeats はイベントの残席数を返す
// キャッシュが設定されていればキャッシュを優先し、ミス時は台帳の値を保存する
func (l *Ledger) AvailableSeats(ctx context.Context, eventID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.cache != nil {
		seats, err := l.cache.GetAvailableSeats(ctx, eventID)
		if err == nil {
			l.countCache("hit")
			logger.Debug("キャッシュヒット", zap.String("event_id", eventID), zap.Int("seats", seats))
			return seats, nil
		}
		if errors.Is(err, redisinfra.ErrCacheMiss) {
			l.countCache("miss")
		} else {
			l.countCache("error")
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	e, err := l.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}

	// 読み込みロック中に保存し、更新系の無効化と順序を保つ
	if l.cache != nil {
		if cacheErr := l.cache.SetAvailableSeats(ctx, eventID, e.AvailableSeats); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return e.AvailableSeats, nil
}

// Seed はIDを保持したままイベントを登録する（起動時のデモデータ投入用）
func (l *Ledger) Seed(ctx context.Context, events []*event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	for _, e := range events {
		e = e.Clone()
		if e.ID == "" {
			e.ID = l.newID()
		}
		for i := range e.PriceTiers {
			if e.PriceTiers[i].ID == "" {
				e.PriceTiers[i].ID = l.newID()
			}
		}
		if e.ImageURL == "" {
			e.ImageURL = event.DefaultImageURL
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
		if err := l.eventRepo.Create(ctx, e); err != nil {
			return fmt.Errorf("デモデータの登録に失敗(%s): %w", e.ID, err)
		}
		// 共有キャッシュに前のプロセスの残席が残っている場合がある
		l.invalidate(ctx, e.ID)
	}
	logger.Info("デモデータを登録しました", zap.Int("events", len(events)))
	return nil
}

func (l *Ledger) buildTiers(inputs []PriceTierInput) []event.PriceTier {
	tiers := make([]event.PriceTier, 0, len(inputs))
	for _, in := range inputs {
		t := event.PriceTier{
			ID:          in.ID,
			Name:        in.Name,
			Price:       in.Price,
			Description: in.Description,
			Available:   in.Total,
			Total:       in.Total,
		}
		if t.ID == "" {
			t.ID = l.newID()
		}
		if in.Available != nil {
			t.Available = *in.Available
		}
		tiers = append(tiers, t)
	}
	return tiers
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
