package memory

import (
	"context"
	"sync"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

// EventRepository はイベントリポジトリのインメモリ実装
// 保存・取得の際は必ずコピーを渡し、呼び出し側と状態を共有しない
type EventRepository struct {
	mu     sync.RWMutex
	events map[string]*event.Event
	order  []string
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]*event.Event)}
}

// Create は新しいイベントを保存する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		return ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; ok {
		return ErrDuplicateID
	}
	r.events[e.ID] = e.Clone()
	r.order = append(r.order, e.ID)
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return e.Clone(), nil
}

// List は登録順にイベント一覧を取得する
func (r *EventRepository) List(ctx context.Context) ([]*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]*event.Event, 0, len(r.order))
	for _, id := range r.order {
		events = append(events, r.events[id].Clone())
	}
	return events, nil
}

// Update はイベントを置き換える
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return event.ErrEventNotFound
	}
	r.events[e.ID] = e.Clone()
	return nil
}

// Delete はイベントを削除する
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(r.events, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
