// Package seed は起動時に台帳へ登録するデモイベントを読み込む
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
)

//go:embed demo.yaml
var demoYAML []byte

var ErrInvalidSeed = errors.New("デモデータの形式が不正です")

type file struct {
	Events []eventDoc `yaml:"events"`
}

type eventDoc struct {
	ID             string    `yaml:"id"`
	Title          string    `yaml:"title"`
	Description    string    `yaml:"description"`
	Category       string    `yaml:"category"`
	Date           string    `yaml:"date"`
	Time           string    `yaml:"time"`
	Location       string    `yaml:"location"`
	ImageURL       string    `yaml:"image_url"`
	Organizer      string    `yaml:"organizer"`
	Featured       bool      `yaml:"featured"`
	TotalSeats     int       `yaml:"total_seats"`
	AvailableSeats *int      `yaml:"available_seats"`
	PriceTiers     []tierDoc `yaml:"price_tiers"`
}

type tierDoc struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Price       int    `yaml:"price"`
	Description string `yaml:"description"`
	Available   *int   `yaml:"available"`
	Total       int    `yaml:"total"`
}

// Demo は組み込みのデモイベントを返す
func Demo() ([]*event.Event, error) {
	return Parse(demoYAML)
}

// LoadFile はYAMLファイルからイベントを読み込む
func LoadFile(path string) ([]*event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("デモデータの読み込みに失敗: %w", err)
	}
	return Parse(data)
}

// Parse はYAMLをイベントに変換する
// 残席数を省略した場合は総数と同じにする
func Parse(data []byte) ([]*event.Event, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	events := make([]*event.Event, 0, len(f.Events))
	for i, d := range f.Events {
		if d.Title == "" {
			return nil, fmt.Errorf("%w: %d件目のタイトルがありません", ErrInvalidSeed, i+1)
		}
		events = append(events, d.toEvent())
	}
	return events, nil
}

func (d eventDoc) toEvent() *event.Event {
	e := &event.Event{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Date:           d.Date,
		Time:           d.Time,
		Location:       d.Location,
		ImageURL:       d.ImageURL,
		Organizer:      d.Organizer,
		Featured:       d.Featured,
		TotalSeats:     d.TotalSeats,
		AvailableSeats: d.TotalSeats,
		PriceTiers:     make([]event.PriceTier, 0, len(d.PriceTiers)),
	}
	if d.AvailableSeats != nil {
		e.AvailableSeats = *d.AvailableSeats
	}
	for _, t := range d.PriceTiers {
		tier := event.PriceTier{
			ID: t.ID, Name: t.Name, Price: t.Price, Description: t.Description,
			Available: t.Total, Total: t.Total,
		}
		if t.Available != nil {
			tier.Available = *t.Available
		}
		e.PriceTiers = append(e.PriceTiers, tier)
	}
	return e
}
