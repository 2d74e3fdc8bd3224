package repository

import (
	"slices"

	"github.com/RoGogDBD/salesitems/internal/models"
)

// State - снимок наблюдаемого состояния репозитория.
type State struct {
	// Items - видимый список после фильтрации и сортировки.
	Items []models.Item
	// RawItems - список из последней успешной загрузки.
	RawItems       []models.Item
	KeywordFilter  string
	MaxPriceFilter *float64
	Sort           Criterion
	IsLoading      bool
	// ErrorMessage пуст, если ошибки нет.
	ErrorMessage string
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	s.RawItems = slices.Clone(s.RawItems)
	if s.MaxPriceFilter != nil {
		v := *s.MaxPriceFilter
		s.MaxPriceFilter = &v
	}
	return s
}

// Listener получает новый снимок после каждого изменения состояния.
type Listener func(State)
