package repository

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/RoGogDBD/salesitems/internal/models"
)

// ErrUnknownSortField возвращается ParseCriterion для неизвестного поля.
var ErrUnknownSortField = errors.New("unknown sort field")

// SortField - поле, по которому сортируется видимый список.
type SortField int

const (
	SortNone SortField = iota
	SortByPrice
	SortByDescription
)

func (f SortField) String() string {
	switch f {
	case SortByPrice:
		return "price"
	case SortByDescription:
		return "description"
	default:
		return "none"
	}
}

// Criterion - активная сортировка. Нулевое значение означает отсутствие сортировки.
type Criterion struct {
	Field     SortField
	Ascending bool
}

// NoSort сохраняет порядок, в котором объявления пришли от сервиса.
var NoSort = Criterion{}

func ByPrice(ascending bool) Criterion {
	return Criterion{Field: SortByPrice, Ascending: ascending}
}

func ByDescription(ascending bool) Criterion {
	return Criterion{Field: SortByDescription, Ascending: ascending}
}

// ParseCriterion разбирает имя поля из командной строки.
func ParseCriterion(field string, descending bool) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "", "none":
		return NoSort, nil
	case "price":
		return ByPrice(!descending), nil
	case "description", "desc":
		return ByDescription(!descending), nil
	default:
		return NoSort, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}
}

func (c Criterion) String() string {
	if c.Field == SortNone {
		return "none"
	}
	if c.Ascending {
		return c.Field.String() + " asc"
	}
	return c.Field.String() + " desc"
}

func (c Criterion) compare(a, b models.Item) int {
	var res int
	switch c.Field {
	case SortByPrice:
		res = cmp.Compare(a.Price, b.Price)
	case SortByDescription:
		res = strings.Compare(a.Description, b.Description)
	}
	if !c.Ascending {
		res = -res
	}
	return res
}

// Apply строит видимый список из raw: фильтр по цене, затем по ключевому слову,
// затем устойчивая сортировка. raw не изменяется.
// Пробельное ключевое слово не фильтрует; иначе оно ищется как есть, без обрезки пробелов.
func Apply(raw []models.Item, keyword string, maxPrice *float64, sort Criterion) []models.Item {
	needle := ""
	if strings.TrimSpace(keyword) != "" {
		needle = strings.ToLower(keyword)
	}

	out := make([]models.Item, 0, len(raw))
	for _, item := range raw {
		if maxPrice != nil && item.Price > *maxPrice {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(item.Description), needle) {
			continue
		}
		out = append(out, item)
	}

	if sort.Field != SortNone {
		slices.SortStableFunc(out, sort.compare)
	}
	return out
}
