package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/RoGogDBD/salesitems/internal/client"
	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/RoGogDBD/salesitems/internal/validation"
)

const unknownError = "Unknown error"

// Pending разрешается ровно одним значением: ошибкой вызова или nil
// после того, как состояние репозитория обновлено.
type Pending <-chan error

// Wait блокирует до завершения операции.
func (p Pending) Wait() error {
	return <-p
}

type subscriber struct {
	id int
	fn Listener
}

// Repository хранит список объявлений, критерии фильтрации и сортировки,
// состояние загрузки и последнюю ошибку. Сетевые вызовы выполняются в горутинах,
// состояние заменяется целиком.
type Repository struct {
	service ItemService

	mu     sync.Mutex
	state  State
	subs   []subscriber
	nextID int

	// pending - снимки, еще не доставленные слушателям, в порядке изменений.
	pending     []State
	dispatching bool
}

func New(service ItemService) *Repository {
	return &Repository{service: service}
}

// Snapshot возвращает копию текущего состояния.
func (r *Repository) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
// Слушатели вызываются вне блокировки и могут сами менять состояние:
// вложенные изменения доставляются после текущего снимка.
func (r *Repository) Subscribe(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// update применяет mutate к копии состояния, пересчитывает видимый список,
// публикует новый снимок и ставит его в очередь уведомлений.
// Очередь разбирает та горутина, которая застала ее пустой; остальные возвращаются сразу.
func (r *Repository) update(mutate func(*State)) {
	r.mu.Lock()
	next := r.state
	mutate(&next)
	next.Items = Apply(next.RawItems, next.KeywordFilter, next.MaxPriceFilter, next.Sort)
	r.state = next
	r.pending = append(r.pending, next)
	if r.dispatching {
		r.mu.Unlock()
		return
	}
	r.dispatching = true
	r.mu.Unlock()

	r.dispatch()
}

func (r *Repository) dispatch() {
	done := false
	defer func() {
		if !done {
			r.mu.Lock()
			r.dispatching = false
			r.mu.Unlock()
		}
	}()

	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.dispatching = false
			r.mu.Unlock()
			done = true
			return
		}
		state := r.pending[0]
		r.pending = r.pending[1:]
		subs := make([]subscriber, len(r.subs))
		copy(subs, r.subs)
		r.mu.Unlock()

		for _, s := range subs {
			s.fn(state.clone())
		}
	}
}

func (r *Repository) async(fn func() error) Pending {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- fn()
	}()
	return ch
}

// Load запрашивает полный список объявлений. Конкурентные загрузки не
// отменяются: побеждает ответ, пришедший последним.
func (r *Repository) Load(ctx context.Context) Pending {
	r.update(func(s *State) { s.IsLoading = true })
	return r.async(func() error { return r.fetch(ctx) })
}

func (r *Repository) reload(ctx context.Context) error {
	r.update(func(s *State) { s.IsLoading = true })
	return r.fetch(ctx)
}

func (r *Repository) fetch(ctx context.Context) error {
	items, err := r.service.List(ctx)
	if err != nil {
		msg := loadMessage(err)
		log.Printf("[SalesItemRepository] load failed: %s", msg)
		r.update(func(s *State) {
			s.IsLoading = false
			s.ErrorMessage = msg
		})
		return err
	}

	log.Printf("[SalesItemRepository] loaded %d items", len(items))
	r.update(func(s *State) {
		s.RawItems = items
		s.ErrorMessage = ""
		s.IsLoading = false
	})
	return nil
}

// Create отправляет черновик и после успеха перезагружает список.
// Локальный список не меняется до ответа на перезагрузку.
func (r *Repository) Create(ctx context.Context, draft models.Item) Pending {
	return r.async(func() error {
		created, err := r.service.Create(ctx, draft)
		if err != nil {
			msg := mutationMessage("Failed to add item", err)
			log.Printf("[SalesItemRepository] create failed: %s", msg)
			r.update(func(s *State) { s.ErrorMessage = msg })
			return err
		}
		log.Printf("[SalesItemRepository] created item %d", created.ID)
		return r.reload(ctx)
	})
}

// Delete удаляет объявление по id и после успеха перезагружает список.
// Запрос отправляется, даже если id нет в текущем списке.
func (r *Repository) Delete(ctx context.Context, id int) Pending {
	return r.async(func() error {
		if err := r.service.Delete(ctx, id); err != nil {
			msg := mutationMessage("Failed to delete item", err)
			log.Printf("[SalesItemRepository] delete %d failed: %s", id, msg)
			r.update(func(s *State) { s.ErrorMessage = msg })
			return err
		}
		log.Printf("[SalesItemRepository] deleted item %d", id)
		return r.reload(ctx)
	})
}

// Get загружает одно объявление, не затрагивая состояние списка.
func (r *Repository) Get(ctx context.Context, id int) (models.Item, error) {
	item, err := r.service.Get(ctx, id)
	if err != nil {
		return models.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

func (r *Repository) SetKeywordFilter(keyword string) {
	r.update(func(s *State) { s.KeywordFilter = keyword })
}

// SetMaxPriceFilter задает потолок цены; nil снимает ограничение.
func (r *Repository) SetMaxPriceFilter(maxPrice *float64) {
	if maxPrice != nil {
		v := *maxPrice
		maxPrice = &v
	}
	r.update(func(s *State) { s.MaxPriceFilter = maxPrice })
}

// SetMaxPriceText разбирает ввод пользователя. Пустой или некорректный ввод
// снимает ограничение.
func (r *Repository) SetMaxPriceText(text string) {
	maxPrice, err := validation.ParseMaxPrice(text)
	if err != nil {
		log.Printf("[SalesItemRepository] ignoring max price %q: %v", text, err)
		maxPrice = nil
	}
	r.SetMaxPriceFilter(maxPrice)
}

func (r *Repository) SetSort(c Criterion) {
	r.update(func(s *State) { s.Sort = c })
}

func (r *Repository) SortByPrice(ascending bool) {
	r.SetSort(ByPrice(ascending))
}

func (r *Repository) SortByDescription(ascending bool) {
	r.SetSort(ByDescription(ascending))
}

func (r *Repository) ClearSort() {
	r.SetSort(NoSort)
}

func loadMessage(err error) string {
	var httpErr *client.HTTPError
	var emptyErr *client.EmptyBodyError
	switch {
	case errors.As(err, &httpErr):
		return fmt.Sprintf("HTTP %d %s (Code %d)", httpErr.Status, httpErr.Reason, httpErr.Status)
	case errors.As(err, &emptyErr):
		return fmt.Sprintf("Empty response body (Code %d)", emptyErr.Status)
	default:
		return transportMessage(err)
	}
}

func mutationMessage(action string, err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("%s: %s (Code %d)", action, httpErr.Reason, httpErr.Status)
	}
	return transportMessage(err)
}

func transportMessage(err error) string {
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) && transportErr.Err != nil {
		err = transportErr.Err
	}
	if err == nil || err.Error() == "" {
		return unknownError
	}
	return err.Error()
}
