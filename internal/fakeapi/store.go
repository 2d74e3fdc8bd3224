package fakeapi

import (
	"container/list"
	"errors"
	"sync"

	"github.com/RoGogDBD/salesitems/internal/models"
)

// ErrItemNotFound возвращается, если объявления с таким id нет.
var ErrItemNotFound = errors.New("sales item not found")

const defaultMaxItems = 10000

// MemStorage хранит объявления в порядке добавления.
// При превышении maxItems вытесняются самые старые.
type MemStorage struct {
	items    map[int]*list.Element
	order    *list.List
	mu       sync.RWMutex
	maxItems int
	nextID   int
}

func NewMemStorage() *MemStorage {
	return NewMemStorageWithLimit(defaultMaxItems)
}

func NewMemStorageWithLimit(maxItems int) *MemStorage {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &MemStorage{
		items:    make(map[int]*list.Element),
		order:    list.New(),
		maxItems: maxItems,
		nextID:   1,
	}
}

// Save назначает id и добавляет объявление в конец списка.
func (s *MemStorage) Save(item models.Item) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order.Len() >= s.maxItems {
		s.evictOldest()
	}

	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = s.order.PushBack(item)
	return item
}

func (s *MemStorage) GetByID(id int) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elem, ok := s.items[id]
	if !ok {
		return models.Item{}, ErrItemNotFound
	}
	return elem.Value.(models.Item), nil
}

// List возвращает все объявления в порядке добавления.
func (s *MemStorage) List() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(models.Item))
	}
	return out
}

// Delete удаляет объявление и возвращает его.
func (s *MemStorage) Delete(id int) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[id]
	if !ok {
		return models.Item{}, ErrItemNotFound
	}
	s.order.Remove(elem)
	delete(s.items, id)
	return elem.Value.(models.Item), nil
}

func (s *MemStorage) evictOldest() {
	elem := s.order.Front()
	if elem != nil {
		s.order.Remove(elem)
		delete(s.items, elem.Value.(models.Item).ID)
	}
}

func (s *MemStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
