package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/RoGogDBD/salesitems/internal/models"
)

type ItemServiceMock struct {
	ListFunc   func(ctx context.Context) ([]models.Item, error)
	GetFunc    func(ctx context.Context, id int) (models.Item, error)
	CreateFunc func(ctx context.Context, draft models.Item) (models.Item, error)
	DeleteFunc func(ctx context.Context, id int) error

	mu          sync.Mutex
	listCalls   int
	getCalls    int
	createCalls int
	deleteCalls int
	deletedIDs  []int
}

func (m *ItemServiceMock) List(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListFunc == nil {
		return nil, errors.New("ListFunc not set")
	}
	return m.ListFunc(ctx)
}

func (m *ItemServiceMock) Get(ctx context.Context, id int) (models.Item, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.GetFunc == nil {
		return models.Item{}, errors.New("GetFunc not set")
	}
	return m.GetFunc(ctx, id)
}

func (m *ItemServiceMock) Create(ctx context.Context, draft models.Item) (models.Item, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.CreateFunc == nil {
		return models.Item{}, errors.New("CreateFunc not set")
	}
	return m.CreateFunc(ctx, draft)
}

func (m *ItemServiceMock) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	m.deleteCalls++
	m.deletedIDs = append(m.deletedIDs, id)
	m.mu.Unlock()
	if m.DeleteFunc == nil {
		return errors.New("DeleteFunc not set")
	}
	return m.DeleteFunc(ctx, id)
}

func (m *ItemServiceMock) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *ItemServiceMock) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func (m *ItemServiceMock) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *ItemServiceMock) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls
}

func (m *ItemServiceMock) DeletedIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.deletedIDs...)
}
