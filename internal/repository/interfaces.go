package repository

import (
	"context"

	"github.com/RoGogDBD/salesitems/internal/models"
)

// ItemService описывает удаленный сервис объявлений.
type ItemService interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id int) (models.Item, error)
	Create(ctx context.Context, draft models.Item) (models.Item, error)
	Delete(ctx context.Context, id int) error
}
