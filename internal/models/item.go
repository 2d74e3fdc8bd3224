// Package models содержит доменные модели приложения.
package models

import "time"

// CreatedDateLayout задает формат даты создания объявления (MM/DD/YYYY).
const CreatedDateLayout = "01/02/2006"

// Item описывает объявление о продаже.
// Объявления неизменяемы: список заменяется целиком, поля не редактируются на месте.
type Item struct {
	ID          int     `json:"id"`
	Description string  `json:"description" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"gte=0"`
	SellerEmail string  `json:"sellerEmail,omitempty" validate:"omitempty,email"`
	SellerPhone string  `json:"sellerPhone,omitempty"`
	PictureURL  string  `json:"pictureUrl,omitempty" validate:"picture_url"`
	UserID      string  `json:"userId,omitempty"`
	CreatedAt   int64   `json:"time"`
}

// IsDraft сообщает, что удаленный сервис еще не назначил объявлению id.
func (i Item) IsDraft() bool {
	return i.ID == 0
}

// Created возвращает время создания в UTC.
func (i Item) Created() time.Time {
	return time.Unix(i.CreatedAt, 0).UTC()
}

func (i Item) CreatedDate() string {
	return i.Created().Format(CreatedDateLayout)
}

// OwnedBy сообщает, является ли email продавцом объявления.
// Удалять объявление может только продавец; пустой email не владеет ничем.
func (i Item) OwnedBy(email string) bool {
	return email != "" && i.SellerEmail == email
}
