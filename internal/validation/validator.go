// Package validation содержит проверки вводимых данных объявлений.
package validation

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/go-playground/validator/v10"
)

// DefaultSellerPhone подставляется, когда продавец не указал телефон.
const DefaultSellerPhone = "88888888"

// Сообщения об ошибках полей формы.
const (
	MsgDescriptionRequired = "Description cannot be empty"
	MsgInvalidPrice        = "Enter a valid number"
	MsgInvalidURL          = "Enter a valid URL"
	MsgInvalidEmail        = "Enter a valid email"
)

// ErrInvalidFilterInput возвращается, когда фильтр по максимальной цене не является числом.
var ErrInvalidFilterInput = errors.New("invalid max price filter")

// New создает валидатор с пользовательскими тегами picture_url и notblank.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("picture_url", func(fl validator.FieldLevel) bool {
		return IsValidURL(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// IsValidURL проверяет адрес картинки: пустая строка допустима (картинки нет),
// иначе строка должна быть абсолютным URL со схемой. Сетевым схемам нужен хост,
// остальным (file:///x.png) достаточно пути.
func IsValidURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return u.Host != ""
	default:
		return u.Host != "" || u.Path != ""
	}
}

// ShowPicture сообщает, нужно ли рисовать картинку вместо заглушки.
func ShowPicture(raw string) bool {
	return strings.TrimSpace(raw) != "" && IsValidURL(raw)
}

// ParsePrice разбирает цену из текста формы.
func ParsePrice(raw string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

// ParseMaxPrice разбирает фильтр по максимальной цене.
// Пустая строка означает отсутствие ограничения и возвращает nil без ошибки.
func ParseMaxPrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) {
		return nil, ErrInvalidFilterInput
	}
	return &p, nil
}

// ValidateItem возвращает сообщения об ошибках по полям; пустая карта означает валидный объект.
func ValidateItem(v *validator.Validate, item models.Item) map[string]string {
	errs := make(map[string]string)
	err := v.Struct(item)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["item"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Description":
			errs["description"] = MsgDescriptionRequired
		case "Price":
			errs["price"] = MsgInvalidPrice
		case "PictureURL":
			errs["pictureUrl"] = MsgInvalidURL
		case "SellerEmail":
			errs["sellerEmail"] = MsgInvalidEmail
		default:
			errs[strings.ToLower(fe.Field())] = fe.Error()
		}
	}
	return errs
}

// BuildDraft собирает черновик объявления из данных формы.
// Черновик не имеет id и помечается временем now; при ошибках возвращаются сообщения по полям.
func BuildDraft(v *validator.Validate, in models.DraftInput, now time.Time) (models.Item, map[string]string) {
	draft := models.Item{
		Description: in.Description,
		SellerEmail: in.SellerEmail,
		SellerPhone: in.SellerPhone,
		PictureURL:  strings.TrimSpace(in.PictureURL),
		UserID:      in.UserID,
		CreatedAt:   now.Unix(),
	}
	if draft.SellerPhone == "" {
		draft.SellerPhone = DefaultSellerPhone
	}

	price, ok := ParsePrice(in.Price)
	draft.Price = price

	errs := ValidateItem(v, draft)
	if !ok {
		errs["price"] = MsgInvalidPrice
	}
	if len(errs) > 0 {
		return models.Item{}, errs
	}
	return draft, errs
}
