package models

// DraftInput содержит сырые данные формы создания объявления.
type DraftInput struct {
	Description string
	Price       string
	PictureURL  string
	SellerEmail string
	SellerPhone string
	UserID      string
}
