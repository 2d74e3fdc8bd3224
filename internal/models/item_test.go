package models

import "testing"

func TestItemOwnedBy(t *testing.T) {
	tests := []struct {
		name  string
		item  Item
		email string
		want  bool
	}{
		{name: "seller", item: Item{SellerEmail: "anna@example.com"}, email: "anna@example.com", want: true},
		{name: "other user", item: Item{SellerEmail: "anna@example.com"}, email: "bob@example.com", want: false},
		{name: "logged out", item: Item{SellerEmail: ""}, email: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.OwnedBy(tt.email); got != tt.want {
				t.Fatalf("OwnedBy(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestItemCreatedDate(t *testing.T) {
	item := Item{CreatedAt: 1625155200}
	if got := item.CreatedDate(); got != "07/01/2021" {
		t.Fatalf("CreatedDate() = %q, want %q", got, "07/01/2021")
	}
	if !(Item{}).IsDraft() {
		t.Fatalf("zero item must be a draft")
	}
	if (Item{ID: 3}).IsDraft() {
		t.Fatalf("item with id must not be a draft")
	}
}
