package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/RoGogDBD/salesitems/internal/models"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "blank", raw: "", want: true},
		{name: "whitespace", raw: "   ", want: true},
		{name: "no scheme", raw: "invalid-url", want: false},
		{name: "https", raw: "https://example.com/a.png", want: true},
		{name: "relative path", raw: "/images/a.png", want: false},
		{name: "scheme only", raw: "https://", want: false},
		{name: "file without host", raw: "file:///x.png", want: true},
		{name: "http without host", raw: "http:///x.png", want: false},
		{name: "ftp", raw: "ftp://files.example.com/x.png", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidURL(tt.raw); got != tt.want {
				t.Fatalf("IsValidURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestShowPicture(t *testing.T) {
	if ShowPicture("") {
		t.Fatalf("blank url must render a placeholder")
	}
	if !ShowPicture("https://example.com/a.png") {
		t.Fatalf("valid url must render the picture")
	}
}

func TestParseMaxPrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *float64
		wantErr error
	}{
		{name: "empty means no ceiling", raw: "", want: nil},
		{name: "number", raw: "3000", want: ptr(3000)},
		{name: "decimal", raw: " 12.5 ", want: ptr(12.5)},
		{name: "not a number", raw: "cheap", wantErr: ErrInvalidFilterInput},
		{name: "nan", raw: "NaN", wantErr: ErrInvalidFilterInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaxPrice(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("got %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestBuildDraft(t *testing.T) {
	v := New()
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name       string
		in         models.DraftInput
		wantFields []string
	}{
		{
			name: "valid",
			in:   models.DraftInput{Description: "Bike", Price: "100", PictureURL: "https://example.com/bike.png", SellerEmail: "anna@example.com"},
		},
		{
			name:       "blank description",
			in:         models.DraftInput{Description: "  ", Price: "100"},
			wantFields: []string{"description"},
		},
		{
			name:       "price not a number",
			in:         models.DraftInput{Description: "Bike", Price: "lots"},
			wantFields: []string{"price"},
		},
		{
			name:       "negative price",
			in:         models.DraftInput{Description: "Bike", Price: "-1"},
			wantFields: []string{"price"},
		},
		{
			name:       "bad picture url",
			in:         models.DraftInput{Description: "Bike", Price: "1", PictureURL: "invalid-url"},
			wantFields: []string{"pictureUrl"},
		},
		{
			name:       "everything wrong",
			in:         models.DraftInput{Description: "", Price: "", PictureURL: "nope"},
			wantFields: []string{"description", "price", "pictureUrl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, errs := BuildDraft(v, tt.in, now)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got errors %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Fatalf("missing error for %q in %v", f, errs)
				}
			}
			if len(tt.wantFields) > 0 {
				return
			}
			if !draft.IsDraft() {
				t.Fatalf("draft must not carry an id")
			}
			if draft.CreatedAt != now.Unix() {
				t.Fatalf("CreatedAt got %d, want %d", draft.CreatedAt, now.Unix())
			}
			if draft.SellerPhone != DefaultSellerPhone {
				t.Fatalf("SellerPhone got %q, want %q", draft.SellerPhone, DefaultSellerPhone)
			}
			if draft.Price != 100 {
				t.Fatalf("Price got %v, want 100", draft.Price)
			}
		})
	}
}

func ptr(f float64) *float64 {
	return &f
}
