package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/RoGogDBD/salesitems/internal/client"
	"github.com/RoGogDBD/salesitems/internal/config"
	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/RoGogDBD/salesitems/internal/retry"
)

var samples = []models.Item{
	{Description: "Bike", Price: 100, SellerEmail: "anna@example.com", SellerPhone: "12345678"},
	{Description: "Car", Price: 5000, SellerEmail: "bob@example.com", SellerPhone: "88888888"},
	{Description: "Boat", Price: 3000, SellerEmail: "bob@example.com", SellerPhone: "88888888"},
	{Description: "Desk lamp", Price: 25.5, SellerEmail: "anna@example.com", PictureURL: "https://example.com/lamp.png"},
}

func main() {
	apiURL := config.RegisterAPIFlag(flag.CommandLine)
	count := flag.Int("count", len(samples), "Number of sample items to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.API.Override(apiURL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := client.New(cfg.API.BaseURL, client.WithTimeout(5*time.Second), client.WithRequestLogging(true))
	policy := retry.Policy{
		MaxRetries:  8,
		Backoff:     retry.NewBackoff(250*time.Millisecond, 5*time.Second, true),
		ShouldRetry: client.IsTemporary,
		OnRetry: func(err error, attempt int, wait time.Duration) {
			log.Printf("API not ready: %v (attempt %d), retrying in %v", err, attempt, wait)
		},
	}

	if err := retry.Do(ctx, policy, func(ctx context.Context) error {
		_, err := c.List(ctx)
		return err
	}); err != nil {
		log.Fatalf("API at %s is unavailable: %v", cfg.API.BaseURL, err)
	}

	now := time.Now()
	for i := 0; i < *count; i++ {
		item := samples[i%len(samples)]
		if i >= len(samples) {
			item.Description = fmt.Sprintf("%s #%d", item.Description, i/len(samples)+1)
		}
		item.CreatedAt = now.Add(-time.Duration(i) * time.Hour).Unix()

		var created models.Item
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			var err error
			created, err = c.Create(ctx, item)
			return err
		})
		if err != nil {
			log.Fatalf("Failed to create %q: %v", item.Description, err)
		}
		log.Printf("Created item %d: %s", created.ID, created.Description)
	}
}
