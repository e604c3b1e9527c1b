// Cleanup runs one sweep of the purchase-token retention policy and exits.
// Useful from cron where the in-server sweeper is disabled.
package main

import (
	"log"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/config"
	"github.com/dzuokumor/Civic-voice/internal/database"
	"github.com/dzuokumor/Civic-voice/internal/scheduler"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	st := store.NewStore(db)

	purged, err := st.PurgeExpiredPurchases(scheduler.PurchaseRetention, time.Now().UTC())
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Purged %d expired purchase tokens", purged)
}
