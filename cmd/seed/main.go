// Command seed writes the built-in events to the configured store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"eventfriend_server/config"
	"eventfriend_server/logging"
	"eventfriend_server/models"
	"eventfriend_server/storage"
	"eventfriend_server/storage/backend"
)

func seedEvents(now time.Time) []models.Event {
	events := []models.Event{
		{Title: "Gourmet Cooking Workshop", Date: "Saturday, Dec 21, 2024 at 2:00 PM", Location: "Atlanta, Georgia", Category: models.CategoryFood},
		{Title: "New Year's Dance Party", Date: "Tuesday, Dec 31, 2024 at 9:00 PM", Location: "Savannah, Georgia", Category: models.CategoryParty},
		{Title: "Spa & Wellness Retreat", Date: "Sunday, Dec 22, 2024 at 10:00 AM", Location: "Augusta, Georgia", Category: models.CategoryWellness},
		{Title: "Mathematics Workshop", Date: "Friday, Dec 20, 2024 at 3:00 PM", Location: "Athens, Georgia", Category: models.CategoryEducational},
		{Title: "Mountain Hiking Adventure", Date: "Saturday, Dec 28, 2024 at 7:00 AM", Location: "Helen, Georgia", Category: models.CategoryOutdoors},
		{Title: "Holiday Shopping Tour", Date: "Saturday, Dec 21, 2024 at 11:00 AM", Location: "Macon, Georgia", Category: models.CategoryShopping},
		{Title: "Community Volunteer Day", Date: "Sunday, Dec 29, 2024 at 9:00 AM", Location: "Columbus, Georgia", Category: models.CategoryCommunity},
		{Title: "Live Music Concert", Date: "Friday, Dec 27, 2024 at 7:00 PM", Location: "Valdosta, Georgia", Category: models.CategoryParty},
		{Title: "Dance Fitness Class", Date: "Monday, Dec 23, 2024 at 6:00 PM", Location: "Albany, Georgia", Category: models.CategoryWellness},
		{Title: "Business Presentation Workshop", Date: "Wednesday, Dec 25, 2024 at 1:00 PM", Location: "Warner Robins, Georgia", Category: models.CategoryEducational},
		{Title: "Farm-to-Table Experience", Date: "Thursday, Dec 26, 2024 at 12:00 PM", Location: "Marietta, Georgia", Category: models.CategoryFood},
		{Title: "Fashion Boutique Event", Date: "Saturday, Dec 28, 2024 at 2:00 PM", Location: "Roswell, Georgia", Category: models.CategoryShopping},
	}
	for i := range events {
		events[i].EventID = fmt.Sprint(i + 1)
		events[i].CreatedBy = models.CreatedByAdmin
		events[i].PeopleInterested = []string{}
		events[i].CreatedAt = now
	}
	return events
}

// seed overwrites each built-in event, resetting its interested set.
func seed(ctx context.Context, store storage.EventStore, now time.Time) error {
	for _, event := range seedEvents(now) {
		if err := store.PutEvent(ctx, &event); err != nil {
			return fmt.Errorf("failed to add event %s: %w", event.EventID, err)
		}
		slog.Info("Added event: " + event.Title)
	}
	slog.Info("All events added.")
	return nil
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	ctx := context.Background()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("❌ Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := seed(ctx, store, time.Now().UTC()); err != nil {
		slog.Error("❌ Seeding failed", "error", err)
		os.Exit(1)
	}
}
