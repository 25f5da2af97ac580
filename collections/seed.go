package collections

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"

	"quotedeck/services"
)

// Seed inserts the preset templates and one sample quote. It is safe to
// call on every startup: each part is skipped when its collection already
// has records.
func Seed(app *pocketbase.PocketBase) error {
	ctx := context.Background()
	store := services.NewRecordStore(app)

	templatesCol, err := app.FindCollectionByNameOrId(services.CollectionTemplates)
	if err != nil {
		return fmt.Errorf("seed: could not find templates collection: %w", err)
	}
	existing, err := app.CountRecords(templatesCol)
	if err != nil {
		return fmt.Errorf("seed: could not count templates: %w", err)
	}
	if existing == 0 {
		presets, err := Presets()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		for _, tpl := range presets {
			if err := store.SaveTemplate(ctx, tpl); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
		log.Printf("seed: inserted %d templates", len(presets))
	}

	quotesCol, err := app.FindCollectionByNameOrId(services.CollectionQuotes)
	if err != nil {
		return fmt.Errorf("seed: could not find quotes collection: %w", err)
	}
	quotes, err := app.CountRecords(quotesCol)
	if err != nil {
		return fmt.Errorf("seed: could not count quotes: %w", err)
	}
	if quotes > 0 {
		return nil
	}

	now := time.Now()
	number, err := services.NextQuoteNumber(app, services.KindQuote, now)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	q := sampleQuote(number, now)
	if err := store.SaveQuote(ctx, q); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Printf("seed: inserted sample quote %s", number)
	return nil
}

func sampleQuote(number string, now time.Time) *services.Quote {
	return &services.Quote{
		QuoteNumber: number,
		Title:       "Annual Conference Live Stream",
		Currency:    "USD",
		Client: services.Client{
			Company: "Harbour Events Ltd",
			Contact: "Jordan Reyes",
			Email:   "jordan@harbour-events.example",
		},
		Project: services.Project{
			Title:     "Annual Conference 2026",
			Venue:     "Riverside Convention Centre",
			StartDate: now.AddDate(0, 1, 0).Format("2006-01-02"),
			EndDate:   now.AddDate(0, 1, 2).Format("2006-01-02"),
		},
		Fees:         services.FeeConfig{ManagementFeePct: 10, CommissionFeePct: 5, DiscountPct: 2.5},
		ValidityDays: 30,
		PreparedBy:   "Production Office",
		QuoteDate:    now,
		Sections: services.Sections{
			"productionTeam": {Subsections: []services.Subsection{
				{Name: "Production", Items: []services.LineItem{
					{Name: "Producer", Quantity: 1, Days: 3, Cost: 450, Charge: 650},
					{Name: "Director", Quantity: 1, Days: 3, Cost: 500, Charge: 750},
				}},
				{Name: "Technical Crew", Items: []services.LineItem{
					{Name: "Camera Operator", Quantity: 3, Days: 3, Cost: 350, Charge: 520},
					{Name: "Sound Engineer", Quantity: 1, Days: 3, Cost: 380, Charge: 560},
				}},
			}},
			"productionEquipment": {Subsections: []services.Subsection{
				{Name: "Cameras", Items: []services.LineItem{
					{Name: "Broadcast camera channel", Quantity: 3, Days: 3, Cost: 250, Charge: 400},
				}},
				{Name: "Audio", Items: []services.LineItem{
					{Name: "Radio mic kit", Quantity: 6, Days: 3, Cost: 25, Charge: 45},
				}},
			}},
			"logistics": {Subsections: []services.Subsection{
				{Name: "Services", Items: []services.LineItem{
					{Name: "Crew van", Quantity: 1, Days: 4, Cost: 120, Charge: 180},
				}},
			}},
		},
	}
}
