package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedeck/services"
)

type totalsResponse struct {
	Currency    string            `json:"currency"`
	ItemCount   int               `json:"itemCount"`
	Totals      services.Totals   `json:"totals"`
	Margin      string            `json:"margin"`
	MarginBand  string            `json:"marginBand"`
	Sections    []sectionTotal    `json:"sections"`
	Formatted   map[string]string `json:"formatted"`
	FeeWarnings []string          `json:"feeWarnings,omitempty"`
}

type sectionTotal struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Items  int     `json:"items"`
	Cost   float64 `json:"cost"`
	Charge float64 `json:"charge"`
	Margin string  `json:"margin"`
}

// HandleQuoteTotals returns the priced totals of a quote as JSON.
func HandleQuoteTotals(app *pocketbase.PocketBase, defaultCurrency string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if quoteID == "" {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "missing quote id"})
		}

		q, err := services.NewRecordStore(app).LoadQuote(e.Request.Context(), quoteID)
		if err != nil {
			if errors.Is(err, services.ErrQuoteNotFound) {
				return e.JSON(http.StatusNotFound, map[string]string{"error": "quote not found"})
			}
			log.Error("quote totals: load failed", "quote", quoteID, "err", err)
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load quote"})
		}

		currency := q.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		totals := services.GrandTotalWithFees(q.Sections, q.Fees)
		margin := services.MarginOf(totals.TotalCost, totals.TotalCharge)
		fmtr := services.DefaultFormatter{}

		resp := totalsResponse{
			Currency:   currency,
			ItemCount:  services.CountItems(q.Sections),
			Totals:     totals,
			Margin:     margin.String(),
			MarginBand: services.MarginBand(margin),
			Formatted: map[string]string{
				"baseCharge":  fmtr.Format(totals.BaseCharge, currency),
				"totalCharge": fmtr.Format(totals.TotalCharge, currency),
				"totalCost":   fmtr.Format(totals.TotalCost, currency),
				"profit":      fmtr.Format(totals.Profit, currency),
			},
		}
		if err := q.Fees.Validate(); err != nil {
			resp.FeeWarnings = append(resp.FeeWarnings, err.Error())
		}
		for _, sec := range services.OrderedSections(q) {
			amounts := services.SectionTotal(sec.Section.Subsections)
			resp.Sections = append(resp.Sections, sectionTotal{
				ID:     sec.Def.ID,
				Name:   sec.Name,
				Color:  sec.Def.Color,
				Items:  services.CountSectionItems(sec.Section),
				Cost:   amounts.Cost,
				Charge: amounts.Charge,
				Margin: services.MarginOf(amounts.Cost, amounts.Charge).String(),
			})
		}
		return e.JSON(http.StatusOK, resp)
	}
}
