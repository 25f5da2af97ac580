package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"quotedeck/config"
	"quotedeck/services"
	"quotedeck/testhelpers"
)

func testComposer() *services.Composer {
	return services.NewComposer(config.Settings{
		Company: config.Company{Name: "Northlight Productions", Email: "hello@northlight.tv"},
	}, "USD")
}

func TestHandleQuoteTotals_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Totals")
	quote.Set("fees", services.FeeConfig{ManagementFeePct: 10})
	if err := app.Save(quote); err != nil {
		t.Fatal(err)
	}
	testhelpers.CreateTestLineItem(t, app, quote.Id, "productionTeam", "Technical Crew", "Camera op", 2, 3, 400, 600)
	testhelpers.CreateTestLineItem(t, app, quote.Id, "logistics", "Services", "Van", 1, 1, 100, 150)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/"+quote.Id+"/totals", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleQuoteTotals(app, "USD")(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp totalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if math.Abs(resp.Totals.TotalCharge-4125) > 0.01 {
		t.Errorf("totalCharge = %v, want 4125", resp.Totals.TotalCharge)
	}
	if resp.ItemCount != 2 {
		t.Errorf("itemCount = %d, want 2", resp.ItemCount)
	}
	if resp.Formatted["totalCharge"] != "$4,125.00" {
		t.Errorf("formatted totalCharge = %q", resp.Formatted["totalCharge"])
	}
	if len(resp.Sections) != 2 || resp.Sections[0].ID != "productionTeam" {
		t.Errorf("sections = %+v", resp.Sections)
	}
	if resp.MarginBand != services.BandHealthy {
		t.Errorf("marginBand = %q", resp.MarginBand)
	}
}

func TestHandleQuoteTotals_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/quotes/nonexistent/totals", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := HandleQuoteTotals(app, "USD")(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleQuoteTotals_NegativeFeeWarning(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Bad fees")
	quote.Set("fees", services.FeeConfig{DiscountPct: -5})
	if err := app.Save(quote); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/"+quote.Id+"/totals", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteTotals(app, "USD")(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp totalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.FeeWarnings) != 1 {
		t.Errorf("feeWarnings = %v, want one warning", resp.FeeWarnings)
	}
}

func TestHandleQuoteTotals_SectionCountsAndOverflow(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	quote := testhelpers.CreateTestQuote(t, app, "Stadium")
	testhelpers.CreateTestLineItem(t, app, quote.Id, "productionTeam", "Technical Crew", "Camera op", 2, 3, 400, 600)
	testhelpers.CreateTestLineItem(t, app, quote.Id, "productionTeam", "Production", "Producer", 1, 3, 500, 700)
	testhelpers.CreateTestLineItem(t, app, quote.Id, "logistics", "Services", "Stadium hire", 1e200, 1, 1, 1e200)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/"+quote.Id+"/totals", nil)
	req.SetPathValue("id", quote.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteTotals(app, "USD")(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp totalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Totals.TotalCharge != services.MaxAmount {
		t.Errorf("totalCharge = %v, want %v", resp.Totals.TotalCharge, services.MaxAmount)
	}
	counts := map[string]int{}
	for _, s := range resp.Sections {
		counts[s.ID] = s.Items
	}
	if counts["productionTeam"] != 2 || counts["logistics"] != 1 {
		t.Errorf("section item counts = %v", counts)
	}
}
