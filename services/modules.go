package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	mutedColor    = "#6B7280"
	subtleColor   = "#9CA3AF"
	panelColor    = "#F8FAFC"
	discountColor = "#DC2626"
	borderColor   = "#E5E7EB"

	// ptToMM converts typographic points to millimetres.
	ptToMM = 0.3528
)

// DefaultRegistry returns the built-in renderers.
func DefaultRegistry() Registry {
	return Registry{
		ModuleCompanyInfo:     renderCompanyInfo,
		ModuleClientInfo:      renderClientInfo,
		ModuleInvoiceHeader:   renderInvoiceHeader,
		ModuleProjectInfo:     renderProjectInfo,
		ModuleLineItems:       renderLineItems,
		ModuleTotals:          renderTotals,
		ModulePaymentTerms:    renderPaymentTerms,
		ModuleBankDetails:     renderBankDetails,
		ModuleTermsConditions: renderTermsConditions,
		ModuleSignature:       renderSignature,
		ModuleCustomText:      renderCustomText,
		ModuleDivider:         renderDivider,
		ModuleSpacer:          renderSpacer,
		ModuleImage:           renderImage,
		ModuleFooter:          renderFooter,
	}
}

func formatDateShort(t time.Time) string {
	return t.Format("02/01/06")
}

func formatDateLong(t time.Time) string {
	return t.Format("2 January 2006")
}

// projectDate renders a stored project date, keeping unparseable values as
// they are.
func projectDate(s string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return formatDateShort(t)
		}
	}
	return s
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func sectionLabel(color string, align Alignment) TextStyle {
	return TextStyle{Size: 8, Uppercase: true, Color: color, Align: align}
}

func renderCompanyInfo(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	company := rc.Settings.Company
	size := cfg.Float("fontSize", 10)
	body := TextStyle{Size: size, Color: mutedColor, Align: align}

	b := &Block{}
	if cfg.Bool("showLogo", true) && company.Logo != "" {
		b.image(company.Logo, 30)
	}
	if cfg.Bool("showName", true) {
		b.text(company.Name, TextStyle{Size: size + 4, Bold: true, Align: align})
	}
	if cfg.Bool("showAddress", true) {
		b.text(company.Address, body)
		b.text(joinNonEmpty(", ", company.City, company.Country), body)
	}
	if cfg.Bool("showPhone", true) {
		b.text(company.Phone, body)
	}
	if cfg.Bool("showEmail", true) {
		b.text(company.Email, body)
	}
	if cfg.Bool("showWebsite", true) {
		b.text(company.Website, body)
	}
	if cfg.Bool("showTaxNumber", false) && rc.Settings.Tax.TaxNumber != "" {
		b.text("Tax No: "+rc.Settings.Tax.TaxNumber, body)
	}
	return b, nil
}

func renderClientInfo(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	client := rc.Quote.Client
	size := cfg.Float("fontSize", 10)
	body := TextStyle{Size: size, Color: mutedColor, Align: align}

	b := &Block{}
	b.text(cfg.String("label", "Prepared For"), sectionLabel(cfg.String("labelColor", mutedColor), align))
	if cfg.Bool("showCompany", true) {
		b.text(client.Company, TextStyle{Size: size, Bold: true, Align: align})
	}
	if cfg.Bool("showContact", true) {
		b.text(client.Contact, body)
	}
	if cfg.Bool("showEmail", true) {
		b.text(client.Email, body)
	}
	if cfg.Bool("showPhone", false) {
		b.text(client.Phone, body)
	}
	if cfg.Bool("showAddress", false) {
		b.text(client.Address, body)
	}
	return b, nil
}

func renderInvoiceHeader(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	b := &Block{}

	title := cfg.String("title", defaultHeaderTitle(rc.Kind))
	b.text(title, TextStyle{
		Size:  cfg.Float("titleSize", 24),
		Bold:  true,
		Color: cfg.String("titleColor", rc.Styles.AccentColor),
		Align: align,
	})
	if cfg.Bool("showQuoteNumber", true) && rc.Quote.QuoteNumber != "" {
		b.text(cfg.String("numberLabel", "Quote No.")+": "+rc.Quote.QuoteNumber, TextStyle{Size: 10, Align: align})
	}
	meta := TextStyle{Size: 9, Color: mutedColor, Align: align}
	if cfg.Bool("showDate", true) {
		b.text(cfg.String("dateLabel", "Date")+": "+formatDateLong(rc.QuoteDate), meta)
	}
	if cfg.Bool("showDueDate", true) {
		b.text(cfg.String("dueDateLabel", "Valid Until")+": "+formatDateLong(rc.DueDate), meta)
	}
	return b, nil
}

func defaultHeaderTitle(kind DocumentKind) string {
	switch kind {
	case KindInvoice:
		return "INVOICE"
	case KindProposal:
		return "PROPOSAL"
	}
	return "QUOTE"
}

func renderProjectInfo(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	project := rc.Quote.Project
	if project.Title == "" && project.Venue == "" {
		return &Block{}, nil
	}

	dates := ""
	if cfg.Bool("showDates", true) && project.StartDate != "" {
		dates = projectDate(project.StartDate)
		if project.EndDate != "" {
			dates += " - " + projectDate(project.EndDate)
		}
	}
	venue := ""
	if cfg.Bool("showVenue", true) {
		venue = project.Venue
	}

	if cfg.String("style", "compact") == "banner" {
		textColor := cfg.String("textColor", "#FFFFFF")
		b := &Block{Background: cfg.String("backgroundColor", "#1E293B")}
		if cfg.Bool("showTitle", true) {
			b.text(project.Title, TextStyle{Size: 12, Bold: true, Color: textColor, Align: align})
		}
		if venue != "" {
			b.pair("VENUE", venue, TextStyle{Size: 7, Color: textColor, Align: align}, TextStyle{Size: 9, Color: textColor})
		}
		if dates != "" {
			b.pair("DATES", dates, TextStyle{Size: 7, Color: textColor, Align: align}, TextStyle{Size: 9, Color: textColor})
		}
		return b, nil
	}

	b := &Block{Background: cfg.String("backgroundColor", panelColor)}
	b.text("Project", sectionLabel(rc.Styles.AccentColor, align))
	if cfg.Bool("showTitle", true) {
		b.text(project.Title, TextStyle{Size: 11, Color: cfg.String("textColor", rc.Styles.TextColor), Align: align})
	}
	b.text(joinNonEmpty("     ", venue, dates), TextStyle{Size: 8, Color: mutedColor, Align: align})
	return b, nil
}

// lineItemColumns returns the visible columns of the line item table.
func lineItemColumns(cfg ModuleConfig) []Column {
	cols := []Column{{Title: "Item", Weight: 44, Align: AlignLeft}}
	if cfg.Bool("showQuantity", true) {
		cols = append(cols, Column{Title: cfg.String("quantityLabel", "Qty"), Weight: 10, Align: AlignCenter})
	}
	if cfg.Bool("showDays", true) {
		cols = append(cols, Column{Title: cfg.String("daysLabel", "Days"), Weight: 10, Align: AlignCenter})
	}
	if cfg.Bool("showRate", true) {
		cols = append(cols, Column{Title: cfg.String("rateLabel", "Rate"), Weight: 18, Align: AlignRight})
	}
	return append(cols, Column{Title: "Amount", Weight: 18, Align: AlignRight})
}

func renderLineItems(m Module, _ Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	size := cfg.Float("fontSize", 9)
	headerBg := cfg.String("headerBackground", rc.Styles.AccentColor)
	headerText := cfg.String("headerTextColor", "#FFFFFF")
	altColor := cfg.String("alternateRowColor", panelColor)
	groupBySection := cfg.Bool("groupBySection", true)
	showSectionTotals := cfg.Bool("showSectionTotals", true)
	showSubsections := cfg.Bool("showSubsections", true)
	cols := lineItemColumns(cfg)

	b := &Block{}
	for _, sec := range OrderedSections(rc.Quote) {
		t := &Table{
			Columns:     cols,
			HeaderStyle: TextStyle{Size: 7, Uppercase: true, Color: mutedColor, Background: panelColor},
		}

		var sectionCharge float64
		var rows []TableRow
		for _, sub := range sec.Section.Subsections {
			if len(sub.Items) == 0 {
				continue
			}
			if showSubsections && !(sec.Def.Flat() && sub.Name == flatSubsection) {
				rows = append(rows, TableRow{
					Kind:  RowSubheader,
					Cells: padCells([]string{sub.Name}, len(cols)),
					Style: TextStyle{Size: 8, Uppercase: true, Color: "#64748B", Background: "#F1F5F9"},
				})
			}
			for i, item := range sub.Items {
				rate := rc.Totals.DistributedRate(nonNegative(item.Charge))
				qty := atLeastOne(item.Quantity)
				days := atLeastOne(item.Days)
				amount := rate * qty * days
				sectionCharge += amount

				name := item.Name
				if name == "" {
					name = "Item"
				}
				cells := []string{name}
				if cfg.Bool("showQuantity", true) {
					cells = append(cells, formatNumber(qty))
				}
				if cfg.Bool("showDays", true) {
					cells = append(cells, formatNumber(days))
				}
				if cfg.Bool("showRate", true) {
					cells = append(cells, rc.Money(rate))
				}
				cells = append(cells, rc.Money(amount))

				style := TextStyle{Size: size}
				if i%2 == 1 {
					style.Background = altColor
				}
				rows = append(rows, TableRow{Kind: RowItem, Cells: cells, Style: style})
			}
		}

		if groupBySection {
			header := []string{sec.Name}
			if showSectionTotals {
				header = padCells(header, len(cols)-1)
				header = append(header, rc.Money(sectionCharge))
			}
			t.Rows = append(t.Rows, TableRow{
				Kind:  RowGroupHeader,
				Cells: padCells(header, len(cols)),
				Style: TextStyle{Size: size, Bold: true, Color: headerText, Background: headerBg},
			})
		}
		t.Rows = append(t.Rows, rows...)
		b.table(t)
		b.space(4)
	}
	return b, nil
}

func padCells(cells []string, n int) []string {
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TotalsLine is one labelled amount in the totals block.
type TotalsLine struct {
	Label    string
	Amount   float64
	Discount bool
}

// TotalsLines returns the rows of the totals block for cfg and the grand
// total including tax. Fee rows are hidden when fees are distributed into
// the line rates.
func TotalsLines(t Totals, cfg ModuleConfig) (lines []TotalsLine, grandTotal float64) {
	fees := t.Fees

	if cfg.Bool("showSubtotal", true) && fees.HasFees() {
		value := t.BaseCharge
		if fees.DistributeFees {
			value = t.ChargeWithFees
		}
		lines = append(lines, TotalsLine{Label: cfg.String("subtotalLabel", "Subtotal"), Amount: value})
	}
	if cfg.Bool("showManagementFee", true) && !fees.DistributeFees && fees.ManagementFeePct > 0 {
		lines = append(lines, TotalsLine{
			Label:  fmt.Sprintf("%s (%s)", cfg.String("managementFeeLabel", "Management Fee"), formatPct(fees.ManagementFeePct)),
			Amount: t.ManagementAmount,
		})
	}
	if cfg.Bool("showCommission", true) && !fees.DistributeFees && fees.CommissionFeePct > 0 {
		lines = append(lines, TotalsLine{
			Label:  fmt.Sprintf("%s (%s)", cfg.String("commissionLabel", "Commission"), formatPct(fees.CommissionFeePct)),
			Amount: t.CommissionAmount,
		})
	}
	if cfg.Bool("showDiscount", true) && fees.DiscountPct > 0 {
		lines = append(lines, TotalsLine{
			Label:    fmt.Sprintf("%s (%s)", cfg.String("discountLabel", "Discount"), formatPct(fees.DiscountPct)),
			Amount:   -t.DiscountAmount,
			Discount: true,
		})
	}

	grandTotal = t.TotalCharge
	if rate := cfg.Float("taxRate", 0); cfg.Bool("showTax", false) && rate > 0 {
		var tax float64
		tax, grandTotal = TaxOn(t.TotalCharge, rate)
		lines = append(lines, TotalsLine{
			Label:  fmt.Sprintf("%s (%s)", cfg.String("taxLabel", "Tax"), formatPct(rate)),
			Amount: tax,
		})
	}
	return lines, grandTotal
}

func renderTotals(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	size := cfg.Float("fontSize", 10)
	lines, grandTotal := TotalsLines(rc.Totals, cfg)

	b := &Block{}
	if cfg.String("style", "boxed") == "boxed" {
		b.Background = panelColor
	}
	for _, line := range lines {
		valueStyle := TextStyle{Size: size, Color: rc.Styles.TextColor, Align: AlignRight}
		value := rc.Money(line.Amount)
		if line.Discount {
			valueStyle.Color = discountColor
			value = "-" + rc.Money(-line.Amount)
		}
		b.pair(line.Label, value, TextStyle{Size: size, Color: mutedColor, Align: align}, valueStyle)
	}

	totalBg := cfg.String("totalBackground", rc.Styles.AccentColor)
	totalText := cfg.String("totalTextColor", "#FFFFFF")
	b.pair(
		strings.ToUpper(cfg.String("grandTotalLabel", "TOTAL")),
		rc.Money(grandTotal),
		TextStyle{Size: size, Color: totalText, Background: totalBg, Align: align},
		TextStyle{Size: 16, Bold: true, Color: totalText, Background: totalBg, Align: AlignRight},
	)
	if cfg.Bool("showAmountInWords", false) {
		b.text(AmountToWords(grandTotal, rc.Currency), TextStyle{Size: 8, Italic: true, Color: mutedColor, Align: align})
	}
	return b, nil
}

func renderBankDetails(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	bank := rc.Settings.Bank
	if bank.IsZero() {
		return &Block{}, nil
	}
	size := cfg.Float("fontSize", 9)

	b := &Block{}
	b.text(cfg.String("label", "Bank Details"), sectionLabel(cfg.String("labelColor", rc.Styles.AccentColor), align))

	entries := []struct {
		show   string
		label  string
		prefix string
		value  string
	}{
		{"showBankName", "Bank:", "", bank.BankName},
		{"showAccountName", "Name:", "", bank.AccountName},
		{"showAccountNumber", "Account:", "Acc: ", bank.AccountNumber},
		{"showSwiftCode", "SWIFT:", "SWIFT: ", bank.SwiftCode},
		{"showCurrency", "Currency:", "Currency: ", rc.Currency},
	}

	boxed := cfg.String("style", "stacked") == "boxed"
	if boxed {
		b.Background = panelColor
	}
	for _, e := range entries {
		if !cfg.Bool(e.show, true) || e.value == "" {
			continue
		}
		if boxed {
			b.text(e.prefix+e.value, TextStyle{Size: size, Align: align})
			continue
		}
		b.pair(e.label, e.value, TextStyle{Size: size, Color: mutedColor}, TextStyle{Size: size})
	}
	return b, nil
}

func renderPaymentTerms(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	text := cfg.String("customText", "")
	if text == "" && cfg.Bool("showDefaultTerms", true) {
		text = rc.Settings.QuoteDefaults.PaymentTerms
	}

	b := &Block{}
	b.text(cfg.String("label", "Payment Terms"), sectionLabel(cfg.String("labelColor", rc.Styles.AccentColor), align))
	b.text(text, TextStyle{Size: cfg.Float("fontSize", 9), Color: mutedColor, Align: align})
	return b, nil
}

func renderTermsConditions(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	text := cfg.String("customText", "")
	if text == "" && cfg.Bool("showDefaultTerms", true) {
		text = rc.Settings.QuoteDefaults.TermsAndConditions
	}
	if maxLines := cfg.Int("maxLines", 0); maxLines > 0 {
		lines := strings.Split(text, "\n")
		if len(lines) > maxLines {
			text = strings.Join(lines[:maxLines], "\n")
		}
	}

	b := &Block{}
	b.text(cfg.String("label", "Terms & Conditions"), sectionLabel(cfg.String("labelColor", rc.Styles.AccentColor), align))
	b.text(text, TextStyle{Size: cfg.Float("fontSize", 8), Color: mutedColor, Align: align})
	return b, nil
}

func renderSignature(m Module, _ Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	preparedBy := cfg.Bool("showPreparedBy", true)
	acceptedBy := cfg.Bool("showAcceptedBy", true)
	if !preparedBy && !acceptedBy {
		return &Block{}, nil
	}

	t := &Table{HeaderStyle: TextStyle{Size: 8, Color: mutedColor}}
	var lineRow, nameRow, dateRow []string
	add := func(label, name string) {
		t.Columns = append(t.Columns, Column{Title: label + ":", Weight: 1, Align: AlignLeft})
		lineRow = append(lineRow, "______________________________")
		nameRow = append(nameRow, name)
		dateRow = append(dateRow, "Date: _____________")
	}
	if preparedBy {
		add(cfg.String("preparedByLabel", "Prepared By"), rc.Quote.PreparedBy)
	}
	if acceptedBy {
		add(cfg.String("acceptedByLabel", "Accepted By"), "Name & Signature")
	}

	size := cfg.Float("fontSize", 9)
	t.Rows = append(t.Rows, TableRow{Cells: padCells(nil, len(t.Columns)), Style: TextStyle{Size: size}})
	if cfg.Bool("showSignatureLine", true) {
		t.Rows = append(t.Rows, TableRow{Cells: lineRow, Style: TextStyle{Size: size, Color: cfg.String("lineColor", "#D1D5DB")}})
	}
	t.Rows = append(t.Rows, TableRow{Cells: nameRow, Style: TextStyle{Size: size}})
	if cfg.Bool("showDate", true) {
		t.Rows = append(t.Rows, TableRow{Cells: dateRow, Style: TextStyle{Size: 8, Color: mutedColor}})
	}

	b := &Block{}
	b.table(t)
	return b, nil
}

func renderCustomText(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	b := &Block{}
	if bg := cfg.String("backgroundColor", ""); bg != "" && bg != "transparent" {
		b.Background = bg
	}
	b.text(cfg.String("text", ""), TextStyle{
		Size:  cfg.Float("fontSize", 10),
		Bold:  cfg.String("fontWeight", "normal") == "bold",
		Color: cfg.String("textColor", rc.Styles.TextColor),
		Align: align,
	})
	return b, nil
}

func renderDivider(m Module, _ Alignment, _ *RenderContext) (*Block, error) {
	cfg := m.Config
	dash := cfg.String("style", "solid")
	if dash != "dashed" && dash != "dotted" {
		dash = "solid"
	}

	b := &Block{}
	b.space(cfg.Float("marginTop", 10) * ptToMM)
	b.rule(cfg.Float("thickness", 1), cfg.String("color", borderColor), dash)
	b.space(cfg.Float("marginBottom", 10) * ptToMM)
	return b, nil
}

func renderSpacer(m Module, _ Alignment, _ *RenderContext) (*Block, error) {
	b := &Block{}
	b.space(m.Config.Float("height", 20) * ptToMM)
	return b, nil
}

func renderImage(m Module, align Alignment, _ *RenderContext) (*Block, error) {
	src := m.Config.String("imageUrl", "")
	if src == "" {
		return &Block{}, nil
	}
	b := &Block{}
	b.image(src, m.Config.Float("width", 100))
	if _, explicit := m.Alignment(); !explicit {
		align = AlignCenter
	}
	b.Elements[0].Style.Align = align
	return b, nil
}

func renderFooter(m Module, align Alignment, rc *RenderContext) (*Block, error) {
	cfg := m.Config
	var parts []string
	if cfg.Bool("showCompanyName", true) {
		parts = append(parts, rc.Settings.Company.Name)
	}
	if cfg.Bool("showWebsite", true) {
		parts = append(parts, rc.Settings.Company.Website)
	}
	parts = append(parts, cfg.String("customText", ""))
	if cfg.Bool("showQuoteNumber", false) {
		parts = append(parts, rc.Quote.QuoteNumber)
	}

	sep := "   "
	if align == AlignSpaceBetween {
		sep = "        "
		align = AlignCenter
	}
	b := &Block{}
	b.text(joinNonEmpty(sep, parts...), TextStyle{
		Size:  cfg.Float("fontSize", 8),
		Color: cfg.String("textColor", subtleColor),
		Align: align,
	})
	return b, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
