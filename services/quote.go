package services

import "time"

// DocumentKind is the output format a template targets.
type DocumentKind string

const (
	KindQuote    DocumentKind = "quote"
	KindInvoice  DocumentKind = "invoice"
	KindProposal DocumentKind = "proposal"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case KindQuote, KindInvoice, KindProposal:
		return true
	}
	return false
}

// Quote is the in-memory document the pricing engine and composer work on.
type Quote struct {
	ID           string            `json:"id"`
	QuoteNumber  string            `json:"quoteNumber"`
	Title        string            `json:"title"`
	Currency     string            `json:"currency"`
	Client       Client            `json:"client"`
	Project      Project           `json:"project"`
	Fees         FeeConfig         `json:"fees"`
	Sections     Sections          `json:"sections"`
	SectionOrder []string          `json:"sectionOrder,omitempty"`
	SectionNames map[string]string `json:"sectionNames,omitempty"`
	ValidityDays int               `json:"validityDays"`
	PreparedBy   string            `json:"preparedBy,omitempty"`
	QuoteDate    time.Time         `json:"quoteDate"`
}

type Client struct {
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Project struct {
	Title     string `json:"title"`
	Venue     string `json:"venue"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Template is a page setup plus the ordered module list that drives packing.
type Template struct {
	ID        string       `json:"id" toml:"-"`
	Name      string       `json:"name" toml:"name"`
	Kind      DocumentKind `json:"kind" toml:"kind"`
	IsDefault bool         `json:"isDefault" toml:"is_default"`
	Page      PageSettings `json:"pageSettings" toml:"page"`
	Styles    StyleTokens  `json:"styles" toml:"styles"`
	Modules   []Module     `json:"modules" toml:"modules"`
}

type PageSettings struct {
	Size         string  `json:"size" toml:"size"`
	Orientation  string  `json:"orientation" toml:"orientation"`
	MarginTop    float64 `json:"marginTop" toml:"margin_top"`
	MarginRight  float64 `json:"marginRight" toml:"margin_right"`
	MarginBottom float64 `json:"marginBottom" toml:"margin_bottom"`
	MarginLeft   float64 `json:"marginLeft" toml:"margin_left"`
}

// withDefaults fills unset page settings with A4 portrait and 15mm margins.
func (p PageSettings) withDefaults() PageSettings {
	if p.Size == "" {
		p.Size = "A4"
	}
	if p.Orientation == "" {
		p.Orientation = "portrait"
	}
	for _, m := range []*float64{&p.MarginTop, &p.MarginRight, &p.MarginBottom, &p.MarginLeft} {
		if *m <= 0 {
			*m = 15
		}
	}
	return p
}

// StyleTokens are template-wide visual settings.
type StyleTokens struct {
	PrimaryColor string  `json:"primaryColor" toml:"primary_color"`
	AccentColor  string  `json:"accentColor" toml:"accent_color"`
	TextColor    string  `json:"textColor" toml:"text_color"`
	FontSize     float64 `json:"fontSize" toml:"font_size"`
}

func (s StyleTokens) withDefaults() StyleTokens {
	if s.PrimaryColor == "" {
		s.PrimaryColor = "#1F2937"
	}
	if s.AccentColor == "" {
		s.AccentColor = "#3B82F6"
	}
	if s.TextColor == "" {
		s.TextColor = "#111827"
	}
	if s.FontSize <= 0 {
		s.FontSize = 9
	}
	return s
}
