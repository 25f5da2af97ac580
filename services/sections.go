package services

import "slices"

// SectionDef is a fixed entry of the section registry.
type SectionDef struct {
	ID          string
	Name        string
	Color       string
	Subsections []string
}

// Flat reports whether the section only ever holds a single "Services"
// subsection, whose header is hidden when rendering.
func (d SectionDef) Flat() bool {
	return len(d.Subsections) == 1 && d.Subsections[0] == flatSubsection
}

const flatSubsection = "Services"

// SectionOrder is the default display order.
var SectionOrder = []string{
	"productionTeam",
	"productionEquipment",
	"creative",
	"logistics",
	"expenses",
}

var SectionDefs = map[string]SectionDef{
	"productionTeam": {
		ID:          "productionTeam",
		Name:        "Production Team",
		Color:       "#3B82F6",
		Subsections: []string{"Production", "Technical Crew", "Production Management"},
	},
	"productionEquipment": {
		ID:          "productionEquipment",
		Name:        "Production Equipment",
		Color:       "#06B6D4",
		Subsections: []string{"Video", "Audio", "Cameras", "Graphics", "VT", "Cabling", "Other"},
	},
	"creative": {
		ID:          "creative",
		Name:        "Creative",
		Color:       "#EC4899",
		Subsections: []string{flatSubsection},
	},
	"logistics": {
		ID:          "logistics",
		Name:        "Logistics",
		Color:       "#F59E0B",
		Subsections: []string{flatSubsection},
	},
	"expenses": {
		ID:          "expenses",
		Name:        "Expenses",
		Color:       "#10B981",
		Subsections: []string{flatSubsection},
	},
}

// LookupSection returns the registry entry for id. Sections outside the
// registry get a neutral colour and their id as name.
func LookupSection(id string) SectionDef {
	if def, ok := SectionDefs[id]; ok {
		return def
	}
	return SectionDef{ID: id, Name: id, Color: "#6B7280"}
}

// OrderedSection is a section ready for display.
type OrderedSection struct {
	Def     SectionDef
	Name    string
	Section Section
}

// OrderedSections returns the quote's non-empty sections in display order.
// The quote's own order wins over SectionOrder; sections present in the quote
// but missing from the order are appended in registry order, then by id.
func OrderedSections(q *Quote) []OrderedSection {
	order := q.SectionOrder
	if len(order) == 0 {
		order = SectionOrder
	}

	seen := make(map[string]bool, len(q.Sections))
	var ids []string
	for _, id := range order {
		if _, ok := q.Sections[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range SectionOrder {
		if _, ok := q.Sections[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var rest []string
	for id := range q.Sections {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	ids = append(ids, rest...)

	out := make([]OrderedSection, 0, len(ids))
	for _, id := range ids {
		section := q.Sections[id]
		if CountSectionItems(section) == 0 {
			continue
		}
		def := LookupSection(id)
		name := def.Name
		if custom := q.SectionNames[id]; custom != "" {
			name = custom
		}
		out = append(out, OrderedSection{Def: def, Name: name, Section: section})
	}
	return out
}
