package services

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// Collection names.
const (
	CollectionQuotes    = "quotes"
	CollectionLineItems = "quote_line_items"
	CollectionTemplates = "document_templates"
	CollectionDocuments = "documents"
)

// QuoteStore loads and saves the plain quote and template values the
// composer works on.
type QuoteStore interface {
	LoadQuote(ctx context.Context, id string) (*Quote, error)
	SaveQuote(ctx context.Context, q *Quote) error
	LoadTemplate(ctx context.Context, id string) (*Template, error)
	DefaultTemplate(ctx context.Context, kind DocumentKind) (*Template, error)
	SaveTemplate(ctx context.Context, tpl *Template) error
}

// RecordStore is the QuoteStore backed by PocketBase collections. Line items
// live in their own collection, one record per item.
type RecordStore struct {
	app core.App
}

func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) LoadQuote(ctx context.Context, id string) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.app.FindRecordById(CollectionQuotes, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote %s: %w", id, ErrQuoteNotFound)
		}
		return nil, fmt.Errorf("load quote %s: %w", id, err)
	}

	q, err := quoteFromRecord(rec)
	if err != nil {
		return nil, err
	}

	items, err := s.app.FindRecordsByFilter(
		CollectionLineItems,
		"quote = {:quote}",
		"sort_order",
		0,
		0,
		dbx.Params{"quote": id},
	)
	if err != nil {
		return nil, fmt.Errorf("load line items for quote %s: %w", id, err)
	}
	q.Sections = sectionsFromRecords(items)
	return q, nil
}

func quoteFromRecord(rec *core.Record) (*Quote, error) {
	q := &Quote{
		ID:           rec.Id,
		QuoteNumber:  rec.GetString("quote_number"),
		Title:        rec.GetString("title"),
		Currency:     rec.GetString("currency"),
		ValidityDays: rec.GetInt("validity_days"),
		PreparedBy:   rec.GetString("prepared_by"),
		QuoteDate:    rec.GetDateTime("quote_date").Time(),
	}
	if q.QuoteDate.IsZero() {
		q.QuoteDate = rec.GetDateTime("created").Time()
	}

	jsonFields := []struct {
		name string
		dst  any
	}{
		{"client", &q.Client},
		{"project", &q.Project},
		{"fees", &q.Fees},
		{"section_order", &q.SectionOrder},
		{"section_names", &q.SectionNames},
	}
	for _, f := range jsonFields {
		if rec.GetString(f.name) == "" {
			continue
		}
		if err := rec.UnmarshalJSONField(f.name, f.dst); err != nil {
			return nil, fmt.Errorf("quote %s: decode %s: %w", rec.Id, f.name, err)
		}
	}
	return q, nil
}

// sectionsFromRecords groups line item records into sections. Subsections
// keep the order given by subsection_order, then first appearance; items
// keep the order they were fetched in.
func sectionsFromRecords(records []*core.Record) Sections {
	type subKey struct{ section, name string }
	type subEntry struct {
		order int
		seen  int
		items []LineItem
	}

	subs := make(map[subKey]*subEntry)
	var keys []subKey
	for i, rec := range records {
		k := subKey{rec.GetString("section"), rec.GetString("subsection")}
		e, ok := subs[k]
		if !ok {
			e = &subEntry{order: rec.GetInt("subsection_order"), seen: i}
			subs[k] = e
			keys = append(keys, k)
		}
		e.items = append(e.items, LineItem{
			ID:       rec.Id,
			Name:     rec.GetString("name"),
			Quantity: rec.GetFloat("quantity"),
			Days:     rec.GetFloat("days"),
			Cost:     rec.GetFloat("cost"),
			Charge:   rec.GetFloat("charge"),
		})
	}

	slices.SortStableFunc(keys, func(a, b subKey) int {
		ea, eb := subs[a], subs[b]
		if c := cmp.Compare(ea.order, eb.order); c != 0 {
			return c
		}
		return cmp.Compare(ea.seen, eb.seen)
	})

	sections := make(Sections)
	for _, k := range keys {
		sec := sections[k.section]
		sec.Subsections = append(sec.Subsections, Subsection{Name: k.name, Items: subs[k].items})
		sections[k.section] = sec
	}
	return sections
}

// SaveQuote writes the quote record and replaces all of its line items in
// one transaction. A quote without an ID is created and gets one.
func (s *RecordStore) SaveQuote(ctx context.Context, q *Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.app.RunInTransaction(func(txApp core.App) error {
		var rec *core.Record
		if q.ID != "" {
			existing, err := txApp.FindRecordById(CollectionQuotes, q.ID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("find quote %s: %w", q.ID, err)
			}
			rec = existing
		}
		if rec == nil {
			col, err := txApp.FindCollectionByNameOrId(CollectionQuotes)
			if err != nil {
				return fmt.Errorf("find quotes collection: %w", err)
			}
			rec = core.NewRecord(col)
			if q.ID != "" {
				rec.Id = q.ID
			}
		}

		rec.Set("quote_number", q.QuoteNumber)
		rec.Set("title", q.Title)
		rec.Set("currency", q.Currency)
		rec.Set("client", q.Client)
		rec.Set("project", q.Project)
		rec.Set("fees", q.Fees)
		rec.Set("section_order", q.SectionOrder)
		rec.Set("section_names", q.SectionNames)
		rec.Set("validity_days", q.ValidityDays)
		rec.Set("prepared_by", q.PreparedBy)
		if !q.QuoteDate.IsZero() {
			rec.Set("quote_date", q.QuoteDate)
		}
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save quote: %w", err)
		}
		q.ID = rec.Id

		old, err := txApp.FindRecordsByFilter(CollectionLineItems, "quote = {:quote}", "", 0, 0, dbx.Params{"quote": q.ID})
		if err != nil {
			return fmt.Errorf("find old line items: %w", err)
		}
		for _, r := range old {
			if err := txApp.Delete(r); err != nil {
				return fmt.Errorf("delete line item %s: %w", r.Id, err)
			}
		}

		itemsCol, err := txApp.FindCollectionByNameOrId(CollectionLineItems)
		if err != nil {
			return fmt.Errorf("find line items collection: %w", err)
		}
		sort := 0
		for _, sectionID := range sectionIDs(q) {
			for subOrder, sub := range q.Sections[sectionID].Subsections {
				for _, item := range sub.Items {
					r := core.NewRecord(itemsCol)
					r.Set("quote", q.ID)
					r.Set("section", sectionID)
					r.Set("subsection", sub.Name)
					r.Set("subsection_order", subOrder)
					r.Set("sort_order", sort)
					r.Set("name", item.Name)
					r.Set("quantity", item.Quantity)
					r.Set("days", item.Days)
					r.Set("cost", item.Cost)
					r.Set("charge", item.Charge)
					if err := txApp.Save(r); err != nil {
						return fmt.Errorf("save line item %q: %w", item.Name, err)
					}
					sort++
				}
			}
		}
		return nil
	})
}

// sectionIDs returns the quote's section ids in a stable order.
func sectionIDs(q *Quote) []string {
	ids := make([]string, 0, len(q.Sections))
	for id := range q.Sections {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *RecordStore) LoadTemplate(ctx context.Context, id string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.app.FindRecordById(CollectionTemplates, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	return TemplateFromRecord(rec)
}

// DefaultTemplate returns the template flagged as default for kind, or the
// oldest template of that kind.
func (s *RecordStore) DefaultTemplate(ctx context.Context, kind DocumentKind) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := s.app.FindRecordsByFilter(
		CollectionTemplates,
		"kind = {:kind}",
		"-is_default,created",
		1,
		0,
		dbx.Params{"kind": string(kind)},
	)
	if err != nil {
		return nil, fmt.Errorf("find default %s template: %w", kind, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no %s template: %w", kind, ErrTemplateNotFound)
	}
	return TemplateFromRecord(recs[0])
}

// TemplateFromRecord decodes a document_templates record.
func TemplateFromRecord(rec *core.Record) (*Template, error) {
	tpl := &Template{
		ID:        rec.Id,
		Name:      rec.GetString("name"),
		Kind:      DocumentKind(rec.GetString("kind")),
		IsDefault: rec.GetBool("is_default"),
	}
	jsonFields := []struct {
		name string
		dst  any
	}{
		{"page_settings", &tpl.Page},
		{"styles", &tpl.Styles},
		{"modules", &tpl.Modules},
	}
	for _, f := range jsonFields {
		if rec.GetString(f.name) == "" {
			continue
		}
		if err := rec.UnmarshalJSONField(f.name, f.dst); err != nil {
			return nil, fmt.Errorf("template %s: decode %s: %w", rec.Id, f.name, err)
		}
	}
	return tpl, nil
}

// SaveTemplate creates or updates a template record. Making a template the
// default clears the flag on the other templates of its kind.
func (s *RecordStore) SaveTemplate(ctx context.Context, tpl *Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.app.RunInTransaction(func(txApp core.App) error {
		var rec *core.Record
		if tpl.ID != "" {
			existing, err := txApp.FindRecordById(CollectionTemplates, tpl.ID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("find template %s: %w", tpl.ID, err)
			}
			rec = existing
		}
		if rec == nil {
			col, err := txApp.FindCollectionByNameOrId(CollectionTemplates)
			if err != nil {
				return fmt.Errorf("find templates collection: %w", err)
			}
			rec = core.NewRecord(col)
		}

		if tpl.IsDefault {
			others, err := txApp.FindRecordsByFilter(
				CollectionTemplates,
				"kind = {:kind} && is_default = true && id != {:id}",
				"", 0, 0,
				dbx.Params{"kind": string(tpl.Kind), "id": rec.Id},
			)
			if err != nil {
				return fmt.Errorf("find default templates: %w", err)
			}
			for _, o := range others {
				o.Set("is_default", false)
				if err := txApp.Save(o); err != nil {
					return fmt.Errorf("clear default on %s: %w", o.Id, err)
				}
			}
		}

		rec.Set("name", tpl.Name)
		rec.Set("kind", string(tpl.Kind))
		rec.Set("is_default", tpl.IsDefault)
		rec.Set("page_settings", tpl.Page)
		rec.Set("styles", tpl.Styles)
		rec.Set("modules", tpl.Modules)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save template %q: %w", tpl.Name, err)
		}
		tpl.ID = rec.Id
		return nil
	})
}

// ChangeEvent describes a record change seen by Subscribe.
type ChangeEvent struct {
	Action     string
	Collection string
	Record     *core.Record
}

// Subscribe calls onChange after every successful create, update or delete
// in collection. Errors from onChange are logged by PocketBase's hook chain
// only if returned; onChange cannot veto the change.
func Subscribe(app core.App, collection string, onChange func(ChangeEvent)) {
	notify := func(action string) func(e *core.RecordEvent) error {
		return func(e *core.RecordEvent) error {
			onChange(ChangeEvent{Action: action, Collection: collection, Record: e.Record})
			return e.Next()
		}
	}
	app.OnRecordAfterCreateSuccess(collection).BindFunc(notify("create"))
	app.OnRecordAfterUpdateSuccess(collection).BindFunc(notify("update"))
	app.OnRecordAfterDeleteSuccess(collection).BindFunc(notify("delete"))
}
