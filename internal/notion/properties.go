package notion

import (
	"strings"
	"time"
)

// dateLayout is the day-granularity format Notion accepts for date starts.
const dateLayout = "2006-01-02"

// Text flattens a title or rich_text property into a plain string.
func (p Property) Text() string {
	fragments := p.Title
	if len(fragments) == 0 {
		fragments = p.RichText
	}
	var b strings.Builder
	for _, f := range fragments {
		if f.PlainText != "" {
			b.WriteString(f.PlainText)
		} else if f.Text != nil {
			b.WriteString(f.Text.Content)
		}
	}
	return b.String()
}

// NumberValue returns the number property value or the fallback when unset.
func (p Property) NumberValue(fallback float64) float64 {
	if p.Number == nil {
		return fallback
	}
	return *p.Number
}

// SelectName returns the selected option name or "" when unset.
func (p Property) SelectName() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

// CheckboxValue returns the checkbox state, false when unset.
func (p Property) CheckboxValue() bool {
	return p.Checkbox != nil && *p.Checkbox
}

// DateStart parses the date start; ok is false when unset or unparsable.
// Notion returns either a bare date or a full RFC 3339 timestamp.
func (p Property) DateStart() (time.Time, bool) {
	if p.Date == nil || p.Date.Start == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, p.Date.Start); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, p.Date.Start); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FirstRelationID returns the first related page id, "" when unset.
func (p Property) FirstRelationID() string {
	if len(p.Relation) == 0 {
		return ""
	}
	return p.Relation[0].ID
}

// Builders for writable property values.

func titleProp(s string) Property {
	return Property{Title: []RichText{{Text: &TextContent{Content: s}}}}
}

func richTextProp(s string) Property {
	return Property{RichText: []RichText{{Text: &TextContent{Content: s}}}}
}

func numberProp(n float64) Property {
	return Property{Number: &n}
}

func checkboxProp(b bool) Property {
	return Property{Checkbox: &b}
}

func selectProp(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func multiSelectProp(names []string) Property {
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Name: n})
	}
	return Property{MultiSelect: opts}
}

func dateProp(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.Format(dateLayout)}}
}

func dateTimeProp(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.Format(time.RFC3339)}}
}

func relationProp(ids []string) Property {
	rels := make([]Relation, 0, len(ids))
	for _, id := range ids {
		rels = append(rels, Relation{ID: id})
	}
	return Property{Relation: rels}
}
