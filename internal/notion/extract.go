package notion

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/nhle/bugtriage/internal/model"
)

// Property type tags read by the extractors.
const (
	TypeTitle       = "title"
	TypeRichText    = "rich_text"
	TypeSelect      = "select"
	TypeStatus      = "status"
	TypeMultiSelect = "multi_select"
)

// value decodes the named property. Missing or malformed properties report
// false; absence is normal and never an error.
func (p Properties) value(name string) (PropertyValue, bool) {
	raw, ok := p[name]
	if !ok {
		return PropertyValue{}, false
	}
	var v PropertyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return PropertyValue{}, false
	}
	return v, true
}

// Type returns the declared type of the named property, or "" when it is
// missing or malformed.
func (p Properties) Type(name string) string {
	v, ok := p.value(name)
	if !ok {
		return ""
	}
	return v.Type
}

// ExtractTitle returns the text of the page's title-typed property, whatever
// its display name. It returns model.UntitledIssue when no title property
// has text.
func ExtractTitle(props Properties) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, ok := props.value(name)
		if !ok || v.Type != TypeTitle {
			continue
		}
		if text := joinPlainText(v.Title); text != "" {
			return text
		}
	}
	return model.UntitledIssue
}

// ExtractRichText returns the concatenated runs of the named rich_text
// property.
func ExtractRichText(props Properties, name string) (string, bool) {
	v, ok := props.value(name)
	if !ok || v.Type != TypeRichText || len(v.RichText) == 0 {
		return "", false
	}
	return joinPlainText(v.RichText), true
}

// ExtractSelect returns the option name of the named select property.
func ExtractSelect(props Properties, name string) (string, bool) {
	v, ok := props.value(name)
	if !ok || v.Type != TypeSelect || v.Select == nil {
		return "", false
	}
	return v.Select.Name, true
}

// ExtractStatus returns the option name of the named status property.
func ExtractStatus(props Properties, name string) (string, bool) {
	v, ok := props.value(name)
	if !ok || v.Type != TypeStatus || v.Status == nil {
		return "", false
	}
	return v.Status.Name, true
}

// ExtractMultiSelect returns the option names of the named multi_select
// property, in order.
func ExtractMultiSelect(props Properties, name string) ([]string, bool) {
	v, ok := props.value(name)
	if !ok || v.Type != TypeMultiSelect || len(v.MultiSelect) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(v.MultiSelect))
	for _, opt := range v.MultiSelect {
		names = append(names, opt.Name)
	}
	return names, true
}

// Describe renders one raw property for display: its declared type and a
// plain-text value. Types without an extractor yield an empty value.
func Describe(raw json.RawMessage) (typ, text string) {
	const key = "value"
	props := Properties{key: raw}
	typ = props.Type(key)

	switch typ {
	case TypeTitle:
		if v, ok := props.value(key); ok {
			text = joinPlainText(v.Title)
		}
	case TypeRichText:
		text, _ = ExtractRichText(props, key)
	case TypeSelect:
		text, _ = ExtractSelect(props, key)
	case TypeStatus:
		text, _ = ExtractStatus(props, key)
	case TypeMultiSelect:
		if names, ok := ExtractMultiSelect(props, key); ok {
			text = strings.Join(names, ", ")
		}
	}
	return typ, text
}

func joinPlainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}
