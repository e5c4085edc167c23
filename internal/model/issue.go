package model

import "encoding/json"

// UntitledIssue is the title given to pages whose title property is missing
// or empty.
const UntitledIssue = "Untitled"

// Issue is the tracker-neutral record of one bug, assembled from a single
// database page. An Issue is a snapshot: it is never updated in place.
type Issue struct {
	// ID is the source page identifier.
	ID string `json:"page_id"`

	// Title is never empty; see UntitledIssue.
	Title string `json:"title"`

	Description *string `json:"description"`

	// Status is the option name, whether the source property is a status
	// or a select field.
	Status *string `json:"status"`

	Priority *string `json:"priority"`

	// URL links back to the page. It may be empty.
	URL string `json:"url"`

	// RawProperties is the untransformed property map from the source.
	RawProperties map[string]json.RawMessage `json:"-"`
}

// Property returns a copy of the raw JSON for the named property.
func (i Issue) Property(name string) (json.RawMessage, bool) {
	raw, ok := i.RawProperties[name]
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true
}

// StatusOr returns the status name or fallback when the issue has none.
func (i Issue) StatusOr(fallback string) string {
	if i.Status == nil {
		return fallback
	}
	return *i.Status
}

// PriorityOr returns the priority name or fallback when the issue has none.
func (i Issue) PriorityOr(fallback string) string {
	if i.Priority == nil {
		return fallback
	}
	return *i.Priority
}

// DescriptionOr returns the description or fallback when the issue has none.
func (i Issue) DescriptionOr(fallback string) string {
	if i.Description == nil {
		return fallback
	}
	return *i.Description
}

// StringPtr returns a pointer to s, or nil when ok is false.
func StringPtr(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
