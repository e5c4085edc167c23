package notion

import (
	"sort"
	"strings"
)

// statusLikeNames are the lower-cased property names treated as holding an
// issue's state.
var statusLikeNames = map[string]bool{
	"status": true,
	"state":  true,
	"stage":  true,
}

// StatusCandidates returns the schema's status-like property names in
// sorted order.
func StatusCandidates(schema Schema) []string {
	var names []string
	for name := range schema {
		if statusLikeNames[strings.ToLower(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BuildStatusFilter returns a filter matching value against every
// status-like property the schema can express it on. A single condition is
// returned bare; several are combined with "or". It returns nil when no
// property can carry the filter.
func BuildStatusFilter(schema Schema, value string) *Filter {
	var conditions []Filter
	for _, name := range StatusCandidates(schema) {
		if c, ok := statusCondition(name, schema[name], value); ok {
			conditions = append(conditions, c)
		}
	}

	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return &conditions[0]
	default:
		return &Filter{Or: conditions}
	}
}

func statusCondition(name, typ, value string) (Filter, bool) {
	switch typ {
	case TypeStatus:
		return Filter{Property: name, Status: &Condition{Equals: value}}, true
	case TypeSelect:
		return Filter{Property: name, Select: &Condition{Equals: value}}, true
	case TypeMultiSelect:
		return Filter{Property: name, MultiSelect: &Condition{Contains: value}}, true
	}
	return Filter{}, false
}
