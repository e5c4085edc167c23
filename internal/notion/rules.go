package notion

// Rule names one place a field may live: a property name and the type it
// must be declared as.
type Rule struct {
	Name string
	Type string
}

// Rules are evaluated in order; the first rule that yields a value wins.
type Rules []Rule

var (
	DescriptionRules = Rules{
		{Name: "Description", Type: TypeRichText},
		{Name: "description", Type: TypeRichText},
	}

	StatusRules = Rules{
		{Name: "Status", Type: TypeStatus},
		{Name: "status", Type: TypeStatus},
		{Name: "Status", Type: TypeSelect},
		{Name: "status", Type: TypeSelect},
	}

	PriorityRules = Rules{
		{Name: "Priority", Type: TypeSelect},
		{Name: "priority", Type: TypeSelect},
	}
)

// Resolve returns the value of the first matching rule. A property that
// matches but holds only empty text does not count as a match.
func (rs Rules) Resolve(props Properties) (string, bool) {
	for _, r := range rs {
		if v, ok := r.extract(props); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (r Rule) extract(props Properties) (string, bool) {
	switch r.Type {
	case TypeRichText:
		return ExtractRichText(props, r.Name)
	case TypeSelect:
		return ExtractSelect(props, r.Name)
	case TypeStatus:
		return ExtractStatus(props, r.Name)
	}
	return "", false
}
