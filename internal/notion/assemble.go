package notion

import (
	"encoding/json"

	"github.com/nhle/bugtriage/internal/model"
)

// Assemble converts a page envelope into an Issue. The property map is
// copied so later changes to page cannot reach the Issue.
func Assemble(page Page) model.Issue {
	props := page.Properties

	raw := make(map[string]json.RawMessage, len(props))
	for name, v := range props {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		raw[name] = cp
	}

	return model.Issue{
		ID:            page.ID,
		Title:         ExtractTitle(props),
		Description:   model.StringPtr(DescriptionRules.Resolve(props)),
		Status:        model.StringPtr(StatusRules.Resolve(props)),
		Priority:      model.StringPtr(PriorityRules.Resolve(props)),
		URL:           page.URL,
		RawProperties: raw,
	}
}
