package testutil

import (
	"encoding/json"

	"github.com/nhle/bugtriage/internal/model"
)

// Issue builds an assembled issue for tests. An empty status leaves Status
// nil.
func Issue(id, title, status string) model.Issue {
	issue := model.Issue{
		ID:    id,
		Title: title,
		URL:   "https://www.notion.so/" + id,
		RawProperties: map[string]json.RawMessage{
			"Name": json.RawMessage(`{"type":"title","title":[{"plain_text":` + quote(title) + `}]}`),
		},
	}
	if status != "" {
		issue.Status = &status
		issue.RawProperties["Status"] = json.RawMessage(`{"type":"status","status":{"name":` + quote(status) + `}}`)
	}
	return issue
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
