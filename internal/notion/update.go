package notion

import (
	"context"
	"fmt"
	"net/url"
)

// PatchStrategy builds one payload shape for writing a status value.
type PatchStrategy struct {
	Name  string
	Build func(property, value string) PageUpdate
}

// DefaultPatchStrategies writes the property as a status first and as a
// select if the server rejects that.
var DefaultPatchStrategies = []PatchStrategy{
	{Name: TypeStatus, Build: statusPatch},
	{Name: TypeSelect, Build: selectPatch},
}

func statusPatch(property, value string) PageUpdate {
	return PageUpdate{Properties: map[string]PropertyPatch{
		property: {Status: &OptionRef{Name: value}},
	}}
}

func selectPatch(property, value string) PageUpdate {
	return PageUpdate{Properties: map[string]PropertyPatch{
		property: {Select: &OptionRef{Name: value}},
	}}
}

// UpdateStatus sets a page's status property. An empty property means the
// service's configured status property. Each patch strategy is tried in turn
// until the server accepts one; only API rejections move on to the next
// strategy. There is no read-back.
func (s *Service) UpdateStatus(ctx context.Context, pageID, status, property string) error {
	if property == "" {
		property = s.statusProperty
	}
	path := "/pages/" + url.PathEscape(pageID)

	var lastErr error
	for _, strategy := range s.strategies {
		err := s.client.Patch(ctx, path, strategy.Build(property, status), nil)
		if err == nil {
			s.logger.Info("updated page status",
				"page_id", pageID, "property", property,
				"status", status, "shape", strategy.Name)
			return nil
		}

		if _, ok := AsAPIError(err); !ok {
			return fmt.Errorf("updating status of page %s: %w", pageID, err)
		}

		s.logger.Debug("status patch rejected",
			"page_id", pageID, "shape", strategy.Name,
			"detail", upstreamMessage(err))
		lastErr = err
	}

	s.logger.Error("failed to update page status",
		"page_id", pageID, "property", property, "error", lastErr)
	return fmt.Errorf("updating status of page %s: %w", pageID, lastErr)
}
