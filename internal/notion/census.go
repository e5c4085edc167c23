package notion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nhle/bugtriage/internal/model"
)

// NoStatus is the census bucket for issues without a status value.
const NoStatus = "(none)"

// notStartedNames are lower-cased status values treated as "not started".
var notStartedNames = map[string]bool{
	"not started": true,
	"not_started": true,
	"notstarted":  true,
	"to do":       true,
	"todo":        true,
	"new":         true,
	"open":        true,
	"backlog":     true,
}

// IsNotStarted reports whether a status value means work has not begun.
func IsNotStarted(status string) bool {
	return notStartedNames[strings.ToLower(strings.TrimSpace(status))]
}

// Census summarises every issue in a database by status.
type Census struct {
	DatabaseID string
	Total      int
	Pages      int

	// Counts maps each status value to its number of issues. Issues
	// without a status are counted under NoStatus.
	Counts map[string]int

	// NotStarted holds the issues whose status IsNotStarted.
	NotStarted []model.Issue
}

// Statuses returns the distinct status values in sorted order, excluding
// NoStatus.
func (c *Census) Statuses() []string {
	out := make([]string, 0, len(c.Counts))
	for status := range c.Counts {
		if status != NoStatus {
			out = append(out, status)
		}
	}
	sort.Strings(out)
	return out
}

// Census walks every page of a database, unfiltered, and tallies statuses.
func (s *Service) Census(ctx context.Context, databaseID string) (*Census, error) {
	dbID, err := s.resolveDatabaseID(databaseID)
	if err != nil {
		return nil, err
	}

	c := &Census{DatabaseID: dbID, Counts: make(map[string]int)}
	seen := make(map[string]bool)
	req := QueryRequest{PageSize: MaxPageSize}

	for {
		resp, err := s.query(ctx, dbID, req)
		if err != nil {
			return nil, fmt.Errorf("census of database %s, page %d: %w", dbID, c.Pages+1, err)
		}
		c.Pages++

		for _, page := range resp.Results {
			if seen[page.ID] {
				continue
			}
			seen[page.ID] = true

			issue := Assemble(page)
			c.Total++
			status := issue.StatusOr(NoStatus)
			c.Counts[status]++
			if issue.Status != nil && IsNotStarted(*issue.Status) {
				c.NotStarted = append(c.NotStarted, issue)
			}
		}

		s.logger.Debug("census page fetched",
			"database_id", dbID, "page", c.Pages,
			"rows", len(resp.Results), "has_more", resp.HasMore)

		if !resp.HasMore || resp.NextCursor == nil || len(resp.Results) == 0 {
			break
		}
		req.StartCursor = *resp.NextCursor
	}

	s.logger.Info("census complete",
		"database_id", dbID, "total", c.Total, "statuses", len(c.Counts))
	return c, nil
}
