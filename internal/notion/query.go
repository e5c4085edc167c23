package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nhle/bugtriage/internal/model"
	"github.com/nhle/bugtriage/internal/source"
)

// ListIssues queries a database and assembles each row into an Issue.
//
// When opts.Status is set, the database schema is fetched and a filter is
// built for every status-like property. If the server rejects the filter
// with 400 (usually because the value is not one of the live options), the
// query is retried once without it, so the caller gets the full listing
// instead of an error. Pages are followed until opts.Limit issues are
// collected or the database is exhausted.
func (s *Service) ListIssues(ctx context.Context, opts source.ListOptions) ([]model.Issue, error) {
	dbID, err := s.resolveDatabaseID(opts.DatabaseID)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		return []model.Issue{}, nil
	}

	req := QueryRequest{PageSize: min(limit, MaxPageSize)}
	if opts.Status != "" {
		req.Filter = s.statusFilter(ctx, dbID, opts.Status)
	}

	resp, err := s.query(ctx, dbID, req)
	if err != nil {
		if req.Filter == nil || !IsStatus(err, http.StatusBadRequest) {
			s.logger.Error("failed to query database",
				"database_id", dbID, "error", err)
			return nil, fmt.Errorf("querying database %s: %w", dbID, err)
		}

		s.logger.Warn("status filter rejected, fetching all issues instead",
			"database_id", dbID, "status", opts.Status,
			"detail", upstreamMessage(err))

		req.Filter = nil
		resp, err = s.query(ctx, dbID, req)
		if err != nil {
			s.logger.Error("failed to query database even without filter",
				"database_id", dbID, "error", err)
			return nil, fmt.Errorf("querying database %s without filter: %w", dbID, err)
		}
	}

	issues := make([]model.Issue, 0, min(limit, len(resp.Results)))
	seen := make(map[string]bool)
	collect := func(pages []Page) {
		for _, page := range pages {
			if seen[page.ID] {
				continue
			}
			seen[page.ID] = true
			issues = append(issues, Assemble(page))
		}
	}
	collect(resp.Results)

	for resp.HasMore && resp.NextCursor != nil && len(issues) < limit && len(resp.Results) > 0 {
		req.StartCursor = *resp.NextCursor
		req.PageSize = min(limit-len(issues), MaxPageSize)

		resp, err = s.query(ctx, dbID, req)
		if err != nil {
			return nil, fmt.Errorf("querying database %s at cursor %s: %w",
				dbID, req.StartCursor, err)
		}
		collect(resp.Results)
	}

	if len(issues) > limit {
		issues = issues[:limit]
	}
	return issues, nil
}

// GetIssue fetches a single page and assembles it.
func (s *Service) GetIssue(ctx context.Context, id string) (model.Issue, error) {
	var page Page
	if err := s.client.Get(ctx, "/pages/"+url.PathEscape(id), &page); err != nil {
		s.logger.Error("failed to get page", "page_id", id, "error", err)
		return model.Issue{}, fmt.Errorf("getting page %s: %w", id, err)
	}
	return Assemble(page), nil
}

// statusFilter resolves the schema and builds the status filter, logging
// why a listing will be unfiltered when it cannot.
func (s *Service) statusFilter(ctx context.Context, dbID, status string) *Filter {
	schema := s.ResolveSchema(ctx, dbID)
	if len(schema) == 0 {
		s.logger.Warn("could not fetch schema, querying without filter",
			"database_id", dbID)
		return nil
	}

	if len(StatusCandidates(schema)) == 0 {
		s.logger.Warn("no status property found in database schema",
			"database_id", dbID)
		return nil
	}

	f := BuildStatusFilter(schema, status)
	if f == nil {
		s.logger.Warn("status properties have no filterable type",
			"database_id", dbID, "candidates", StatusCandidates(schema))
	}
	return f
}

func (s *Service) query(ctx context.Context, dbID string, req QueryRequest) (*QueryResponse, error) {
	path := fmt.Sprintf("/databases/%s/query", url.PathEscape(dbID))

	var resp QueryResponse
	if err := s.client.Post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
