package notion

import (
	"context"
	"fmt"
	"net/url"
)

// Schema maps a database's property names (case-sensitive) to their
// declared types. An empty Schema means the schema is unknown, not that
// the database has no properties.
type Schema map[string]string

// ResolveSchema fetches the declared property types of a database. Any
// failure is logged and yields an empty Schema.
func (s *Service) ResolveSchema(ctx context.Context, databaseID string) Schema {
	path := fmt.Sprintf("/databases/%s", url.PathEscape(databaseID))

	var db Database
	if err := s.client.Get(ctx, path, &db); err != nil {
		s.logger.Warn("failed to fetch database schema",
			"database_id", databaseID, "error", err)
		return Schema{}
	}

	schema := make(Schema, len(db.Properties))
	for name, prop := range db.Properties {
		schema[name] = prop.Type
	}
	return schema
}
