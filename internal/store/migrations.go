package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
	id             TEXT NOT NULL,
	database_id    TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT,
	status         TEXT,
	priority       TEXT,
	url            TEXT NOT NULL DEFAULT '',
	raw_properties TEXT NOT NULL DEFAULT '{}',
	fetched_at     DATETIME NOT NULL,
	PRIMARY KEY (database_id, id)
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	database_id TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	fetched     INTEGER NOT NULL DEFAULT 0,
	changed     INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_issues_id ON issues(id);
CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_issues_fetched_at ON issues(fetched_at);
CREATE INDEX IF NOT EXISTS idx_sync_runs_database ON sync_runs(database_id, finished_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	issue_id    TEXT NOT NULL,
	database_id TEXT NOT NULL,
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_issue_id ON notifications(issue_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
