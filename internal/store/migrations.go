package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations. The runner records
// each version in schema_version; versions start at 1 and increase.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	filename   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'uploading', 'failed')),
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id        TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	preview   TEXT NOT NULL DEFAULT '',
	success   INTEGER NOT NULL CHECK(success IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_pending_notes_status ON pending_notes(status);
CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS oauth_sessions (
	id            INTEGER PRIMARY KEY CHECK(id = 1),
	code_verifier TEXT NOT NULL,
	state         TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);
`,
	},
}
