package store

// schema defines the operation history table. One row per backup,
// restore, or externally observed backup file.
const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	profile     TEXT NOT NULL,
	kind        TEXT NOT NULL CHECK (kind IN ('backup', 'restore', 'external')),
	file        TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL CHECK (status IN ('ok', 'error')),
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operations_profile ON operations(profile);
CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at);
`
