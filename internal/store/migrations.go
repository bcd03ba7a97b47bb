package store

const createTableSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_uuid     TEXT NOT NULL UNIQUE,
    hostname          TEXT NOT NULL,
    source            TEXT NOT NULL DEFAULT '',
    kernel            TEXT NOT NULL DEFAULT '',
    device_count      INTEGER NOT NULL DEFAULT 0,
    avg_frequency_mts INTEGER NOT NULL DEFAULT 0,
    collected_at      TEXT NOT NULL,
    stored_at         TEXT NOT NULL,
    snapshot_json     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_hostname ON snapshots(hostname);
CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots(source);
CREATE INDEX IF NOT EXISTS idx_snapshots_collected_at ON snapshots(collected_at);
`
