package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Documents table: one row per crawled page, keyed by URL
CREATE TABLE IF NOT EXISTS documents (
    doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    meta_keywords TEXT NOT NULL DEFAULT '',
    visible_text TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',

    -- Computed once at ingestion, cached for every later search
    quality_score REAL NOT NULL DEFAULT 0,

    -- Monotonically non-decreasing over the document's lifetime
    click_count INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0),

    last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_click_count ON documents(click_count);
`
