// ABOUTME: SQLite schema for conversation turns and upload chunks
// ABOUTME: Turn ordering keys are stored as decimal strings to keep exact precision
package storage

// Schema contains all SQL statements for database initialization
const Schema = `
-- Turns table (conversation utterances, including threaded comments)
CREATE TABLE IF NOT EXISTS turns (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    speaker_id TEXT,
    role TEXT NOT NULL,
    turn_index TEXT NOT NULL,
    text TEXT NOT NULL,
    embedding TEXT,
    kind TEXT NOT NULL DEFAULT 'regular',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (conversation_id, turn_index)
);

-- Upload chunks table (embedded fragments of uploaded files)
CREATE TABLE IF NOT EXISTS upload_chunks (
    upload_id TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    file_name TEXT,
    text TEXT NOT NULL,
    embedding TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (upload_id, chunk_index)
);

-- Indexes for per-conversation reads
CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id);
CREATE INDEX IF NOT EXISTS idx_chunks_conversation ON upload_chunks(conversation_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
