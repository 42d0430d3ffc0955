// ABOUTME: Upload chunk persistence for SQLite
// ABOUTME: Chunks are immutable once written; reads are per-conversation
package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/backstage-chat/context-engine/internal/models"
)

// UploadStore handles upload chunk persistence
type UploadStore struct {
	db *DB
}

// NewUploadStore creates a new UploadStore
func NewUploadStore(db *DB) *UploadStore {
	return &UploadStore{db: db}
}

// Save inserts an upload chunk. Chunks are write-once; saving the same
// (upload, index) pair again replaces the row.
func (s *UploadStore) Save(chunk *models.UploadChunk) error {
	embeddingJSON, err := marshalEmbedding(chunk.Embedding)
	if err != nil {
		return err
	}

	_, err = s.db.conn.Exec(`
		INSERT OR REPLACE INTO upload_chunks (upload_id, conversation_id, chunk_index, file_name, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, chunk.UploadID, chunk.ConversationID, chunk.ChunkIndex, chunk.FileName, chunk.Text, embeddingJSON)

	return err
}

// GetByConversation returns all chunks uploaded to a conversation,
// ordered by upload then chunk position.
func (s *UploadStore) GetByConversation(conversationID string) ([]models.UploadChunk, error) {
	rows, err := s.db.conn.Query(`
		SELECT upload_id, conversation_id, chunk_index, file_name, text, embedding
		FROM upload_chunks
		WHERE conversation_id = ?
		ORDER BY upload_id, chunk_index
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.UploadChunk
	for rows.Next() {
		var (
			chunk         models.UploadChunk
			fileName      sql.NullString
			embeddingJSON sql.NullString
		)
		if err := rows.Scan(&chunk.UploadID, &chunk.ConversationID, &chunk.ChunkIndex,
			&fileName, &chunk.Text, &embeddingJSON); err != nil {
			return nil, err
		}
		if fileName.Valid {
			chunk.FileName = fileName.String
		}
		if embeddingJSON.Valid && embeddingJSON.String != "" {
			if err := json.Unmarshal([]byte(embeddingJSON.String), &chunk.Embedding); err != nil {
				chunk.Embedding = nil
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
