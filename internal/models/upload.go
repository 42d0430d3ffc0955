// ABOUTME: UploadChunk is one embedded fragment of an uploaded file
// ABOUTME: Owned by an upload, itself owned by a conversation; read-only once created
package models

// UploadChunk is a vectorized slice of an uploaded file's text.
type UploadChunk struct {
	UploadID       string    `json:"upload_id"`
	ConversationID string    `json:"conversation_id"`
	ChunkIndex     int       `json:"chunk_index"`
	FileName       string    `json:"file_name"`
	Text           string    `json:"text"`
	Embedding      []float64 `json:"embedding"`
}
