// ABOUTME: Unified Storage layer that wraps the SQLite stores
// ABOUTME: Owns turn ordering: appends get whole indices, comments get fractional ones
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/backstage-chat/context-engine/internal/models"
)

// Storage manages all persistent conversation data using SQLite
type Storage struct {
	db      *DB
	turns   *TurnStore
	uploads *UploadStore
	mu      sync.Mutex
}

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{
		db:      db,
		turns:   NewTurnStore(db),
		uploads: NewUploadStore(db),
	}, nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	return &Storage{
		db:      db,
		turns:   NewTurnStore(db),
		uploads: NewUploadStore(db),
	}, nil
}

// Path returns the backing database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTurn persists a turn with the index it already carries
func (s *Storage) SaveTurn(turn *models.Turn) error {
	return s.turns.Save(turn)
}

// AppendTurn stores a new regular turn at the end of a conversation.
// Regular turns get whole-number indices; the fractional space between
// them is reserved for comments.
func (s *Storage) AppendTurn(conversationID, speakerID, role, text string, embedding []float64) (*models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxIndex, found, err := s.turns.MaxTurnIndex(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read max turn index: %w", err)
	}

	index := decimal.Zero
	if found {
		index = maxIndex.Floor().Add(decimal.NewFromInt(1))
	}

	turn, err := models.NewTurn(conversationID, speakerID, role, text, index)
	if err != nil {
		return nil, err
	}
	turn.Embedding = embedding
	turn.CreatedAt = time.Now().UTC()

	if err := s.turns.Save(turn); err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}
	return turn, nil
}

// InsertComment threads a comment under the turn with the given index.
// Allocation and insertion run in one transaction.
func (s *Storage) InsertComment(conversationID, speakerID, text string, parent decimal.Decimal, embedding []float64) (*models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns.InsertComment(conversationID, speakerID, text, parent, embedding)
}

// GetTurnsByConversation returns a conversation's turns in fractional
// index order, comments threaded into place.
func (s *Storage) GetTurnsByConversation(conversationID string) ([]models.Turn, error) {
	return s.turns.GetByConversation(conversationID)
}

// SaveUploadChunk persists one embedded fragment of an uploaded file
func (s *Storage) SaveUploadChunk(chunk *models.UploadChunk) error {
	return s.uploads.Save(chunk)
}

// GetUploadChunksByConversation returns all chunks uploaded to a conversation
func (s *Storage) GetUploadChunksByConversation(conversationID string) ([]models.UploadChunk, error) {
	return s.uploads.GetByConversation(conversationID)
}
