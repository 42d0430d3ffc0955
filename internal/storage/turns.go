// ABOUTME: Turn persistence for SQLite, including transactional comment insertion
// ABOUTME: Decimal ordering keys are compared in Go; SQLite only stores their strings
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/backstage-chat/context-engine/internal/core"
	"github.com/backstage-chat/context-engine/internal/models"
)

// TurnStore handles turn persistence
type TurnStore struct {
	db *DB
}

// NewTurnStore creates a new TurnStore
func NewTurnStore(db *DB) *TurnStore {
	return &TurnStore{db: db}
}

// Save saves or updates a turn (upsert). The ordering key never changes;
// only text and embedding may be replaced.
func (s *TurnStore) Save(turn *models.Turn) error {
	embeddingJSON, err := marshalEmbedding(turn.Embedding)
	if err != nil {
		return err
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO turns (id, conversation_id, speaker_id, role, turn_index, text, embedding, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding
	`, turn.ID, turn.ConversationID, turn.SpeakerID, turn.Role, turn.TurnIndex.String(),
		turn.Text, embeddingJSON, string(turn.Kind), turn.CreatedAt)

	return err
}

// GetByConversation returns all turns of a conversation ordered by their
// fractional index, comments threaded into place.
func (s *TurnStore) GetByConversation(conversationID string) ([]models.Turn, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, conversation_id, speaker_id, role, turn_index, text, embedding, kind, created_at
		FROM turns
		WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	sortTurnsByIndex(turns)
	return turns, nil
}

// MaxTurnIndex returns the highest ordering key in a conversation, or
// decimal.Zero and false when the conversation has no turns.
func (s *TurnStore) MaxTurnIndex(conversationID string) (decimal.Decimal, bool, error) {
	turns, err := s.GetByConversation(conversationID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(turns) == 0 {
		return decimal.Zero, false, nil
	}
	return turns[len(turns)-1].TurnIndex, true, nil
}

// InsertComment allocates a fractional index strictly between the parent
// turn and its next regular sibling, then inserts the comment. The
// boundary reads and the insert share one transaction so concurrent
// comments on the same parent cannot allocate colliding indices.
func (s *TurnStore) InsertComment(conversationID, speakerID, text string, parent decimal.Decimal, embedding []float64) (*models.Turn, error) {
	embeddingJSON, err := marshalEmbedding(embedding)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query(`
		SELECT turn_index, kind FROM turns WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return nil, err
	}

	var (
		parentSeen  bool
		nextSibling *decimal.Decimal
		existing    []decimal.Decimal
	)
	for rows.Next() {
		var indexStr, kind string
		if err := rows.Scan(&indexStr, &kind); err != nil {
			_ = rows.Close()
			return nil, err
		}
		idx, err := decimal.NewFromString(indexStr)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("corrupt turn index %q: %w", indexStr, err)
		}
		switch {
		case idx.Equal(parent):
			parentSeen = true
		case idx.GreaterThan(parent):
			if models.TurnKind(kind) == models.TurnKindRegular {
				if nextSibling == nil || idx.LessThan(*nextSibling) {
					sibling := idx
					nextSibling = &sibling
				}
			} else {
				existing = append(existing, idx)
			}
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if !parentSeen {
		return nil, fmt.Errorf("parent turn with index %s not found in conversation %s", parent, conversationID)
	}

	next := core.NextSiblingOrDefault(parent, nextSibling)

	// Comments past the sibling boundary belong to a different parent
	inRange := existing[:0]
	for _, idx := range existing {
		if idx.LessThan(next) {
			inRange = append(inRange, idx)
		}
	}

	index, err := core.AllocateCommentIndex(parent, next, inRange)
	if err != nil {
		return nil, err
	}

	comment := &models.Turn{
		ID:             models.GenerateTurnID(),
		ConversationID: conversationID,
		SpeakerID:      speakerID,
		Role:           models.RoleUser,
		TurnIndex:      index,
		Text:           text,
		Embedding:      embedding,
		Kind:           models.TurnKindComment,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = tx.Exec(`
		INSERT INTO turns (id, conversation_id, speaker_id, role, turn_index, text, embedding, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, comment.ID, comment.ConversationID, comment.SpeakerID, comment.Role,
		comment.TurnIndex.String(), comment.Text, embeddingJSON, string(comment.Kind), comment.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return comment, nil
}

func scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	var turns []models.Turn
	for rows.Next() {
		var (
			turn          models.Turn
			indexStr      string
			embeddingJSON sql.NullString
			kind          string
			speakerID     sql.NullString
		)
		if err := rows.Scan(&turn.ID, &turn.ConversationID, &speakerID, &turn.Role,
			&indexStr, &turn.Text, &embeddingJSON, &kind, &turn.CreatedAt); err != nil {
			return nil, err
		}

		idx, err := decimal.NewFromString(indexStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt turn index %q: %w", indexStr, err)
		}
		turn.TurnIndex = idx
		turn.Kind = models.TurnKind(kind)
		if speakerID.Valid {
			turn.SpeakerID = speakerID.String
		}

		if embeddingJSON.Valid && embeddingJSON.String != "" {
			if err := json.Unmarshal([]byte(embeddingJSON.String), &turn.Embedding); err != nil {
				turn.Embedding = nil
			}
		}

		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func sortTurnsByIndex(turns []models.Turn) {
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].TurnIndex.LessThan(turns[j].TurnIndex)
	})
}

func marshalEmbedding(embedding []float64) (string, error) {
	if len(embedding) == 0 {
		return "", nil
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return "", fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(data), nil
}
