// ABOUTME: Turn represents one utterance in a conversation
// ABOUTME: Ordered by a fractional decimal index so comments can thread between turns
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TurnKind distinguishes regular conversation turns from threaded comments.
type TurnKind string

const (
	TurnKindRegular TurnKind = "regular"
	TurnKindComment TurnKind = "comment"
)

// Message roles for the assembled context.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance. Turns are append-only: text and embedding
// may be replaced, but TurnIndex and Kind never change once comments
// reference ordering relative to them.
type Turn struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	SpeakerID      string          `json:"speaker_id"`
	Role           string          `json:"role"`
	TurnIndex      decimal.Decimal `json:"turn_index"`
	Text           string          `json:"text"`
	Embedding      []float64       `json:"embedding,omitempty"`
	Kind           TurnKind        `json:"kind"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Message is one {role, content} entry in the ordered context sent to the LLM.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewTurn creates a regular turn with validation.
func NewTurn(conversationID, speakerID, role, text string, index decimal.Decimal) (*Turn, error) {
	if conversationID == "" {
		return nil, errors.New("conversation ID cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("turn text cannot be empty")
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return &Turn{
		ID:             GenerateTurnID(),
		ConversationID: conversationID,
		SpeakerID:      speakerID,
		Role:           role,
		TurnIndex:      index,
		Text:           text,
		Kind:           TurnKindRegular,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// FormatSpeakerPrefix prepends the speaker's name to a prompt so the
// model can attribute utterances in multi-participant conversations.
func FormatSpeakerPrefix(name, text string) string {
	if name == "" {
		return text
	}
	return fmt.Sprintf("<%s>:%s", name, text)
}

// GenerateTurnID generates a unique turn identifier
func GenerateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
