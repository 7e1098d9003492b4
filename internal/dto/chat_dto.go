package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Content       string    `json:"content" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceDTO is one retrieved document behind an answer, in retrieval
// order (most similar first).
type SourceDTO struct {
	Id         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Link       string            `json:"link,omitempty"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type SendChatResponse struct {
	ChatSessionId      uuid.UUID             `json:"chat_session_id"`
	Sent               *SendChatResponseChat `json:"sent"`
	Reply              *SendChatResponseChat `json:"reply"`
	Mode               string                `json:"mode"` // "answer" | "safety_rejection"
	DetectedLanguage   string                `json:"detected_language,omitempty"`
	Sources            []SourceDTO           `json:"sources,omitempty"`
	HighlightedIndices []int                 `json:"highlighted_indices"`
	HighlightActive    bool                  `json:"highlight_active"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

// GetHighlightsResponse exposes the per-session highlight state consumed
// by the corpus visualizer.
type GetHighlightsResponse struct {
	ChatSessionId      uuid.UUID `json:"chat_session_id"`
	HighlightedIndices []int     `json:"highlighted_indices"`
	HighlightActive    bool      `json:"highlight_active"`
	LastQuery          string    `json:"last_query,omitempty"`
}
