package store

import "sync"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn entry in the session transcript
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetrievedItem is one nearest-neighbor match, produced fresh per query.
// Distance is pgvector cosine distance, so similarity is 1 - distance.
type RetrievedItem struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	// Distance is nil when the store did not report one; treated as
	// zero distance (similarity 1) downstream.
	Distance *float64 `json:"distance"`
}

// Similarity converts cosine distance to a [0,1] relevance score.
func (r RetrievedItem) Similarity() float64 {
	if r.Distance == nil {
		return 1.0
	}
	s := 1.0 - *r.Distance
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Session holds the mutable per-conversation state: the ordered transcript
// and the highlight state consumed by the visualization layer. One turn
// mutates it at a time; Lock serializes turns on the same session.
type Session struct {
	ID string `json:"id"`

	Messages []ChatMessage `json:"messages"`

	// Corpus row indices of the sources backing the last assistant turn
	HighlightedIndices []int `json:"highlighted_indices"`
	HighlightActive    bool  `json:"highlight_active"`

	LastQuery string `json:"last_query"`

	mu sync.Mutex
}

// NewSession returns an empty session with highlight state cleared.
func NewSession(id string) *Session {
	return &Session{
		ID:                 id,
		Messages:           []ChatMessage{},
		HighlightedIndices: []int{},
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a message to the end of the transcript.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, ChatMessage{Role: role, Content: content})
}

// ClearHighlights resets highlight state ahead of a new turn.
func (s *Session) ClearHighlights() {
	s.HighlightedIndices = []int{}
	s.HighlightActive = false
}
