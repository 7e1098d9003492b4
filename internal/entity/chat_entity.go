package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the persisted conversation container. The in-memory
// highlight state lives in pkg/store and is rebuilt per process; this row
// survives restarts so history can be replayed.
type ChatSession struct {
	Id        uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is one persisted turn half, user or assistant.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	CreatedAt     time.Time
}
