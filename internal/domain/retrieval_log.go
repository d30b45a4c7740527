package domain

import "time"

// RetrievalLogEntry records one retrieval round for later analysis:
// what was asked, what paths were searched, and which chunks came back.
type RetrievalLogEntry struct {
	ID             string
	ConversationID string
	Author         string
	Query          string
	ExpandedQuery  string
	Patterns       []string
	ChunkIDs       []string
	TopScore       float64
	CreatedAt      time.Time
}
