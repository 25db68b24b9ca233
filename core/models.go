package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchHit is a single result returned by a search provider.
// URL is the natural key: merging result sets deduplicates on it.
type SearchHit struct {
	Title         string
	URL           string
	Snippet       string
	PublishedDate string // RFC 3339 or date-only; empty when the engine has no date
}

// Chunk is a bounded span of extracted document text carrying source
// provenance. A chunk is owned by the pipeline invocation that created
// it and is enriched in place as it moves through the retrieval funnel:
// first an embedding is attached, then a relevance score.
type Chunk struct {
	Content     string
	SourceURL   string
	Strategy    string // extraction strategy that produced the source document
	Index       int    // position within the source document
	TotalChunks int    // number of chunks produced from the source document
	Embedding   []float32
	Relevance   float32
	Scored      bool // distinguishes a genuine 0.0 relevance from "never scored"
}

// HasEmbedding reports whether an embedding has been attached to the chunk.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    Role
	Content string
}

// Context is the model-ready prompt produced by the context assembler.
// It is opaque to the assembler beyond being a system/user pair.
type Context struct {
	System string
	User   string
}

// LogStatus classifies a pipeline log entry.
type LogStatus string

const (
	LogInfo    LogStatus = "info"
	LogWarning LogStatus = "warning"
	LogError   LogStatus = "error"
)

// LogEntry is one structured pipeline event. Entries are append-only and
// never mutated after creation; ordering is insertion order.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Stage     string         `json:"stage"`
	Status    LogStatus      `json:"status"`
	Data      map[string]any `json:"data"`
}
