package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// MinChunkLen is the minimum length in bytes for stored chunk content.
// Shorter fragments are discarded before embedding, never stored.
const MinChunkLen = 20

// ID is a unique identifier for embedding records.
// It is generated from database sequences or content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ResourceIDFromContent derives a resource identifier from its content.
// Used when the caller does not supply an ID: identical content always
// maps to the same resource ID, so accidental double ingestion surfaces
// as a duplicate-key error instead of silent duplication.
func ResourceIDFromContent(content string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Resource is an ingested unit of original text content.
// It is created once by the ingestion pipeline and immutable thereafter.
type Resource struct {
	ID        string
	Content   string    // Original, un-chunked text as submitted
	CreatedAt time.Time // When the resource was inserted into the store
}

// EmbeddingRecord is a stored (chunk content, vector) pair tied to one Resource.
// A Resource owns one or more EmbeddingRecords; records are never mutated
// and are deleted only when their Resource is deleted.
type EmbeddingRecord struct {
	ID         ID
	ResourceID string
	Content    string    // The specific chunk this vector represents
	Vector     []float32 // Fixed dimensionality across the whole store
}

// SearchResult represents a similarity search hit.
type SearchResult struct {
	Record *EmbeddingRecord
	Score  float32
}
