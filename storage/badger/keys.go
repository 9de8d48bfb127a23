package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/lexemic/recall/core"
)

// Key prefixes for different data types
const (
	resourcePrefix          = "resrec"
	embeddingPrefix         = "embrec"
	embeddingResourcePrefix = "embres"
	embeddingIDSeq          = "embrecseq"
	dimensionKey            = "embdim"
)

// makeResourceKey generates a key for a resource by ID.
func makeResourceKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", resourcePrefix, id))
}

// makeEmbeddingKey generates a key for an embedding record by ID.
// The ID is written in BigEndian order so lexicographic key iteration
// follows insertion order.
func makeEmbeddingKey(id core.ID) []byte {
	prefix := embeddingPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeEmbeddingResourceKey generates a composite key for the
// resource-to-embedding index.
// Format: prefix:resourceID:recordID
func makeEmbeddingResourceKey(resourceID string, id core.ID) []byte {
	prefix := embeddingResourcePrefix + ":" + resourceID + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEmbeddingResourceKey generates a partial key for listing all
// embedding records owned by one resource.
func makePartialEmbeddingResourceKey(resourceID string) []byte {
	return []byte(embeddingResourcePrefix + ":" + resourceID + ":")
}
