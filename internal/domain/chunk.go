package domain

import (
	"fmt"
	"strings"
)

// Namespaces whose documents are retrievable by every user regardless of
// who uploaded them. Everything else is private to the identity that owns
// the path prefix.
const (
	NamespaceShared = "shared"
	NamespaceKCA    = "kca"
)

// Wildcard is the suffix-match token understood by path patterns,
// equivalent to SQL LIKE '%'.
const Wildcard = "%"

// Chunk is the atomic retrievable unit: a bounded text segment with its
// embedding, owned by the document path it was split from.
type Chunk struct {
	ID        string
	Path      string
	Content   string
	Embedding []float32
}

// DocumentPath builds the logical path for a document in a namespace.
func DocumentPath(namespace, documentName string) string {
	return namespace + "/" + documentName
}

// ChunkID builds the id for the index-th chunk of a document.
func ChunkID(namespace, documentName string, index int) string {
	return fmt.Sprintf("%s/%s/%d", namespace, documentName, index)
}

// SharedPathPatterns returns the wildcard patterns for the corpus-wide
// namespaces. The retriever unions these with the caller's selection.
func SharedPathPatterns() []string {
	return []string{
		NamespaceShared + "/" + Wildcard,
		NamespaceKCA + "/" + Wildcard,
	}
}

// IsSharedPath reports whether a path lives in a corpus-wide namespace.
func IsSharedPath(path string) bool {
	return strings.HasPrefix(path, NamespaceShared+"/") ||
		strings.HasPrefix(path, NamespaceKCA+"/")
}

// OwnsPath reports whether the given user identity may mutate or select
// the path. Shared namespaces are readable by everyone but owned by no
// one; private paths belong to the identity they are prefixed with.
func OwnsPath(userEmail, path string) bool {
	if userEmail == "" {
		return false
	}
	return strings.HasPrefix(path, userEmail+"/")
}

// MatchPathPattern reports whether path matches pattern. A pattern is
// either an exact path or contains a single wildcard token matching any
// suffix at that position, mirroring the SQL LIKE predicate the chunk
// store uses so in-memory filtering and persisted queries agree.
func MatchPathPattern(pattern, path string) bool {
	idx := strings.Index(pattern, Wildcard)
	if idx < 0 {
		return pattern == path
	}
	prefix := pattern[:idx]
	suffix := pattern[idx+len(Wildcard):]
	if len(path) < len(prefix)+len(suffix) {
		return false
	}
	return strings.HasPrefix(path, prefix) && strings.HasSuffix(path, suffix)
}
