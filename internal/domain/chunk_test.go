package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "shared/handbook.txt/0", ChunkID(NamespaceShared, "handbook.txt", 0))
	assert.Equal(t, "a@x.com/notes.txt/12", ChunkID("a@x.com", "notes.txt", 12))
}

func TestDocumentPath(t *testing.T) {
	assert.Equal(t, "kca/policy.md", DocumentPath(NamespaceKCA, "policy.md"))
}

func TestMatchPathPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact match", "shared/doc.txt", "shared/doc.txt", true},
		{"exact mismatch", "shared/doc.txt", "shared/other.txt", false},
		{"trailing wildcard matches prefix", "shared/%", "shared/doc.txt", true},
		{"trailing wildcard matches nested", "shared/%", "shared/sub/doc.txt", true},
		{"trailing wildcard rejects other prefix", "shared/%", "kca/doc.txt", false},
		{"wildcard does not match shorter path", "shared/%", "shared", false},
		{"embedded wildcard", "a@x.com/%.txt", "a@x.com/notes.txt", true},
		{"embedded wildcard suffix mismatch", "a@x.com/%.txt", "a@x.com/notes.md", false},
		{"empty wildcard suffix allowed", "a@x.com/%", "a@x.com/", true},
		{"private path never matched by guess", "b@x.com/%", "a@x.com/notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPathPattern(tt.pattern, tt.path))
		})
	}
}

func TestOwnsPath(t *testing.T) {
	assert.True(t, OwnsPath("a@x.com", "a@x.com/notes.txt"))
	assert.False(t, OwnsPath("b@x.com", "a@x.com/notes.txt"))
	assert.False(t, OwnsPath("", "/notes.txt"))
	assert.False(t, OwnsPath("a@x.com", "shared/notes.txt"))
}

func TestIsSharedPath(t *testing.T) {
	assert.True(t, IsSharedPath("shared/handbook.txt"))
	assert.True(t, IsSharedPath("kca/policy.md"))
	assert.False(t, IsSharedPath("a@x.com/notes.txt"))
	assert.False(t, IsSharedPath("sharedfile.txt"))
}

func TestLastUserMessage(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
		{Role: RoleUser, Content: "second question"},
	}
	assert.Equal(t, "second question", LastUserMessage(messages))
	assert.Equal(t, "", LastUserMessage(nil))
	assert.Equal(t, "", LastUserMessage([]Message{{Role: RoleAssistant, Content: "hello"}}))
}
