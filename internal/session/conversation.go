package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConversationStore holds the opaque per-conversation id. It is scoped to
// the process (the tab-storage analog): once generated, the id is reused for
// every turn until Reset starts a new conversation.
type ConversationStore struct {
	mu sync.Mutex
	id string
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// Resolve returns the cached conversation id, generating one on first use.
func (c *ConversationStore) Resolve() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		c.id = NewConversationID()
	}
	return c.id
}

// Reset clears the cached id so the next Resolve starts a new conversation.
func (c *ConversationStore) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
}

// NewConversationID builds an opaque id from a timestamp and a short random
// suffix, e.g. "sess_1714060800123_3f9a0c1".
func NewConversationID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("sess_%d_%s", time.Now().UnixMilli(), suffix)
}
