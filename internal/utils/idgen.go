package utils

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const conversationIDPrefix = "conv_"

var (
	entropyMu   sync.Mutex
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// NewConversationID returns a conv_* ULID. IDs minted by one process sort in creation order.
func NewConversationID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return conversationIDPrefix + strings.ToLower(id.String())
}
