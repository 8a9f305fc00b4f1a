package oracle

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/starford/notesift/internal/checksum"
)

// Memo caches successful answers of the wrapped oracle. Errors are never cached.
type Memo struct {
	next  Oracle
	cache *lru.Cache[string, string]
}

// NewMemo wraps next with an LRU of the given size.
func NewMemo(next Oracle, size int) (*Memo, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("oracle: memo: %w", err)
	}
	return &Memo{next: next, cache: cache}, nil
}

// Ask returns a cached answer for the same prompt pair or asks next.
func (m *Memo) Ask(ctx context.Context, system, user string) (string, error) {
	key := checksum.Parts(system, user)
	if answer, ok := m.cache.Get(key); ok {
		return answer, nil
	}
	answer, err := m.next.Ask(ctx, system, user)
	if err != nil {
		return "", err
	}
	m.cache.Add(key, answer)
	return answer, nil
}

// Len reports the number of cached answers.
func (m *Memo) Len() int {
	return m.cache.Len()
}
