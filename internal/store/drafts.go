package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	t "caseforge/internal/types"
)

// DraftCache holds in-progress editing sessions. Drafts are owned by one
// session each; the cache bounds memory by evicting the least recently
// touched session. Values are cloned on both paths so callers never alias
// cached state.
type DraftCache struct {
	cache *lru.Cache[string, *t.Draft]
}

const defaultDraftSessions = 256

func NewDraftCache(size int) (*DraftCache, error) {
	if size <= 0 {
		size = defaultDraftSessions
	}
	c, err := lru.New[string, *t.Draft](size)
	if err != nil {
		return nil, err
	}
	return &DraftCache{cache: c}, nil
}

func (dc *DraftCache) Get(id string) (*t.Draft, bool) {
	d, ok := dc.cache.Get(id)
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

func (dc *DraftCache) Put(draft *t.Draft) {
	dc.cache.Add(draft.ID, draft.Clone())
}

func (dc *DraftCache) Delete(id string) {
	dc.cache.Remove(id)
}

func (dc *DraftCache) Len() int { return dc.cache.Len() }
