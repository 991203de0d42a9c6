package recsel

import (
	"container/list"
	"sync"

	"github.com/hkhanna/recutils/sex"
)

// exprCache is a small bounded LRU of compiled SEX expressions, scoped
// to one Driver. Most callers run the same expression query repeatedly
// over streaming or paginated results, so caching compilation here saves
// reparsing the same source text on every Query call.
type exprCache struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	idx map[string]*list.Element
}

type exprCacheEntry struct {
	src  string
	expr *sex.Expr
}

func newExprCache(capacity int) *exprCache {
	return &exprCache{cap: capacity, ll: list.New(), idx: map[string]*list.Element{}}
}

func (c *exprCache) compile(src string) (*sex.Expr, error) {
	c.mu.Lock()
	if el, ok := c.idx[src]; ok {
		c.ll.MoveToFront(el)
		c.mu.Unlock()
		return el.Value.(*exprCacheEntry).expr, nil
	}
	c.mu.Unlock()

	expr, err := sex.Compile(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[src]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*exprCacheEntry).expr, nil
	}
	el := c.ll.PushFront(&exprCacheEntry{src: src, expr: expr})
	c.idx[src] = el
	for c.ll.Len() > c.cap {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.idx, oldest.Value.(*exprCacheEntry).src)
	}
	return expr, nil
}
