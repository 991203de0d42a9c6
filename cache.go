package recutils

import (
	"container/list"
	"sync"

	"github.com/hkhanna/recutils/sex"
)

// exprCacheCapacity bounds the process-wide compiled-expression cache.
// Unlike the teacher's statement cache, a compiled sex.Expr holds no OS
// resource, so there is nothing to close and no finalizer is needed —
// eviction is by plain LRU capacity instead.
const exprCacheCapacity = 512

// compiledExprCache is the process-wide cache behind package-level
// Compile: a mutex-guarded map looked up by source text, exactly the
// shape of the teacher's statementCache minus the finalizer machinery
// that existed there only to close *sql.Stmt handles.
type compiledExprCache struct {
	mu  sync.RWMutex
	ll  *list.List
	idx map[string]*list.Element
}

type compiledExprEntry struct {
	src  string
	expr *sex.Expr
}

var sharedExprCache = newCompiledExprCache()

func newCompiledExprCache() *compiledExprCache {
	return &compiledExprCache{ll: list.New(), idx: map[string]*list.Element{}}
}

func (c *compiledExprCache) compile(src string) (*sex.Expr, error) {
	c.mu.RLock()
	if el, ok := c.idx[src]; ok {
		expr := el.Value.(*compiledExprEntry).expr
		c.mu.RUnlock()
		c.mu.Lock()
		c.ll.MoveToFront(el)
		c.mu.Unlock()
		return expr, nil
	}
	c.mu.RUnlock()

	expr, err := sex.Compile(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[src]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*compiledExprEntry).expr, nil
	}
	el := c.ll.PushFront(&compiledExprEntry{src: src, expr: expr})
	c.idx[src] = el
	for c.ll.Len() > exprCacheCapacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.idx, oldest.Value.(*compiledExprEntry).src)
	}
	return expr, nil
}
