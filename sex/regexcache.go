package sex

import (
	"container/list"
	"regexp"
	"sync"
)

// regexCacheCapacity bounds the compiled-pattern cache so a query driver
// fed many distinct ad-hoc patterns (e.g. one per record, pathologically)
// cannot grow memory unboundedly. Spec §5 bounds resource cost by
// RecordSet size; this keeps regex compilation cost bounded too.
const regexCacheCapacity = 256

// regexCache is a bounded LRU of compiled patterns shared by every
// evaluator, grounded on the mutex-guarded, lookup-by-string-key shared
// cache pattern used for compiled statements elsewhere in this lineage.
type regexCache struct {
	mu   sync.RWMutex
	ll   *list.List
	idx  map[string]*list.Element
}

type regexEntry struct {
	pattern string
	re      *regexp.Regexp
}

var sharedRegexCache = &regexCache{ll: list.New(), idx: map[string]*list.Element{}}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if el, ok := c.idx[pattern]; ok {
		re := el.Value.(*regexEntry).re
		c.mu.RUnlock()
		c.mu.Lock()
		c.ll.MoveToFront(el)
		c.mu.Unlock()
		return re, nil
	}
	c.mu.RUnlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.idx[pattern]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*regexEntry).re, nil
	}
	el := c.ll.PushFront(&regexEntry{pattern: pattern, re: re})
	c.idx[pattern] = el
	for c.ll.Len() > regexCacheCapacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.idx, oldest.Value.(*regexEntry).pattern)
	}
	return re, nil
}

// compileRegex compiles pattern using the process-wide shared cache.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	return sharedRegexCache.compile(pattern)
}
