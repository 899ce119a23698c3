// Size-bounded LRU of compiled formula expressions (spec §5 "Caching": a
// size-bounded LRU of compiled scalar expressions keyed by sanitised
// expression text — optional, purely a performance knob). No LRU package
// appears anywhere in the retrieval pack, so this is hand-written on top
// of the standard library's container/list rather than imported.
package engine

import "container/list"

type exprCacheEntry struct {
	key  string
	expr *Expr
	err  error
}

// ExprCache is a fixed-capacity LRU keyed by formula text.
type ExprCache struct {
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// NewExprCache builds an LRU of the given capacity. A non-positive
// capacity disables caching (Get always parses).
func NewExprCache(capacity int) *ExprCache {
	return &ExprCache{
		capacity: capacity,
		ll:       list.New(),
		items:    map[string]*list.Element{},
	}
}

// Get returns the parsed expression for formula, parsing and caching it on
// a miss.
func (c *ExprCache) Get(formula string) (*Expr, error) {
	if c == nil || c.capacity <= 0 {
		return ParseFormula(formula)
	}
	if el, ok := c.items[formula]; ok {
		c.ll.MoveToFront(el)
		entry := el.Value.(*exprCacheEntry)
		return entry.expr, entry.err
	}

	expr, err := ParseFormula(formula)
	el := c.ll.PushFront(&exprCacheEntry{key: formula, expr: expr, err: err})
	c.items[formula] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*exprCacheEntry).key)
		}
	}
	return expr, err
}
