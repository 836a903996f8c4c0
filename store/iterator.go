package store

import "bytes"

// cacheIterator merges a snapshot of the items held in a btree cache with
// the iterator of the store below it. When both hold the same key, the
// cached item wins. Deleted items hide the parent value.
type cacheIterator struct {
	parent  Iterator
	items   []entry
	reverse bool

	key   []byte
	value []byte
	valid bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(parent Iterator, items []entry, reverse bool) *cacheIterator {
	it := &cacheIterator{
		parent:  parent,
		items:   items,
		reverse: reverse,
	}
	it.advance()
	return it
}

// advance sets the cursor on the next visible entry.
func (c *cacheIterator) advance() {
	for {
		parentOk := c.parent.Valid()
		cacheOk := len(c.items) > 0

		switch {
		case !parentOk && !cacheOk:
			c.valid = false
			c.key, c.value = nil, nil
			return
		case parentOk && !cacheOk:
			c.takeParent()
			return
		case cacheOk && !parentOk:
			if c.takeItem() {
				return
			}
		default:
			cmp := bytes.Compare(c.parent.Key(), c.items[0].key)
			if c.reverse {
				cmp = -cmp
			}
			if cmp < 0 {
				c.takeParent()
				return
			}
			if cmp == 0 {
				// Shadowed by the cache.
				_ = c.parent.Next()
			}
			if c.takeItem() {
				return
			}
		}
	}
}

func (c *cacheIterator) takeParent() {
	c.key = c.parent.Key()
	c.value = c.parent.Value()
	c.valid = true
	_ = c.parent.Next()
}

// takeItem consumes the head cache item and returns true if it is a visible
// value.
func (c *cacheIterator) takeItem() bool {
	head := c.items[0]
	c.items = c.items[1:]
	if head.deleted {
		return false
	}
	c.key = head.key
	c.value = head.value
	c.valid = true
	return true
}

// Valid implements Iterator.
func (c *cacheIterator) Valid() bool {
	return c.valid
}

// Next implements Iterator.
func (c *cacheIterator) Next() error {
	if !c.valid {
		panic("iterator is not valid")
	}
	c.advance()
	return nil
}

// Key implements Iterator.
func (c *cacheIterator) Key() []byte {
	if !c.valid {
		panic("iterator is not valid")
	}
	return c.key
}

// Value implements Iterator.
func (c *cacheIterator) Value() []byte {
	if !c.valid {
		panic("iterator is not valid")
	}
	return c.value
}

// Close implements Iterator.
func (c *cacheIterator) Close() {
	c.parent.Close()
	c.items = nil
	c.valid = false
}
