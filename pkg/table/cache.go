package table

import "sync"

// CacheTable wraps an InMemoryTable with FIFO eviction: once the row
// count exceeds maxSize, the oldest retained row is dropped, the way a
// bounded cache-backed table trades completeness for a fixed memory
// ceiling.
type CacheTable struct {
	*InMemoryTable
	maxSize int
	evictMu sync.Mutex
}

// NewCache builds a cache-bounded table retaining at most maxSize rows.
func NewCache(name string, maxSize int) *CacheTable {
	return &CacheTable{InMemoryTable: NewInMemory(name), maxSize: maxSize}
}

func (c *CacheTable) Insert(row Row) error {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()
	if err := c.InMemoryTable.Insert(row); err != nil {
		return err
	}
	c.evict()
	return nil
}

// evict drops rows from the front of the retained slice until the table
// is back at or under maxSize; it reaches into InMemoryTable's own lock
// since CacheTable lives in the same package.
func (c *CacheTable) evict() {
	if c.maxSize <= 0 {
		return
	}
	c.InMemoryTable.mu.Lock()
	defer c.InMemoryTable.mu.Unlock()
	if over := len(c.InMemoryTable.rows) - c.maxSize; over > 0 {
		c.InMemoryTable.rows = c.InMemoryTable.rows[over:]
	}
}

func (c *CacheTable) CloneTable() (Table, error) {
	inner, err := c.InMemoryTable.CloneTable()
	if err != nil {
		return nil, err
	}
	return &CacheTable{InMemoryTable: inner.(*InMemoryTable), maxSize: c.maxSize}, nil
}
