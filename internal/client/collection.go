package client

import "sync"

// Collection is the local in-memory cache of one table. Rows are a
// transient copy of remote state: every settled write either installs
// the row the store returned or restores the snapshot taken before the
// optimistic apply, so the cache never holds a value the store did not
// confirm or that it was not rolled back to.
type Collection[T any] struct {
	mu   sync.Mutex
	rows []T
	idOf func(T) string
}

// NewCollection creates an empty collection keyed by idOf.
func NewCollection[T any](idOf func(T) string) *Collection[T] {
	return &Collection[T]{idOf: idOf}
}

// SetRows replaces the cache with freshly fetched rows.
func (c *Collection[T]) SetRows(rows []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append([]T(nil), rows...)
}

// Rows returns a copy of the cached rows in order.
func (c *Collection[T]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.rows...)
}

// Len returns the number of cached rows.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Find returns the cached row with the given identity.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Collection[T]) findLocked(id string) (T, bool) {
	for _, r := range c.rows {
		if c.idOf(r) == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) prependLocked(row T) {
	c.rows = append([]T{row}, c.rows...)
}

func (c *Collection[T]) replaceLocked(id string, row T) bool {
	for i, r := range c.rows {
		if c.idOf(r) == id {
			c.rows[i] = row
			return true
		}
	}
	return false
}

func (c *Collection[T]) removeLocked(id string) {
	kept := c.rows[:0]
	for _, r := range c.rows {
		if c.idOf(r) != id {
			kept = append(kept, r)
		}
	}
	c.rows = kept
}

// CreateReconcile issues the remote insert and, on success, prepends
// the authoritative returned row. Nothing was applied locally before
// the call, so a failure changes no state.
func (c *Collection[T]) CreateReconcile(insert func() (T, error)) (T, error) {
	row, err := insert()
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	c.prependLocked(row)
	c.mu.Unlock()
	return row, nil
}

// UpdateReconcile is the write-then-reconcile strategy: the remote
// update goes first, and only a success touches local state, replacing
// the row with the store's response.
func (c *Collection[T]) UpdateReconcile(id string, update func() (T, error)) (T, error) {
	row, err := update()
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	c.replaceLocked(id, row)
	c.mu.Unlock()
	return row, nil
}

// ApplyThenUpdate is the optimistic-apply-then-rollback strategy for
// single-field quick changes: the locally patched row is installed
// immediately, then the remote update runs. A failure restores the
// snapshot taken before the apply; a success reconciles with the
// authoritative response.
func (c *Collection[T]) ApplyThenUpdate(id string, apply func(T) T, update func() (T, error)) (T, error) {
	c.mu.Lock()
	prev, ok := c.findLocked(id)
	if ok {
		c.replaceLocked(id, apply(prev))
	}
	c.mu.Unlock()

	row, err := update()
	if err != nil {
		if ok {
			c.mu.Lock()
			c.replaceLocked(id, prev)
			c.mu.Unlock()
		}
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.replaceLocked(id, row)
	c.mu.Unlock()
	return row, nil
}

// DeleteOptimistic removes the row immediately and issues the remote
// delete. On failure the entire pre-delete slice is restored, which
// also preserves the original ordering.
func (c *Collection[T]) DeleteOptimistic(id string, del func() error) error {
	c.mu.Lock()
	snapshot := append([]T(nil), c.rows...)
	c.removeLocked(id)
	c.mu.Unlock()

	if err := del(); err != nil {
		c.mu.Lock()
		c.rows = snapshot
		c.mu.Unlock()
		return err
	}
	return nil
}

// Reconcile merges an authoritative row pushed by the store (realtime
// feed) into the cache: replace by identity, or prepend when unknown.
func (c *Collection[T]) Reconcile(row T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.replaceLocked(c.idOf(row), row) {
		c.prependLocked(row)
	}
}

// Remove drops a row by identity (realtime delete events).
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}
