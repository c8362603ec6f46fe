package service

import "sync"

// Tentative holds a value shown in place of a confirmed one until it is
// settled. Only one tentative value may be pending at a time.
type Tentative[V any] struct {
	mu      sync.Mutex
	value   V
	pending bool
}

// Begin shows v tentatively. It reports false if a value is already pending.
func (t *Tentative[V]) Begin(v V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		return false
	}
	t.value, t.pending = v, true
	return true
}

// Settle drops the tentative value. Callers commit the final value to its
// owner before settling so the display never falls back in between.
func (t *Tentative[V]) Settle() {
	t.mu.Lock()
	var zero V
	t.value, t.pending = zero, false
	t.mu.Unlock()
}

// Pending reports whether a tentative value is shown.
func (t *Tentative[V]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Value returns the tentative value when one is pending, else confirmed.
func (t *Tentative[V]) Value(confirmed V) V {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		return t.value
	}
	return confirmed
}
