package ledger

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// maxIDAttempts bounds how often Add retries when the generator returns an
// id already held by the ledger.
const maxIDAttempts = 8

// Ledger is the ordered collection of line items for one invoice in
// progress. Items keep the order in which they were added.
type Ledger struct {
	mu    sync.Mutex
	items []LineItem
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator replaces the TypeID generator, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{newID: NewItemID}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add appends a line item built from in. Invalid input returns a
// *ValidationError and leaves the ledger untouched.
func (l *Ledger) Add(in Input) (LineItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		return LineItem{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.allocateID()
	if err != nil {
		return LineItem{}, err
	}
	item := newLineItem(id, in)
	l.items = append(l.items, item)
	return item, nil
}

// AddItem is Add for already typed values.
func (l *Ledger) AddItem(name string, quantity, rate decimal.Decimal) (LineItem, error) {
	in, err := NewInput(name, quantity, rate)
	if err != nil {
		return LineItem{}, err
	}
	return l.Add(in)
}

// Remove deletes the item with the given id and reports whether it was
// present. Removing an unknown id is a no-op.
func (l *Ledger) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

// RemoveAll deletes every item whose id is in ids and returns how many were
// removed. Items added after ids were taken are kept.
func (l *Ledger) RemoveAll(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(it LineItem) bool {
		_, ok := drop[it.ID]
		return ok
	})
	return before - len(l.items)
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

// List returns a copy of the items in insertion order.
func (l *Ledger) List() []LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Snapshot summarizes a copy of the current items.
func (l *Ledger) Snapshot() Snapshot {
	return Summarize(l.List())
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.items, func(it LineItem) bool { return it.ID == id })
}

// allocateID must be called with mu held.
func (l *Ledger) allocateID() (string, error) {
	for range maxIDAttempts {
		id := l.newID()
		if id != "" && l.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDCollision
}
