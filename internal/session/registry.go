// Package session keeps one invoice ledger per login session.
package session

import (
	"log/slog"
	"sync"

	"invoice-generator/internal/ledger"
)

// Registry owns the in-memory ledgers of all live sessions. A ledger is
// created empty the first time its session asks for it and discarded on
// logout; nothing is persisted.
type Registry struct {
	mu      sync.RWMutex
	ledgers map[string]*ledger.Ledger
	opts    []ledger.Option
	logger  *slog.Logger
}

// NewRegistry returns an empty registry. opts are applied to every ledger
// it creates.
func NewRegistry(logger *slog.Logger, opts ...ledger.Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		ledgers: make(map[string]*ledger.Ledger),
		opts:    opts,
		logger:  logger,
	}
}

// Ledger returns the ledger of sessionID, creating it if needed.
func (r *Registry) Ledger(sessionID string) *ledger.Ledger {
	r.mu.RLock()
	l, ok := r.ledgers[sessionID]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[sessionID]; ok {
		return l
	}
	l = ledger.New(r.opts...)
	r.ledgers[sessionID] = l
	r.logger.Debug("ledger created", "session", sessionID)
	return l
}

// Drop discards the ledger of sessionID, if any.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	_, ok := r.ledgers[sessionID]
	delete(r.ledgers, sessionID)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("ledger dropped", "session", sessionID)
	}
}

// IDs returns the session ids that currently hold a ledger.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.ledgers))
	for id := range r.ledgers {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live ledgers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ledgers)
}
