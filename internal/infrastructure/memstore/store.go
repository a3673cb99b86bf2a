// Package memstore is an in-memory test double of the matchmaking and progression
// repositories. It reproduces the storage atomics the engine relies on, exposes hooks
// for interleaving competing writers, and can be told to refuse transactions so the
// non-transactional formation path can be exercised. Production code does not use it.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/mappers"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
	"github.com/harbinger-games/harbinger/internal/shared/db"
)

type txKey struct{}

// Store holds all rows behind one lock. A transaction holds the lock for its whole
// duration, which makes it serializable.
type Store struct {
	mu                    sync.Mutex
	transactionsSupported bool

	seq          uint
	tickets      map[uint]models.QueueTicketModel
	activeKeys   map[string]uint
	matches      map[string]models.MatchModel
	progressions map[string]models.PlayerProgressionModel

	ticketMapper mappers.QueueTicketMapper
	matchMapper  mappers.MatchMapper

	hooksMu             sync.Mutex
	onBeforeMarkMatched func(ctx context.Context)
	onBeforeCreateMatch func(ctx context.Context) error
}

type Option func(*Store)

// WithoutTransactions makes RunInTransaction fail with db.ErrTransactionsUnsupported.
func WithoutTransactions() Option {
	return func(s *Store) {
		s.transactionsSupported = false
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		transactionsSupported: true,
		tickets:               make(map[uint]models.QueueTicketModel),
		activeKeys:            make(map[string]uint),
		matches:               make(map[string]models.MatchModel),
		progressions:          make(map[string]models.PlayerProgressionModel),
		ticketMapper:          mappers.NewQueueTicketMapper(),
		matchMapper:           mappers.NewMatchMapper(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunInTransaction runs fn atomically: if fn fails, every write it made is undone.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactionsSupported {
		return db.ErrTransactionsUnsupported
	}
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// OnBeforeMarkMatched registers a hook run at the start of every MarkMatched call made
// outside a transaction. Tests use it to interleave a competing writer.
func (s *Store) OnBeforeMarkMatched(fn func(ctx context.Context)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onBeforeMarkMatched = fn
}

// OnBeforeCreateMatch registers a hook that can fail match inserts.
func (s *Store) OnBeforeCreateMatch(fn func(ctx context.Context) error) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onBeforeCreateMatch = fn
}

// lock acquires the store lock unless ctx belongs to a running transaction, which already holds it.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inTx(ctx) {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

type snapshot struct {
	seq          uint
	tickets      map[uint]models.QueueTicketModel
	activeKeys   map[string]uint
	matches      map[string]models.MatchModel
	progressions map[string]models.PlayerProgressionModel
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		seq:          s.seq,
		tickets:      cloneMap(s.tickets),
		activeKeys:   cloneMap(s.activeKeys),
		matches:      cloneMap(s.matches),
		progressions: cloneMap(s.progressions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.seq = snap.seq
	s.tickets = snap.tickets
	s.activeKeys = snap.activeKeys
	s.matches = snap.matches
	s.progressions = snap.progressions
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedTickets returns the rows matching keep, ordered by (enqueued_at, id).
func (s *Store) sortedTickets(keep func(models.QueueTicketModel) bool) []models.QueueTicketModel {
	var rows []models.QueueTicketModel
	for _, row := range s.tickets {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EnqueuedAt != rows[j].EnqueuedAt {
			return rows[i].EnqueuedAt < rows[j].EnqueuedAt
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}
