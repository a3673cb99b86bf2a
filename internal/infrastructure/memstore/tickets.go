package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
	"github.com/harbinger-games/harbinger/internal/infrastructure/persistence/models"
)

// Tickets returns the store's matchmaking.TicketRepository view.
func (s *Store) Tickets() *TicketRepository {
	return &TicketRepository{s: s}
}

type TicketRepository struct {
	s *Store
}

var _ matchmaking.TicketRepository = (*TicketRepository)(nil)

func (r *TicketRepository) Create(ctx context.Context, t *matchmaking.QueueTicket) error {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	row := r.s.ticketMapper.ToModel(t)
	if row.ActiveKey != nil {
		if _, taken := r.s.activeKeys[*row.ActiveKey]; taken {
			return matchmaking.ErrActiveTicketExists
		}
	}

	r.s.seq++
	row.ID = r.s.seq
	r.s.put(*row)
	t.SetID(row.ID)
	return nil
}

func (r *TicketRepository) GetBySID(ctx context.Context, sid string) (*matchmaking.QueueTicket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, row := range r.s.tickets {
		if row.SID == sid {
			return r.s.ticketMapper.ToDomain(&row)
		}
	}
	return nil, matchmaking.ErrTicketNotFound
}

func (r *TicketRepository) FindActive(ctx context.Context, playerID, mode, region string) (*matchmaking.QueueTicket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	id, ok := r.s.activeKeys[vo.ActiveKey(playerID, mode, region)]
	if !ok {
		return nil, nil
	}
	row := r.s.tickets[id]
	return r.s.ticketMapper.ToDomain(&row)
}

func (r *TicketRepository) FindLatest(ctx context.Context, playerID string, states ...vo.TicketState) (*matchmaking.QueueTicket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows := r.s.sortedTickets(func(row models.QueueTicketModel) bool {
		return row.PlayerID == playerID && stateIn(row.State, states)
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return r.s.ticketMapper.ToDomain(&rows[len(rows)-1])
}

func (r *TicketRepository) ListQueued(ctx context.Context, bucket vo.Bucket, limit int) ([]*matchmaking.QueueTicket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows := r.s.sortedTickets(func(row models.QueueTicketModel) bool {
		return row.State == vo.TicketStateQueued.String() &&
			row.Mode == bucket.Mode() && row.Region == bucket.Region() && row.PartySize == bucket.PartySize()
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return r.s.ticketMapper.ToDomainList(rows)
}

func (r *TicketRepository) CancelLatestQueued(ctx context.Context, playerID string, at time.Time) (bool, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	rows := r.s.sortedTickets(func(row models.QueueTicketModel) bool {
		return row.PlayerID == playerID && row.State == vo.TicketStateQueued.String()
	})
	if len(rows) == 0 {
		return false, nil
	}

	if err := r.s.transition(rows[len(rows)-1].ID, func(t *matchmaking.QueueTicket) error {
		return t.Cancel(at)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *TicketRepository) MarkMatched(ctx context.Context, ticketIDs []uint, matchID string, at time.Time) (int64, error) {
	if !inTx(ctx) {
		r.s.hooksMu.Lock()
		hook := r.s.onBeforeMarkMatched
		r.s.hooksMu.Unlock()
		if hook != nil {
			hook(ctx)
		}
	}

	unlock, err := r.s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var moved int64
	for _, id := range ticketIDs {
		row, ok := r.s.tickets[id]
		if !ok || row.State != vo.TicketStateQueued.String() {
			continue
		}
		if err := r.s.transition(id, func(t *matchmaking.QueueTicket) error {
			return t.MarkMatched(matchID, at)
		}); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (r *TicketRepository) ListOrphaned(ctx context.Context, matchedBefore time.Time, limit int) ([]*matchmaking.QueueTicket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cutoff := matchedBefore.UnixMilli()
	var rows []models.QueueTicketModel
	for _, row := range r.s.tickets {
		if row.State != vo.TicketStateMatched.String() || row.MatchedAt == nil || *row.MatchedAt > cutoff {
			continue
		}
		if row.MatchID != nil {
			if _, exists := r.s.matches[*row.MatchID]; exists {
				continue
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if *rows[i].MatchedAt != *rows[j].MatchedAt {
			return *rows[i].MatchedAt < *rows[j].MatchedAt
		}
		return rows[i].ID < rows[j].ID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return r.s.ticketMapper.ToDomainList(rows)
}

func (r *TicketRepository) Requeue(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	row, ok := r.s.tickets[ticketID]
	if !ok {
		return false, matchmaking.ErrTicketNotFound
	}
	if !isMatchedTo(row, matchID) {
		return false, nil
	}
	if _, taken := r.s.activeKeys[vo.ActiveKey(row.PlayerID, row.Mode, row.Region)]; taken {
		return false, matchmaking.ErrActiveTicketExists
	}

	if err := r.s.transition(ticketID, func(t *matchmaking.QueueTicket) error {
		return t.Requeue(matchID, at)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *TicketRepository) CancelOrphan(ctx context.Context, ticketID uint, matchID string, at time.Time) (bool, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	row, ok := r.s.tickets[ticketID]
	if !ok || !isMatchedTo(row, matchID) {
		return false, nil
	}

	if err := r.s.transition(ticketID, func(t *matchmaking.QueueTicket) error {
		return t.CancelOrphan(matchID, at)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *TicketRepository) ListReadyBuckets(ctx context.Context, limit int) ([]vo.Bucket, error) {
	unlock, err := r.s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	type group struct {
		bucket vo.Bucket
		count  int
		oldest int64
	}
	groups := make(map[vo.Bucket]*group)
	for _, row := range r.s.tickets {
		if row.State != vo.TicketStateQueued.String() {
			continue
		}
		bucket, err := vo.NewBucket(row.Mode, row.Region, row.PartySize)
		if err != nil {
			return nil, err
		}
		g, ok := groups[bucket]
		if !ok {
			g = &group{bucket: bucket, oldest: row.EnqueuedAt}
			groups[bucket] = g
		}
		g.count++
		if row.EnqueuedAt < g.oldest {
			g.oldest = row.EnqueuedAt
		}
	}

	var ready []*group
	for _, g := range groups {
		if g.count >= g.bucket.PartySize() {
			ready = append(ready, g)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].oldest < ready[j].oldest })
	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	buckets := make([]vo.Bucket, 0, len(ready))
	for _, g := range ready {
		buckets = append(buckets, g.bucket)
	}
	return buckets, nil
}

// transition loads the row as a domain ticket, applies fn and writes it back,
// keeping the active-key index in step. Caller holds the lock.
func (s *Store) transition(id uint, fn func(*matchmaking.QueueTicket) error) error {
	row := s.tickets[id]
	t, err := s.ticketMapper.ToDomain(&row)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}
	if row.ActiveKey != nil {
		delete(s.activeKeys, *row.ActiveKey)
	}
	s.put(*s.ticketMapper.ToModel(t))
	return nil
}

func (s *Store) put(row models.QueueTicketModel) {
	s.tickets[row.ID] = row
	if row.ActiveKey != nil {
		s.activeKeys[*row.ActiveKey] = row.ID
	}
}

func isMatchedTo(row models.QueueTicketModel, matchID string) bool {
	return row.State == vo.TicketStateMatched.String() && row.MatchID != nil && *row.MatchID == matchID
}

func stateIn(state string, states []vo.TicketState) bool {
	if len(states) == 0 {
		return true
	}
	for _, s := range states {
		if s.String() == state {
			return true
		}
	}
	return false
}
