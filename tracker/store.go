// ABOUTME: Store owns the in-memory snapshot of one record collection and
// ABOUTME: its lifecycle against the local durable store and remote mirror.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store is a local-first synchronized collection of records. All reads
// are served from the in-memory snapshot; the local durable store and
// the remote mirror are replicas that are made consistent with it (or,
// when the remote push feed fires, the snapshot is made consistent
// with the remote). Mutations apply to the snapshot synchronously and
// persist asynchronously, so callers never block on I/O.
type Store[T Record[T]] struct {
	name   string
	local  *Local
	remote MirrorProvider[T]
	order  Order
	log    zerolog.Logger

	clock func() time.Time
	newID func() string

	mu       sync.RWMutex
	snapshot []T
	seq      uint64 // bumped on every snapshot change
	gen      uint64 // bumped on every teardown; stale feed closures carry an old value
	identity Identity
	mirror   Mirror[T] // nil unless the identity is sync-eligible
	unsub    func()

	status         Status
	onStatusChange func(Status)

	// Local writes are serialized and versioned so a slow write of an
	// older snapshot can never clobber a newer one.
	saveMu   sync.Mutex
	savedSeq uint64

	pending sync.WaitGroup
}

// Option configures a Store.
type Option[T Record[T]] func(*Store[T])

// WithLogger sets the store's logger. Default is a no-op logger.
func WithLogger[T Record[T]](log zerolog.Logger) Option[T] {
	return func(s *Store[T]) { s.log = log }
}

// WithClock overrides the time source. For tests.
func WithClock[T Record[T]](clock func() time.Time) Option[T] {
	return func(s *Store[T]) { s.clock = clock }
}

// WithIDFunc overrides record ID assignment. For tests.
func WithIDFunc[T Record[T]](newID func() string) Option[T] {
	return func(s *Store[T]) { s.newID = newID }
}

// WithOrder sets the remote listing order.
func WithOrder[T Record[T]](order Order) Option[T] {
	return func(s *Store[T]) { s.order = order }
}

// WithStatusHook registers fn to run on every sync status transition.
func WithStatusHook[T Record[T]](fn func(Status)) Option[T] {
	return func(s *Store[T]) { s.onStatusChange = fn }
}

// NewStore builds a collection store. name keys the local snapshot and
// the remote sub-collection. remote may be nil for a purely local
// collection.
func NewStore[T Record[T]](name string, local *Local, remote MirrorProvider[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name:   name,
		local:  local,
		remote: remote,
		log:    zerolog.Nop(),
		clock:  time.Now,
		newID:  NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("collection", name).Logger()
	return s
}

// Initialize loads the snapshot for the given identity. It runs once
// per identity transition: any prior subscription is torn down before
// the new state is established, so at most one subscription is live at
// any instant.
//
// Ineligible identities load from the local store only and never touch
// the mirror. Eligible identities take the remote listing as
// authoritative and write it through locally; if the remote is
// unreachable the local snapshot keeps serving and only the status
// degrades.
func (s *Store[T]) Initialize(ctx context.Context, ident Identity) error {
	if !ident.Valid() {
		return ErrNoIdentity
	}

	s.teardown()

	s.mu.Lock()
	s.identity = ident
	s.mirror = nil
	gen := s.gen
	s.mu.Unlock()

	if !ident.SyncEligible || s.remote == nil {
		recs := loadSnapshot[T](ctx, s.local, s.name, s.log)
		s.replaceSnapshot(recs)
		s.setState(StateIdle)
		return nil
	}

	mirror := s.remote.ForUser(ident.UserID)
	s.mu.Lock()
	s.mirror = mirror
	s.mu.Unlock()

	s.setState(StateSyncing)
	recs, err := mirror.ListAll(ctx, s.order)
	if err != nil {
		s.log.Warn().Err(err).Msg("remote list failed, serving local snapshot")
		recs = loadSnapshot[T](ctx, s.local, s.name, s.log)
		s.replaceSnapshot(recs)
		s.setState(StateError)
	} else {
		seq := s.replaceSnapshot(recs)
		s.saveLocalAt(ctx, recs, seq)
		s.markSynced()
	}

	unsub, err := mirror.Subscribe(s.order,
		func(recs []T) { s.onPush(gen, recs) },
		func(err error) { s.onPushError(gen, err) })
	if err != nil {
		s.log.Warn().Err(err).Msg("subscribe failed, remote pushes disabled")
		s.setState(StateError)
		return nil
	}
	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

// Bind initializes the store from src's current identity and re-runs
// Initialize on every identity transition. The returned stop func
// unregisters the change listener and tears down the subscription.
func (s *Store[T]) Bind(ctx context.Context, src IdentitySource) (func(), error) {
	if err := s.Initialize(ctx, src.Current()); err != nil {
		return nil, err
	}
	cancel := src.OnChange(func(ident Identity) {
		if err := s.Initialize(ctx, ident); err != nil {
			s.log.Error().Err(err).Msg("re-initialize on identity change failed")
		}
	})
	return func() {
		cancel()
		s.teardown()
	}, nil
}

// Create assigns identity and timestamps, appends the record to the
// snapshot and returns its id immediately. Persistence to the local
// store and, when eligible, the remote mirror proceeds in the
// background.
func (s *Store[T]) Create(ctx context.Context, rec T) string {
	now := s.clock().UTC()
	m := rec.meta()
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now

	s.mu.Lock()
	s.requireIdentityLocked()
	s.snapshot = append(s.snapshot, rec)
	snap, seq := s.captureLocked()
	s.mu.Unlock()

	s.persist(ctx, rec, snap, seq)
	return m.ID
}

// Update replaces the record with the same id by a copy whose
// UpdatedAt is refreshed. Updating an unknown id is a defined no-op
// and reports false so callers can observe it.
func (s *Store[T]) Update(ctx context.Context, rec T) bool {
	id := rec.meta().ID

	s.mu.Lock()
	s.requireIdentityLocked()
	idx := -1
	for i, cur := range s.snapshot {
		if cur.meta().ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	updated := rec.Clone()
	m := updated.meta()
	m.CreatedAt = s.snapshot[idx].meta().CreatedAt
	m.UpdatedAt = s.clock().UTC()
	s.snapshot[idx] = updated
	snap, seq := s.captureLocked()
	s.mu.Unlock()

	s.persist(ctx, updated, snap, seq)
	return true
}

// Delete removes the record from the snapshot and reports whether it
// was present. The removal persists locally regardless of remote
// outcome: a failed remote delete is logged, never rolled back.
func (s *Store[T]) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	s.requireIdentityLocked()
	idx := -1
	for i, cur := range s.snapshot {
		if cur.meta().ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.snapshot = append(s.snapshot[:idx], s.snapshot[idx+1:]...)
	snap, seq := s.captureLocked()
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.saveLocalAt(ctx, snap, seq)
		mirror, eligible := s.currentMirror()
		if !eligible {
			return
		}
		s.setState(StateSyncing)
		if err := mirror.DeleteOne(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("remote delete failed, local removal stands")
			s.setState(StateError)
			return
		}
		s.markSynced()
	}()
	return true
}

// ByID returns the record with the given id from the snapshot.
func (s *Store[T]) ByID(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.snapshot {
		if rec.meta().ID == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Snapshot returns a copy of the current record sequence. Reads never
// block on I/O.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Len returns the number of records in the snapshot.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot)
}

// Status returns the current sync status.
func (s *Store[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Wait blocks until all pending background writes settle. For tests
// and shutdown.
func (s *Store[T]) Wait() { s.pending.Wait() }

// Close tears down the subscription and drains pending writes. The
// local database handle is shared across collections and stays open.
func (s *Store[T]) Close() {
	s.teardown()
	s.pending.Wait()
}

// onPush handles a remote push: the new snapshot replaces the local
// one (remote is authoritative when connected) and is written through
// to the local store. gen identifies the subscription that delivered
// the frame; a frame still in flight when its subscription was torn
// down carries a stale gen and is dropped, so a previous identity's
// feed can never land after the switch.
func (s *Store[T]) onPush(gen uint64, recs []T) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug().Msg("push from superseded subscription dropped")
		return
	}
	s.snapshot = recs
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.saveLocalAt(context.Background(), recs, seq)
	s.markSynced()
}

func (s *Store[T]) onPushError(gen uint64, err error) {
	s.mu.RLock()
	stale := gen != s.gen
	s.mu.RUnlock()
	if stale {
		return
	}
	s.log.Warn().Err(err).Msg("subscription error")
	s.setState(StateError)
}

// persist writes the post-mutation snapshot locally and upserts the
// record remotely when the identity allows it. snap and seq were
// captured inside the mutation's critical section, so writeback order
// matches mutation order even when goroutines finish out of order.
func (s *Store[T]) persist(ctx context.Context, rec T, snap []T, seq uint64) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.saveLocalAt(ctx, snap, seq)
		mirror, eligible := s.currentMirror()
		if !eligible {
			return
		}
		s.setState(StateSyncing)
		if err := mirror.UpsertOne(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("id", rec.meta().ID).Msg("remote upsert failed, local state retained")
			s.setState(StateError)
			return
		}
		s.markSynced()
	}()
}

// saveLocalAt writes snap to the local store unless a newer snapshot
// version has already been written.
func (s *Store[T]) saveLocalAt(ctx context.Context, snap []T, seq uint64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.savedSeq {
		return
	}
	s.savedSeq = seq
	if err := saveSnapshot(ctx, s.local, s.name, snap); err != nil {
		s.log.Warn().Err(err).Msg("local snapshot write failed")
	}
}

// captureLocked copies the snapshot and bumps its version. Caller
// holds s.mu.
func (s *Store[T]) captureLocked() ([]T, uint64) {
	s.seq++
	snap := make([]T, len(s.snapshot))
	copy(snap, s.snapshot)
	return snap, s.seq
}

// requireIdentityLocked panics when a mutation arrives before
// Initialize has ever bound an identity. That is programmer misuse:
// there is no owner for the data yet, so failing loudly beats writing
// records nobody can account for. Caller holds s.mu.
func (s *Store[T]) requireIdentityLocked() {
	if s.identity == (Identity{}) {
		panic("tracker: collection " + s.name + " mutated before Initialize")
	}
}

func (s *Store[T]) currentMirror() (Mirror[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirror, s.mirror != nil && s.identity.SyncEligible
}

func (s *Store[T]) replaceSnapshot(recs []T) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = recs
	s.seq++
	return s.seq
}

// teardown releases the live subscription, if any, and advances the
// generation so frames already read off the old feed are dropped by
// onPush. Exactly one subscription may be active per store; Initialize
// calls this first.
func (s *Store[T]) teardown() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.gen++
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Store[T]) setState(state SyncState) {
	s.mu.Lock()
	s.status.State = state
	st := s.status
	hook := s.onStatusChange
	s.mu.Unlock()
	if hook != nil {
		hook(st)
	}
}

func (s *Store[T]) markSynced() {
	s.mu.Lock()
	s.status.State = StateSynced
	s.status.LastSync = s.clock().UTC()
	st := s.status
	hook := s.onStatusChange
	s.mu.Unlock()
	if hook != nil {
		hook(st)
	}
}
