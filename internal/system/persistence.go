package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	coresys "github.com/l1jgo/territory/internal/core/system"
	"github.com/l1jgo/territory/internal/persist"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

// ClaimStore persists the whole claim state. Implemented by persist.ClaimRepo
// and persist.SnapshotStore.
type ClaimStore interface {
	LoadAll(ctx context.Context) (*persist.ClaimSnapshot, error)
	SaveAll(ctx context.Context, snap *persist.ClaimSnapshot) error
}

// PersistenceSystem writes the claim state after accepted mutations.
// Phase 3 (Persist). Failed saves leave the state dirty and are retried on
// the next interval; the in-memory state stays authoritative.
type PersistenceSystem struct {
	mu        sync.Mutex // serialises export+save
	claims    *ClaimSystem
	store     ClaimStore
	log       *zap.Logger
	tickCount int
	interval  int // check every N ticks
	failures  int // consecutive failed saves
}

func NewPersistenceSystem(claims *ClaimSystem, store ClaimStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{
		claims:   claims,
		store:    store,
		log:      log,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if !s.claims.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.mu.Lock()
		s.failures++
		failures := s.failures
		s.mu.Unlock()
		s.log.Error("claim save failed", zap.Error(err), zap.Int("consecutive_failures", failures))
	}
}

// Flush saves the current state if it is dirty.
func (s *PersistenceSystem) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.claims.Dirty() {
		return nil
	}
	snap := s.claims.Export()
	if err := s.store.SaveAll(ctx, snapshotToRows(snap)); err != nil {
		return fmt.Errorf("save claims: %w", err)
	}
	s.claims.MarkSaved(snap.Version)
	if s.failures > 0 {
		s.log.Info("claim save recovered", zap.Int("after_failures", s.failures))
	}
	s.failures = 0
	s.log.Debug("claims saved", zap.Int("claims", len(snap.Claims)), zap.Uint64("version", snap.Version))
	return nil
}

// Shutdown flushes pending state, retrying up to retries times with backoff between attempts.
func (s *PersistenceSystem) Shutdown(ctx context.Context, retries int, backoff time.Duration) error {
	if retries < 1 {
		retries = 1
	}
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = s.Flush(ctx); err == nil {
			return nil
		}
		s.log.Warn("shutdown save failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown save: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("shutdown save after %d attempts: %w", retries, err)
}

// LoadClaims replaces the claim state with the stored one. Returns the number of claims loaded.
func LoadClaims(ctx context.Context, store ClaimStore, claims *ClaimSystem, log *zap.Logger) (int, error) {
	rows, err := store.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load claims: %w", err)
	}
	snap := rowsToSnapshot(rows)
	if dropped := claims.Load(snap); dropped > 0 {
		log.Warn("dropped outpost centers on unclaimed cells", zap.Int("count", dropped))
	}
	return len(snap.Claims), nil
}

func snapshotToRows(snap world.Snapshot) *persist.ClaimSnapshot {
	rows := &persist.ClaimSnapshot{
		Claims:   make([]persist.ClaimRow, 0, len(snap.Claims)),
		Outposts: make([]persist.OutpostRow, 0, len(snap.Outposts)),
		Quotas:   make([]persist.QuotaRow, 0, len(snap.Quotas)),
	}
	for _, c := range snap.Claims {
		rows.Claims = append(rows.Claims, persist.ClaimRow{
			World: c.Cell.World, X: c.Cell.X, Z: c.Cell.Z, GuildID: c.GuildID,
		})
	}
	for _, o := range snap.Outposts {
		rows.Outposts = append(rows.Outposts, persist.OutpostRow{
			GuildID: o.GuildID, World: o.Cell.World, X: o.Cell.X, Z: o.Cell.Z,
		})
	}
	for _, q := range snap.Quotas {
		rows.Quotas = append(rows.Quotas, persist.QuotaRow{
			GuildID: q.GuildID, Allowance: int32(q.Allowance), Founded: int32(q.Founded),
		})
	}
	return rows
}

func rowsToSnapshot(rows *persist.ClaimSnapshot) world.Snapshot {
	var snap world.Snapshot
	if rows == nil {
		return snap
	}
	for _, c := range rows.Claims {
		snap.Claims = append(snap.Claims, world.ClaimEntry{
			GuildID: c.GuildID, Cell: world.Cell{World: c.World, X: c.X, Z: c.Z},
		})
	}
	for _, o := range rows.Outposts {
		snap.Outposts = append(snap.Outposts, world.OutpostEntry{
			GuildID: o.GuildID, Cell: world.Cell{World: o.World, X: o.X, Z: o.Z},
		})
	}
	for _, q := range rows.Quotas {
		snap.Quotas = append(snap.Quotas, world.GuildQuota{
			GuildID: q.GuildID, Allowance: int(q.Allowance), Founded: int(q.Founded),
		})
	}
	return snap
}
