package world

import "sort"

// State holds the in-memory territory state: the claim grid, the outpost
// registry, and the guild roster.
type State struct {
	Claims   *ClaimGrid
	Outposts *OutpostRegistry
	Guilds   *GuildManager
}

// NewState creates an empty state.
func NewState(defaultOutpostAllowance int) *State {
	return &State{
		Claims:   NewClaimGrid(),
		Outposts: NewOutpostRegistry(defaultOutpostAllowance),
		Guilds:   NewGuildManager(),
	}
}

// ClaimEntry is one claim as exported for persistence.
type ClaimEntry struct {
	GuildID int32
	Cell    Cell
}

// Snapshot is a deep copy of the claim grid and outpost registry.
type Snapshot struct {
	Version  uint64
	Claims   []ClaimEntry
	Outposts []OutpostEntry
	Quotas   []GuildQuota
}

// Export copies the claim grid and outpost registry, sorted by cell.
func (s *State) Export() Snapshot {
	snap := Snapshot{Claims: make([]ClaimEntry, 0, s.Claims.Len())}
	s.Claims.Each(func(c Cell, guildID int32) {
		snap.Claims = append(snap.Claims, ClaimEntry{GuildID: guildID, Cell: c})
	})
	sortClaims(snap.Claims)
	snap.Outposts, snap.Quotas = s.Outposts.Export()
	return snap
}

// Import replaces the claim grid and outpost registry with snap.
// Outpost centers whose cell is not claimed by the same guild are dropped.
// Returns the number of dropped centers.
func (s *State) Import(snap Snapshot) int {
	grid := NewClaimGrid()
	for _, e := range snap.Claims {
		grid.Set(e.Cell, e.GuildID)
	}
	reg := NewOutpostRegistry(s.Outposts.defaultAllowance)
	dropped := 0
	for _, o := range snap.Outposts {
		if !grid.OwnedBy(o.Cell, o.GuildID) {
			dropped++
			continue
		}
		reg.RestoreCenter(o.GuildID, o.Cell)
	}
	for _, q := range snap.Quotas {
		reg.SetAllowance(q.GuildID, q.Allowance)
		reg.SetFounded(q.GuildID, q.Founded)
	}
	s.Claims = grid
	s.Outposts = reg
	return dropped
}

func sortClaims(claims []ClaimEntry) {
	sort.Slice(claims, func(i, j int) bool { return cellLess(claims[i].Cell, claims[j].Cell) })
}
