package world

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// guildWorld keys the per-guild cell index.
type guildWorld struct {
	guild int32
	world string
}

// ClaimGrid is the authoritative sparse map from cell to owning guild.
// An entry exists only while the cell is claimed. Not safe for concurrent
// use; the claim system serialises access.
type ClaimGrid struct {
	owners  map[Cell]int32                   // cell → guildID
	byGuild map[guildWorld]mapset.Set[Cell] // (guild, world) → cells
	totals  map[int32]int                    // guildID → claims across all worlds
}

// NewClaimGrid creates an empty grid.
func NewClaimGrid() *ClaimGrid {
	return &ClaimGrid{
		owners:  make(map[Cell]int32),
		byGuild: make(map[guildWorld]mapset.Set[Cell]),
		totals:  make(map[int32]int),
	}
}

// Owner returns the guild owning c, or false when unclaimed.
func (g *ClaimGrid) Owner(c Cell) (int32, bool) {
	id, ok := g.owners[c]
	return id, ok
}

// OwnedBy reports whether guildID owns c.
func (g *ClaimGrid) OwnedBy(c Cell, guildID int32) bool {
	id, ok := g.owners[c]
	return ok && id == guildID
}

// Set assigns c to guildID, replacing any previous owner.
func (g *ClaimGrid) Set(c Cell, guildID int32) {
	if prev, ok := g.owners[c]; ok {
		if prev == guildID {
			return
		}
		g.unindex(c, prev)
	}
	g.owners[c] = guildID
	key := guildWorld{guild: guildID, world: c.World}
	set, ok := g.byGuild[key]
	if !ok {
		set = mapset.New[Cell]()
		g.byGuild[key] = set
	}
	set.Put(c)
	g.totals[guildID]++
}

// Clear erases the entry for c. Returns the previous owner, if any.
func (g *ClaimGrid) Clear(c Cell) (int32, bool) {
	prev, ok := g.owners[c]
	if !ok {
		return 0, false
	}
	delete(g.owners, c)
	g.unindex(c, prev)
	return prev, true
}

func (g *ClaimGrid) unindex(c Cell, guildID int32) {
	key := guildWorld{guild: guildID, world: c.World}
	if set, ok := g.byGuild[key]; ok {
		set.Remove(c)
		if set.Size() == 0 {
			delete(g.byGuild, key)
		}
	}
	g.totals[guildID]--
	if g.totals[guildID] <= 0 {
		delete(g.totals, guildID)
	}
}

// Len returns the number of claimed cells in all worlds.
func (g *ClaimGrid) Len() int {
	return len(g.owners)
}

// CountGuild returns the guild's claim count across all worlds.
func (g *ClaimGrid) CountGuild(guildID int32) int {
	return g.totals[guildID]
}

// CountGuildIn returns the guild's claim count in one world.
func (g *ClaimGrid) CountGuildIn(guildID int32, worldID string) int {
	set, ok := g.byGuild[guildWorld{guild: guildID, world: worldID}]
	if !ok {
		return 0
	}
	return set.Size()
}

// CellsOf returns the guild's cells in a world, sorted by (X, Z).
func (g *ClaimGrid) CellsOf(guildID int32, worldID string) []Cell {
	set, ok := g.byGuild[guildWorld{guild: guildID, world: worldID}]
	if !ok {
		return nil
	}
	cells := make([]Cell, 0, set.Size())
	set.Each(func(c Cell) {
		cells = append(cells, c)
	})
	sortCells(cells)
	return cells
}

// RemoveGuild erases every claim of guildID in every world and returns how many were removed.
func (g *ClaimGrid) RemoveGuild(guildID int32) int {
	removed := 0
	for key, set := range g.byGuild {
		if key.guild != guildID {
			continue
		}
		set.Each(func(c Cell) {
			delete(g.owners, c)
			removed++
		})
		delete(g.byGuild, key)
	}
	delete(g.totals, guildID)
	return removed
}

// Guilds returns the IDs of every guild holding at least one claim, ascending.
func (g *ClaimGrid) Guilds() []int32 {
	ids := make([]int32, 0, len(g.totals))
	for id := range g.totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each calls fn for every claim. Iteration order is unspecified.
func (g *ClaimGrid) Each(fn func(c Cell, guildID int32)) {
	for c, id := range g.owners {
		fn(c, id)
	}
}

func cellLess(a, b Cell) bool {
	if a.World != b.World {
		return a.World < b.World
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cellLess(cells[i], cells[j]) })
}
