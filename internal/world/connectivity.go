package world

import "github.com/zyedidia/generic/mapset"

// Connectivity routines over a read-only grid. Territory is 4-connected:
// two cells touch only through a shared edge.

// IsAdjacentTo reports whether any cardinal neighbour of c is owned by guildID.
func IsAdjacentTo(g *ClaimGrid, guildID int32, c Cell) bool {
	_, ok := AdjacentOwned(g, guildID, c)
	return ok
}

// AdjacentOwned returns the first cardinal neighbour of c (N, E, S, W) owned by guildID.
func AdjacentOwned(g *ClaimGrid, guildID int32, c Cell) (Cell, bool) {
	for _, n := range c.Neighbors() {
		if g.OwnedBy(n, guildID) {
			return n, true
		}
	}
	return Cell{}, false
}

// ComponentContaining flood-fills from start over cells owned by guildID and
// returns every reachable cell, start first. Returns nil if start is not owned by guildID.
func ComponentContaining(g *ClaimGrid, guildID int32, start Cell) []Cell {
	return floodFill(g, guildID, start, nil)
}

// floodFill runs a BFS from start over guildID's cells, treating skip as unowned.
func floodFill(g *ClaimGrid, guildID int32, start Cell, skip *Cell) []Cell {
	if !g.OwnedBy(start, guildID) || (skip != nil && *skip == start) {
		return nil
	}
	visited := mapset.New[Cell]()
	visited.Put(start)
	queue := []Cell{start}
	var out []Cell
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		for _, n := range cur.Neighbors() {
			if visited.Has(n) || (skip != nil && *skip == n) {
				continue
			}
			if !g.OwnedBy(n, guildID) {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}
	return out
}

// WithinOutpostRadius reports whether c lies within Chebyshev distance radius
// of any outpost center guildID holds in c's world.
func WithinOutpostRadius(r *OutpostRegistry, guildID int32, c Cell, radius int32) bool {
	for center := range r.centers[guildWorld{guild: guildID, world: c.World}] {
		if Chebyshev(center.X, center.Z, c.X, c.Z) <= radius {
			return true
		}
	}
	return false
}

// HasCenter reports whether any of cells is an outpost center of guildID.
func HasCenter(r *OutpostRegistry, guildID int32, cells []Cell) bool {
	for _, c := range cells {
		if r.IsCenter(guildID, c) {
			return true
		}
	}
	return false
}

// WouldDisconnect reports whether removing removed would split the component
// it belongs to. Other components of the guild are not considered: a
// world-wide fill would count a guild holding an outpost as disconnected
// already, and reject every unclaim it attempts.
func WouldDisconnect(g *ClaimGrid, guildID int32, removed Cell) bool {
	if !g.OwnedBy(removed, guildID) {
		return false
	}
	remaining := len(floodFill(g, guildID, removed, nil)) - 1
	if remaining <= 1 {
		return false
	}
	start, _ := AdjacentOwned(g, guildID, removed)
	reached := floodFill(g, guildID, start, &removed)
	return len(reached) < remaining
}

// Component summarises one connected component for diagnostics.
type Component struct {
	Size           int
	Representative Cell   // first cell discovered by the flood fill
	Centers        []Cell // outpost centers inside the component
}

// IsOutpost reports whether the component contains an outpost center.
func (c Component) IsOutpost() bool {
	return len(c.Centers) > 0
}

// ComponentReport partitions a guild's territory in one world.
type ComponentReport struct {
	GuildID    int32
	World      string
	TotalCells int
	Components []Component
	Removed    *Cell // set for what-if reports
}

// Count returns the number of components.
func (r ComponentReport) Count() int {
	return len(r.Components)
}

// Analyze partitions guildID's cells in worldID into connected components.
// Components are discovered starting from the lowest (X, Z) unvisited cell.
func Analyze(g *ClaimGrid, r *OutpostRegistry, guildID int32, worldID string) ComponentReport {
	return analyze(g, r, guildID, worldID, nil)
}

// AnalyzeAfterRemoval is Analyze on the hypothetical grid without removed.
func AnalyzeAfterRemoval(g *ClaimGrid, r *OutpostRegistry, guildID int32, removed Cell) ComponentReport {
	rep := analyze(g, r, guildID, removed.World, &removed)
	rep.Removed = &removed
	return rep
}

func analyze(g *ClaimGrid, r *OutpostRegistry, guildID int32, worldID string, skip *Cell) ComponentReport {
	rep := ComponentReport{GuildID: guildID, World: worldID}
	seen := mapset.New[Cell]()
	for _, c := range g.CellsOf(guildID, worldID) {
		if skip != nil && *skip == c {
			continue
		}
		rep.TotalCells++
		if seen.Has(c) {
			continue
		}
		cells := floodFill(g, guildID, c, skip)
		comp := Component{Size: len(cells), Representative: c}
		for _, m := range cells {
			seen.Put(m)
			if r != nil && r.IsCenter(guildID, m) {
				comp.Centers = append(comp.Centers, m)
			}
		}
		sortCells(comp.Centers)
		rep.Components = append(rep.Components, comp)
	}
	return rep
}
