package system

import (
	"fmt"
	"math"

	"github.com/l1jgo/territory/internal/world"
)

// Map glyphs.
const (
	GlyphOwn     = '#'
	GlyphRival   = '+'
	GlyphEmpty   = '.'
	GlyphRemoved = 'X'
	GlyphVoid    = ' ' // beyond the int32 coordinate range
)

// Analyze partitions the guild's territory in a world into connected components.
func (s *ClaimSystem) Analyze(guildID int32, worldID string) world.ComponentReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return world.Analyze(s.state.Claims, s.state.Outposts, guildID, worldID)
}

// AnalyzeAfterRemoval previews the partition as if (x, z) were unclaimed.
func (s *ClaimSystem) AnalyzeAfterRemoval(guildID int32, worldID string, x, z int32) world.ComponentReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return world.AnalyzeAfterRemoval(s.state.Claims, s.state.Outposts, guildID, world.Cell{World: worldID, X: x, Z: z})
}

// RenderMap draws a (2r+1)×(2r+1) occupancy map around (cx, cz), north row
// first. radius is clamped to the configured bounds. removed, when set, is
// drawn as GlyphRemoved whatever its owner.
func (s *ClaimSystem) RenderMap(guildID int32, worldID string, cx, cz int32, radius int, removed *world.Cell) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := int64(s.clampRadius(radius))
	rows := make([]string, 0, 2*r+1)
	line := make([]byte, 2*r+1)
	// Bounds are int64 so a window touching math.MaxInt32 neither wraps nor comes out empty.
	for z := int64(cz) - r; z <= int64(cz)+r; z++ {
		for x := int64(cx) - r; x <= int64(cx)+r; x++ {
			i := x - int64(cx) + r
			if !inInt32(x) || !inInt32(z) {
				line[i] = GlyphVoid
				continue
			}
			c := world.Cell{World: worldID, X: int32(x), Z: int32(z)}
			line[i] = glyphAt(s.state.Claims, guildID, c, removed)
		}
		rows = append(rows, string(line))
	}
	return rows
}

func inInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func (s *ClaimSystem) clampRadius(radius int) int {
	if radius <= 0 {
		radius = s.cfg.MapRadius
	}
	if radius < s.cfg.MapRadiusMin {
		radius = s.cfg.MapRadiusMin
	}
	if s.cfg.MapRadiusMax > 0 && radius > s.cfg.MapRadiusMax {
		radius = s.cfg.MapRadiusMax
	}
	return radius
}

func glyphAt(g *world.ClaimGrid, guildID int32, c world.Cell, removed *world.Cell) byte {
	if removed != nil && *removed == c {
		return GlyphRemoved
	}
	owner, ok := g.Owner(c)
	switch {
	case !ok:
		return GlyphEmpty
	case owner == guildID:
		return GlyphOwn
	default:
		return GlyphRival
	}
}

// FormatReport renders a component report as operator-readable lines.
func FormatReport(rep world.ComponentReport) []string {
	var lines []string
	if rep.Removed != nil {
		lines = append(lines, fmt.Sprintf("guild %d in %s without %d,%d: %d cells, %d components",
			rep.GuildID, rep.World, rep.Removed.X, rep.Removed.Z, rep.TotalCells, rep.Count()))
	} else {
		lines = append(lines, fmt.Sprintf("guild %d in %s: %d cells, %d components",
			rep.GuildID, rep.World, rep.TotalCells, rep.Count()))
	}
	for i, c := range rep.Components {
		kind := "main"
		if c.IsOutpost() {
			kind = fmt.Sprintf("outpost (center %d,%d)", c.Centers[0].X, c.Centers[0].Z)
		}
		lines = append(lines, fmt.Sprintf("  #%d %s: %d cells from %d,%d",
			i+1, kind, c.Size, c.Representative.X, c.Representative.Z))
	}
	return lines
}
