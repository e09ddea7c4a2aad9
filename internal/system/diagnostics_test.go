package system

import (
	"math"
	"testing"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMap(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 1, Z2: 0})
	cs.BulkClaim(guildH, ow, world.Rect{X1: -1, Z1: -1, X2: -1, Z2: -1})

	rows := cs.RenderMap(guildG, ow, 0, 0, 1, nil)
	assert.Equal(t, []string{
		"+..",
		".##",
		"...",
	}, rows)

	removed := at(1, 0)
	rows = cs.RenderMap(guildG, ow, 0, 0, 1, &removed)
	assert.Equal(t, ".#X", rows[1])
}

func TestRenderMapClampsRadius(t *testing.T) {
	cs, _ := newTestClaims(t, func(c *config.ClaimsConfig) {
		c.MapRadius = 3
		c.MapRadiusMin = 2
		c.MapRadiusMax = 5
	})

	assert.Len(t, cs.RenderMap(guildG, ow, 0, 0, 0, nil), 7)
	assert.Len(t, cs.RenderMap(guildG, ow, 0, 0, 1, nil), 5)
	rows := cs.RenderMap(guildG, ow, 0, 0, 50, nil)
	require.Len(t, rows, 11)
	assert.Len(t, rows[0], 11)
}

func TestFormatReport(t *testing.T) {
	cs, _ := newTestClaims(t, func(c *config.ClaimsConfig) { c.DefaultOutpostAllowance = 1 })
	require.Equal(t, ClaimSuccess, cs.Claim(officerG, ow, 0, 0))
	require.Equal(t, ClaimSuccess, cs.Claim(officerG, ow, 1, 0))
	require.Equal(t, ClaimSuccess, cs.Claim(officerG, ow, 10, 10))

	assert.Equal(t, []string{
		"guild 1 in overworld: 3 cells, 2 components",
		"  #1 main: 2 cells from 0,0",
		"  #2 outpost (center 10,10): 1 cells from 10,10",
	}, FormatReport(cs.Analyze(guildG, ow)))

	assert.Equal(t, []string{
		"guild 1 in overworld without 0,0: 2 cells, 2 components",
		"  #1 main: 1 cells from 1,0",
		"  #2 outpost (center 10,10): 1 cells from 10,10",
	}, FormatReport(cs.AnalyzeAfterRemoval(guildG, ow, 0, 0)))
}

func TestRenderMapAtInt32Bounds(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: math.MaxInt32, X2: 0, Z2: math.MaxInt32})

	rows := cs.RenderMap(guildG, ow, 0, math.MaxInt32-1, 1, nil)
	assert.Equal(t, []string{"...", "...", ".#."}, rows)

	rows = cs.RenderMap(guildG, ow, math.MaxInt32, math.MaxInt32, 1, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{".. ", ".. ", "   "}, rows)

	rows = cs.RenderMap(guildG, ow, math.MinInt32, 0, 1, nil)
	assert.Equal(t, []string{" ..", " ..", " .."}, rows)
}
