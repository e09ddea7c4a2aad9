package system

import (
	"math"
	"testing"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkClaimSkipsRivals(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	require.Equal(t, ClaimSuccess, cs.Claim(leaderH, ow, 1, 1))

	res := cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 2, Z2: 2})
	assert.Equal(t, BulkClaimResult{Total: 9, Claimed: 8, Skipped: 1}, res)
	owner, _ := cs.OwnerOf(ow, 1, 1)
	assert.Equal(t, guildH, owner)
	assert.Empty(t, cs.OutpostCenters(guildG, ow))
}

func TestBulkClaimIdempotent(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	r := world.Rect{X1: 4, Z1: 4, X2: 2, Z2: 2}

	first := cs.BulkClaim(guildG, ow, r)
	second := cs.BulkClaim(guildG, ow, r)
	assert.Equal(t, BulkClaimResult{Total: 9, Claimed: 9}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 9, cs.ClaimCount(guildG))
}

func TestBulkClaimIgnoresRules(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 9, Z2: 9})
	assert.Equal(t, 100, cs.ClaimCount(guildG), "capacity is not enforced")

	res := cs.BulkClaim(guildH, ow, world.Rect{X1: 10, Z1: 0, X2: 10, Z2: 0})
	assert.Equal(t, 1, res.Claimed, "proximity is not enforced")
}

func TestBulkClaimInvalidInput(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	assert.Zero(t, cs.BulkClaim(0, ow, world.Rect{X2: 1, Z2: 1}))
	assert.Zero(t, cs.BulkClaim(guildG, "", world.Rect{X2: 1, Z2: 1}))
	assert.False(t, cs.Dirty())
}

func TestBulkUnclaimByGuild(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 2, Z2: 0})
	cs.BulkClaim(guildH, ow, world.Rect{X1: 3, Z1: 0, X2: 3, Z2: 0})

	res := cs.BulkUnclaim(guildG, ow, world.Rect{X1: 1, Z1: 0, X2: 5, Z2: 0})
	assert.Equal(t, BulkUnclaimResult{Total: 5, Removed: 2}, res)
	assert.Equal(t, 1, cs.ClaimCount(guildG))
	assert.Equal(t, 1, cs.ClaimCount(guildH))
}

func TestBulkUnclaimMaySplitTerritory(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 4, Z2: 0})

	res := cs.BulkUnclaim(guildG, ow, world.Rect{X1: 2, Z1: 0, X2: 2, Z2: 0})
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 2, cs.Analyze(guildG, ow).Count())
}

func TestBulkUnclaimArea(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	cs.BulkClaim(guildG, ow, world.Rect{X1: 0, Z1: 0, X2: 1, Z2: 1})
	cs.BulkClaim(guildH, ow, world.Rect{X1: 2, Z1: 0, X2: 2, Z2: 1})
	cs.MarkSaved(cs.Export().Version)

	res := cs.BulkUnclaimArea(ow, world.Rect{X1: 0, Z1: 0, X2: 3, Z2: 1})
	assert.Equal(t, BulkUnclaimResult{Total: 8, Removed: 6}, res)
	assert.Zero(t, cs.ClaimCount(guildG))
	assert.Zero(t, cs.ClaimCount(guildH))
	assert.True(t, cs.Dirty())

	cs.MarkSaved(cs.Export().Version)
	empty := cs.BulkUnclaimArea(ow, world.Rect{X1: 0, Z1: 0, X2: 3, Z2: 1})
	assert.Zero(t, empty.Removed)
	assert.False(t, cs.Dirty())
}

func TestBulkAtInt32Bounds(t *testing.T) {
	cs, _ := newTestClaims(t, nil)
	r := world.Rect{X1: math.MaxInt32 - 1, Z1: 0, X2: math.MaxInt32, Z2: 0}

	assert.Equal(t, BulkClaimResult{Total: 2, Claimed: 2}, cs.BulkClaim(guildG, ow, r))
	assert.Equal(t, BulkUnclaimResult{Total: 2, Removed: 2}, cs.BulkUnclaim(guildG, ow, r))
	assert.Equal(t, BulkUnclaimResult{Total: 2}, cs.BulkUnclaimArea(ow, r))
}

func TestBulkRejectsLargeArea(t *testing.T) {
	cs, _ := newTestClaims(t, func(c *config.ClaimsConfig) { c.MaxBulkArea = 100 })

	huge := world.Rect{X1: math.MinInt32, Z1: 0, X2: math.MaxInt32, Z2: 0}
	assert.Equal(t, BulkClaimResult{TooLarge: true}, cs.BulkClaim(guildG, ow, huge))
	assert.Equal(t, BulkUnclaimResult{TooLarge: true}, cs.BulkUnclaim(guildG, ow, huge))
	assert.Equal(t, BulkUnclaimResult{TooLarge: true}, cs.BulkUnclaimArea(ow, huge))

	over := world.Rect{X1: 0, Z1: 0, X2: 10, Z2: 9}
	assert.True(t, cs.BulkClaim(guildG, ow, over).TooLarge)
	assert.Zero(t, cs.ClaimCount(guildG))
	assert.False(t, cs.Dirty())

	exact := world.Rect{X1: 0, Z1: 0, X2: 9, Z2: 9}
	assert.Equal(t, 100, cs.BulkClaim(guildG, ow, exact).Claimed)
}
