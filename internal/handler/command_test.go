package handler

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/core/event"
	"github.com/l1jgo/territory/internal/data"
	"github.com/l1jgo/territory/internal/persist"
	"github.com/l1jgo/territory/internal/system"
	"github.com/l1jgo/territory/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDeps(t *testing.T) (*Deps, *persist.SnapshotStore) {
	t.Helper()
	cfg := config.Default()
	cfg.Claims.DefaultOutpostAllowance = 1
	log := zap.NewNop()

	ws := world.NewState(cfg.Claims.DefaultOutpostAllowance)
	ws.Guilds.AddGuild(&world.GuildInfo{
		GuildID: 1,
		Name:    "Ironhold",
		Members: map[int32]*world.GuildMember{
			100: {CharID: 100, CharName: "Brannoc", Rank: world.GuildRankLeader},
		},
	})
	worlds := data.NewWorldTable([]data.WorldEntry{{Name: "overworld", Enabled: true}, {Name: "nether"}})
	claims := system.NewClaimSystem(ws, ws.Guilds, worlds, cfg.Claims, log)
	bus := event.NewBus()
	claims.Subscribe(bus)

	store := persist.NewSnapshotStore(filepath.Join(t.TempDir(), "claims.json.zst"))
	return &Deps{
		Config:  cfg,
		Log:     log,
		World:   ws,
		Claims:  claims,
		Worlds:  worlds,
		Bus:     bus,
		Persist: system.NewPersistenceSystem(claims, store, log, 1),
	}, store
}

func run(t *testing.T, deps *Deps, line string) string {
	t.Helper()
	var out bytes.Buffer
	require.True(t, HandleCommand(&out, line, deps), line)
	return strings.TrimRight(out.String(), "\n")
}

func TestHandleCommandIgnoresPlainText(t *testing.T) {
	deps, _ := newTestDeps(t)
	var out bytes.Buffer
	assert.False(t, HandleCommand(&out, "hello", deps))
	assert.True(t, HandleCommand(&out, ".", deps))
	assert.Empty(t, out.String())
	assert.Equal(t, "unknown command: .fly  (try .help)", run(t, deps, ".fly"))
	assert.Contains(t, run(t, deps, ".help"), ".bulkclaim")
}

func TestClaimCommands(t *testing.T) {
	deps, _ := newTestDeps(t)

	assert.Equal(t, "claim overworld 0,0: SUCCESS", run(t, deps, ".claim 100 overworld 0 0"))
	assert.Equal(t, "claim nether 0,0: WORLD_DISABLED", run(t, deps, ".claim 100 nether 0 0"))
	assert.Equal(t, "claim overworld 1,0: NOT_IN_GUILD", run(t, deps, ".claim 5 overworld 1 0"))
	assert.Equal(t, "usage: .claim <player> <world> <x> <z>", run(t, deps, ".claim 100 overworld 0"))
	assert.Equal(t, `"x" is not a number`, run(t, deps, ".claim 100 overworld x 0"))

	assert.Equal(t, "overworld 0,0 is owned by guild 1 (Ironhold)", run(t, deps, ".owner overworld 0 0"))
	assert.Equal(t, "overworld 3,3 is unclaimed", run(t, deps, ".owner overworld 3 3"))

	assert.Equal(t, "unclaim overworld 0,0: SUCCESS", run(t, deps, ".unclaim 100 overworld 0 0"))
	assert.Equal(t, "unclaim overworld 0,0: NOT_CLAIMED", run(t, deps, ".unclaim 100 overworld 0 0"))
}

func TestBulkCommands(t *testing.T) {
	deps, _ := newTestDeps(t)

	assert.Equal(t, "bulk claim: total=9 claimed=9 skipped=0", run(t, deps, ".bulkclaim 1 overworld 0 0 2 2"))
	assert.Equal(t, "bulk claim: total=4 claimed=0 skipped=4", run(t, deps, ".bulkclaim 2 overworld 1 1 2 2"))
	assert.Equal(t, "bulk unclaim: total=3 removed=3", run(t, deps, ".bulkunclaim 1 overworld 0 0 2 0"))
	assert.Equal(t, "clear area: total=25 removed=6", run(t, deps, ".cleararea overworld -1 -1 3 3"))
	assert.Equal(t, "usage: .cleararea <world> <x1> <z1> <x2> <z2>", run(t, deps, ".cleararea overworld 0 0 1"))
	assert.Equal(t, `"b" is not a number`, run(t, deps, ".bulkclaim 1 overworld 0 0 b 1"))
}

func TestBulkCommandsRejectLargeArea(t *testing.T) {
	deps, _ := newTestDeps(t)

	msg := "area of 1002001 cells exceeds max_bulk_area 65536"
	assert.Equal(t, msg, run(t, deps, ".bulkclaim 1 overworld 0 0 1000 1000"))
	assert.Equal(t, msg, run(t, deps, ".bulkunclaim 1 overworld 0 0 1000 1000"))
	assert.Equal(t, msg, run(t, deps, ".cleararea overworld 1000 1000 0 0"))
	assert.Equal(t, "area of 4294967296 cells exceeds max_bulk_area 65536",
		run(t, deps, ".bulkclaim 1 overworld -2147483648 0 2147483647 0"))
	assert.Zero(t, deps.Claims.ClaimCount(1))
}

func TestDiagnosticCommands(t *testing.T) {
	deps, _ := newTestDeps(t)
	run(t, deps, ".claim 100 overworld 0 0")
	run(t, deps, ".claim 100 overworld 1 0")
	run(t, deps, ".claim 100 overworld 2 0")

	assert.Equal(t, "guild 1 in overworld: 3 cells, 1 components\n  #1 main: 3 cells from 0,0",
		run(t, deps, ".analyze 1 overworld"))

	out := run(t, deps, ".whatif 1 overworld 1 0")
	assert.Contains(t, out, "without 1,0: 2 cells, 2 components")
	assert.Contains(t, out, "removal would split the territory (1 → 2 components)")

	assert.Equal(t, ".....\n.....\n.#X#.\n.....\n.....", run(t, deps, ".map 1 overworld 1 0 2 1 0"))
	assert.Equal(t, "...\n###\n...", run(t, deps, ".map 1 overworld 1 0 1"))
}

func TestGrantAndQuota(t *testing.T) {
	deps, _ := newTestDeps(t)
	run(t, deps, ".claim 100 overworld 0 0")

	assert.Equal(t, "guild 1: 1/25 claims, 0/1 outposts", run(t, deps, ".quota 1"))
	assert.Equal(t, "guild 1 outpost allowance is now 3", run(t, deps, ".grant 1 2"))
	assert.Equal(t, "grant amount must be positive", run(t, deps, ".grant 1 0"))
	run(t, deps, ".claim 100 overworld 10 10")
	assert.Equal(t, "guild 1: 2/25 claims, 1/3 outposts", run(t, deps, ".quota 1"))
}

func TestWorldCommand(t *testing.T) {
	deps, _ := newTestDeps(t)

	assert.Equal(t, "nether: off\noverworld: on", run(t, deps, ".world"))
	assert.Equal(t, "nether: on", run(t, deps, ".world nether ON"))
	assert.Equal(t, "claim nether 0,0: SUCCESS", run(t, deps, ".claim 100 nether 0 0"))
	assert.Equal(t, "usage: .world <name> on|off", run(t, deps, ".world nether maybe"))
}

func TestGuildDeletePurgesAfterDispatch(t *testing.T) {
	deps, _ := newTestDeps(t)
	run(t, deps, ".claim 100 overworld 0 0")

	assert.Equal(t, "guild 1 deleted; territory purge queued", run(t, deps, ".guilddelete 1"))
	assert.Nil(t, deps.World.Guilds.GetGuild(1))
	assert.Equal(t, 1, deps.Claims.ClaimCount(1))

	system.NewEventDispatchSystem(deps.Bus, deps.Log).Update(0)
	assert.Zero(t, deps.Claims.ClaimCount(1))
	assert.Equal(t, "guild 1 not in roster; purging territory anyway", run(t, deps, ".guilddelete 1"))
}

func TestSaveCommand(t *testing.T) {
	deps, store := newTestDeps(t)
	run(t, deps, ".claim 100 overworld 4 4")

	assert.Equal(t, "claims saved", run(t, deps, ".save"))
	assert.False(t, deps.Claims.Dirty())

	snap, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []persist.ClaimRow{{World: "overworld", X: 4, Z: 4, GuildID: 1}}, snap.Claims)
}

func TestScanCommands(t *testing.T) {
	lines := make(chan string, 8)
	ScanCommands(strings.NewReader(".save\n\n  .quota 1  \n"), lines)

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	assert.Equal(t, []string{".save", ".quota 1"}, got)
}
