package system

import (
	"fmt"
	"testing"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

const (
	guildG    int32 = 1
	guildH    int32 = 2
	guildSafe int32 = 3
	guildWar  int32 = 4

	officerG   int32 = 10
	memberG    int32 = 11
	leaderH    int32 = 20
	leaderSafe int32 = 30
	leaderWar  int32 = 40
	loner      int32 = 99

	ow = "overworld"
)

type worldSet map[string]bool

func (w worldSet) IsEnabled(id string) bool { return w[id] }

type limiterFunc func(guildID int32, guildType string, members, base int) int

func (f limiterFunc) ClaimLimit(guildID int32, guildType string, members, base int) int {
	return f(guildID, guildType, members, base)
}

func addGuild(m *world.GuildManager, id int32, typ world.GuildType, members map[int32]int16) {
	g := &world.GuildInfo{GuildID: id, Name: fmt.Sprintf("guild-%d", id), Type: typ, Members: map[int32]*world.GuildMember{}}
	for charID, rank := range members {
		g.Members[charID] = &world.GuildMember{CharID: charID, Rank: rank}
	}
	m.AddGuild(g)
}

// newTestClaims builds a claim system with guilds G, H (ordinary), a safe and
// a war guild, and the overworld and arena enabled.
func newTestClaims(t *testing.T, tweak func(*config.ClaimsConfig)) (*ClaimSystem, *world.State) {
	t.Helper()
	cfg := config.Default().Claims
	if tweak != nil {
		tweak(&cfg)
	}
	ws := world.NewState(cfg.DefaultOutpostAllowance)
	addGuild(ws.Guilds, guildG, world.GuildOrdinary, map[int32]int16{
		officerG: world.GuildRankOfficer,
		memberG:  world.GuildRankMember,
	})
	addGuild(ws.Guilds, guildH, world.GuildOrdinary, map[int32]int16{leaderH: world.GuildRankLeader})
	addGuild(ws.Guilds, guildSafe, world.GuildSafe, map[int32]int16{leaderSafe: world.GuildRankLeader})
	addGuild(ws.Guilds, guildWar, world.GuildWar, map[int32]int16{leaderWar: world.GuildRankLeader})

	worlds := worldSet{ow: true, "arena": true, "nether": false}
	return NewClaimSystem(ws, ws.Guilds, worlds, cfg, zap.NewNop()), ws
}

func at(x, z int32) world.Cell {
	return world.Cell{World: ow, X: x, Z: z}
}
