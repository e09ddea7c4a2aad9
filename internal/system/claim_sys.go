package system

import (
	"sync"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/core/event"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

// GuildDirectory answers guild membership questions. Owned outside this package.
type GuildDirectory interface {
	GuildOf(charID int32) (int32, bool)
	RankOf(charID, guildID int32) int16
	TypeOf(guildID int32) world.GuildType
	MemberCount(guildID int32) int
}

// WorldGate reports whether claims are enabled in a world.
type WorldGate interface {
	IsEnabled(worldID string) bool
}

// ClaimLimiter may override the configured per-guild claim maximum.
type ClaimLimiter interface {
	ClaimLimit(guildID int32, guildType string, members, base int) int
}

// ClaimSystem validates and applies territory claims.
// One mutex guards the grid and outpost registry: every read-decide-write
// sequence sees a consistent snapshot.
type ClaimSystem struct {
	mu      sync.Mutex
	state   *world.State
	guilds  GuildDirectory
	worlds  WorldGate
	limiter ClaimLimiter
	cfg     config.ClaimsConfig
	log     *zap.Logger

	version uint64 // bumped on every accepted mutation
	saved   uint64 // version last persisted
}

// NewClaimSystem creates a claim system over ws.
func NewClaimSystem(ws *world.State, guilds GuildDirectory, worlds WorldGate, cfg config.ClaimsConfig, log *zap.Logger) *ClaimSystem {
	return &ClaimSystem{
		state:  ws,
		guilds: guilds,
		worlds: worlds,
		cfg:    cfg,
		log:    log,
	}
}

// SetLimiter installs a claim-limit override. nil restores the configured maximum.
func (s *ClaimSystem) SetLimiter(l ClaimLimiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiter = l
}

// Subscribe registers the claim system's event handlers on bus.
func (s *ClaimSystem) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.GuildDeleted) {
		s.PurgeGuild(ev.GuildID)
	})
}

// ==================== Claim ====================

// Claim tries to claim one cell for the player's guild.
func (s *ClaimSystem) Claim(playerID int32, worldID string, x, z int32) ClaimResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	guildID, ok := s.guildOf(playerID)
	if !ok {
		return ClaimNotInGuild
	}
	if !world.IsAdminRank(s.guilds.RankOf(playerID, guildID)) {
		return ClaimNotAdmin
	}
	if !s.worldEnabled(worldID) {
		return ClaimWorldDisabled
	}

	target := world.Cell{World: worldID, X: x, Z: z}
	grid := s.state.Claims
	owner, claimed := grid.Owner(target)
	if claimed && owner != guildID {
		return ClaimAlreadyClaimedByOther
	}
	if s.nearRival(guildID, target) {
		return ClaimTooCloseToOthers
	}
	if grid.CountGuild(guildID) >= s.claimLimit(guildID) {
		return ClaimMaxLimitReached
	}
	if claimed {
		// Already ours; nothing to write.
		return ClaimSuccess
	}

	newOutpost := false
	if !s.guilds.TypeOf(guildID).Bypass() {
		res, outpost := s.checkPlacement(guildID, target)
		if res != ClaimSuccess {
			return res
		}
		newOutpost = outpost
	}

	grid.Set(target, guildID)
	if newOutpost {
		s.state.Outposts.AddCenter(guildID, target)
	}
	s.markDirty()
	s.log.Debug("chunk claimed",
		zap.Int32("guild", guildID),
		zap.Int32("player", playerID),
		zap.Stringer("cell", target),
		zap.Bool("outpost", newOutpost),
	)
	return ClaimSuccess
}

// checkPlacement applies the connectivity and outpost rules. The bool is
// true when the target founds a new outpost.
func (s *ClaimSystem) checkPlacement(guildID int32, target world.Cell) (ClaimResult, bool) {
	grid := s.state.Claims
	outposts := s.state.Outposts

	// First claim in this world starts the main territory.
	if grid.CountGuildIn(guildID, target.World) == 0 {
		return ClaimSuccess, false
	}

	neighbor, adjacent := world.AdjacentOwned(grid, guildID, target)
	if !adjacent {
		// A detached claim near an existing outpost has to grow from it instead.
		if world.WithinOutpostRadius(outposts, guildID, target, s.cfg.OutpostRadius) {
			return ClaimNotConnected, false
		}
		if outposts.AtLimit(guildID) {
			return ClaimOutpostsLimitReached, false
		}
		return ClaimSuccess, true
	}

	// The range check spans every center of the guild in this world, not only
	// the centers of the component being joined.
	comp := world.ComponentContaining(grid, guildID, neighbor)
	if world.HasCenter(outposts, guildID, comp) &&
		!world.WithinOutpostRadius(outposts, guildID, target, s.cfg.OutpostRadius) {
		return ClaimOutpostRangeExceeded, false
	}
	return ClaimSuccess, false
}

// nearRival reports whether another guild owns a cell within the proximity buffer of c.
func (s *ClaimSystem) nearRival(guildID int32, c world.Cell) bool {
	buf := s.cfg.ProximityBuffer
	for dz := -buf; dz <= buf; dz++ {
		for dx := -buf; dx <= buf; dx++ {
			owner, ok := s.state.Claims.Owner(c.Offset(dx, dz))
			if ok && owner != guildID {
				return true
			}
		}
	}
	return false
}

func (s *ClaimSystem) claimLimit(guildID int32) int {
	base := s.cfg.MaxClaimsPerGuild
	if s.limiter == nil {
		return base
	}
	return s.limiter.ClaimLimit(guildID, s.guilds.TypeOf(guildID).String(), s.guilds.MemberCount(guildID), base)
}

// ==================== Unclaim ====================

// Unclaim tries to release one cell of the player's guild.
func (s *ClaimSystem) Unclaim(playerID int32, worldID string, x, z int32) UnclaimResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	guildID, ok := s.guildOf(playerID)
	if !ok {
		return UnclaimNotPlayerInGuild
	}
	if !world.IsAdminRank(s.guilds.RankOf(playerID, guildID)) {
		return UnclaimNotAdmin
	}
	if !s.worldEnabled(worldID) {
		return UnclaimWorldDisabled
	}

	target := world.Cell{World: worldID, X: x, Z: z}
	grid := s.state.Claims
	owner, claimed := grid.Owner(target)
	if !claimed {
		return UnclaimNotClaimed
	}
	if owner != guildID {
		return UnclaimNotOwned
	}
	if world.WouldDisconnect(grid, guildID, target) {
		return UnclaimDisconnectsTerritory
	}

	grid.Clear(target)
	// The component keeps no center if its center goes; the allowance is not refunded.
	wasCenter := s.state.Outposts.RemoveCenter(guildID, target)
	s.markDirty()
	s.log.Debug("chunk unclaimed",
		zap.Int32("guild", guildID),
		zap.Int32("player", playerID),
		zap.Stringer("cell", target),
		zap.Bool("center", wasCenter),
	)
	return UnclaimSuccess
}

// ==================== Queries and grants ====================

// OwnerOf returns the guild owning a cell.
func (s *ClaimSystem) OwnerOf(worldID string, x, z int32) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Claims.Owner(world.Cell{World: worldID, X: x, Z: z})
}

// ClaimCount returns the guild's claims across all worlds.
func (s *ClaimSystem) ClaimCount(guildID int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Claims.CountGuild(guildID)
}

// OutpostCenters returns the guild's outpost centers in a world.
func (s *ClaimSystem) OutpostCenters(guildID int32, worldID string) []world.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Outposts.Centers(guildID, worldID)
}

// OutpostQuota returns how many outposts the guild has founded and may found.
func (s *ClaimSystem) OutpostQuota(guildID int32) (founded, allowance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Outposts.Founded(guildID), s.state.Outposts.Allowance(guildID)
}

// GrantOutposts raises the guild's outpost allowance by n and returns the new allowance.
func (s *ClaimSystem) GrantOutposts(guildID int32, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.state.Outposts.Grant(guildID, n)
	s.markDirty()
	s.log.Info("outpost allowance granted",
		zap.Int32("guild", guildID), zap.Int("amount", n), zap.Int("allowance", total))
	return total
}

// PurgeGuild removes every claim and outpost record of guildID in every world.
// Returns the number of claims removed.
func (s *ClaimSystem) PurgeGuild(guildID int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.state.Claims.RemoveGuild(guildID)
	centers := s.state.Outposts.RemoveGuild(guildID)
	s.markDirty()
	s.log.Info("guild territory purged",
		zap.Int32("guild", guildID), zap.Int("claims", removed), zap.Int("centers", centers))
	return removed
}

// PruneGuilds purges every guild holding claims or outpost records for which
// known returns false. Run after loading to drop territory left behind by a
// guild dissolved before its purge was saved. Returns the guilds pruned.
func (s *ClaimSystem) PruneGuilds(known func(guildID int32) bool) []int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int32]struct{})
	var pruned []int32
	for _, ids := range [][]int32{s.state.Claims.Guilds(), s.state.Outposts.Guilds()} {
		for _, id := range ids {
			if _, dup := seen[id]; dup || known(id) {
				continue
			}
			seen[id] = struct{}{}
			claims := s.state.Claims.RemoveGuild(id)
			centers := s.state.Outposts.RemoveGuild(id)
			pruned = append(pruned, id)
			s.log.Warn("pruned territory of unknown guild",
				zap.Int32("guild", id), zap.Int("claims", claims), zap.Int("centers", centers))
		}
	}
	if len(pruned) > 0 {
		s.markDirty()
	}
	return pruned
}

// ==================== Persistence hooks ====================

// Dirty reports whether accepted mutations are not yet persisted.
func (s *ClaimSystem) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.saved
}

// Export copies the claim state. Snapshot.Version identifies it for MarkSaved.
func (s *ClaimSystem) Export() world.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.Export()
	snap.Version = s.version
	return snap
}

// MarkSaved records that the state at version has been persisted.
func (s *ClaimSystem) MarkSaved(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version > s.saved {
		s.saved = version
	}
}

// Load replaces the claim state with snap. The loaded state is clean.
func (s *ClaimSystem) Load(snap world.Snapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.state.Import(snap)
	s.saved = s.version
	return dropped
}

func (s *ClaimSystem) markDirty() {
	s.version++
}

func (s *ClaimSystem) guildOf(playerID int32) (int32, bool) {
	if playerID == 0 {
		return 0, false
	}
	return s.guilds.GuildOf(playerID)
}

func (s *ClaimSystem) worldEnabled(worldID string) bool {
	return worldID != "" && s.worlds != nil && s.worlds.IsEnabled(worldID)
}
