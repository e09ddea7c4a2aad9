package world

import (
	"fmt"
	"strings"
)

// Guild rank constants. Officers and the leader hold the administrative role.
const (
	GuildRankMember    int16 = 7
	GuildRankProbation int16 = 8
	GuildRankOfficer   int16 = 9
	GuildRankLeader    int16 = 10
)

// IsAdminRank reports whether rank may manage the guild's territory.
func IsAdminRank(rank int16) bool {
	return rank == GuildRankOfficer || rank == GuildRankLeader
}

// GuildType is a closed set of guild kinds. Safe and war guilds ignore
// connectivity and outpost rules when claiming.
type GuildType uint8

const (
	GuildOrdinary GuildType = iota
	GuildSafe
	GuildWar
)

func (t GuildType) String() string {
	switch t {
	case GuildSafe:
		return "safe"
	case GuildWar:
		return "war"
	default:
		return "ordinary"
	}
}

// Bypass reports whether the type skips connectivity and outpost checks.
func (t GuildType) Bypass() bool {
	return t == GuildSafe || t == GuildWar
}

// ParseGuildType parses "ordinary", "safe" or "war" (case-insensitive).
// An empty string is ordinary.
func ParseGuildType(s string) (GuildType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ordinary", "player":
		return GuildOrdinary, nil
	case "safe":
		return GuildSafe, nil
	case "war":
		return GuildWar, nil
	}
	return GuildOrdinary, fmt.Errorf("unknown guild type %q", s)
}

// GuildMember holds data for a single guild member.
type GuildMember struct {
	CharID   int32
	CharName string
	Rank     int16
}

// GuildInfo holds in-memory data for a guild.
type GuildInfo struct {
	GuildID  int32
	Name     string
	Type     GuildType
	LeaderID int32
	Members  map[int32]*GuildMember // charID → member
}

// MemberCount returns the number of members in the guild.
func (g *GuildInfo) MemberCount() int {
	return len(g.Members)
}

// GuildManager is the in-memory guild roster.
// Single-goroutine access only (game loop).
type GuildManager struct {
	guilds      map[int32]*GuildInfo // guildID → guild
	playerGuild map[int32]int32      // charID → guildID
	guildByName map[string]int32     // lowercase name → guildID
}

// NewGuildManager creates an empty GuildManager.
func NewGuildManager() *GuildManager {
	return &GuildManager{
		guilds:      make(map[int32]*GuildInfo),
		playerGuild: make(map[int32]int32),
		guildByName: make(map[string]int32),
	}
}

// GetGuild returns a guild by its ID, or nil.
func (m *GuildManager) GetGuild(guildID int32) *GuildInfo {
	return m.guilds[guildID]
}

// GetGuildByName returns a guild by its name (case-insensitive), or nil.
func (m *GuildManager) GetGuildByName(name string) *GuildInfo {
	id, ok := m.guildByName[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return m.guilds[id]
}

// GuildCount returns the total number of guilds.
func (m *GuildManager) GuildCount() int {
	return len(m.guilds)
}

// GuildOf returns the guild a player belongs to.
func (m *GuildManager) GuildOf(charID int32) (int32, bool) {
	id, ok := m.playerGuild[charID]
	return id, ok && id != 0
}

// RankOf returns the player's rank in guildID, or 0 if not a member.
func (m *GuildManager) RankOf(charID, guildID int32) int16 {
	g := m.guilds[guildID]
	if g == nil {
		return 0
	}
	mem := g.Members[charID]
	if mem == nil {
		return 0
	}
	return mem.Rank
}

// TypeOf returns the guild's type. Unknown guilds are ordinary.
func (m *GuildManager) TypeOf(guildID int32) GuildType {
	if g := m.guilds[guildID]; g != nil {
		return g.Type
	}
	return GuildOrdinary
}

// MemberCount returns the number of members of guildID.
func (m *GuildManager) MemberCount(guildID int32) int {
	if g := m.guilds[guildID]; g != nil {
		return g.MemberCount()
	}
	return 0
}

// AddGuild registers a guild in memory.
func (m *GuildManager) AddGuild(g *GuildInfo) {
	if g.Members == nil {
		g.Members = make(map[int32]*GuildMember)
	}
	m.guilds[g.GuildID] = g
	m.guildByName[strings.ToLower(g.Name)] = g.GuildID
	for charID := range g.Members {
		m.playerGuild[charID] = g.GuildID
	}
}

// RemoveGuild removes a guild and all member mappings. Returns false if unknown.
func (m *GuildManager) RemoveGuild(guildID int32) bool {
	g := m.guilds[guildID]
	if g == nil {
		return false
	}
	for charID := range g.Members {
		delete(m.playerGuild, charID)
	}
	delete(m.guildByName, strings.ToLower(g.Name))
	delete(m.guilds, guildID)
	return true
}

// AddMember adds a member to a guild.
func (m *GuildManager) AddMember(guildID int32, member *GuildMember) {
	g := m.guilds[guildID]
	if g == nil {
		return
	}
	g.Members[member.CharID] = member
	m.playerGuild[member.CharID] = guildID
}

// RemoveMember removes a member from a guild.
func (m *GuildManager) RemoveMember(guildID, charID int32) {
	g := m.guilds[guildID]
	if g == nil {
		return
	}
	delete(g.Members, charID)
	delete(m.playerGuild, charID)
}
