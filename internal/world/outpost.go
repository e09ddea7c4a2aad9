package world

import "sort"

// OutpostRegistry records outpost centers per guild and world, plus each
// guild's outpost allowance and the number of outposts it has founded.
//
// The founded counter only grows: unclaiming an outpost does not give the
// allowance back. It is reset only when the guild is purged.
type OutpostRegistry struct {
	centers          map[guildWorld]map[Cell]struct{}
	allowance        map[int32]int
	founded          map[int32]int
	defaultAllowance int
}

// NewOutpostRegistry creates an empty registry. Guilds without an explicit
// allowance get defaultAllowance.
func NewOutpostRegistry(defaultAllowance int) *OutpostRegistry {
	if defaultAllowance < 0 {
		defaultAllowance = 0
	}
	return &OutpostRegistry{
		centers:          make(map[guildWorld]map[Cell]struct{}),
		allowance:        make(map[int32]int),
		founded:          make(map[int32]int),
		defaultAllowance: defaultAllowance,
	}
}

// AddCenter marks c as an outpost center of guildID and counts it against the allowance.
func (r *OutpostRegistry) AddCenter(guildID int32, c Cell) {
	key := guildWorld{guild: guildID, world: c.World}
	set := r.centers[key]
	if set == nil {
		set = make(map[Cell]struct{})
		r.centers[key] = set
	}
	if _, ok := set[c]; ok {
		return
	}
	set[c] = struct{}{}
	r.founded[guildID]++
}

// RestoreCenter marks c as a center without touching the founded counter.
// Used when loading persisted state.
func (r *OutpostRegistry) RestoreCenter(guildID int32, c Cell) {
	key := guildWorld{guild: guildID, world: c.World}
	set := r.centers[key]
	if set == nil {
		set = make(map[Cell]struct{})
		r.centers[key] = set
	}
	set[c] = struct{}{}
}

// RemoveCenter drops c if it is a center of guildID. The founded counter is not refunded.
func (r *OutpostRegistry) RemoveCenter(guildID int32, c Cell) bool {
	key := guildWorld{guild: guildID, world: c.World}
	set := r.centers[key]
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.centers, key)
	}
	return true
}

// IsCenter reports whether c is an outpost center of guildID.
func (r *OutpostRegistry) IsCenter(guildID int32, c Cell) bool {
	_, ok := r.centers[guildWorld{guild: guildID, world: c.World}][c]
	return ok
}

// Centers returns the guild's centers in a world, sorted by (X, Z).
func (r *OutpostRegistry) Centers(guildID int32, worldID string) []Cell {
	set := r.centers[guildWorld{guild: guildID, world: worldID}]
	out := make([]Cell, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

// Allowance returns how many outposts the guild may found in total.
func (r *OutpostRegistry) Allowance(guildID int32) int {
	if n, ok := r.allowance[guildID]; ok {
		return n
	}
	return r.defaultAllowance
}

// SetAllowance overwrites the guild's allowance.
func (r *OutpostRegistry) SetAllowance(guildID int32, n int) {
	if n < 0 {
		n = 0
	}
	r.allowance[guildID] = n
}

// Grant raises the guild's allowance by n and returns the new value.
func (r *OutpostRegistry) Grant(guildID int32, n int) int {
	total := r.Allowance(guildID) + n
	if total < 0 {
		total = 0
	}
	r.allowance[guildID] = total
	return total
}

// Founded returns how many outposts the guild has founded.
func (r *OutpostRegistry) Founded(guildID int32) int {
	return r.founded[guildID]
}

// SetFounded overwrites the founded counter. Used when loading persisted state.
func (r *OutpostRegistry) SetFounded(guildID int32, n int) {
	if n <= 0 {
		delete(r.founded, guildID)
		return
	}
	r.founded[guildID] = n
}

// AtLimit reports whether the guild has used up its allowance.
func (r *OutpostRegistry) AtLimit(guildID int32) bool {
	return r.Founded(guildID) >= r.Allowance(guildID)
}

// RemoveGuild forgets every center, the allowance, and the founded counter of guildID.
func (r *OutpostRegistry) RemoveGuild(guildID int32) int {
	removed := 0
	for key, set := range r.centers {
		if key.guild == guildID {
			removed += len(set)
			delete(r.centers, key)
		}
	}
	delete(r.allowance, guildID)
	delete(r.founded, guildID)
	return removed
}

// Guilds returns the IDs of every guild with a center, an allowance, or a
// founded count on record, ascending.
func (r *OutpostRegistry) Guilds() []int32 {
	seen := make(map[int32]struct{})
	for key := range r.centers {
		seen[key.guild] = struct{}{}
	}
	for id := range r.allowance {
		seen[id] = struct{}{}
	}
	for id := range r.founded {
		seen[id] = struct{}{}
	}
	ids := make([]int32, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OutpostEntry is one center as exported for persistence.
type OutpostEntry struct {
	GuildID int32
	Cell    Cell
}

// GuildQuota is one guild's allowance and founded counter as exported for persistence.
type GuildQuota struct {
	GuildID   int32
	Allowance int
	Founded   int
}

// Export returns every center and every guild quota, in a stable order.
func (r *OutpostRegistry) Export() ([]OutpostEntry, []GuildQuota) {
	var entries []OutpostEntry
	for key, set := range r.centers {
		for c := range set {
			entries = append(entries, OutpostEntry{GuildID: key.guild, Cell: c})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GuildID != entries[j].GuildID {
			return entries[i].GuildID < entries[j].GuildID
		}
		return cellLess(entries[i].Cell, entries[j].Cell)
	})

	ids := make(map[int32]struct{}, len(r.allowance)+len(r.founded))
	for id := range r.allowance {
		ids[id] = struct{}{}
	}
	for id := range r.founded {
		ids[id] = struct{}{}
	}
	quotas := make([]GuildQuota, 0, len(ids))
	for id := range ids {
		quotas = append(quotas, GuildQuota{GuildID: id, Allowance: r.Allowance(id), Founded: r.Founded(id)})
	}
	sort.Slice(quotas, func(i, j int) bool { return quotas[i].GuildID < quotas[j].GuildID })
	return entries, quotas
}
