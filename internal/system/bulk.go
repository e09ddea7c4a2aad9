package system

import (
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

// Bulk operations write straight to the grid for operators. They skip the
// proximity, capacity, connectivity, and outpost rules and never touch the
// outpost registry.

// BulkClaim assigns every cell of r to guildID, skipping cells owned by other guilds.
// Cells the guild already owns count as claimed.
func (s *ClaimSystem) BulkClaim(guildID int32, worldID string, r world.Rect) BulkClaimResult {
	var res BulkClaimResult
	if guildID == 0 || worldID == "" {
		return res
	}
	if s.tooLarge(r) {
		res.TooLarge = true
		return res
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	grid := s.state.Claims
	r.Each(worldID, func(c world.Cell) {
		res.Total++
		if owner, ok := grid.Owner(c); ok && owner != guildID {
			res.Skipped++
			return
		}
		grid.Set(c, guildID)
		res.Claimed++
	})
	if res.Claimed > 0 {
		s.markDirty()
	}
	s.log.Info("bulk claim",
		zap.Int32("guild", guildID), zap.String("world", worldID),
		zap.Int("total", res.Total), zap.Int("claimed", res.Claimed), zap.Int("skipped", res.Skipped))
	return res
}

// BulkUnclaim erases the cells of r owned by guildID.
func (s *ClaimSystem) BulkUnclaim(guildID int32, worldID string, r world.Rect) BulkUnclaimResult {
	return s.bulkUnclaim(worldID, r, func(owner int32) bool { return owner == guildID })
}

// BulkUnclaimArea erases every claimed cell of r regardless of owner.
func (s *ClaimSystem) BulkUnclaimArea(worldID string, r world.Rect) BulkUnclaimResult {
	return s.bulkUnclaim(worldID, r, func(int32) bool { return true })
}

func (s *ClaimSystem) bulkUnclaim(worldID string, r world.Rect, match func(owner int32) bool) BulkUnclaimResult {
	var res BulkUnclaimResult
	if worldID == "" {
		return res
	}
	if s.tooLarge(r) {
		res.TooLarge = true
		return res
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	grid := s.state.Claims
	r.Each(worldID, func(c world.Cell) {
		res.Total++
		if owner, ok := grid.Owner(c); ok && match(owner) {
			grid.Clear(c)
			res.Removed++
		}
	})
	if res.Removed > 0 {
		s.markDirty()
	}
	s.log.Info("bulk unclaim",
		zap.String("world", worldID), zap.Int("total", res.Total), zap.Int("removed", res.Removed))
	return res
}

// tooLarge reports whether r exceeds the configured bulk area. cfg is fixed
// after construction, so no lock is needed.
func (s *ClaimSystem) tooLarge(r world.Rect) bool {
	if area := r.Area(); area > s.cfg.MaxBulkArea {
		s.log.Warn("bulk area rejected", zap.Int64("area", area), zap.Int64("max", s.cfg.MaxBulkArea))
		return true
	}
	return false
}
