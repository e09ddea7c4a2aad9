package handler

import (
	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/core/event"
	"github.com/l1jgo/territory/internal/data"
	"github.com/l1jgo/territory/internal/persist"
	"github.com/l1jgo/territory/internal/system"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into operator commands.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	World     *world.State
	Claims    *system.ClaimSystem
	Worlds    *data.WorldTable
	Bus       *event.Bus
	Persist   *system.PersistenceSystem
	GuildRepo *persist.GuildRepo // nil when guilds come from the YAML roster
}
