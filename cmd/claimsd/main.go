package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/territory/internal/config"
	"github.com/l1jgo/territory/internal/core/event"
	coresys "github.com/l1jgo/territory/internal/core/system"
	"github.com/l1jgo/territory/internal/data"
	"github.com/l1jgo/territory/internal/handler"
	"github.com/l1jgo/territory/internal/persist"
	"github.com/l1jgo/territory/internal/scripting"
	"github.com/l1jgo/territory/internal/system"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          guild territory  v0.1.0          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main logic ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/claims.toml"
	if p := os.Getenv("CLAIMS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	worldState := world.NewState(cfg.Claims.DefaultOutpostAllowance)

	// 3. Storage backend and guild roster
	printSection("storage")
	var (
		store       system.ClaimStore
		guildRepo   *persist.GuildRepo
		rosterKnown = true
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("migrations applied (schema %d)", version))

		store = persist.NewClaimRepo(db)
		guildRepo = persist.NewGuildRepo(db)
		n, err := loadGuildsFromDB(ctx, worldState.Guilds, guildRepo)
		if err != nil {
			return fmt.Errorf("load guilds: %w", err)
		}
		printStat("guilds", n)
	case config.BackendSnapshot:
		snap := persist.NewSnapshotStore(cfg.Storage.SnapshotPath)
		store = snap
		printOK("snapshot file " + snap.Path())

		n, err := loadGuildsFromRoster(cfg.Claims.RosterFile, worldState.Guilds)
		if err != nil {
			return fmt.Errorf("load guilds: %w", err)
		}
		if _, err := os.Stat(cfg.Claims.RosterFile); errors.Is(err, os.ErrNotExist) {
			rosterKnown = false
		}
		printStat("guilds", n)
	}

	// 4. World table and scripts
	worlds, err := data.LoadWorldTable(cfg.Claims.WorldsFile)
	if err != nil {
		return fmt.Errorf("load worlds: %w", err)
	}
	printStat("worlds", worlds.Count())

	luaEngine, err := scripting.NewEngine(cfg.Claims.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// 5. Claim system and persisted state
	claims := system.NewClaimSystem(worldState, worldState.Guilds, worlds, cfg.Claims, log)
	if luaEngine.HasHook("claim_limit") {
		claims.SetLimiter(luaEngine)
		printOK("lua claim_limit hook active")
	}

	claimCount, err := system.LoadClaims(ctx, store, claims, log)
	if err != nil {
		return err
	}
	printStat("claims", claimCount)
	// Without a roster every guild would look dissolved.
	if rosterKnown {
		pruned := claims.PruneGuilds(func(id int32) bool { return worldState.Guilds.GetGuild(id) != nil })
		if len(pruned) > 0 {
			printStat("orphaned guilds pruned", len(pruned))
		}
	}
	fmt.Println()

	// 6. Systems
	bus := event.NewBus()
	claims.Subscribe(bus)

	persistSys := system.NewPersistenceSystem(claims, store, log, cfg.Storage.SaveIntervalTicks)
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus, log))
	runner.Register(persistSys)

	deps := &handler.Deps{
		Config:    cfg,
		Log:       log,
		World:     worldState,
		Claims:    claims,
		Worlds:    worlds,
		Bus:       bus,
		Persist:   persistSys,
		GuildRepo: guildRepo,
	}

	lines := make(chan string, 16)
	go handler.ScanCommands(os.Stdin, lines)

	// 7. Loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("loop running (tick: %s)", cfg.Loop.TickRate))
	printReady("type .help for commands")
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			if took := runner.Tick(cfg.Loop.TickRate); took > cfg.Loop.TickRate {
				log.Warn("slow tick", zap.Duration("took", took))
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil // stdin closed; keep serving until signalled
				continue
			}
			if !handler.HandleCommand(os.Stdout, line, deps) {
				fmt.Println("commands start with '.'  (try .help)")
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			// Deliver queued purges before the final save.
			runner.TickPhase(coresys.PhasePreUpdate, 0)
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := persistSys.Shutdown(saveCtx, cfg.Storage.ShutdownRetries, cfg.Storage.RetryBackoff)
			saveCancel()
			if err != nil {
				log.Error("claims not saved on shutdown", zap.Error(err))
				return err
			}
			log.Info("stopped")
			return nil
		}
	}
}

// loadGuildsFromDB loads all guilds and members from the database into the roster.
func loadGuildsFromDB(ctx context.Context, gm *world.GuildManager, repo *persist.GuildRepo) (int, error) {
	guilds, members, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	guildMap := make(map[int32]*world.GuildInfo, len(guilds))
	for _, g := range guilds {
		typ, err := world.ParseGuildType(g.GuildType)
		if err != nil {
			return 0, fmt.Errorf("guild %d: %w", g.GuildID, err)
		}
		guildMap[g.GuildID] = &world.GuildInfo{
			GuildID:  g.GuildID,
			Name:     g.GuildName,
			Type:     typ,
			LeaderID: g.LeaderID,
			Members:  make(map[int32]*world.GuildMember),
		}
	}

	for _, m := range members {
		g, ok := guildMap[m.GuildID]
		if !ok {
			continue
		}
		g.Members[m.CharID] = &world.GuildMember{
			CharID:   m.CharID,
			CharName: m.CharName,
			Rank:     m.Rank,
		}
	}

	for _, g := range guildMap {
		gm.AddGuild(g)
	}
	return len(guilds), nil
}

// loadGuildsFromRoster loads guilds.yaml into the roster. A missing file is an empty roster.
func loadGuildsFromRoster(path string, gm *world.GuildManager) (int, error) {
	roster, err := data.LoadGuildRoster(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	for _, rg := range roster {
		typ, err := world.ParseGuildType(rg.Type)
		if err != nil {
			return 0, fmt.Errorf("guild %d: %w", rg.ID, err)
		}
		g := &world.GuildInfo{
			GuildID:  rg.ID,
			Name:     rg.Name,
			Type:     typ,
			LeaderID: rg.LeaderID,
			Members:  make(map[int32]*world.GuildMember, len(rg.Members)),
		}
		for _, m := range rg.Members {
			g.Members[m.CharID] = &world.GuildMember{CharID: m.CharID, CharName: m.Name, Rank: m.Rank}
		}
		gm.AddGuild(g)
	}
	return len(roster), nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
