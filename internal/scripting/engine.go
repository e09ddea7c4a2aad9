package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for territory rule hooks.
// Not safe for concurrent use; the claim system calls it under its lock.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
// A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"", "claims"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// NewEngineFromString creates an engine from a single chunk of Lua source.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasHook reports whether a global Lua function with this name is defined.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ClaimLimit calls claim_limit(ctx) and returns its integer result.
// ctx carries guild_id, guild_type, members, and base (the configured maximum).
// Falls back to base when the hook is missing, fails, or returns a negative value.
func (e *Engine) ClaimLimit(guildID int32, guildType string, members, base int) int {
	fn, ok := e.vm.GetGlobal("claim_limit").(*lua.LFunction)
	if !ok {
		return base
	}

	t := e.vm.NewTable()
	t.RawSetString("guild_id", lua.LNumber(guildID))
	t.RawSetString("guild_type", lua.LString(guildType))
	t.RawSetString("members", lua.LNumber(members))
	t.RawSetString("base", lua.LNumber(base))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua claim_limit error", zap.Error(err))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || !validLimit(float64(n)) {
		e.log.Warn("lua claim_limit returned invalid value", zap.String("value", result.String()))
		return base
	}
	return int(n)
}

// validLimit rejects values int conversion would mangle.
func validLimit(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= math.MaxInt32
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
