package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the tunable game rules:
// wave difficulty plans and the hazard launch-cost formula. Go packs the
// context, Lua decides, Go executes. Single-goroutine access only (game
// loop). Every hook has a Go fallback, so the simulation runs and
// tests stay deterministic without any scripts loaded.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is not an error.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "rules"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
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

// WavePlan is the per-wave difficulty decided by Lua.
type WavePlan struct {
	Quota int     // birds to spawn this wave
	Speed float64 // speed multiplier applied to every spawn
}

// WavePlanFor calls the Lua wave_plan function with the zero-based wave
// index and the table-derived defaults. Lua may override either field;
// on any failure the defaults come back unchanged.
func (e *Engine) WavePlanFor(index int, fallback WavePlan) WavePlan {
	fn := e.vm.GetGlobal("wave_plan")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("index", lua.LNumber(index))
	t.RawSetString("quota", lua.LNumber(fallback.Quota))
	t.RawSetString("speed", lua.LNumber(fallback.Speed))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua wave_plan error", zap.Error(err))
		return fallback
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua wave_plan returned non-table")
		return fallback
	}

	plan := fallback
	if q := lua.LVAsNumber(rt.RawGetString("quota")); q > 0 {
		plan.Quota = int(q)
	}
	if sp := lua.LVAsNumber(rt.RawGetString("speed")); sp > 0 {
		plan.Speed = float64(sp)
	}
	return plan
}

// LaunchCost calls the Lua launch_cost function. size is the requested
// hazard size; fallback is the Go-computed linear cost (negative). Lua
// must return a number <= 0; anything else falls back.
func (e *Engine) LaunchCost(size float64, fallback int) int {
	fn := e.vm.GetGlobal("launch_cost")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("size", lua.LNumber(size))
	t.RawSetString("base_cost", lua.LNumber(fallback))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua launch_cost error", zap.Error(err))
		return fallback
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || float64(n) > 0 {
		return fallback
	}
	return int(n)
}
