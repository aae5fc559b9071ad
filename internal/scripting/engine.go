package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridwalk/gridwalk/internal/grid"
	"github.com/gridwalk/gridwalk/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

// Engine wraps a single gopher-lua VM that drives agents. Scripts queue
// commands through the API below; the commands are handed back to the
// caller once per tick. Single-goroutine access only (tick loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	state   *world.State
	pending []world.Command
}

// NewEngine creates a Lua engine bound to state and loads every .lua file
// in scriptsDir. A missing directory loads nothing.
func NewEngine(scriptsDir string, state *world.State, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{
		vm:      vm,
		log:     log,
		state:   state,
		pending: make([]world.Command, 0, 8),
	}
	e.register()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() { e.vm.Close() }

// DoString runs a chunk of Lua in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// loadDir loads all .lua files in a directory, in name order.
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

// OnTick calls the global on_tick(tick) if scripts define it and returns
// the commands queued since the last call. Script errors are logged; the
// commands queued before the error are still returned.
func (e *Engine) OnTick(tick uint64) []world.Command {
	fn := e.vm.GetGlobal("on_tick")
	if fn != lua.LNil {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(tick)); err != nil {
			e.log.Error("lua on_tick error", zap.Uint64("tick", tick), zap.Error(err))
		}
	}
	return e.drain()
}

func (e *Engine) drain() []world.Command {
	if len(e.pending) == 0 {
		return nil
	}
	out := make([]world.Command, len(e.pending))
	copy(out, e.pending)
	e.pending = e.pending[:0]
	return out
}

func (e *Engine) register() {
	api := map[string]lua.LGFunction{
		"enqueue_random":  e.agentCommand(world.CmdEnqueueRandom),
		"teleport_random": e.agentCommand(world.CmdTeleportRandom),
		"start":           e.agentCommand(world.CmdStart),
		"stop":            e.agentCommand(world.CmdStop),
		"enqueue":         e.cellCommand(world.CmdEnqueueCell),
		"teleport":        e.cellCommand(world.CmdTeleportCell),
		"probe":           e.luaProbe,
		"agents":          e.luaAgents,
		"cell":            e.luaCell,
		"queued":          e.luaQueued,
		"occupants":       e.luaOccupants,
		"path":            e.luaPath,
		"log":             e.luaLog,
	}
	for name, fn := range api {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// agentCommand builds fn(agent).
func (e *Engine) agentCommand(kind world.CommandKind) lua.LGFunction {
	return func(L *lua.LState) int {
		e.pending = append(e.pending, world.Command{
			Kind:  kind,
			Agent: L.CheckString(1),
		})
		return 0
	}
}

// cellCommand builds fn(agent, x, y).
func (e *Engine) cellCommand(kind world.CommandKind) lua.LGFunction {
	return func(L *lua.LState) int {
		e.pending = append(e.pending, world.Command{
			Kind:  kind,
			Agent: L.CheckString(1),
			Cell:  grid.Cell{X: L.CheckInt(2), Y: L.CheckInt(3)},
		})
		return 0
	}
}

// probe(x, y) -> cx, cy, traversable | nil, err
func (e *Engine) luaProbe(L *lua.LState) int {
	p := grid.WorldPoint{X: float64(L.CheckNumber(1)), Y: float64(L.CheckNumber(2))}
	cell, tile, err := e.state.Probe(p)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(cell.X))
	L.Push(lua.LNumber(cell.Y))
	L.Push(lua.LBool(tile.Traversable))
	return 3
}

// agents() -> {name, ...} in spawn order
func (e *Engine) luaAgents(L *lua.LState) int {
	t := L.NewTable()
	e.state.Each(func(a *world.Agent) {
		t.Append(lua.LString(a.Name))
	})
	L.Push(t)
	return 1
}

// cell(agent) -> x, y | nil
func (e *Engine) luaCell(L *lua.LState) int {
	a, ok := e.state.Agent(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	c := a.Ctrl.Cell()
	L.Push(lua.LNumber(c.X))
	L.Push(lua.LNumber(c.Y))
	return 2
}

// queued(agent) -> n | nil
func (e *Engine) luaQueued(L *lua.LState) int {
	a, ok := e.state.Agent(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(a.Ctrl.Queue().Count()))
	return 1
}

// occupants(x, y [, r]) -> {name, ...}; with r, every agent within
// Chebyshev distance r of the cell.
func (e *Engine) luaOccupants(L *lua.LState) int {
	c := grid.Cell{X: L.CheckInt(1), Y: L.CheckInt(2)}
	var found []*world.Agent
	if L.GetTop() >= 3 {
		found = e.state.AgentsAround(c, L.CheckInt(3))
	} else {
		found = e.state.AgentsAt(c)
	}
	t := L.NewTable()
	for _, a := range found {
		t.Append(lua.LString(a.Name))
	}
	L.Push(t)
	return 1
}

// path(agent) -> {{x=, y=, z=}, ...}, layer | nil
// The first vertex is the agent, the rest are its queued moves.
func (e *Engine) luaPath(L *lua.LState) int {
	a, ok := e.state.Agent(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	for _, v := range a.Path.Vertices() {
		vt := L.NewTable()
		vt.RawSetString("x", lua.LNumber(v.X))
		vt.RawSetString("y", lua.LNumber(v.Y))
		vt.RawSetString("z", lua.LNumber(v.Z))
		t.Append(vt)
	}
	L.Push(t)
	L.Push(lua.LString(a.Path.Depth().String()))
	return 2
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
