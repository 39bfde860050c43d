package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/veilrun/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug(msg), engine.log.info(msg), engine.log.warn(msg)
//	engine.roll(lo, hi)   uniform integer between lo and hi inclusive
//	engine.chance(p)      true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, write := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
	} {
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			write(L.CheckString(1), zap.String("scope", scope))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dice.Between(m.src, L.CheckInt(1), L.CheckInt(2))))
		return 1
	}))
	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(dice.Chance(m.src, float64(L.CheckNumber(1)))))
		return 1
	}))

	L.SetGlobal("engine", engine)
}
