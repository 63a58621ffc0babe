package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts a Lua state to safe operations. Guests get the
// pure-computation standard libraries plus whatever the host preloads
// under the "ed" namespace; they never get io, os, debug, or the
// loader functions that could pull code from disk.
type Sandbox struct {
	L *lua.LState
}

// NewSandbox wraps L.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// safeModules are the gopher-lua built-ins a guest may require.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// Install removes the escape hatches and replaces require with the
// whitelist version. Call once, after the safe libraries are open and
// before any guest code runs.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installSafeRequire()
}

// installSafeRequire clears package.path/cpath so nothing loads from
// disk, scrubs package.loaded of anything pre-injected, and replaces
// require with a version that only resolves safe built-ins and the
// host's preloaded ed modules.
func (s *Sandbox) installSafeRequire() {
	if pkgTable, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkgTable, "path", lua.LString(""))
		s.L.SetField(pkgTable, "cpath", lua.LString(""))

		if loadedTbl, ok := s.L.GetField(pkgTable, "loaded").(*lua.LTable); ok {
			keep := map[string]bool{
				"_G": true, "string": true, "table": true,
				"math": true, "package": true,
			}
			var drop []string
			loadedTbl.ForEach(func(k, _ lua.LValue) {
				if ks, ok := k.(lua.LString); ok && !keep[string(ks)] {
					drop = append(drop, string(ks))
				}
			})
			for _, key := range drop {
				loadedTbl.RawSetString(key, lua.LNil)
			}
		}
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		allowed := safeModules[modName] ||
			modName == "ed" ||
			strings.HasPrefix(modName, "ed.")
		if !allowed {
			L.RaiseError("module %q is not available", modName)
			return 0
		}

		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}
