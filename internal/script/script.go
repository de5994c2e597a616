// Package script loads a Lua macro file and uses it to drive joypad state
// frame by frame, for deterministic input replay (TAS-style recordings,
// scripted demos, regression fixtures) instead of a keyboard.
//
// The script is expected to define a global function:
//
//	function frame(n)
//	    return { a=false, b=false, start=false, select=false,
//	             up=false, down=false, left=false, right=false }
//	end
//
// called once per emulated frame with a zero-based frame counter; any
// omitted key defaults to false (not pressed). A script with no frame
// function is valid and simply never presses anything.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/jrhale/lr35902emu/internal/emu"
)

// Player runs a loaded Lua macro and answers a Buttons value per frame.
type Player struct {
	state   *lua.LState
	frameFn lua.LValue
	frame   int
}

// Load parses and runs the top level of a Lua script (for one-time setup)
// and binds its frame function, if any.
func Load(source []byte) (*Player, error) {
	l := lua.NewState()
	if err := l.DoString(string(source)); err != nil {
		l.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	p := &Player{state: l, frameFn: l.GetGlobal("frame")}
	return p, nil
}

// Close releases the Lua interpreter.
func (p *Player) Close() {
	if p.state != nil {
		p.state.Close()
	}
}

// Next calls frame(n) for the current frame counter and advances it,
// returning the resulting button state. If the script defines no frame
// function, or the call fails, Next returns the zero Buttons value (nothing
// pressed) — a malformed or absent macro never crashes playback.
func (p *Player) Next() emu.Buttons {
	n := p.frame
	p.frame++

	fn, ok := p.frameFn.(*lua.LFunction)
	if !ok {
		return emu.Buttons{}
	}

	l := p.state
	if err := l.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LNumber(n)); err != nil {
		return emu.Buttons{}
	}
	ret := l.Get(-1)
	l.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return emu.Buttons{}
	}
	return emu.Buttons{
		A:      boolField(tbl, "a"),
		B:      boolField(tbl, "b"),
		Start:  boolField(tbl, "start"),
		Select: boolField(tbl, "select"),
		Up:     boolField(tbl, "up"),
		Down:   boolField(tbl, "down"),
		Left:   boolField(tbl, "left"),
		Right:  boolField(tbl, "right"),
	}
}

func boolField(tbl *lua.LTable, name string) bool {
	v := tbl.RawGetString(name)
	b, ok := v.(lua.LBool)
	return ok && bool(b)
}
