package injection

import (
	lua "github.com/yuin/gopher-lua"
)

// applyGsubRules runs each #gsub! rule over text with exact Lua
// string.gsub semantics, by driving an embedded interpreter rather than
// approximating the pattern dialect with regular expressions. A rule that
// fails to evaluate (malformed pattern, bad replacement reference) is
// skipped; the remaining rules still apply.
func applyGsubRules(text string, rules []gsubRule) string {
	if len(rules) == 0 {
		return text
	}

	state := lua.NewState()
	defer state.Close()

	gsub := state.GetField(state.GetGlobal("string"), "gsub")

	for _, rule := range rules {
		err := state.CallByParam(
			lua.P{Fn: gsub, NRet: 2, Protect: true},
			lua.LString(text), lua.LString(rule.pattern), lua.LString(rule.replacement),
		)
		if err != nil {
			continue
		}

		result := state.Get(-2)
		state.Pop(2)

		if s, ok := result.(lua.LString); ok {
			text = string(s)
		}
	}

	return text
}
