// Package script runs find matchers written in Lua.
//
// A script defines a global function match(text, element) returning a
// list of hits. Each hit is {first, last} or {first, last, label} in the
// byte convention of string.find: 1-based, both ends inclusive.
//
//	function match(text)
//	  local hits, init = {}, 1
//	  while true do
//	    local s, e = string.find(text, "%d+", init)
//	    if not s then return hits end
//	    hits[#hits + 1] = {s, e, "number"}
//	    init = e + 1
//	  end
//	end
//
// Scripts run in a sandbox with only the base, table, string and math
// libraries, and each call is bounded by a timeout.
package script
