// Package lua compiles Lua-scripted key predicates into keymap.Predicate
// values.
//
// A scripted binding's source is a chunk returning a function. The
// function receives the tokens consumed so far and returns the next
// match state:
//
//	return function(seq)
//	  local c = keys.char(seq[#seq])
//	  if #seq < 2 then
//	    return (c == "y") and keys.CONTINUE or keys.REJECT
//	  end
//	  return keys.is_digit(seq[2]) and keys.ACCEPT or keys.REJECT
//	end
//
// All predicates compiled by one Compiler share a sandboxed State: only
// the base, table, string and math libraries are opened, file loading is
// removed and print writes to the debug log. Every call runs under a
// deadline; errors and timeouts count as a rejection.
package lua
