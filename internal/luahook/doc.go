// Package luahook loads hook units written as Lua files.
//
// Each unit owns a private, sandboxed Lua state. The unit's file is executed
// once at load time; the value the chunk returns determines the unit's
// callable. The state lives for the owning session and is closed when the
// registry is torn down.
//
// # File contract
//
// A message hook is a chunk that returns a function taking a context table
// and returning a patch:
//
//	-- .hookstorm/hooks/game_prefix.lua
//	local marker = "@game-developer"
//
//	return function(ctx)
//	    if string.find(ctx.content, marker, 1, true) then
//	        return ctx.content -- already routed, skip
//	    end
//	    return { content = marker .. " " .. ctx.content }
//	end
//
// A setup hook is a chunk that returns a table exposing a setup function:
//
//	-- .hookstorm/hooks/team_env.lua
//	return {
//	    setup = function(ctx)
//	        return {
//	            is_team = true,
//	            custom_env = { TEAM_MODE = "1" },
//	        }
//	    end,
//	}
//
// # Context tables
//
// Message hooks receive { content, workspace }. Setup hooks receive
// { session_id, workspace, is_team, custom_env }. Tables are fresh copies
// per invocation; mutating them has no effect on the host.
//
// # Patch tables
//
// A message hook may return nil (no-op), a string (replacement content), or
// a table with an optional content field. A setup hook may return nil or a
// table with optional is_team and custom_env fields. Any other shape is an
// execution error.
//
// # Sandbox
//
// Hook states open only the base, table, string, and math libraries. The
// loaders (dofile, loadfile, load) are removed and require is restricted to
// the built-in safe modules, so a hook cannot reach the filesystem, the
// network, or ambient process state.
package luahook
