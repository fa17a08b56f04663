// Package mcp provides the Model Context Protocol server for MiniDungeon.
//
// The mcp package implements:
//   - MCP server for AI agent integration over stdio
//   - Tool definitions for game operations
//   - Session-aware command execution through service.GameService
//   - Text rendering of game state for language models
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create new game session with preset, difficulty and seed
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Get current game state with grid visualization
//   - move: Execute single directional movement
//   - bulk_move: Execute up to 50 moves in sequence
//   - reset_game: Replay the session's dungeon from the start
//   - move_history: Retrieve move history with pagination
//   - list_configs: List available presets
//   - game_instructions: Rules and legend
//   - describe_cell: Inspect one grid cell
//
// Every game tool requires a session_id. Tool failures are reported as MCP
// tool errors, never as protocol errors.
//
// Usage:
//
//	server := mcp.NewServer(gameService, version)
//	if err := server.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
