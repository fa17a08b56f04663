// Package service provides the business logic layer for MiniDungeon.
//
// The service package implements:
//   - Multi-session game management
//   - Preset resolution with per-session overrides
//   - Move processing with per-step traces and events
//   - Message log and paginated move history access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and expiry.
// ConfigManager loads presets.
//
// Architecture:
//
// The service layer sits between the drivers (console, terminal UI, MCP) and
// the game engine. Engines are not safe for concurrent use, so every
// operation runs under the service mutex. Each operation is traced with
// OpenTelemetry and logged with log15.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "hard"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "up")
package service
