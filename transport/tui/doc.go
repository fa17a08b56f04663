// Package tui is a full-screen terminal front end built on tcell. It draws
// the map, a stats column and the tail of the message log, and plays moves
// through service.GameService.
package tui
