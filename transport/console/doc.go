// Package console plays MiniDungeon over plain text: one command per line
// on input, log messages, map and status on output.
package console
