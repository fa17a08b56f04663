// Package logging configures the process-wide log15 root logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/inconshreveable/log15/v3"
)

// DefaultLevel keeps interactive terminals free of routine logs
const DefaultLevel = "warn"

// Setup routes the root logger to w in logfmt, dropping records below level.
// A nil writer discards everything.
func Setup(level string, w io.Writer) error {
	if w == nil {
		log15.Root().SetHandler(log15.DiscardHandler())
		return nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, log15.LogfmtFormat())))
	return nil
}

// ParseLevel accepts debug, info, warn, error and crit. Empty means DefaultLevel.
func ParseLevel(level string) (log15.Lvl, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	if level == "warning" {
		level = "warn"
	}
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New returns a child of the root logger tagged with module
func New(module string, ctx ...interface{}) log15.Logger {
	return log15.New(append([]interface{}{"module", module}, ctx...)...)
}
