// Command minidungeon plays MiniDungeon, a two-level turn-based dungeon crawl
// on a 10x10 grid.
//
// It supports several modes:
//  1. "play" (default) – line-based game on stdin/stdout
//  2. "tui" – full-screen terminal UI
//  3. "mcp" – MCP stdio server so AI agents can play
//  4. "configs" – list the available presets
//
// Flags choose the preset, difficulty and seed, the preset override
// directory and the log level. Every flag can also be set from the
// environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/minidungeon/game/config"
	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
	"github.com/wricardo/minidungeon/game/session"
	"github.com/wricardo/minidungeon/logging"
	"github.com/wricardo/minidungeon/telemetry"
	"github.com/wricardo/minidungeon/transport/console"
	"github.com/wricardo/minidungeon/transport/mcp"
	"github.com/wricardo/minidungeon/transport/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "MiniDungeon"
)

// sessionCleanupInterval is how often the MCP server prunes idle sessions
const sessionCleanupInterval = time.Hour

var log = logging.New("main")

// main loads .env, wires signal handling and runs the CLI.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the process streams so commands can be exercised in tests
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.Command {
	a := &app{in: in, out: out, errOut: errOut}

	return &cli.Command{
		Name:      "minidungeon",
		Usage:     "a two-level turn-based dungeon crawl",
		Version:   Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "preset to play (see the configs command)",
				Sources: cli.EnvVars("MINIDUNGEON_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "difficulty",
				Aliases: []string{"d"},
				Usage:   fmt.Sprintf("override the preset difficulty (%d-%d)", engine.MinDifficulty, engine.MaxDifficulty),
				Sources: cli.EnvVars("MINIDUNGEON_DIFFICULTY"),
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "override the preset seed; the same seed builds the same dungeon",
				Sources: cli.EnvVars("MINIDUNGEON_SEED"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory with extra or overriding preset YAML files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   logging.DefaultLevel,
				Usage:   "debug, info, warn, error or crit",
				Sources: cli.EnvVars("MINIDUNGEON_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging (also keeps logs on in the terminal UI)",
			},
		},
		Action: a.play,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "play in the terminal, one command per line (default)",
				Action: a.play,
			},
			{
				Name:   "tui",
				Usage:  "play in a full-screen terminal UI",
				Action: a.tui,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "serve the game to AI agents over MCP stdio",
				Action:  a.mcp,
			},
			{
				Name:   "configs",
				Usage:  "list available presets",
				Action: a.configs,
			},
			{
				Name:  "version",
				Usage: "show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(a.out, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// setup configures logging and tracing, then builds the service stack.
// The returned cleanup flushes traces.
// services holds the wired managers behind one game service
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
}

func (a *app) setup(ctx context.Context, cmd *cli.Command, logOut io.Writer) (*services, func(), error) {
	level := cmd.String("log-level")
	if cmd.Bool("debug") {
		level = "debug"
	}
	if err := logging.Setup(level, logOut); err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, Version)
		if err != nil {
			log.Warn("tracing disabled", "err", err)
		} else {
			cleanup = func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn("failed to flush traces", "err", err)
				}
			}
		}
	}

	svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	log.Info("starting", "app", AppName, "version", Version, "mode", cmd.Name)
	return svcs, cleanup, nil
}

// initializeServices wires session/config managers and the game service.
// defaultPreset, when set, becomes the preset for sessions that name none.
func initializeServices(configDir, defaultPreset string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if defaultPreset != "" {
		if err := configManager.SetDefault(defaultPreset); err != nil {
			return nil, err
		}
	}

	sessionManager := session.NewManager()
	return &services{
		game:     service.NewGameService(sessionManager, configManager),
		sessions: sessionManager,
		configs:  configManager,
	}, nil
}

// sessionRequest applies the command line overrides to a new session
func sessionRequest(cmd *cli.Command) service.CreateSessionRequest {
	req := service.CreateSessionRequest{ConfigName: cmd.String("config")}
	if cmd.IsSet("difficulty") {
		difficulty := cmd.Int("difficulty")
		req.Difficulty = &difficulty
	}
	if cmd.IsSet("seed") {
		seed := cmd.Int64("seed")
		req.Seed = &seed
	}
	return req
}

func (a *app) play(ctx context.Context, cmd *cli.Command) error {
	svcs, cleanup, err := a.setup(ctx, cmd, a.errOut)
	if err != nil {
		return err
	}
	defer cleanup()

	_, err = console.NewDriver(svcs.game, a.in, a.out).Run(ctx, sessionRequest(cmd))
	return err
}

func (a *app) tui(ctx context.Context, cmd *cli.Command) error {
	// stderr shares the terminal with the UI, so logs are off unless asked for
	var logOut io.Writer
	if cmd.Bool("debug") {
		logOut = a.errOut
	}
	svcs, cleanup, err := a.setup(ctx, cmd, logOut)
	if err != nil {
		return err
	}
	defer cleanup()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	state, err := tui.NewApp(svcs.game).Run(ctx, screen, sessionRequest(cmd))
	screen.Fini()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if state != nil {
		fmt.Fprintf(a.out, "Game %s. Final score: %d (level %d, %d steps)\n",
			state.Status, state.Player.Score, state.Level, state.Steps)
	}
	return nil
}

func (a *app) mcp(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol, logs go to stderr
	svcs, cleanup, err := a.setup(ctx, cmd, a.errOut)
	if err != nil {
		return err
	}
	defer cleanup()

	go sessionCleanupRoutine(ctx, svcs.sessions)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go presetReloadRoutine(ctx, svcs.configs, hup)

	return mcp.NewServer(svcs.game, Version).ServeStdio()
}

func (a *app) configs(ctx context.Context, cmd *cli.Command) error {
	svcs, cleanup, err := a.setup(ctx, cmd, a.errOut)
	if err != nil {
		return err
	}
	defer cleanup()

	configs, err := svcs.game.ListConfigs(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDIFFICULTY\tSEED\tSOURCE\tDESCRIPTION")
	for _, c := range configs {
		seed := "random"
		if c.Seed != 0 {
			seed = fmt.Sprint(c.Seed)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", c.ConfigID, c.Difficulty, seed, c.Source, c.Description)
	}
	return w.Flush()
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within service.SessionTTL, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(service.SessionTTL); removed > 0 {
				log.Info("cleaned up expired sessions", "count", removed, "active", manager.Count())
			}
		}
	}
}

// presetReloadRoutine drops the cached presets on every signal from reload
// (SIGHUP in mcp mode) so edited override files apply to the next new game,
// until ctx is done.
func presetReloadRoutine(ctx context.Context, manager *config.Manager, reload <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
			if err := manager.RefreshCache(); err != nil {
				log.Warn("failed to reload presets", "err", err)
				continue
			}
			log.Info("reloaded presets")
		}
	}
}
