package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

const (
	invalidCommand = "Invalid command. Use u/d/l/r or q to quit."
	prompt         = "Enter command (u/d/l/r, m = map, h = help, q = quit): "
)

const help = `Commands:
  u / up     move up
  d / down   move down
  l / left   move left
  r / right  move right
  m / map    show the map
  h / help   show this help
  q / quit   leave the game

Legend: P you, # wall, E entry, L ladder, G gold, H health potion,
        T trap, M melee mutant, R ranged mutant`

// Driver plays one game through the service using line-based text input
type Driver struct {
	service service.GameService
	in      *bufio.Scanner
	out     io.Writer
	log     log15.Logger
}

// NewDriver creates a console driver reading commands from in and writing to out
func NewDriver(svc service.GameService, in io.Reader, out io.Writer) *Driver {
	return &Driver{
		service: svc,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log15.New("module", "console"),
	}
}

// Run starts a session from req and plays it until the game ends, the player
// quits or input runs out. It returns the last known state.
func (d *Driver) Run(ctx context.Context, req service.CreateSessionRequest) (*engine.GameState, error) {
	info, err := d.service.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	d.log.Debug("console game started", "session", info.ID)

	state := info.GameState
	d.printf("Welcome to MiniDungeon!\n")
	d.printf("Preset: %s | Difficulty: %d | Seed: %d\n", info.ConfigName, info.GameConfig.Difficulty, info.GameConfig.Seed)
	d.printf("Reach the ladder (L) on both levels to escape. Type h for help.\n\n")
	for _, msg := range state.Messages {
		d.printf(">>> %s\n", msg)
	}
	d.printState(state)

	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		d.printf("%s", prompt)
		if !d.in.Scan() {
			d.printf("\n")
			if err := d.in.Err(); err != nil {
				return state, fmt.Errorf("failed to read command: %w", err)
			}
			return state, nil
		}

		command := strings.ToLower(strings.TrimSpace(d.in.Text()))
		switch command {
		case "":
			continue
		case "q", "quit", "exit":
			d.printf("Goodbye! Final score: %d\n", state.Player.Score)
			return state, nil
		case "h", "help", "?":
			d.printf("%s\n", help)
			continue
		case "m", "map":
			d.printState(state)
			continue
		}

		result, err := d.service.Move(ctx, info.ID, command)
		if errors.Is(err, engine.ErrUnknownDirection) {
			d.printf("%s\n", invalidCommand)
			continue
		}
		if err != nil {
			return state, err
		}

		state = result.GameState
		for _, msg := range result.NewMessages {
			d.printf(">>> %s\n", msg)
		}
		d.printState(state)

		if state.GameOver {
			d.printEnding(state)
			return state, nil
		}
	}
}

func (d *Driver) printState(state *engine.GameState) {
	d.printf("\n%s\n%s\nPlayer position: %s\n\n", state.Render(), state.StatusLine(), state.Player.Position)
}

func (d *Driver) printEnding(state *engine.GameState) {
	if state.Victory {
		d.printf("YOU WON! Final score: %d\n", state.Player.Score)
		return
	}
	d.printf("GAME OVER! Final score: %d\n", state.Player.Score)
}

func (d *Driver) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}
