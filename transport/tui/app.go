package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

// App is a full-screen terminal front end for a single session
type App struct {
	service   service.GameService
	log       log15.Logger
	sessionID string
	preset    string
	state     *engine.GameState
	notice    string
	showHelp  bool
}

// NewApp creates a terminal UI backed by svc
func NewApp(svc service.GameService) *App {
	return &App{
		service: svc,
		log:     log15.New("module", "tui"),
	}
}

// Start creates the session the UI will play
func (a *App) Start(ctx context.Context, req service.CreateSessionRequest) error {
	info, err := a.service.CreateSession(ctx, req)
	if err != nil {
		return err
	}
	a.sessionID = info.ID
	a.preset = fmt.Sprintf("%s (difficulty %d, seed %d)", info.ConfigName, info.GameConfig.Difficulty, info.GameConfig.Seed)
	a.state = info.GameState
	a.log.Debug("tui session started", "session", info.ID)
	return nil
}

// State returns the latest snapshot
func (a *App) State() *engine.GameState {
	return a.state
}

// Draw renders the current view onto c
func (a *App) Draw(c Canvas) {
	Draw(c, a.state, a.preset, a.notice, a.showHelp)
}

// HandleKey applies one key press. It reports whether the player asked to quit.
func (a *App) HandleKey(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	a.notice = ""
	cmd := commandFor(ev)

	switch cmd {
	case CmdQuit:
		return true, nil
	case CmdHelp:
		a.showHelp = !a.showHelp
		return false, nil
	case CmdReset:
		state, err := a.service.Reset(ctx, a.sessionID)
		if err != nil {
			return false, err
		}
		a.state = state
		return false, nil
	}

	dir, ok := cmd.direction()
	if !ok {
		return false, nil
	}
	if a.state != nil && a.state.GameOver {
		a.notice = "The game is over. Press r to replay or q to quit."
		return false, nil
	}

	result, err := a.service.Move(ctx, a.sessionID, dir.String())
	if err != nil {
		return false, err
	}
	a.state = result.GameState
	return false, nil
}

// Run draws to screen and processes key presses until the player quits or
// ctx is canceled. The screen must already be initialized; Run does not call
// Fini.
func (a *App) Run(ctx context.Context, screen tcell.Screen, req service.CreateSessionRequest) (*engine.GameState, error) {
	if err := a.Start(ctx, req); err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		a.Draw(screen)
		screen.Show()

		switch ev := screen.PollEvent().(type) {
		case nil:
			return a.state, nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			return a.state, ctx.Err()
		case *tcell.EventKey:
			quit, err := a.HandleKey(ctx, ev)
			if err != nil {
				return a.state, err
			}
			if quit {
				return a.state, nil
			}
		}
	}
}
