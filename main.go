package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/config"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/inventory"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/store"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// This is the standalone single-player entry point.
// For network play, use:
//   Server: go run ./cmd/server
//   Client: go run ./cmd/client --server ws://localhost:8080/ws

func main() {
	playerID := flag.String("player", "local", "Save slot for this game")
	fresh := flag.Bool("new", false, "Ignore the saved game and start over")
	debug := flag.Bool("debug", false, "Log every command to debug.log")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: blocktopia needs an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || *debug

	// The alternate screen owns stdout; logs go to a file or nowhere.
	if cfg.Debug {
		f, err := tea.LogToFile("debug.log", "blocktopia")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[WARN] %v, playing without saves", err)
	} else {
		defer db.Close()
	}

	session, ledger := loadGame(db, cfg, *playerID, *fresh)

	var opts []engine.Option
	if cfg.Debug {
		opts = append(opts, engine.WithLogger(log.Printf))
	}
	proc := engine.New(session, ledger, opts...)

	initial := protocol.NewState(0, proc.View(), ledger.Counts())
	p := tea.NewProgram(
		tui.NewModel(tui.LocalDriver{Proc: proc}, &initial),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	proc.Subscribe(tui.Forward(p.Send, ledger.Counts))
	proc.Subscribe(func(ev engine.Event) {
		if pl := ev.Result.Placement; pl != nil && pl.GameOver {
			saveGame(db, *playerID, session, ledger)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		proc.Run(ctx)
		close(done)
	}()

	_, runErr := p.Run()
	cancel()
	<-done
	saveGame(db, *playerID, session, ledger)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func loadGame(db *store.DB, cfg *config.Config, playerID string, fresh bool) (*game.Session, *inventory.Ledger) {
	session := game.NewSession(cfg.Rules, cfg.Seed)
	ledger := inventory.New(cfg.StartingPowerUps)
	if db == nil {
		return session, ledger
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !fresh {
		if saved, err := db.LoadGame(ctx, playerID); err == nil {
			if err := session.Restore(saved); err != nil {
				log.Printf("[WARN] discarding saved game: %v", err)
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[WARN] load game: %v", err)
		}
	}
	if best, err := db.BestScore(ctx, playerID); err == nil {
		session.SetBestScore(best)
	}
	if counts, err := db.LoadInventory(ctx, playerID); err == nil {
		ledger = inventory.FromCounts(counts)
	}
	return session, ledger
}

// saveGame must run on the processor goroutine or after it stopped.
func saveGame(db *store.DB, playerID string, session *game.Session, ledger *inventory.Ledger) {
	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.SaveGame(ctx, playerID, session.Save()); err != nil {
		log.Printf("[WARN] save game: %v", err)
	}
	if err := db.SaveInventory(ctx, playerID, ledger.Counts()); err != nil {
		log.Printf("[WARN] save inventory: %v", err)
	}
}
