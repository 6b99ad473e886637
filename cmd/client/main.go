package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/netclient"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

func main() {
	serverAddr := flag.String("server", "ws://localhost:8080/ws", "WebSocket server address")
	token := flag.String("token", os.Getenv("BLOCKTOPIA_TOKEN"), "Resume token from a previous session")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: blocktopia needs an interactive terminal")
		os.Exit(1)
	}

	// Connect to server
	client, err := netclient.New(*serverAddr, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to server at %s: %v\n", *serverAddr, err)
		fmt.Fprintf(os.Stderr, "Make sure the server is running (go run ./cmd/server)\n")
		os.Exit(1)
	}
	defer client.Close()
	log.SetOutput(io.Discard)

	// Create the bubbletea model; the first state arrives from the server
	model := tui.NewModel(client, nil)

	// Create the program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Wire the program into the client so readPump can send tea.Msgs
	client.SetProgram(p)
	client.Start()

	// Run the TUI (blocking)
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(tui.Model); ok && m.Token() != "" {
		fmt.Printf("Player %s. Resume this game with: -token %s\n", m.PlayerID(), m.Token())
	}
}
