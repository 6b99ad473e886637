package tui

import (
	"encoding/json"
	"log"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/netclient"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
)

// LocalDriver posts commands to an in-process processor.
type LocalDriver struct {
	Proc *engine.Processor
}

func (d LocalDriver) Send(cmd engine.Command) error {
	return d.Proc.Post(cmd)
}

// Forward returns a processor listener that hands every event to deliver as
// the same messages a remote server would produce. counts may be nil.
func Forward(deliver func(tea.Msg), counts func() map[game.PowerUpKind]int) func(engine.Event) {
	return func(ev engine.Event) {
		if env, ok := protocol.ResultEnvelope(ev.Result); ok {
			raw, err := json.Marshal(env.Payload)
			if err != nil {
				log.Printf("marshal %s: %v", env.Type, err)
			} else {
				deliver(netclient.ServerMsg{Type: env.Type, Raw: raw})
			}
		}
		var inv map[game.PowerUpKind]int
		if counts != nil {
			inv = counts()
		}
		deliver(netclient.StateMsg{State: protocol.NewState(ev.Seq, ev.View, inv)})
	}
}
