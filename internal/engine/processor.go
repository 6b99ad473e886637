package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
)

// ErrStopped is returned for commands posted after the processor stopped.
var ErrStopped = errors.New("processor stopped")

// Inventory is the power-up stock held by an outside collaborator. Count is
// consulted before a power-up runs; Consume is called once per charged use.
type Inventory interface {
	Count(kind game.PowerUpKind) int
	Consume(kind game.PowerUpKind) error
}

// Processor is the single owner of a game.Session. Producers on any goroutine
// Post commands; Run applies them one at a time in arrival order.
type Processor struct {
	session   *game.Session
	inventory Inventory
	in        *inbox
	logf      func(format string, args ...any)

	mu        sync.RWMutex
	listeners []func(Event)

	view atomic.Pointer[game.View]
	seq  uint64
}

type Option func(*Processor)

// WithLogger logs every applied command through logf.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(p *Processor) { p.logf = logf }
}

// New wraps session. With a nil inventory every power-up fails as not owned.
func New(session *game.Session, inventory Inventory, opts ...Option) *Processor {
	p := &Processor{
		session:   session,
		inventory: inventory,
		in:        newInbox(),
	}
	for _, opt := range opts {
		opt(p)
	}
	v := session.View()
	p.view.Store(&v)
	return p
}

// Subscribe registers fn to receive an Event after every applied command.
// fn runs on the processor goroutine and must not block.
func (p *Processor) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Post queues cmd without blocking.
func (p *Processor) Post(cmd Command) error {
	if cmd == nil {
		return nil
	}
	if !p.in.push(request{cmd: cmd}) {
		return ErrStopped
	}
	return nil
}

// Do queues cmd and waits for its result.
func (p *Processor) Do(ctx context.Context, cmd Command) (Result, error) {
	reply := make(chan Result, 1)
	if !p.in.push(request{cmd: cmd, reply: reply}) {
		return Result{}, ErrStopped
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// View returns the state published after the most recent command.
func (p *Processor) View() game.View {
	return *p.view.Load()
}

// Pending reports the number of queued commands.
func (p *Processor) Pending() int {
	return p.in.len()
}

// Run applies commands until ctx is cancelled. Commands already queued when
// ctx ends are still applied so no terminal drag event is lost; later posts
// fail with ErrStopped.
func (p *Processor) Run(ctx context.Context) error {
	for {
		select {
		case <-p.in.signal:
			p.applyAll(p.in.drain())
		case <-ctx.Done():
			p.in.close()
			p.applyAll(p.in.drain())
			return ctx.Err()
		}
	}
}

func (p *Processor) applyAll(reqs []request) {
	for _, r := range reqs {
		res := p.apply(r.cmd)
		p.seq++
		v := p.session.View()
		p.view.Store(&v)
		if r.reply != nil {
			r.reply <- res
		}
		p.publish(Event{Seq: p.seq, Command: r.cmd, Result: res, View: v})
	}
}

func (p *Processor) publish(ev Event) {
	p.mu.RLock()
	listeners := p.listeners
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (p *Processor) apply(cmd Command) Result {
	s := p.session
	var res Result

	switch c := cmd.(type) {
	case StartDrag:
		res.OK = s.StartDrag(c.PieceIndex, c.Pointer, c.TouchOffset)
	case UpdateDrag:
		res.OK = s.UpdateDrag(c.Pointer, c.BoardPos)
	case EndDrag:
		pl := s.EndDrag()
		res.OK = pl.OK()
		res.Placement = &pl
	case CancelDrag:
		res.OK = s.CancelDrag()
	case UsePowerUp:
		pr := p.usePowerUp(c.Kind)
		res.OK = pr.Success
		res.PowerUp = &pr
	case SelectLine:
		pr := s.SelectLine(c.Axis, c.Index)
		p.charge(pr)
		res.OK = pr.Success
		res.PowerUp = &pr
	case AbortLineSelection:
		res.OK = s.AbortLineSelection()
	case Restart:
		s.Restart()
		res.OK = true
	case Continue:
		cr := s.Continue()
		res.OK = cr.OK
		res.Continue = &cr
	}

	if p.logf != nil {
		p.logf("engine: %T ok=%v score=%d over=%v", cmd, res.OK, s.Score(), s.IsGameOver())
	}
	return res
}

func (p *Processor) usePowerUp(kind game.PowerUpKind) game.PowerUpResult {
	pu, err := game.ParsePowerUp(string(kind))
	if err != nil {
		return game.PowerUpResult{Kind: kind, Error: game.CodeUnknownPowerUp}
	}
	owned := 0
	if p.inventory != nil {
		owned = p.inventory.Count(kind)
	}
	res := p.session.UsePowerUp(pu, owned)
	p.charge(res)
	return res
}

func (p *Processor) charge(res game.PowerUpResult) {
	if !res.Consumed || p.inventory == nil {
		return
	}
	if err := p.inventory.Consume(res.Kind); err != nil && p.logf != nil {
		p.logf("engine: consume %s: %v", res.Kind, err)
	}
}
