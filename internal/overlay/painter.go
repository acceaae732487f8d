package overlay

import (
	"context"
	"sync"
)

// Painter serializes overlay updates onto a single goroutine. Drag
// events fire while the engine lock is held, so Show and Hide must
// never block: they record the latest requested state and nudge the
// run loop, which repaints from it. Intermediate requests coalesce,
// only the newest one is painted.
type Painter struct {
	render func(screenID string)
	hide   func()

	mu     sync.Mutex
	screen string
	show   bool
	wake   chan struct{}
}

// NewPainter creates a painter around the given paint callbacks.
func NewPainter(render func(screenID string), hide func()) *Painter {
	return &Painter{
		render: render,
		hide:   hide,
		wake:   make(chan struct{}, 1),
	}
}

// Show requests a repaint of the screen's overlay. Never blocks.
func (p *Painter) Show(screenID string) {
	p.request(screenID, true)
}

// Hide requests the overlay be hidden. Never blocks.
func (p *Painter) Hide() {
	p.request("", false)
}

func (p *Painter) request(screenID string, show bool) {
	p.mu.Lock()
	p.screen, p.show = screenID, show
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run paints requests in order until the context is cancelled.
func (p *Painter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
		p.mu.Lock()
		screen, show := p.screen, p.show
		p.mu.Unlock()
		if show {
			p.render(screen)
		} else {
			p.hide()
		}
	}
}
