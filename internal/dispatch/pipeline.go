package dispatch

import (
	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/dispatch/capctx"
)

// Outcome is a result handler's verdict.
type Outcome uint8

const (
	// NotHandled passes the result to the next handler in the chain.
	NotHandled Outcome = iota
	// Handled stops the chain; the result has been applied.
	Handled
	// Quit stops the chain and requests ending the input loop.
	Quit
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case NotHandled:
		return "not-handled"
	case Handled:
		return "handled"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// ResultHandler turns one shape of Result into effect through the
// capability context.
type ResultHandler interface {
	// Name identifies the handler in diagnostics.
	Name() string

	// Handles is the predicate over result shape.
	Handles(res action.Result) bool

	// Handle applies the result. A handler whose required capability
	// is absent from ctx must return NotHandled.
	Handle(res action.Result, ctx *capctx.Context, extend bool) Outcome
}

// HandlerFunc adapts a function to ResultHandler.
type HandlerFunc struct {
	name    string
	handles func(action.Result) bool
	fn      func(action.Result, *capctx.Context, bool) Outcome
}

// NewHandlerFunc creates a HandlerFunc. A nil handles predicate accepts
// every result of the registered tag.
func NewHandlerFunc(name string, handles func(action.Result) bool, fn func(action.Result, *capctx.Context, bool) Outcome) *HandlerFunc {
	return &HandlerFunc{name: name, handles: handles, fn: fn}
}

// Name implements ResultHandler.
func (h *HandlerFunc) Name() string { return h.name }

// Handles implements ResultHandler.
func (h *HandlerFunc) Handles(res action.Result) bool {
	if h.handles == nil {
		return true
	}
	return h.handles(res)
}

// Handle implements ResultHandler.
func (h *HandlerFunc) Handle(res action.Result, ctx *capctx.Context, extend bool) Outcome {
	if h.fn == nil {
		return NotHandled
	}
	return h.fn(res, ctx, extend)
}

// Pipeline maps result tags to ordered handler chains.
type Pipeline struct {
	chains   map[action.Tag][]ResultHandler
	terminal map[action.Tag]bool
	log      *diag.Log
}

// NewPipeline creates an empty pipeline logging to log.
func NewPipeline(log *diag.Log) *Pipeline {
	return &Pipeline{
		chains:   make(map[action.Tag][]ResultHandler),
		terminal: make(map[action.Tag]bool),
		log:      log,
	}
}

// Register appends a handler to the chain for tag. Chains run in
// registration order; there is no priority axis here, ordering is the
// contract.
func (p *Pipeline) Register(tag action.Tag, h ResultHandler) {
	p.chains[tag] = append(p.chains[tag], h)
}

// RegisterTerminal declares that handlers for tag may end the input
// loop. Quit outcomes from any other tag are downgraded to an error
// diagnostic.
func (p *Pipeline) RegisterTerminal(tag action.Tag) {
	p.terminal[tag] = true
}

// Handlers returns the chain registered for a tag.
func (p *Pipeline) Handlers(tag action.Tag) []ResultHandler {
	out := make([]ResultHandler, len(p.chains[tag]))
	copy(out, p.chains[tag])
	return out
}

// Dispatch resolves one result. It tries the tag's chain in order and
// stops at the first Handled or Quit. If every handler declines, the
// event is dropped and a developer diagnostic is recorded: a result
// with no handler is a registration gap, surfaced deliberately.
func (p *Pipeline) Dispatch(res action.Result, ctx *capctx.Context, extend bool) Outcome {
	chain := p.chains[res.Tag]
	for _, h := range chain {
		if !h.Handles(res) {
			continue
		}
		switch out := h.Handle(res, ctx, extend); out {
		case NotHandled:
			continue
		case Quit:
			if !p.terminal[res.Tag] {
				if p.log != nil {
					p.log.Errorf("dispatch", "handler %s returned Quit for non-terminal tag %s", h.Name(), res.Tag)
				}
				return Handled
			}
			return Quit
		default:
			return out
		}
	}

	if p.log != nil {
		if len(chain) == 0 {
			p.log.Warnf("dispatch", "no handler chain registered for result tag %s", res.Tag)
		} else {
			p.log.Warnf("dispatch", "result %s declined by all %d handlers", res, len(chain))
		}
	}
	return NotHandled
}
