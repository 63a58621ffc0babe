package dispatch_test

import (
	"strings"
	"testing"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/dispatch"
	"github.com/fathom-editor/fathom/internal/dispatch/capctx"
)

func outcomeHandler(name string, out dispatch.Outcome, calls *[]string) dispatch.ResultHandler {
	return dispatch.NewHandlerFunc(name, nil,
		func(action.Result, *capctx.Context, bool) dispatch.Outcome {
			if calls != nil {
				*calls = append(*calls, name)
			}
			return out
		})
}

func TestDispatchStopsAtFirstHandled(t *testing.T) {
	p := dispatch.NewPipeline(nil)
	var calls []string

	p.Register(action.TagOk, outcomeHandler("first", dispatch.NotHandled, &calls))
	p.Register(action.TagOk, outcomeHandler("second", dispatch.Handled, &calls))
	p.Register(action.TagOk, outcomeHandler("third", dispatch.Handled, &calls))

	out := p.Dispatch(action.Ok(), &capctx.Context{}, false)
	if out != dispatch.Handled {
		t.Fatalf("expected Handled, got %s", out)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("expected first,second; got %v", calls)
	}
}

func TestDispatchDeterministic(t *testing.T) {
	// Same registration order and result value => same handler and
	// same outcome, every time.
	p := dispatch.NewPipeline(nil)
	var calls []string
	p.Register(action.TagMotion, outcomeHandler("a", dispatch.NotHandled, &calls))
	p.Register(action.TagMotion, outcomeHandler("b", dispatch.Handled, &calls))

	res := action.Motion(action.Selection{Anchor: 1, Head: 4})
	for i := 0; i < 10; i++ {
		calls = calls[:0]
		out := p.Dispatch(res, &capctx.Context{}, false)
		if out != dispatch.Handled {
			t.Fatalf("iteration %d: expected Handled, got %s", i, out)
		}
		if len(calls) != 2 || calls[1] != "b" {
			t.Fatalf("iteration %d: expected a,b; got %v", i, calls)
		}
	}
}

func TestDispatchHandlesPredicate(t *testing.T) {
	p := dispatch.NewPipeline(nil)
	var calls []string

	skip := dispatch.NewHandlerFunc("picky",
		func(res action.Result) bool { return res.Mode == "insert" },
		func(action.Result, *capctx.Context, bool) dispatch.Outcome {
			calls = append(calls, "picky")
			return dispatch.Handled
		})
	p.Register(action.TagModeChange, skip)
	p.Register(action.TagModeChange, outcomeHandler("fallback", dispatch.Handled, &calls))

	p.Dispatch(action.ModeChange("normal"), &capctx.Context{}, false)
	if len(calls) != 1 || calls[0] != "fallback" {
		t.Errorf("expected predicate to skip picky, got %v", calls)
	}

	calls = calls[:0]
	p.Dispatch(action.ModeChange("insert"), &capctx.Context{}, false)
	if len(calls) != 1 || calls[0] != "picky" {
		t.Errorf("expected picky to claim insert, got %v", calls)
	}
}

func TestUnhandledResultRecordsDiagnostic(t *testing.T) {
	log := diag.NewLog(8)
	p := dispatch.NewPipeline(log)
	p.Register(action.TagEdit, outcomeHandler("declines", dispatch.NotHandled, nil))

	out := p.Dispatch(action.Edit(action.InsertAtCursor("x")), &capctx.Context{}, false)
	if out != dispatch.NotHandled {
		t.Fatalf("expected NotHandled, got %s", out)
	}

	recs := log.Records()
	if len(recs) != 1 || recs[0].Level != diag.LevelWarn {
		t.Fatalf("expected one warning diagnostic, got %v", recs)
	}
}

func TestEmptyChainRecordsDiagnostic(t *testing.T) {
	log := diag.NewLog(8)
	p := dispatch.NewPipeline(log)

	p.Dispatch(action.CloseScratch(), &capctx.Context{}, false)

	recs := log.Records()
	if len(recs) != 1 || !strings.Contains(recs[0].Message, "no handler chain") {
		t.Fatalf("expected registration-gap diagnostic, got %v", recs)
	}
}

func TestQuitHonoredOnlyForTerminalTags(t *testing.T) {
	log := diag.NewLog(8)
	p := dispatch.NewPipeline(log)

	p.Register(action.TagEdit, outcomeHandler("rogue", dispatch.Quit, nil))
	out := p.Dispatch(action.Edit(action.DeleteSelection()), &capctx.Context{}, false)
	if out != dispatch.Handled {
		t.Fatalf("expected Quit downgraded to Handled for non-terminal tag, got %s", out)
	}
	if recs := log.Records(); len(recs) != 1 || recs[0].Level != diag.LevelError {
		t.Errorf("expected error diagnostic for rogue quit, got %v", recs)
	}

	p.RegisterTerminal(action.TagQuit)
	p.Register(action.TagQuit, outcomeHandler("quit", dispatch.Quit, nil))
	if out := p.Dispatch(action.Quit(), &capctx.Context{}, false); out != dispatch.Quit {
		t.Fatalf("expected Quit for terminal tag, got %s", out)
	}
}

func TestCommandQueueFIFO(t *testing.T) {
	q := dispatch.NewCommandQueue()
	q.Enqueue("first", nil)
	q.Enqueue("second", []string{"a"})
	q.Enqueue("third", nil)

	var order []string
	q.Drain(func(c dispatch.QueuedCommand) {
		order = append(order, c.Name)
	})

	if len(order) != 3 || order[0] != "first" || order[2] != "third" {
		t.Errorf("expected FIFO order, got %v", order)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestCommandQueueDrainIncludesNested(t *testing.T) {
	q := dispatch.NewCommandQueue()
	q.Enqueue("outer", nil)

	var order []string
	q.Drain(func(c dispatch.QueuedCommand) {
		order = append(order, c.Name)
		if c.Name == "outer" {
			q.Enqueue("nested", nil)
		}
	})

	if len(order) != 2 || order[1] != "nested" {
		t.Errorf("expected nested command to run after outer, got %v", order)
	}
}

func TestStandardCommandDefer(t *testing.T) {
	q := dispatch.NewCommandQueue()
	p := dispatch.NewPipeline(nil)
	dispatch.RegisterStandard(p, q, nil)

	out := p.Dispatch(action.Command("write", "file.txt"), &capctx.Context{}, false)
	if out != dispatch.Handled {
		t.Fatalf("expected Handled, got %s", out)
	}
	cmd, ok := q.Pop()
	if !ok || cmd.Name != "write" || len(cmd.Args) != 1 {
		t.Errorf("expected deferred write command, got %+v", cmd)
	}
}

func TestStandardEditMissingCapabilityFallsThrough(t *testing.T) {
	log := diag.NewLog(8)
	q := dispatch.NewCommandQueue()
	p := dispatch.NewPipeline(log)
	dispatch.RegisterStandard(p, q, log)

	// No EditAccess in the context: the edit chain must decline and
	// the drop must surface as a warning, not a fault.
	out := p.Dispatch(action.Edit(action.InsertAtCursor("x")), &capctx.Context{}, false)
	if out != dispatch.NotHandled {
		t.Fatalf("expected NotHandled without EditAccess, got %s", out)
	}

	found := false
	for _, r := range log.Records() {
		if r.Level == diag.LevelWarn {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning diagnostic for the dropped edit")
	}
}

func TestStandardQuit(t *testing.T) {
	q := dispatch.NewCommandQueue()
	p := dispatch.NewPipeline(nil)
	dispatch.RegisterStandard(p, q, nil)

	if out := p.Dispatch(action.Quit(), &capctx.Context{}, false); out != dispatch.Quit {
		t.Fatalf("expected Quit, got %s", out)
	}
}
