package vmhost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirgeva/gubed/pkg/breakpoint"
	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/amirgeva/gubed/pkg/logging"
	"github.com/amirgeva/gubed/pkg/metrics"
	"github.com/amirgeva/gubed/pkg/module"
	"github.com/amirgeva/gubed/pkg/tracing"
	"github.com/amirgeva/gubed/pkg/ui"
)

// Mode is the control loop's pause policy: Step pauses on every probe,
// Continue pauses only when the probe's line is a breakpoint.
type Mode int

const (
	StepMode Mode = iota
	ContinueMode
)

const (
	facadeModule    = "gubed"
	facadeClass     = "Gubedder"
	facadeSignature = "callback(_,_)"
)

// facadeSource is the three-line Target Language module every instrumented
// module imports: a class declaring the foreign callback the bridge binds.
const facadeSource = "class Gubedder {\n\tforeign static callback(line_id, var_data)\n}\n"

// Bridge wires a Host's four hooks to the Module Cache, Line Mapper,
// Breakpoint Set, and UI Collaborator, and implements the debug callback
// and control loop described in the design. It runs single-threaded: Mode
// is a plain field, not behind a mutex, because the VM, the callback, and
// the UI event loop never execute concurrently with each other.
type Bridge struct {
	cache         *module.Cache
	mapper        *linemap.Mapper
	breakpoints   *breakpoint.Set
	collaborator  ui.Collaborator
	mode          Mode
	nativeResolve func(module, class string, isStatic bool, signature string) ForeignMethodFn

	Metrics *metrics.Metrics
	Logger  logging.FieldLogger

	ctx context.Context
}

// NewBridge constructs a Bridge over the given collaborators. nativeResolve
// may be nil if no native extensions are loaded.
func NewBridge(cache *module.Cache, mapper *linemap.Mapper, breakpoints *breakpoint.Set, collaborator ui.Collaborator, nativeResolve func(module, class string, isStatic bool, signature string) ForeignMethodFn) *Bridge {
	return &Bridge{
		cache:         cache,
		mapper:        mapper,
		breakpoints:   breakpoints,
		collaborator:  collaborator,
		mode:          StepMode,
		nativeResolve: nativeResolve,
	}
}

// Mode returns the current pause policy.
func (b *Bridge) Mode() Mode { return b.mode }

// Run configures host and interprets entryModule to completion. A Quit
// unwinds out of host.Run as an error satisfying errors.Is(err, ErrQuit);
// Run swallows exactly that case and returns nil, mirroring the original's
// single QuitException catch site.
func (b *Bridge) Run(ctx context.Context, host Host, entryModule string) error {
	b.ctx = ctx

	if err := host.Configure(b.hostConfig()); err != nil {
		return fmt.Errorf("configure host: %w", err)
	}

	err := host.Run(ctx, entryModule)
	if err != nil {
		if errors.Is(err, ErrQuit) {
			return nil
		}
		return err
	}
	return nil
}

func (b *Bridge) hostConfig() HostConfig {
	return HostConfig{
		LoadModule:        b.loadModule,
		BindForeignMethod: b.bindForeignMethod,
		Write:             b.write,
		ReportError:       b.reportError,
	}
}

func (b *Bridge) loadModule(name string) (string, bool) {
	if name == facadeModule {
		return facadeSource, true
	}

	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracing.ModuleLoadSpan(ctx, name)
	defer span.End()

	source, ok := b.cache.GetOrLoad(name)
	if ok && b.Metrics != nil {
		b.Metrics.RecordModuleLoaded()
	}
	return source, ok
}

func (b *Bridge) bindForeignMethod(moduleName, class string, isStatic bool, signature string) ForeignMethodFn {
	if isStatic && moduleName == facadeModule && class == facadeClass && signature == facadeSignature {
		return b.debugCallback
	}
	if b.nativeResolve != nil {
		return b.nativeResolve(moduleName, class, isStatic, signature)
	}
	return nil
}

func (b *Bridge) write(text string) {
	b.collaborator.AppendOutput(text)
}

// reportError remaps the VM's instrumented-line number back to the
// original source line and forwards a formatted diagnostic to the UI.
// When no mapping exists for (module, line) — e.g. the error points at a
// blank line or a class header with no probe — the diagnostic is silently
// suppressed, matching the original's behavior (see the design notes on
// reverse-mapping a line without a probe).
func (b *Bridge) reportError(kind ErrorKind, moduleName string, line int, message string) {
	details, ok := b.mapper.ReverseLookup(moduleName, line)
	if !ok {
		return
	}
	if b.Logger != nil {
		b.Logger.ErrorWithFields(message, map[string]interface{}{
			"module": moduleName,
			"line":   details.OriginalLine,
			"kind":   kind.String(),
		})
	}
	b.collaborator.AppendOutput(fmt.Sprintf("%s in module '%s' at line %d: %s\n", kind, moduleName, details.OriginalLine, message))
}

// debugCallback is the ForeignMethodFn bound to gubed.Gubedder.callback. It
// implements the control loop: resolve the probe, consult Mode and the
// Breakpoint Set, and — if pausing — block on the UI event loop and
// translate its DebugAction.
func (b *Bridge) debugCallback(args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("gubed callback: expected 2 arguments, got %d", len(args))
	}

	idFloat, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("gubed callback: line id must be numeric")
	}
	varData, _ := args[1].(string)

	details, found := b.mapper.Lookup(linemap.LineID(uint64(idFloat)))
	if !found {
		return nil, nil
	}

	if b.Metrics != nil {
		b.Metrics.RecordProbe(details.Module)
	}
	if b.mode == ContinueMode {
		if !b.breakpoints.Has(details.Module, details.OriginalLine) {
			return nil, nil
		}
		if b.Metrics != nil {
			b.Metrics.RecordBreakpointHit(details.Module)
		}
	}

	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracing.PauseSpan(ctx, details.Module, details.OriginalLine)
	start := time.Now()

	b.collaborator.LoadModule(details.Module)
	b.collaborator.HighlightLine(details.OriginalLine)
	b.collaborator.SetVariables(varData)

	action := b.collaborator.EventLoop()

	if b.Metrics != nil {
		b.Metrics.RecordPause(time.Since(start))
	}
	span.End()

	switch action {
	case ui.Step:
		b.mode = StepMode
		if b.Metrics != nil {
			b.Metrics.RecordStep()
		}
	case ui.Continue:
		b.mode = ContinueMode
		if b.Metrics != nil {
			b.Metrics.RecordContinue()
		}
	case ui.Quit:
		return nil, ErrQuit
	}

	return nil, nil
}
