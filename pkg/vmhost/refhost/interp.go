// Package refhost is a small tree-walking interpreter for exactly the
// Target Language surface the instrumenter recognizes: class declarations,
// static/instance methods dispatched uniformly as ClassName.method(args)
// (refhost has no object identity, so "instance" methods behave like
// namespaced functions), var/assignment, if/else, while, return, import,
// arithmetic, comparisons, string concatenation, and .toString.
//
// It exists so this repository is actually runnable end to end against a
// vmhost.Host, standing in for the production embedded VM that spec
// explicitly treats as an external collaborator — it is not, and does not
// try to be, a general-purpose language implementation.
package refhost

import (
	"context"
	"fmt"

	"github.com/amirgeva/gubed/pkg/vmhost"
)

// Interpreter implements vmhost.Host.
type Interpreter struct {
	cfg     vmhost.HostConfig
	modules map[string]*moduleAST
	ran     map[string]bool
	classes map[string]*classDecl
	foreign map[string]vmhost.ForeignMethodFn
	globals *environment
}

// New returns an unconfigured Interpreter. Call Configure before Run.
func New() *Interpreter {
	return &Interpreter{
		modules: make(map[string]*moduleAST),
		ran:     make(map[string]bool),
		classes: make(map[string]*classDecl),
		foreign: make(map[string]vmhost.ForeignMethodFn),
		globals: newEnvironment(nil),
	}
}

// Configure installs the host hooks. Part of vmhost.Host.
func (in *Interpreter) Configure(cfg vmhost.HostConfig) error {
	in.cfg = cfg
	return nil
}

// Run interprets entryModule to completion. Part of vmhost.Host.
func (in *Interpreter) Run(ctx context.Context, entryModule string) error {
	return in.runModule(ctx, entryModule)
}

func (in *Interpreter) runModule(ctx context.Context, name string) error {
	mod, ok := in.modules[name]
	if !ok {
		if in.cfg.LoadModule == nil {
			return fmt.Errorf("refhost: no LoadModule hook configured")
		}
		source, found := in.cfg.LoadModule(name)
		if !found {
			return fmt.Errorf("refhost: module %q not found", name)
		}
		parsed, err := parseModule(source)
		if err != nil {
			if in.cfg.ReportError != nil {
				in.cfg.ReportError(vmhost.CompileError, name, 0, err.Error())
			}
			return fmt.Errorf("refhost: parse module %q: %w", name, err)
		}
		in.modules[name] = parsed
		mod = parsed

		for _, cls := range mod.classes {
			in.classes[cls.name] = cls
			for _, method := range cls.methods {
				if !method.foreign {
					continue
				}
				fn := in.cfg.BindForeignMethod(name, cls.name, method.static, method.signature())
				if fn == nil {
					if in.cfg.ReportError != nil {
						in.cfg.ReportError(vmhost.RuntimeError, name, 0, fmt.Sprintf("no binding for foreign method %s.%s", cls.name, method.signature()))
					}
					continue
				}
				in.foreign[cls.name+"."+method.signature()] = fn
			}
		}
	}

	if in.ran[name] {
		return nil
	}
	in.ran[name] = true

	res, err := in.execBlock(ctx, mod.topLevel, in.globals)
	if err != nil {
		return err
	}
	_ = res
	return nil
}

type execResult struct {
	returned bool
	value    vmhost.Value
}

func (in *Interpreter) execBlock(ctx context.Context, stmts []stmt, env *environment) (execResult, error) {
	for _, st := range stmts {
		if err := ctx.Err(); err != nil {
			return execResult{}, err
		}
		res, err := in.execStmt(ctx, st, env)
		if err != nil {
			return execResult{}, err
		}
		if res.returned {
			return res, nil
		}
	}
	return execResult{}, nil
}

func (in *Interpreter) execStmt(ctx context.Context, st stmt, env *environment) (execResult, error) {
	switch s := st.(type) {
	case varStmt:
		v, err := in.eval(s.value, env)
		if err != nil {
			return execResult{}, err
		}
		env.declare(s.name, v)
		return execResult{}, nil

	case assignStmt:
		v, err := in.eval(s.value, env)
		if err != nil {
			return execResult{}, err
		}
		if !env.update(s.name, v) {
			return execResult{}, fmt.Errorf("assignment to undeclared variable %q", s.name)
		}
		return execResult{}, nil

	case ifStmt:
		cond, err := in.eval(s.cond, env)
		if err != nil {
			return execResult{}, err
		}
		if truthy(cond) {
			return in.execBlock(ctx, s.then, env.child())
		}
		return in.execBlock(ctx, s.els, env.child())

	case whileStmt:
		for {
			if err := ctx.Err(); err != nil {
				return execResult{}, err
			}
			cond, err := in.eval(s.cond, env)
			if err != nil {
				return execResult{}, err
			}
			if !truthy(cond) {
				return execResult{}, nil
			}
			res, err := in.execBlock(ctx, s.body, env.child())
			if err != nil {
				return execResult{}, err
			}
			if res.returned {
				return res, nil
			}
		}

	case returnStmt:
		if s.value == nil {
			return execResult{returned: true}, nil
		}
		v, err := in.eval(s.value, env)
		return execResult{returned: true, value: v}, err

	case exprStmt:
		_, err := in.eval(s.e, env)
		return execResult{}, err

	case importStmt:
		return execResult{}, in.runModule(ctx, s.module)

	default:
		return execResult{}, fmt.Errorf("refhost: unhandled statement %T", st)
	}
}

func (in *Interpreter) eval(e expr, env *environment) (vmhost.Value, error) {
	switch v := e.(type) {
	case litExpr:
		return v.value, nil

	case identExpr:
		val, ok := env.get(v.name)
		if !ok {
			return nil, fmt.Errorf("undefined variable %q", v.name)
		}
		return val, nil

	case binExpr:
		l, err := in.eval(v.left, env)
		if err != nil {
			return nil, err
		}
		r, err := in.eval(v.right, env)
		if err != nil {
			return nil, err
		}
		return applyBinOp(v.op, l, r)

	case toStringExpr:
		target, err := in.eval(v.target, env)
		if err != nil {
			return nil, err
		}
		return toStringValue(target), nil

	case callExpr:
		return in.evalCall(v, env)

	default:
		return nil, fmt.Errorf("refhost: unhandled expression %T", e)
	}
}

func (in *Interpreter) evalCall(c callExpr, env *environment) (vmhost.Value, error) {
	args := make([]vmhost.Value, len(c.args))
	for i, a := range c.args {
		v, err := in.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if c.receiver == "System" && c.method == "print" {
		text := ""
		if len(args) > 0 {
			text = toStringValue(args[0])
		}
		if in.cfg.Write != nil {
			in.cfg.Write(text + "\n")
		}
		return nil, nil
	}

	if c.receiver == "" {
		return nil, fmt.Errorf("refhost: unsupported bare call %q", c.method)
	}

	cls, ok := in.classes[c.receiver]
	if !ok {
		return nil, fmt.Errorf("refhost: unknown receiver %q", c.receiver)
	}
	method, ok := cls.methods[c.method]
	if !ok {
		return nil, fmt.Errorf("refhost: class %q has no method %q", c.receiver, c.method)
	}

	if method.foreign {
		fn, ok := in.foreign[cls.name+"."+method.signature()]
		if !ok {
			return nil, fmt.Errorf("refhost: no binding for foreign method %s.%s", cls.name, method.signature())
		}
		return fn(args)
	}

	callEnv := newEnvironment(nil)
	for i, p := range method.params {
		var arg vmhost.Value
		if i < len(args) {
			arg = args[i]
		}
		callEnv.declare(p, arg)
	}

	res, err := in.execBlock(context.Background(), method.body, callEnv)
	if err != nil {
		return nil, err
	}
	return res.value, nil
}
