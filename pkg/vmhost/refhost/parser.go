package refhost

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	classRe      = regexp.MustCompile(`^class\s+(\w+)\s*\{$`)
	methodRe     = regexp.MustCompile(`^(?:static\s+)?(\w+)\s*\(([^)]*)\)\s*\{$`)
	foreignRe    = regexp.MustCompile(`^foreign\s+static\s+(\w+)\s*\(([^)]*)\)$`)
	varDeclRe    = regexp.MustCompile(`^var\s+(\w+)\s*=\s*(.+)$`)
	assignRe     = regexp.MustCompile(`^(\w+)\s*=\s*(.+)$`)
	ifRe         = regexp.MustCompile(`^if\s*\((.+)\)\s*\{$`)
	elseRe       = regexp.MustCompile(`^\}\s*else\s*\{$`)
	whileRe      = regexp.MustCompile(`^while\s*\((.+)\)\s*\{$`)
	returnRe     = regexp.MustCompile(`^return(?:\s+(.+))?$`)
	importForRe  = regexp.MustCompile(`^import\s+"([^"]+)"\s+for\s+(\w+)$`)
	importRe     = regexp.MustCompile(`^import\s+"([^"]+)"$`)
)

type parser struct {
	lines []string
	pos   int
}

func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(source, "\n"), "\n")
}

func splitParams(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (p *parser) atEnd() bool { return p.pos >= len(p.lines) }

func (p *parser) peek() string {
	if p.atEnd() {
		return ""
	}
	return strings.TrimSpace(p.lines[p.pos])
}

// parseModule parses one module's full source: class declarations and any
// top-level statements, in lexical order.
func parseModule(source string) (*moduleAST, error) {
	p := &parser{lines: splitLines(source)}
	mod := &moduleAST{classes: map[string]*classDecl{}}

	for !p.atEnd() {
		line := p.peek()
		if line == "" {
			p.pos++
			continue
		}
		if m := classRe.FindStringSubmatch(line); m != nil {
			p.pos++
			cls, err := p.parseClassBody(m[1])
			if err != nil {
				return nil, err
			}
			mod.classes[m[1]] = cls
			continue
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		mod.topLevel = append(mod.topLevel, st)
	}
	return mod, nil
}

func (p *parser) parseClassBody(name string) (*classDecl, error) {
	cls := &classDecl{name: name, methods: map[string]*methodDecl{}}
	for !p.atEnd() {
		line := p.peek()
		if line == "" {
			p.pos++
			continue
		}
		if line == "}" {
			p.pos++
			return cls, nil
		}
		if m := foreignRe.FindStringSubmatch(line); m != nil {
			p.pos++
			cls.methods[m[1]] = &methodDecl{name: m[1], static: true, foreign: true, params: splitParams(m[2])}
			continue
		}
		if m := methodRe.FindStringSubmatch(line); m != nil {
			isStatic := strings.HasPrefix(line, "static ")
			p.pos++
			body, err := p.parseBlockUntilClose()
			if err != nil {
				return nil, err
			}
			cls.methods[m[1]] = &methodDecl{name: m[1], static: isStatic, params: splitParams(m[2]), body: body}
			continue
		}
		return nil, fmt.Errorf("unexpected line in class %s: %q", name, line)
	}
	return nil, fmt.Errorf("unterminated class %s", name)
}

func (p *parser) parseBlockUntilClose() ([]stmt, error) {
	var out []stmt
	for !p.atEnd() {
		line := p.peek()
		if line == "" {
			p.pos++
			continue
		}
		if line == "}" {
			p.pos++
			return out, nil
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return nil, fmt.Errorf("unterminated block")
}

// parseBlockUntilCloseOrElse stops at a bare "}" (consumed, hasElse=false)
// or at "} else {" (consumed, hasElse=true) so ifStmt can chain its else
// branch onto the same closing brace the then-branch used.
func (p *parser) parseBlockUntilCloseOrElse() (stmts []stmt, hasElse bool, err error) {
	for !p.atEnd() {
		line := p.peek()
		if line == "" {
			p.pos++
			continue
		}
		if line == "}" {
			p.pos++
			return stmts, false, nil
		}
		if elseRe.MatchString(line) {
			p.pos++
			return stmts, true, nil
		}
		st, serr := p.parseStatement()
		if serr != nil {
			return nil, false, serr
		}
		stmts = append(stmts, st)
	}
	return nil, false, fmt.Errorf("unterminated block")
}

func (p *parser) parseStatement() (stmt, error) {
	line := p.peek()

	if m := varDeclRe.FindStringSubmatch(line); m != nil {
		p.pos++
		e, err := parseExpr(m[2])
		if err != nil {
			return nil, err
		}
		return varStmt{name: m[1], value: e}, nil
	}

	if m := ifRe.FindStringSubmatch(line); m != nil {
		p.pos++
		cond, err := parseExpr(m[1])
		if err != nil {
			return nil, err
		}
		thenBlock, hasElse, err := p.parseBlockUntilCloseOrElse()
		if err != nil {
			return nil, err
		}
		var elseBlock []stmt
		if hasElse {
			elseBlock, err = p.parseBlockUntilClose()
			if err != nil {
				return nil, err
			}
		}
		return ifStmt{cond: cond, then: thenBlock, els: elseBlock}, nil
	}

	if m := whileRe.FindStringSubmatch(line); m != nil {
		p.pos++
		cond, err := parseExpr(m[1])
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlockUntilClose()
		if err != nil {
			return nil, err
		}
		return whileStmt{cond: cond, body: body}, nil
	}

	if m := returnRe.FindStringSubmatch(line); m != nil {
		p.pos++
		if strings.TrimSpace(m[1]) == "" {
			return returnStmt{}, nil
		}
		e, err := parseExpr(m[1])
		if err != nil {
			return nil, err
		}
		return returnStmt{value: e}, nil
	}

	if m := importForRe.FindStringSubmatch(line); m != nil {
		p.pos++
		return importStmt{module: m[1], forClass: m[2]}, nil
	}

	if m := importRe.FindStringSubmatch(line); m != nil {
		p.pos++
		return importStmt{module: m[1]}, nil
	}

	if m := assignRe.FindStringSubmatch(line); m != nil {
		p.pos++
		e, err := parseExpr(m[2])
		if err != nil {
			return nil, err
		}
		return assignStmt{name: m[1], value: e}, nil
	}

	p.pos++
	e, err := parseExpr(line)
	if err != nil {
		return nil, fmt.Errorf("parsing statement %q: %w", line, err)
	}
	return exprStmt{e: e}, nil
}
