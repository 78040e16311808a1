// Package instrument is the single-pass parser/rewriter at the heart of the
// debugger: it recognizes class, method, and var declarations in Target
// Language source, interleaves a debug probe before every executable line
// inside a method body (lines starting with "}" get none), and registers each probe's synthetic line id with a
// linemap.Mapper.
//
// Brace and comment handling is intentionally naive — it does not look
// inside string literals or block comments, so a "{" or "//" embedded in a
// string can be misclassified. User programs are written around this, so
// the behavior is preserved rather than fixed.
package instrument

import (
	"regexp"
	"strings"

	"github.com/amirgeva/gubed/pkg/linemap"
)

// Prologue is the first line of every instrumented module: an import of the
// synthetic Debugger Facade module.
const Prologue = `import "gubed" for Gubedder`

var (
	classRe  = regexp.MustCompile(`\s*class\s+(\w+)\s*\{`)
	methodRe = regexp.MustCompile(`\s*(?:static\s+)?(\w+)\s*\(([^)]*)\)\s*\{`)
	varRe    = regexp.MustCompile(`\s*var\s+(\w+)\s*=\s*.+`)
)

// block is a lexical scope during instrumentation: the names declared
// within it, in declaration order.
type block struct {
	variables []string
}

// Instrument parses lines (one module's original source) and returns the
// instrumented source, registering every emitted probe's LineID with
// mapper. moduleName is the key under which probes are registered for later
// reverse lookup.
func Instrument(moduleName string, lines []string, mapper *linemap.Mapper) []string {
	out := make([]string, 0, len(lines)*2+1)
	out = append(out, Prologue)

	var className, methodName string
	braceDepth := 0
	var blockStack []block

	for i, raw := range lines {
		line := stripComment(raw)
		ws := leadingWhitespace(line)
		sline := strings.TrimSpace(line)

		if m := classRe.FindStringSubmatch(line); m != nil {
			className = m[1]
		}

		if className != "" && braceDepth == 1 {
			if m := methodRe.FindStringSubmatch(line); m != nil {
				methodName = m[1]
				blk := block{}
				for _, p := range strings.Split(m[2], ",") {
					p = strings.TrimSpace(p)
					if p != "" {
						blk.variables = append(blk.variables, p)
					}
				}
				blockStack = append(blockStack, blk)
				braceDepth++
				out = append(out, line)
				continue
			}
		}

		if methodName != "" {
			if braceDepth >= 2 && !strings.HasPrefix(sline, "}") {
				id := linemap.NewLineID(className, methodName, i)
				out = append(out, ws+"Gubedder.callback("+formatID(id)+", "+formatVariables(blockStack)+")")
				mapper.AddLine(id, moduleName, len(out)-1, i)
			}
			if m := varRe.FindStringSubmatch(line); m != nil && len(blockStack) > 0 {
				top := &blockStack[len(blockStack)-1]
				top.variables = append(top.variables, m[1])
			}
		}

		if strings.HasPrefix(sline, "}") {
			braceDepth--
			if len(blockStack) > 0 {
				blockStack = blockStack[:len(blockStack)-1]
			}
			if braceDepth == 1 {
				methodName = ""
			}
			if braceDepth == 0 {
				className = ""
			}
		}

		if strings.HasSuffix(sline, "{") {
			braceDepth++
			blockStack = append(blockStack, block{})
		}

		out = append(out, line)
	}

	return out
}

// stripComment removes a trailing "// ..." from line, naively: it does not
// understand string literals, so a "//" inside a string is treated as a
// comment marker too.
func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx != -1 {
		return line[:idx]
	}
	return line
}

func leadingWhitespace(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	return line[:len(line)-len(trimmed)]
}

// formatVariables builds the in-scope variable snapshot expression: each
// name contributes `"name=" + name.toString`, joined by the literal `|`
// character, outermost block first. An empty scope yields the empty string
// literal.
func formatVariables(blockStack []block) string {
	var parts []string
	for _, b := range blockStack {
		for _, name := range b.variables {
			parts = append(parts, `"`+name+`=" + `+name+`.toString`)
		}
	}
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, ` + "|" + `)
}

func formatID(id linemap.LineID) string {
	return uitoa(uint64(id))
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
