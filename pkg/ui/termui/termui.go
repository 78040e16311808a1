// Package termui is the default ui.Collaborator: an ANSI terminal renderer
// with box-drawn panes for source, variables, and program output, styled
// after the goja-debug example's drawBox/displayCode/setColor functions,
// adapted to gubed's Collaborator contract instead of goja's DebuggerState.
package termui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/amirgeva/gubed/pkg/breakpoint"
	"github.com/amirgeva/gubed/pkg/module"
	"github.com/amirgeva/gubed/pkg/ui"
	"github.com/amirgeva/gubed/pkg/ui/layout"
)

const (
	boxSingle = iota
	boxDouble
)

var boxChars = map[int]map[string]string{
	boxSingle: {
		"horizontal": "─", "vertical": "│",
		"topLeft": "┌", "topRight": "┐",
		"bottomLeft": "└", "bottomRight": "┘",
	},
	boxDouble: {
		"horizontal": "═", "vertical": "║",
		"topLeft": "╔", "topRight": "╗",
		"bottomLeft": "╚", "bottomRight": "╝",
	},
}

// UI is the terminal Collaborator. It owns no session state beyond what's
// needed to redraw: the module cache to fetch original source, the
// breakpoint set the operator toggles, and the layout template apportioned
// against the current terminal size.
type UI struct {
	cache       *module.Cache
	breakpoints *breakpoint.Set
	layoutRoot  layout.Node

	currentModule string
	currentLine   int
	variables     []ui.Variable
	output        []string

	reader *bufio.Reader
}

// New constructs a UI over cache and breakpoints, loading layout.json if
// present and falling back to layout.Default on any LayoutError.
func New(cache *module.Cache, breakpoints *breakpoint.Set) *UI {
	root := layout.Default()
	if path, err := layout.DefaultPath(); err == nil {
		if loaded, ok, loadErr := layout.Load(path); loadErr == nil && ok {
			root = loaded
		}
	}
	return &UI{
		cache:       cache,
		breakpoints: breakpoints,
		layoutRoot:  root,
		reader:      bufio.NewReader(os.Stdin),
	}
}

// LoadModule implements ui.Collaborator.
func (u *UI) LoadModule(name string) {
	if name == u.currentModule {
		return
	}
	u.currentModule = name
}

// HighlightLine implements ui.Collaborator.
func (u *UI) HighlightLine(line int) {
	u.currentLine = line
	u.redraw()
}

// SetVariables implements ui.Collaborator.
func (u *UI) SetVariables(text string) {
	u.variables = ui.ParseVariables(text)
	u.redraw()
}

// IsBreakpoint implements ui.Collaborator.
func (u *UI) IsBreakpoint(module string, line int) bool {
	return u.breakpoints.Has(module, line)
}

// AppendOutput implements ui.Collaborator.
func (u *UI) AppendOutput(text string) {
	u.output = append(u.output, strings.Split(strings.TrimRight(text, "\n"), "\n")...)
	if len(u.output) > 200 {
		u.output = u.output[len(u.output)-200:]
	}
}

// EventLoop implements ui.Collaborator: it blocks reading operator commands
// from stdin until one of them resolves to Step, Continue, or Quit.
// Breakpoint toggling ("b <line>") and unrecognised commands are handled
// without returning, mirroring the original's command loop.
func (u *UI) EventLoop() ui.DebugAction {
	for {
		fmt.Print("gubed> ")
		line, err := u.reader.ReadString('\n')
		if err != nil {
			return ui.Quit
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s", "step":
			return ui.Step
		case "c", "continue":
			return ui.Continue
		case "q", "quit":
			return ui.Quit
		case "b", "break":
			if len(fields) < 2 {
				fmt.Println("usage: b <line>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("invalid line %q\n", fields[1])
				continue
			}
			on := u.breakpoints.Toggle(u.currentModule, n)
			if on {
				fmt.Printf("breakpoint set at %s:%d\n", u.currentModule, n)
			} else {
				fmt.Printf("breakpoint cleared at %s:%d\n", u.currentModule, n)
			}
		default:
			fmt.Printf("unknown command %q (s=step, c=continue, b <line>=breakpoint, q=quit)\n", fields[0])
		}
	}
}

func termSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 25
	}
	return w, h
}

func (u *UI) redraw() {
	width, height := termSize()
	rect := layout.Apportion(u.layoutRoot, 1, 1, width, height)
	clearScreen()
	u.drawRect(rect)
}

func (u *UI) drawRect(r layout.Rect) {
	if len(r.Children) > 0 {
		for _, c := range r.Children {
			u.drawRect(c)
		}
		return
	}
	switch r.ID {
	case "Code":
		u.drawBox(r, "Code", boxDouble)
		u.drawCode(r)
	case "Vars":
		u.drawBox(r, "Vars", boxSingle)
		u.drawVariables(r)
	case "Output":
		u.drawBox(r, "Output", boxSingle)
		u.drawOutput(r)
	case "Project":
		u.drawBox(r, "Project", boxSingle)
	default:
		u.drawBox(r, r.ID, boxSingle)
	}
}

func clearScreen() { fmt.Print("\033[2J\033[H") }

func moveCursor(row, col int) { fmt.Printf("\033[%d;%dH", row, col) }

func (u *UI) drawBox(r layout.Rect, title string, style int) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	chars := boxChars[style]
	moveCursor(r.Y, r.X)
	fmt.Print(chars["topLeft"])
	if title != "" {
		color.New(color.FgYellow).Print(" " + title + " ")
	}
	fmt.Print(strings.Repeat(chars["horizontal"], max(0, r.Width-2-len(title)-2)))
	fmt.Print(chars["topRight"])

	for i := 1; i < r.Height-1; i++ {
		moveCursor(r.Y+i, r.X)
		fmt.Print(chars["vertical"])
		moveCursor(r.Y+i, r.X+r.Width-1)
		fmt.Print(chars["vertical"])
	}

	moveCursor(r.Y+r.Height-1, r.X)
	fmt.Print(chars["bottomLeft"] + strings.Repeat(chars["horizontal"], max(0, r.Width-2)) + chars["bottomRight"])
}

func (u *UI) drawCode(r layout.Rect) {
	m, ok := u.cache.Get(u.currentModule)
	if !ok {
		return
	}
	innerHeight := r.Height - 2
	start := u.currentLine - innerHeight/2
	if start < 0 {
		start = 0
	}
	for i := 0; i < innerHeight && start+i < len(m.Original); i++ {
		moveCursor(r.Y+1+i, r.X+1)
		lineNo := start + i
		text := m.Original[lineNo]
		if len(text) > r.Width-8 {
			text = text[:max(0, r.Width-8)]
		}
		marker := "  "
		if lineNo == u.currentLine {
			marker = color.New(color.FgYellow).Sprint("->")
		} else if u.breakpoints.Has(u.currentModule, lineNo) {
			marker = color.New(color.FgRed).Sprint("● ")
		}
		fmt.Printf("%s%4d %s", marker, lineNo, text)
	}
}

func (u *UI) drawVariables(r layout.Rect) {
	for i, v := range u.variables {
		if i >= r.Height-2 {
			break
		}
		moveCursor(r.Y+1+i, r.X+1)
		color.New(color.FgGreen).Printf("%-12s", v.Name)
		fmt.Print(v.Value)
	}
}

func (u *UI) drawOutput(r layout.Rect) {
	innerHeight := r.Height - 2
	start := 0
	if len(u.output) > innerHeight {
		start = len(u.output) - innerHeight
	}
	for i := 0; start+i < len(u.output) && i < innerHeight; i++ {
		moveCursor(r.Y+1+i, r.X+1)
		line := u.output[start+i]
		if len(line) > r.Width-2 {
			line = line[:r.Width-2]
		}
		fmt.Print(line)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
