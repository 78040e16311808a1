package instrument

import (
	"strings"
	"testing"

	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fooSource() []string {
	return []string{
		"class Foo {",
		"  bar(x) {",
		"    var y = x + 1",
		"    System.print(y)",
		"  }",
		"}",
	}
}

func TestInstrumentPrologue(t *testing.T) {
	mapper := linemap.New()
	out := Instrument("Foo", fooSource(), mapper)
	require.NotEmpty(t, out)
	assert.Equal(t, Prologue, out[0])
}

func TestInstrumentScenarioOneMethodClass(t *testing.T) {
	mapper := linemap.New()
	out := Instrument("Foo", fooSource(), mapper)

	var probes []string
	for _, line := range out {
		if strings.Contains(line, "Gubedder.callback(") {
			probes = append(probes, line)
		}
	}
	require.Len(t, probes, 2)

	assert.Contains(t, probes[0], `"x=" + x.toString`)
	assert.Contains(t, probes[1], `"y=" + y.toString`)
	assert.Contains(t, probes[1], `"x=" + x.toString`)

	idxVarY := indexOf(out, "    var y = x + 1")
	idxPrint := indexOf(out, "    System.print(y)")
	require.Greater(t, idxVarY, 0)
	require.Greater(t, idxPrint, 0)
	assert.Contains(t, out[idxVarY-1], "Gubedder.callback(")
	assert.Contains(t, out[idxPrint-1], "Gubedder.callback(")

	assert.Equal(t, mapper.Len(), 2)
}

func TestInstrumentIndentationPreservation(t *testing.T) {
	mapper := linemap.New()
	out := Instrument("Foo", fooSource(), mapper)

	idxVarY := indexOf(out, "    var y = x + 1")
	require.Greater(t, idxVarY, 0)
	probeLine := out[idxVarY-1]

	origWS := leadingWhitespace(out[idxVarY])
	probeWS := leadingWhitespace(probeLine)
	assert.Equal(t, origWS, probeWS)
}

func TestInstrumentProbeCoverageAndReverseMapping(t *testing.T) {
	mapper := linemap.New()
	source := fooSource()
	out := Instrument("Foo", source, mapper)

	probeCount := 0
	for instrumentedIdx, line := range out {
		if !strings.Contains(line, "Gubedder.callback(") {
			continue
		}
		probeCount++

		d, ok := mapper.ReverseLookup("Foo", instrumentedIdx)
		require.True(t, ok)
		assert.Equal(t, "Foo", d.Module)
		assert.Equal(t, instrumentedIdx, d.InstrumentedLine)

		require.Less(t, instrumentedIdx+1, len(out))
		nextLine := out[instrumentedIdx+1]
		require.Less(t, d.OriginalLine, len(source))
		assert.Equal(t, strings.TrimSpace(source[d.OriginalLine]), strings.TrimSpace(nextLine),
			"probe at instrumented line %d should reverse-map to the original line it guards", instrumentedIdx)
	}
	assert.Equal(t, 2, probeCount)
}

func TestInstrumentPreservesFinalClosingBrace(t *testing.T) {
	mapper := linemap.New()
	out := Instrument("Foo", fooSource(), mapper)
	assert.Equal(t, "}", strings.TrimSpace(out[len(out)-1]))
}

func TestInstrumentCommentIsStripped(t *testing.T) {
	mapper := linemap.New()
	source := []string{
		"class Foo {",
		"  bar() {",
		"    var z = 1 // a comment with { and }",
		"  }",
		"}",
	}
	out := Instrument("Foo", source, mapper)
	for _, line := range out {
		assert.NotContains(t, line, "a comment")
	}
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}
