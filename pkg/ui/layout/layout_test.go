package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotError(t *testing.T) {
	_, ok, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadRejectsPercentagesSummingToNinety(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	body := `{"type":"horizontal","percentage":100,"children":[
		{"type":"rect","percentage":40,"id":"Code"},
		{"type":"rect","percentage":50,"id":"Vars"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, ok, err := Load(path)
	require.Error(t, err)
	require.False(t, ok)
	var layoutErr *LayoutError
	require.ErrorAs(t, err, &layoutErr)
}

func TestLoadAcceptsZeroPercentageChildAbsorbingRemainder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	body := `{"type":"horizontal","percentage":100,"children":[
		{"type":"rect","percentage":40,"id":"Code"},
		{"type":"rect","percentage":0,"id":"Vars"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	root, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Horizontal, root.Type)
}

// P7: for every layout node with children, the sum of the children's
// apportioned pixel widths (or heights) equals the parent's own pixel
// width (or height).
func TestApportionChildrenSumToParent(t *testing.T) {
	root := Default()
	rect := Apportion(root, 0, 0, 123, 47)
	assertChildrenSumToParent(t, rect)
}

func assertChildrenSumToParent(t *testing.T, r Rect) {
	t.Helper()
	if len(r.Children) == 0 {
		return
	}
	widthSum, heightSum := 0, 0
	for _, c := range r.Children {
		widthSum += c.Width
		heightSum += c.Height
	}
	// Exactly one axis is split at any given node; the other dimension is
	// simply inherited by every child.
	if widthSum != r.Width {
		assert.Equal(t, r.Height, heightSum)
	} else {
		assert.Equal(t, r.Width, widthSum)
	}
	for _, c := range r.Children {
		assertChildrenSumToParent(t, c)
	}
}

func TestApportionZeroPercentageChildAbsorbsRemainder(t *testing.T) {
	n := Node{
		Type: Horizontal,
		Children: []Node{
			{Type: RectType, Percentage: 40, ID: "A"},
			{Type: RectType, Percentage: 0, ID: "B"},
		},
	}
	rect := Apportion(n, 0, 0, 100, 10)
	require.Len(t, rect.Children, 2)
	assert.Equal(t, 40, rect.Children[0].Width)
	assert.Equal(t, 60, rect.Children[1].Width)
}
