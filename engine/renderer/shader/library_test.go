package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLibrary(t *testing.T) (Library, *countingFS) {
	t.Helper()
	simple := lines(`#![version("330 core")]`, "#![vertex]", `#![use("common.glsl")]`, "void main() {}", "#![fragment]", "void main() {}")
	fsys := newCountingFS(map[string]string{
		"a.glsl":      simple,
		"b.glsl":      simple,
		"c.glsl":      simple,
		"bad.glsl":    lines(`#![version("330 core")]`, "#![vertex]", "#![bogus]", "#![fragment]", "frag"),
		"common.glsl": "uniform float uTime;\n",
	})
	return NewLibrary(WithWorkers(2), WithLibraryPreProcessor(NewPreProcessor(WithFS(fsys)))), fsys
}

func TestLibraryLoad(t *testing.T) {
	lib, fsys := newTestLibrary(t)

	built, err := lib.Load(map[string]string{"a": "a.glsl", "b": "b.glsl", "c": "c.glsl"})
	require.NoError(t, err)
	assert.Len(t, built, 3)
	assert.Equal(t, []string{"a", "b", "c"}, lib.Keys())

	a := lib.Shader("a")
	require.NotNil(t, a)
	assert.Equal(t, "a", a.Key())
	assert.Equal(t, "a.glsl", a.Path())
	assert.Same(t, built["a"], a)
	assert.Nil(t, lib.Shader("missing"))

	// runs share nothing, so every entry reads the common file itself
	assert.Equal(t, 3, fsys.opens["common.glsl"])
}

func TestLibraryLoadFailures(t *testing.T) {
	lib, _ := newTestLibrary(t)

	built, err := lib.Load(map[string]string{"a": "a.glsl", "bad": "bad.glsl", "gone": "gone.glsl"})
	require.Error(t, err)
	assert.Len(t, built, 1)
	assert.Equal(t, []string{"a"}, lib.Keys())

	assert.ErrorIs(t, err, ErrUnrecognized)
	assert.ErrorIs(t, err, ErrResolution)
	msg := err.Error()
	assert.Contains(t, msg, "failed to pre-process bad")
	assert.Contains(t, msg, "failed to pre-process gone")
	assert.Less(t, strings.Index(msg, "pre-process bad"), strings.Index(msg, "pre-process gone"), "errors are joined in key order")
}

func TestLibraryReload(t *testing.T) {
	lib, _ := newTestLibrary(t)

	_, err := lib.Load(map[string]string{"a": "a.glsl"})
	require.NoError(t, err)
	first := lib.Shader("a")

	_, err = lib.Load(map[string]string{"a": "b.glsl", "c": "c.glsl"})
	require.NoError(t, err)
	assert.NotSame(t, first, lib.Shader("a"))
	assert.Equal(t, "b.glsl", lib.Shader("a").Path())
	assert.Equal(t, []string{"a", "c"}, lib.Keys())
}
