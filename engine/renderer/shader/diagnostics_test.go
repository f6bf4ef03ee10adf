package shader

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberLines(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "empty", source: "", want: ""},
		{name: "single line without newline", source: "void main() {}", want: "1 | void main() {}\n"},
		{name: "trailing newline", source: "a\nb\n", want: "1 | a\n2 | b\n"},
		{name: "blank lines kept", source: "a\n\nb", want: "1 | a\n2 | \n3 | b\n"},
		{name: "lone newline", source: "\n", want: "1 | \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberLines(tt.source))
		})
	}
}

func TestNumberLinesAlignment(t *testing.T) {
	source := strings.Repeat("x\n", 12)
	got := strings.Split(strings.TrimSuffix(NumberLines(source), "\n"), "\n")
	require.Len(t, got, 12)
	assert.Equal(t, " 1 | x", got[0])
	assert.Equal(t, " 9 | x", got[8])
	assert.Equal(t, "12 | x", got[11])
}

func TestNumberLinesAssembledSource(t *testing.T) {
	r := ProcessResult{Version: "#version 330 core\n", Vertex: "void main() {}\n"}
	assert.Equal(t, "1 | #version 330 core\n2 | \n3 | void main() {}\n", NumberLines(r.Source(StageVertex)))
}

func TestInclusionStack(t *testing.T) {
	s := newInclusionStack("main.glsl")
	assert.True(t, s.Contains("main.glsl"))
	assert.False(t, s.Contains("a.glsl"))

	s.push("a.glsl")
	s.push("main.glsl")
	s.push("b.glsl")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"main.glsl", "a.glsl", "b.glsl"}, s.Paths())

	paths := s.Paths()
	paths[0] = "changed"
	assert.True(t, s.Contains("main.glsl"), "Paths must return a copy")
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var sb strings.Builder
	SetLogger(slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug})))

	pp := NewPreProcessor(WithFS(newCountingFS(map[string]string{
		"main.glsl": lines(`#![version("330 core")]`, "#![vertex]", `#![use("a.glsl")]`, `#![use("a.glsl")]`, "#![fragment]", "frag"),
		"a.glsl":    "a\n",
	})))
	_, err := pp.Process("main.glsl")
	require.NoError(t, err)

	out := sb.String()
	assert.Contains(t, out, "loading shader")
	assert.Contains(t, out, "reading used file")
	assert.Contains(t, out, "multi-use file detected in main.glsl, line 4; ignored.")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	var sb strings.Builder
	l := slog.New(slog.NewTextHandler(&sb, nil))
	pp := NewPreProcessor(WithLogger(l), WithFS(newCountingFS(map[string]string{
		"main.glsl": lines(`#![version("330 core")]`, "#![vertex]", "vert", "#![fragment]", "frag"),
	})))
	_, err := pp.Process("main.glsl")
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "path=main.glsl")
}
