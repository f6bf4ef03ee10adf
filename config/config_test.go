package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cabin.toml")
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultOutputDir, c.OutputDir)
	assert.Equal(t, DefaultLogLevel, c.LogLevel)
	assert.Equal(t, DefaultValidateOutput, c.Validate.Output)
	assert.Empty(t, c.Shaders)
	assert.NoError(t, c.Check())
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
output_dir = "out"
workers = 3
log_level = "debug"
watch = true

[validate]
enabled = true
output = "essl"

[[shader]]
key = "pbr"
path = "shaders/pbr.glsl"

[[shader]]
path = "/abs/unlit.glsl"
`)
	base := filepath.Dir(p)

	c, err := Load(p)
	require.NoError(t, err)

	want := &Config{
		OutputDir: filepath.Join(base, "out"),
		Workers:   3,
		LogLevel:  "debug",
		Watch:     true,
		Validate:  Validate{Enabled: true, Output: "essl"},
		Shaders: []Shader{
			{Key: "pbr", Path: filepath.Join(base, "shaders", "pbr.glsl")},
			{Key: "unlit", Path: "/abs/unlit.glsl"},
		},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Equal(t, map[string]string{
		"pbr":   filepath.Join(base, "shaders", "pbr.glsl"),
		"unlit": "/abs/unlit.glsl",
	}, c.Entries())
}

func TestLoadAppliesDefaults(t *testing.T) {
	p := writeConfig(t, "[[shader]]\npath = \"a.glsl\"\n")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputDir, c.OutputDir)
	assert.Equal(t, DefaultValidateOutput, c.Validate.Output)
	assert.Equal(t, "a", c.Shaders[0].Key)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "unknown field", data: "outputdir = \"x\"\n", want: "failed to decode"},
		{name: "bad syntax", data: "output_dir = \n", want: "failed to decode"},
		{name: "missing path", data: "[[shader]]\nkey = \"a\"\n", want: "shader 0 has no path"},
		{name: "duplicate key", data: "[[shader]]\npath = \"a/x.glsl\"\n[[shader]]\npath = \"b/x.glsl\"\n", want: `duplicate shader key "x"`},
		{name: "bad level", data: "log_level = \"loud\"\n", want: `invalid log_level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAddShader(t *testing.T) {
	c := Default()
	c.AddShader("", "shaders/lit.frag.glsl")
	c.AddShader("custom", "shaders/lit.glsl")
	assert.Equal(t, []Shader{
		{Key: "lit.frag", Path: "shaders/lit.frag.glsl"},
		{Key: "custom", Path: "shaders/lit.glsl"},
	}, c.Shaders)

	c.AddShader("", "other/lit.glsl")
	c.AddShader("", "third/lit.glsl")
	c.Shaders[2].Key = "custom"
	assert.ErrorContains(t, c.Check(), `duplicate shader key "custom"`)
}
