package shader

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranslator records the stages it was asked to translate and fails the ones listed in reject.
type fakeTranslator struct {
	seen   []string
	reject map[string]error
}

func (f *fakeTranslator) translate(source, stage string) (string, error) {
	f.seen = append(f.seen, stage)
	if err, ok := f.reject[stage]; ok {
		return "", err
	}
	return source, nil
}

func esResult() ProcessResult {
	return ProcessResult{
		Version:  "#version 300 es\n",
		Vertex:   "void main() {}\n",
		Geometry: "void main() {}\n",
		Fragment: "precision mediump float;\nbroken\n",
	}
}

func TestValidatorAccepts(t *testing.T) {
	f := &fakeTranslator{}
	v := newValidator(f.translate)

	checked, err := v.Validate(esResult())
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageVertex, StageFragment}, checked)
	assert.Equal(t, []string{"vertex", "fragment"}, f.seen, "geometry is never translated")
}

func TestValidatorRejects(t *testing.T) {
	compileErr := errors.New("ERROR: 0:4: 'broken' : syntax error")
	f := &fakeTranslator{reject: map[string]error{"fragment": compileErr}}
	v := newValidator(f.translate)

	checked, err := v.Validate(esResult())
	require.Error(t, err)
	assert.Equal(t, []Stage{StageVertex}, checked)
	assert.ErrorIs(t, err, compileErr)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StageFragment, verr.Stage)
	assert.Equal(t, "1 | #version 300 es\n2 | \n3 | precision mediump float;\n4 | broken\n", verr.Listing)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to validate shader's fragment block: ERROR: 0:4"))
}

func TestValidatorSkipsOtherVersions(t *testing.T) {
	var sb strings.Builder
	f := &fakeTranslator{}
	v := newValidator(f.translate)
	v.SetLogger(slog.New(slog.NewTextHandler(&sb, nil)))

	r := esResult()
	r.Version = "#version 330 core\n"
	checked, err := v.Validate(r)
	require.NoError(t, err)
	assert.Empty(t, checked)
	assert.Empty(t, f.seen)
	assert.Contains(t, sb.String(), "translator requires version 300 es")
}

func TestNewValidatorUnknownOutput(t *testing.T) {
	_, err := NewValidator(t.Context(), "hlsl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown validator output "hlsl"`)
}
