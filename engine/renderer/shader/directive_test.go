package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want Directive
	}{
		{line: "", want: Directive{Kind: DirectiveKindNone}},
		{line: "void main() {}", want: Directive{Kind: DirectiveKindNone}},
		{line: "#version 330 core", want: Directive{Kind: DirectiveKindNone}},
		{line: "// #![vertex]", want: Directive{Kind: DirectiveKindNone}},
		{line: "#![vertex]", want: Directive{Kind: DirectiveKindStage, Name: DirectiveVertex}},
		{line: "  #! [ fragment ]  ", want: Directive{Kind: DirectiveKindStage, Name: DirectiveFragment}},
		{line: "#![geometry]", want: Directive{Kind: DirectiveKindStage, Name: DirectiveGeometry}},
		{line: "#![geometory]", want: Directive{Kind: DirectiveKindStage, Name: DirectiveGeometry}},
		{line: `#![version("330 core")]`, want: Directive{Kind: DirectiveKindVersion, Name: DirectiveVersion, Param: "330 core"}},
		{line: `#![version ( "300 es" ) ]`, want: Directive{Kind: DirectiveKindVersion, Name: DirectiveVersion, Param: "300 es"}},
		{line: "#![version]", want: Directive{Kind: DirectiveKindVersion, Name: DirectiveVersion}},
		{line: `#![use("lib/light.glsl")]`, want: Directive{Kind: DirectiveKindUse, Name: DirectiveUse, Param: "lib/light.glsl"}},
		{line: `#![use("..\common\noise.glsl")]`, want: Directive{Kind: DirectiveKindUse, Name: DirectiveUse, Param: `..\common\noise.glsl`}},
		{line: `#![use("")]`, want: Directive{Kind: DirectiveKindUse, Name: DirectiveUse}},
		{line: "#![bogus]", want: Directive{Kind: DirectiveKindUnrecognized, Name: "bogus"}},
		{line: `#![include("a.glsl")]`, want: Directive{Kind: DirectiveKindUnrecognized, Name: "include", Param: "a.glsl"}},
		{line: "#!", want: Directive{Kind: DirectiveKindMalformed}},
		{line: "#![vertex", want: Directive{Kind: DirectiveKindMalformed}},
		{line: "#![vertex] // stage", want: Directive{Kind: DirectiveKindMalformed}},
		{line: `#![use('a.glsl')]`, want: Directive{Kind: DirectiveKindMalformed}},
		{line: `#![use("a-b.glsl")]`, want: Directive{Kind: DirectiveKindMalformed}},
		{line: `#![use("a.glsl"`, want: Directive{Kind: DirectiveKindMalformed}},
		{line: "#![two words]", want: Directive{Kind: DirectiveKindMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLine(tt.line))
		})
	}
}

func TestDirectiveKindString(t *testing.T) {
	assert.Equal(t, "stage", DirectiveKindStage.String())
	assert.Equal(t, "malformed", DirectiveKindMalformed.String())
	assert.Equal(t, "unknown", DirectiveKind(42).String())
}

func TestStageFromDirective(t *testing.T) {
	for _, stage := range Stages {
		got, ok := stageFromDirective(DirectiveName(stage.String()))
		assert.True(t, ok)
		assert.Equal(t, stage, got)
	}
	_, ok := stageFromDirective(DirectiveUse)
	assert.False(t, ok)
}
