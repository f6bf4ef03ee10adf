package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// shader is the implementation of the Shader interface.
// It holds the processed stages of one entry file and the metadata reflected from them.
type shader struct {
	key           string
	path          string
	result        ProcessResult
	modules       map[Stage]*wgpu.ShaderModuleDescriptor
	uniforms      map[Stage][]Uniform
	vertexLayouts []wgpu.VertexBufferLayout

	// source selection, set by the builder options
	sourcePath   string
	sourceName   string
	sourceString string
	sourceDir    string
	fromString   bool

	pp PreProcessor
}

// Shader is a processed cabin shader: the per-stage GLSL sources of one entry file, the
// WebGPU module descriptors built from them, and reflection data for pipeline setup.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Path returns the canonical path of the entry file.
	//
	// Returns:
	//   - string: the entry path
	Path() string

	// Result returns the pre-processor output the shader was built from.
	//
	// Returns:
	//   - ProcessResult: the version line, stage bodies, notices and file list
	Result() ProcessResult

	// Source returns the assembled GLSL source of a stage.
	//
	// Parameters:
	//   - stage: the stage to return
	//
	// Returns:
	//   - string: the stage source, or an empty string if the stage is absent
	Source(stage Stage) string

	// HasStage reports whether the entry declared a non-empty body for stage.
	//
	// Parameters:
	//   - stage: the stage to check
	//
	// Returns:
	//   - bool: true if the stage is present
	HasStage(stage Stage) bool

	// Module returns the WebGPU shader module descriptor for a stage. WebGPU has no geometry
	// stage, so the geometry stage never has a module.
	//
	// Parameters:
	//   - stage: the stage to return
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor carrying the GLSL code, or nil
	Module(stage Stage) *wgpu.ShaderModuleDescriptor

	// Uniforms returns the uniform declarations of a stage in declaration order.
	//
	// Parameters:
	//   - stage: the stage to inspect
	//
	// Returns:
	//   - []Uniform: the uniforms, or nil for an absent stage
	Uniforms(stage Stage) []Uniform

	// VertexLayouts returns the vertex buffer layouts implied by the vertex stage's located inputs.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: a single interleaved layout, or nil
	VertexLayouts() []wgpu.VertexBufferLayout

	// Diagnostics returns a line-numbered listing of a stage's source for compile error reports.
	//
	// Parameters:
	//   - stage: the stage to list
	//
	// Returns:
	//   - string: the numbered listing, empty for an absent stage
	Diagnostics(stage Stage) string
}

var _ Shader = &shader{}

// NewShader processes an entry shader and builds a Shader from it. A source must be provided
// with WithSourceFile or WithSourceString.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label
//   - options: functional options selecting the source and pre-processor
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if no source was given or pre-processing failed
func NewShader(key string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:      key,
		modules:  make(map[Stage]*wgpu.ShaderModuleDescriptor),
		uniforms: make(map[Stage][]Uniform),
	}
	for _, option := range options {
		option(s)
	}
	if s.pp == nil {
		s.pp = NewPreProcessor()
	}

	var err error
	switch {
	case s.fromString:
		s.result, err = s.pp.ProcessSource(s.sourceName, s.sourceString, s.sourceDir)
	case s.sourcePath != "":
		s.result, err = s.pp.Process(s.sourcePath)
	default:
		return nil, errors.New("shader: " + key + " must have a source provided via WithSourceFile or WithSourceString")
	}
	if err != nil {
		return nil, fmt.Errorf("shader: failed to pre-process %s: %w", key, err)
	}

	s.path = s.result.Files[0]
	s.reflect()
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Result() ProcessResult {
	return s.result
}

func (s *shader) Source(stage Stage) string {
	return s.result.Source(stage)
}

func (s *shader) HasStage(stage Stage) bool {
	return s.result.HasStage(stage)
}

func (s *shader) Module(stage Stage) *wgpu.ShaderModuleDescriptor {
	return s.modules[stage]
}

func (s *shader) Uniforms(stage Stage) []Uniform {
	return s.uniforms[stage]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Diagnostics(stage Stage) string {
	return NumberLines(s.Source(stage))
}

// reflect builds module descriptors and extracts uniforms and vertex layouts for every present stage.
func (s *shader) reflect() {
	for _, stage := range Stages {
		if !s.result.HasStage(stage) {
			continue
		}
		src := s.result.Source(stage)
		s.uniforms[stage] = parseUniforms(src)

		var visibility wgpu.ShaderStage
		switch stage {
		case StageVertex:
			visibility = wgpu.ShaderStageVertex
			s.vertexLayouts = parseVertexLayouts(src)
		case StageFragment:
			visibility = wgpu.ShaderStageFragment
		default:
			continue
		}
		s.modules[stage] = &wgpu.ShaderModuleDescriptor{
			Label: s.key + "." + stage.String(),
			GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
				Code:        src,
				ShaderStage: visibility,
			},
		}
	}
}
