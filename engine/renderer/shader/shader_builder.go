package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithSourceFile sets the entry shader file to process.
//
// Parameters:
//   - path: the path of the entry shader file
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source path for this shader
func WithSourceFile(path string) ShaderBuilderOption {
	return func(s *shader) {
		s.sourcePath = path
		s.fromString = false
	}
}

// WithSourceString sets an in-memory entry shader. name identifies the entry in diagnostics and
// dir is the directory its use directives resolve against.
//
// Parameters:
//   - name: the file name the source is known by
//   - source: the entry shader text
//   - dir: the directory used paths resolve against
//
// Returns:
//   - ShaderBuilderOption: a function that sets the in-memory source for this shader
func WithSourceString(name, source, dir string) ShaderBuilderOption {
	return func(s *shader) {
		s.sourceName = name
		s.sourceString = source
		s.sourceDir = dir
		s.fromString = true
	}
}

// WithPreProcessor sets the pre-processor used to build the shader. Defaults to NewPreProcessor().
//
// Parameters:
//   - pp: the pre-processor to use
//
// Returns:
//   - ShaderBuilderOption: a function that sets the pre-processor for this shader
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}
