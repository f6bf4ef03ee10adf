package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// Uniform is a uniform declaration found in a stage source.
type Uniform struct {
	// Name is the uniform's identifier.
	Name string

	// Type is the GLSL type name, e.g. "mat4" or "sampler2D".
	Type string

	// ArraySize is the declared element count, 0 for non-array uniforms.
	ArraySize int
}

// parsedInput represents a single layout(location = N) in declaration of a vertex stage
type parsedInput struct {
	name     string
	typeName string
	location int
}
