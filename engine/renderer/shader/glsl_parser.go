package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// glslVertexFormatMap maps GLSL attribute types to their corresponding wgpu vertex format and byte size
var glslVertexFormatMap = map[string]vertexFormatInfo{
	"float": {wgpu.VertexFormatFloat32, 4},
	"vec2":  {wgpu.VertexFormatFloat32x2, 8},
	"vec3":  {wgpu.VertexFormatFloat32x3, 12},
	"vec4":  {wgpu.VertexFormatFloat32x4, 16},
	"int":   {wgpu.VertexFormatSint32, 4},
	"ivec2": {wgpu.VertexFormatSint32x2, 8},
	"ivec3": {wgpu.VertexFormatSint32x3, 12},
	"ivec4": {wgpu.VertexFormatSint32x4, 16},
	"uint":  {wgpu.VertexFormatUint32, 4},
	"uvec2": {wgpu.VertexFormatUint32x2, 8},
	"uvec3": {wgpu.VertexFormatUint32x3, 12},
	"uvec4": {wgpu.VertexFormatUint32x4, 16},
}

var (
	// uniformRegex captures type, name and optional array size of a uniform declaration,
	// tolerating a leading layout(...) qualifier and a precision qualifier
	uniformRegex = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)

	// vertexInputRegex captures location, type and name of a layout(location = N) in declaration
	vertexInputRegex = regexp.MustCompile(`(?m)^\s*layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*in\s+(\w+)\s+(\w+)\s*;`)
)

// parseUniforms extracts the uniform declarations of a GLSL stage source in declaration order.
// Uniform blocks (uniform Name { ... }) are not reported.
//
// Parameters:
//   - source: the assembled GLSL source of one stage
//
// Returns:
//   - []Uniform: the declared uniforms
func parseUniforms(source string) []Uniform {
	cleaned := stripComments(source)
	matches := uniformRegex.FindAllStringSubmatch(cleaned, -1)
	uniforms := make([]Uniform, 0, len(matches))

	for _, match := range matches {
		u := Uniform{Type: match[1], Name: match[2]}
		if match[3] != "" {
			u.ArraySize, _ = strconv.Atoi(match[3])
		}
		uniforms = append(uniforms, u)
	}
	return uniforms
}

// parseVertexLayouts builds the vertex buffer layout implied by the layout(location = N) inputs of
// a vertex stage. Attributes are packed in location order into a single interleaved buffer.
// A source without located inputs, or with an input type that has no vertex format, yields nil.
//
// Parameters:
//   - source: the assembled GLSL source of the vertex stage
//
// Returns:
//   - []wgpu.VertexBufferLayout: a single interleaved layout, or nil
func parseVertexLayouts(source string) []wgpu.VertexBufferLayout {
	cleaned := stripComments(source)
	matches := vertexInputRegex.FindAllStringSubmatch(cleaned, -1)
	if len(matches) == 0 {
		return nil
	}

	inputs := make([]parsedInput, 0, len(matches))
	for _, match := range matches {
		loc, err := strconv.Atoi(match[1])
		if err != nil {
			return nil
		}
		inputs = append(inputs, parsedInput{location: loc, typeName: match[2], name: match[3]})
	}
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].location < inputs[j].location
	})

	layout, ok := buildVertexBufferLayout(inputs)
	if !ok {
		return nil
	}
	return []wgpu.VertexBufferLayout{layout}
}

// buildVertexBufferLayout converts sorted vertex inputs into a wgpu.VertexBufferLayout,
// computing tightly packed offsets.
func buildVertexBufferLayout(inputs []parsedInput) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(inputs))
	var offset uint64

	for _, in := range inputs {
		info, ok := glslVertexFormatMap[in.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}

		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(in.location),
		})
		offset += info.size
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes // comments, keeping line structure intact
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes /* */ comments. GLSL block comments do not nest.
func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	inComment := false
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if !inComment && source[i] == '/' && source[i+1] == '*' {
				inComment = true
				i++
				continue
			}
			if inComment && source[i] == '*' && source[i+1] == '/' {
				inComment = false
				i++
				continue
			}
		}
		if !inComment || source[i] == '\n' {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
