// directive.go defines the directive grammar of the cabin shader pre-processor. Directives are
// whole lines whose first non-whitespace characters are the #! sigil. Two shapes are recognized:
//
//	#![name]               hint form, used for stage markers
//	#![name("parameter")]  declaration form, used for version and use
//
// A #! line that matches neither shape is malformed and fails the enclosing parse.
package shader

import "regexp"

// directiveSigil marks a directive line once leading whitespace has been skipped.
const directiveSigil = "#!"

// DirectiveName is the identifier found between the brackets of a directive.
type DirectiveName string

const (
	// DirectiveVersion declares the GLSL version shared by every stage.
	//
	// Syntax: #![version("330 core")]
	DirectiveVersion DirectiveName = "version"

	// DirectiveVertex starts the vertex stage body.
	//
	// Syntax: #![vertex]
	DirectiveVertex DirectiveName = "vertex"

	// DirectiveGeometry starts the optional geometry stage body.
	//
	// Syntax: #![geometry]
	DirectiveGeometry DirectiveName = "geometry"

	// directiveGeometryLegacy is the spelling used by older shader files.
	// It selects the same stage as DirectiveGeometry.
	directiveGeometryLegacy DirectiveName = "geometory"

	// DirectiveFragment starts the fragment stage body.
	//
	// Syntax: #![fragment]
	DirectiveFragment DirectiveName = "fragment"

	// DirectiveUse inlines another file into the current stage body. The path is
	// resolved against the directory of the entry file.
	//
	// Syntax: #![use("common/lighting.glsl")]
	DirectiveUse DirectiveName = "use"
)

// DirectiveKind classifies a single source line.
type DirectiveKind int

const (
	// DirectiveKindNone is an ordinary content line.
	DirectiveKindNone DirectiveKind = iota

	// DirectiveKindVersion is a version declaration.
	DirectiveKindVersion

	// DirectiveKindStage is a vertex, geometry or fragment hint.
	DirectiveKindStage

	// DirectiveKindUse is a use declaration.
	DirectiveKindUse

	// DirectiveKindMalformed is a #! line matching neither directive shape.
	DirectiveKindMalformed

	// DirectiveKindUnrecognized is a well-formed directive whose name is not known.
	DirectiveKindUnrecognized
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveKindNone:
		return "none"
	case DirectiveKindVersion:
		return "version"
	case DirectiveKindStage:
		return "stage"
	case DirectiveKindUse:
		return "use"
	case DirectiveKindMalformed:
		return "malformed"
	case DirectiveKindUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Directive is the classification of one source line.
type Directive struct {
	// Kind is the directive class of the line.
	Kind DirectiveKind

	// Name is the identifier between the brackets. Empty for content and malformed lines.
	Name DirectiveName

	// Param is the quoted parameter of a declaration. Empty for hints.
	Param string
}

var (
	// directiveLineRegex matches any line starting with the sigil after optional whitespace
	directiveLineRegex = regexp.MustCompile(`^\s*#!`)

	// hintRegex matches #![name] and captures the name
	hintRegex = regexp.MustCompile(`^\s*#!\s*\[\s*(\w+)\s*\]\s*$`)

	// declRegex matches #![name("param")] and captures the name and the quoted content
	declRegex = regexp.MustCompile(`^\s*#!\s*\[\s*(\w+)\s*\(\s*"([\w\s./\\]*)"\s*\)\s*\]\s*$`)
)

// isDirectiveLine reports whether the line carries the directive sigil.
func isDirectiveLine(line string) bool {
	return directiveLineRegex.MatchString(line)
}

// matchDirective returns the name and parameter of a directive line. The name is empty when
// the line is directive-shaped but follows neither grammar.
func matchDirective(line string) (name, param string) {
	if m := hintRegex.FindStringSubmatch(line); m != nil {
		return m[1], ""
	}
	if m := declRegex.FindStringSubmatch(line); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

// ClassifyLine decides whether a line is a directive and, if so, which one.
//
// Parameters:
//   - line: a single source line without its trailing newline
//
// Returns:
//   - Directive: the classification; Kind is DirectiveKindNone for content lines
func ClassifyLine(line string) Directive {
	if !isDirectiveLine(line) {
		return Directive{Kind: DirectiveKindNone}
	}

	name, param := matchDirective(line)
	if name == "" {
		return Directive{Kind: DirectiveKindMalformed}
	}

	d := Directive{Name: DirectiveName(name), Param: param}
	switch d.Name {
	case DirectiveVersion:
		d.Kind = DirectiveKindVersion
	case DirectiveVertex, DirectiveFragment, DirectiveGeometry:
		d.Kind = DirectiveKindStage
	case directiveGeometryLegacy:
		d.Kind = DirectiveKindStage
		d.Name = DirectiveGeometry
	case DirectiveUse:
		d.Kind = DirectiveKindUse
	default:
		d.Kind = DirectiveKindUnrecognized
	}
	return d
}
