package shader

import "fmt"

// Stage identifies one of the shader compilation units produced from an entry file.
type Stage int

const (
	// StageVertex is the vertex stage. Required.
	StageVertex Stage = iota

	// StageGeometry is the geometry stage. Optional.
	StageGeometry

	// StageFragment is the fragment stage. Required.
	StageFragment
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageVertex, StageGeometry, StageFragment}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// stageFromDirective maps a stage hint name to its Stage.
func stageFromDirective(name DirectiveName) (Stage, bool) {
	switch name {
	case DirectiveVertex:
		return StageVertex, true
	case DirectiveGeometry:
		return StageGeometry, true
	case DirectiveFragment:
		return StageFragment, true
	}
	return 0, false
}

// Notice is a non-fatal event raised while expanding a stage.
// The only notice currently produced is a skipped multi-use directive.
type Notice struct {
	// Stage is the stage being expanded when the notice was raised.
	Stage Stage

	// File is the display name of the file containing the directive.
	File string

	// Line is the line number of the directive within File.
	Line int

	// Path is the canonical path that was skipped.
	Path string
}

func (n Notice) String() string {
	return fmt.Sprintf("multi-use file detected in %s, line %d; ignored.", n.File, n.Line)
}

// ProcessResult is the output of one pre-processor run.
// Version, Vertex and Fragment are never empty on success; Geometry may be.
type ProcessResult struct {
	// Version is the version line shared by all stages, e.g. "#version 330 core\n".
	Version string

	// Vertex is the expanded vertex body.
	Vertex string

	// Geometry is the expanded geometry body, empty when the entry declares none.
	Geometry string

	// Fragment is the expanded fragment body.
	Fragment string

	// Notices holds the multi-use directives skipped during expansion, in encounter order.
	Notices []Notice

	// Files holds the canonical path of every file read, entry first, each listed once.
	Files []string
}

// Body returns the expanded body of a stage, without the version line.
//
// Parameters:
//   - stage: the stage to look up
//
// Returns:
//   - string: the expanded body, or an empty string for an unknown or absent stage
func (r ProcessResult) Body(stage Stage) string {
	switch stage {
	case StageVertex:
		return r.Vertex
	case StageGeometry:
		return r.Geometry
	case StageFragment:
		return r.Fragment
	}
	return ""
}

// HasStage reports whether the stage was declared with a non-empty body.
func (r ProcessResult) HasStage(stage Stage) bool {
	return r.Body(stage) != ""
}

// Source assembles the final source text of a stage: the shared version line, a blank
// separator line, then the expanded body. Absent stages yield an empty string.
//
// Parameters:
//   - stage: the stage to assemble
//
// Returns:
//   - string: the complete stage source ready to hand to a GLSL compiler
func (r ProcessResult) Source(stage Stage) string {
	body := r.Body(stage)
	if body == "" {
		return ""
	}
	return r.Version + "\n" + body
}

// setBody stores an expanded body for a stage.
func (r *ProcessResult) setBody(stage Stage, body string) {
	switch stage {
	case StageVertex:
		r.Vertex = body
	case StageGeometry:
		r.Geometry = body
	case StageFragment:
		r.Fragment = body
	}
}
