// pre_processor.go implements the cabin GLSL shader pre-processor. A single entry file holds a
// version declaration and up to three stage bodies marked by #! directives; stage bodies may
// pull in other files with #![use("...")]. Processing runs in two passes:
//
//   - the stage extractor scans the entry file once, recording the version and the raw body of
//     every declared stage together with the entry line number of every body line.
//   - the inclusion expander walks each raw body, inlining used files recursively. Every stage
//     gets its own inclusion stack seeded with the entry file, so a file may be used by several
//     stages but only once within a stage.
//
// Nothing survives between runs; each call builds a session value that is threaded through the
// recursion and dropped on return.
package shader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// reader loads shader files from the host filesystem or an fs.FS.
	reader sourceReader

	// logger overrides the package logger when set.
	logger *slog.Logger
}

// PreProcessor turns a cabin entry shader into per-stage GLSL sources.
type PreProcessor interface {
	// Process reads the entry file at entryPath, splits it into stages and expands every
	// use directive. Relative use paths resolve against the entry file's directory.
	//
	// Parameters:
	//   - entryPath: path of the entry shader file
	//
	// Returns:
	//   - ProcessResult: the version line and the expanded stage bodies
	//   - error: a *Error describing the first failure encountered
	Process(entryPath string) (ProcessResult, error)

	// ProcessSource behaves like Process for an entry shader held in memory. The entry is
	// treated as if it were a file called name inside dir: use paths resolve against dir and
	// name is used in diagnostics and self-use detection.
	//
	// Parameters:
	//   - name: the file name the source is known by
	//   - source: the entry shader text
	//   - dir: the directory used paths resolve against
	//
	// Returns:
	//   - ProcessResult: the version line and the expanded stage bodies
	//   - error: a *Error describing the first failure encountered
	ProcessSource(name, source, dir string) (ProcessResult, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor reading from the host filesystem unless WithFS is given.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - PreProcessor: a pre-processor safe for concurrent use
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		reader: osReader{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *preProcessor) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return Logger()
}

func (p *preProcessor) Process(entryPath string) (ProcessResult, error) {
	entry := p.entryFile(entryPath)
	p.log().Info("loading shader", "path", entryPath)

	data, err := p.reader.read(entry.Path)
	if err != nil {
		return ProcessResult{}, &Error{
			Kind:   ErrorKindResolution,
			File:   entryPath,
			Reason: "entry file could not be read",
			Err:    err,
			Path:   entry.Path,
			scope:  scopeOpen,
		}
	}

	s := newSession(p, entry)
	s.cache[entry.Path] = data
	return s.run(string(data))
}

func (p *preProcessor) ProcessSource(name, source, dir string) (ProcessResult, error) {
	entry := p.entryFile(p.reader.join(dir, name))
	p.log().Info("loading shader", "path", entry.Path)

	s := newSession(p, entry)
	s.cache[entry.Path] = []byte(source)
	return s.run(source)
}

func (p *preProcessor) entryFile(entryPath string) SourceFile {
	abs := p.reader.canonical(entryPath)
	dir := p.reader.dir(abs)
	return SourceFile{Path: abs, Dir: dir, Name: displayName(dir, abs)}
}

// session holds the state of a single run.
type session struct {
	pp     *preProcessor
	entry  SourceFile
	cache  map[string][]byte
	result ProcessResult
}

func newSession(p *preProcessor, entry SourceFile) *session {
	return &session{
		pp:     p,
		entry:  entry,
		cache:  make(map[string][]byte),
		result: ProcessResult{Files: []string{entry.Path}},
	}
}

// rawStage is a stage body as found in the entry file, before expansion.
type rawStage struct {
	stage Stage
	body  strings.Builder

	// lines holds the entry line number of each body line; top-level directives inside the
	// block are not part of the body, so numbers are not contiguous.
	lines []int
}

func (r *rawStage) append(line string, lineNumber int) {
	r.body.WriteString(line)
	r.body.WriteByte('\n')
	r.lines = append(r.lines, lineNumber)
}

func (s *session) run(source string) (ProcessResult, error) {
	version, stages, err := s.extractStages(source)
	if err != nil {
		return ProcessResult{}, err
	}
	s.result.Version = version

	for _, raw := range stages {
		if raw == nil {
			continue
		}
		body, err := s.expand(raw.stage, s.entry, raw.body.String(), raw.lines, newInclusionStack(s.entry.Path))
		if err != nil {
			return ProcessResult{}, err
		}
		s.result.setBody(raw.stage, body)
	}
	return s.result, nil
}

// extractStages performs the single top-level scan of the entry file.
func (s *session) extractStages(source string) (string, [3]*rawStage, error) {
	var (
		version  string
		stages   [3]*rawStage
		target   *rawStage
		declared = make(map[DirectiveName]int)
	)

	for i, line := range splitLines(source) {
		lineNumber := i + 1

		d := ClassifyLine(line)
		var err *lineError
		switch d.Kind {
		case DirectiveKindNone:
			if target != nil {
				target.append(line, lineNumber)
			}
		case DirectiveKindMalformed:
			err = syntaxError()
		case DirectiveKindVersion:
			if prev, ok := declared[d.Name]; ok {
				err = structuralError("version re-declaration, previously declared at line %d", prev)
			} else if d.Param == "" {
				err = structuralError("missing version parameter")
			} else {
				version = "#version " + d.Param + "\n"
				declared[d.Name] = lineNumber
			}
		case DirectiveKindStage:
			stage, _ := stageFromDirective(d.Name)
			if prev, ok := declared[d.Name]; ok {
				err = structuralError("%s block re-declaration, previously declared at line %d", d.Name, prev)
			} else if d.Param != "" {
				err = structuralError("macro %s takes no parameter", d.Name)
			} else {
				target = &rawStage{stage: stage}
				stages[stage] = target
				declared[d.Name] = lineNumber
			}
		default:
			// use and unknown names are only meaningful inside a block; the expander handles them
			if target == nil {
				err = structuralError("out-of-block macro detected")
			} else {
				target.append(line, lineNumber)
			}
		}

		if err != nil {
			return "", stages, s.lineFailure(s.entry, lineNumber, line, err, scopeEntry)
		}
	}

	var missing string
	switch {
	case version == "":
		missing = "missing necessary version declaration"
	case stages[StageVertex] == nil || stages[StageVertex].body.Len() == 0:
		missing = "missing necessary vertex block"
	case stages[StageFragment] == nil || stages[StageFragment].body.Len() == 0:
		missing = "missing necessary fragment block"
	}
	if missing != "" {
		return "", stages, &Error{Kind: ErrorKindStructural, File: s.entry.Name, Reason: missing, scope: scopeIncomplete}
	}
	return version, stages, nil
}

// useOutcome tells the expander what a use directive resolved to.
type useOutcome int

const (
	// useExpanded means the used file was read and its expansion should be appended.
	useExpanded useOutcome = iota

	// useSkipped means the file is already on the stage's stack; nothing is appended.
	useSkipped
)

// expand inlines every use directive of body. lineNumbers maps body lines to the entry file's
// numbering for stage bodies; used files pass nil and are numbered from 1.
func (s *session) expand(stage Stage, file SourceFile, body string, lineNumbers []int, stack *InclusionStack) (string, error) {
	var out strings.Builder

	for i, line := range splitLines(body) {
		lineNumber := i + 1
		if i < len(lineNumbers) {
			lineNumber = lineNumbers[i]
		}

		d := ClassifyLine(line)
		var err *lineError
		switch d.Kind {
		case DirectiveKindNone:
			out.WriteString(line)
			out.WriteByte('\n')
		case DirectiveKindMalformed:
			err = syntaxError()
		case DirectiveKindVersion, DirectiveKindStage:
			err = structuralError("macro %s only allowed in entry shader", d.Name)
		case DirectiveKindUnrecognized:
			err = unrecognizedError(d.Name)
		case DirectiveKindUse:
			var text string
			var outcome useOutcome
			text, outcome, err = s.use(stage, file, d.Param, lineNumber, stack)
			if err == nil && outcome == useExpanded {
				out.WriteString(text)
			}
		}

		if err != nil {
			return "", s.lineFailure(file, lineNumber, line, err, scopeBlock)
		}
	}
	return out.String(), nil
}

// use resolves and expands a single use directive found in current.
func (s *session) use(stage Stage, current SourceFile, param string, line int, stack *InclusionStack) (string, useOutcome, *lineError) {
	if param == "" {
		return "", useSkipped, structuralError("missing used file path")
	}

	target := s.pp.reader.join(s.entry.Dir, param)
	if target == current.Path {
		return "", useSkipped, resolutionError(nil, "self-use detected")
	}
	if stack.Contains(target) {
		n := Notice{Stage: stage, File: current.Name, Line: line, Path: target}
		s.result.Notices = append(s.result.Notices, n)
		s.pp.log().Info(n.String(), "stage", stage.String(), "path", target)
		return "", useSkipped, nil
	}

	data, err := s.read(target)
	if err != nil {
		le := resolutionError(err, "failed to open used file: %s", param)
		le.path = target
		return "", useSkipped, le
	}
	stack.push(target)

	used := SourceFile{Path: target, Dir: s.pp.reader.dir(target), Name: displayName(s.entry.Dir, target)}
	text, err := s.expand(stage, used, string(data), nil, stack)
	if err != nil {
		var nested *Error
		if errors.As(err, &nested) {
			return "", useSkipped, &lineError{kind: nested.Kind, reason: fmt.Sprintf("failed to expand used file: %s", param), cause: nested}
		}
		return "", useSkipped, resolutionError(err, "failed to expand used file: %s", param)
	}
	return text, useExpanded, nil
}

// read returns a file's content, reading each canonical path at most once per session.
func (s *session) read(p string) ([]byte, error) {
	if data, ok := s.cache[p]; ok {
		return data, nil
	}
	s.pp.log().Debug("reading used file", "path", p)
	data, err := s.pp.reader.read(p)
	if err != nil {
		return nil, err
	}
	s.cache[p] = data
	s.result.Files = append(s.result.Files, p)
	return data, nil
}

// lineFailure attaches file and line context to an error raised by a scan loop.
func (s *session) lineFailure(file SourceFile, line int, text string, err *lineError, scope errorScope) *Error {
	return &Error{
		Kind:   err.kind,
		File:   file.Name,
		Line:   line,
		Text:   text,
		Reason: err.reason,
		Err:    err.cause,
		Path:   err.path,
		scope:  scope,
	}
}

// splitLines splits text into lines the way a line reader would: a trailing newline does not
// start another line and empty text has no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
